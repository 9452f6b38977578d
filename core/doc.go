// Package core contains the shared message model used between the runner,
// the tool invocation channel and hosting providers: role-based Content made
// of a closed set of Part variants (text, tool call, tool result), plus small
// helpers for ID generation and transcript scanning.
package core

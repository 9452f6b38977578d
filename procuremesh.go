// Package procuremesh provides a high-level façade over the purchase request
// agent system. Most applications interact with this package by:
//  1. Loading a catalog and creating a ProcureMesh via New() with a hosting
//     provider (Anthropic or OpenAI)
//  2. Calling ProcessPurchaseRequest for each incoming request
//  3. Reading the audit trail via AuditLog()
//
// The façade wires the catalog store, audit log, business query service,
// local tool channel and run orchestrator together. All defaults are safe
// for local development; production deployments typically supply a real
// spend ledger and a structured logger.
package procuremesh

import (
	"context"
	"time"

	"github.com/hupe1980/procuremesh/audit"
	"github.com/hupe1980/procuremesh/business"
	"github.com/hupe1980/procuremesh/catalog"
	"github.com/hupe1980/procuremesh/channel"
	"github.com/hupe1980/procuremesh/hosting"
	"github.com/hupe1980/procuremesh/logging"
	"github.com/hupe1980/procuremesh/runner"
)

// Options configures the ProcureMesh instance.
type Options struct {
	// AgentName identifies acquired execution contexts.
	AgentName string
	// Instructions overrides the default agent instructions.
	Instructions string
	// RunTimeout bounds one purchase request run. Zero means no timeout.
	RunTimeout time.Duration
	// Ledger supplies spent-this-month figures for budget computation.
	Ledger catalog.SpendLedger
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// ProcureMesh is the high-level façade aggregating the catalog, audit log,
// business tools and run orchestrator.
type ProcureMesh struct {
	store    *catalog.Store
	auditLog *audit.Log
	runner   *runner.Runner
}

// New loads the catalog from dataDir and wires the full system against the
// given hosting provider.
func New(dataDir string, provider hosting.Provider, optFns ...func(o *Options)) (*ProcureMesh, error) {
	opts := Options{
		AgentName:    "purchase-request-agent",
		Instructions: runner.DefaultInstructions,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	store, err := catalog.LoadDir(dataDir, func(o *catalog.Options) {
		if opts.Ledger != nil {
			o.Ledger = opts.Ledger
		}
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	auditLog := audit.NewLog()

	svc := business.NewService(store, auditLog, func(o *business.ServiceOptions) {
		o.Logger = opts.Logger
	})

	ch, err := channel.NewLocalChannel(svc.Tools(), func(o *channel.LocalOptions) {
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	r := runner.New(provider, ch, func(o *runner.Options) {
		o.AgentName = opts.AgentName
		o.Instructions = opts.Instructions
		o.RunTimeout = opts.RunTimeout
		o.Logger = opts.Logger
	})

	return &ProcureMesh{
		store:    store,
		auditLog: auditLog,
		runner:   r,
	}, nil
}

// ProcessPurchaseRequest runs one purchase request to completion. Failures
// are reported through the Result, never as an error or panic.
func (m *ProcureMesh) ProcessPurchaseRequest(ctx context.Context, userID, requestText string) *runner.Result {
	return m.runner.ProcessPurchaseRequest(ctx, userID, requestText)
}

// Catalog returns the loaded catalog store.
func (m *ProcureMesh) Catalog() *catalog.Store { return m.store }

// AuditLog returns the audit trail shared with the agent's tools.
func (m *ProcureMesh) AuditLog() *audit.Log { return m.auditLog }

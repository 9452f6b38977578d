// Package catalog loads and serves the procurement reference data: users,
// departments, products, suppliers and supplier offers. Data is read once
// from JSON files into an immutable in-memory Store; all lookups and
// searches afterwards are lock-free and safe for concurrent use.
package catalog

package catalog

import "sync"

// SpendLedger reports how much a department has spent in the current month.
// The catalog store consults it when computing a DepartmentBudget. Production
// deployments back this with a real ledger system; the included
// implementations cover demos and tests.
type SpendLedger interface {
	SpentThisMonth(departmentID string) float64
}

// FixedLedger reports the same spent amount for every department. It stands
// in for a real ledger integration during demos.
type FixedLedger struct {
	Amount float64
}

// SpentThisMonth implements SpendLedger.
func (l FixedLedger) SpentThisMonth(string) float64 { return l.Amount }

// DefaultLedger is the ledger used when none is configured.
var DefaultLedger SpendLedger = FixedLedger{Amount: 2500.0}

// MemoryLedger tracks per-department spend in memory. Safe for concurrent use.
type MemoryLedger struct {
	mu    sync.RWMutex
	spent map[string]float64
}

// NewMemoryLedger constructs an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{spent: make(map[string]float64)}
}

// Record adds amount to the department's spend for the current month.
func (l *MemoryLedger) Record(departmentID string, amount float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.spent[departmentID] += amount
}

// SpentThisMonth implements SpendLedger.
func (l *MemoryLedger) SpentThisMonth(departmentID string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.spent[departmentID]
}

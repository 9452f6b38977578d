// Package audit provides an append-only, in-memory audit trail for
// purchase-request decisions.
package audit

import (
	"sync"
	"time"

	"github.com/hupe1980/procuremesh/core"
)

// Record is a single immutable audit entry.
type Record struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    string         `json:"user_id"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details"`
	Reasoning string         `json:"reasoning"`
}

// Log is an append-only audit log. Records can never be modified or removed
// once appended. Safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	records []Record
}

// NewLog creates an empty audit log.
func NewLog() *Log {
	return &Log{}
}

// Append stores a new record and returns it with its assigned id and
// timestamp. The details map is copied so later mutation by the caller
// cannot alter the stored record.
func (l *Log) Append(userID, action string, details map[string]any, reasoning string) Record {
	rec := Record{
		ID:        core.NewID(),
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Action:    action,
		Details:   copyDetails(details),
		Reasoning: reasoning,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)

	return rec
}

// Records returns a snapshot of all entries in append order.
func (l *Log) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Record(nil), l.records...)
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

func copyDetails(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	cp := make(map[string]any, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}

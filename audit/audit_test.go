package audit

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	log := NewLog()

	rec := log.Append("alice-001", "purchase_approved", map[string]any{
		"product_id": "LAPTOP-001",
		"amount":     1149.0,
	}, "cheapest offer within budget")

	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Timestamp.IsZero())
	assert.Equal(t, "alice-001", rec.UserID)
	assert.Equal(t, "purchase_approved", rec.Action)
	assert.Equal(t, "LAPTOP-001", rec.Details["product_id"])
	assert.Equal(t, 1, log.Len())
}

func TestAppendCopiesDetails(t *testing.T) {
	log := NewLog()

	details := map[string]any{"key": "original"}
	log.Append("alice-001", "action", details, "")
	details["key"] = "mutated"

	assert.Equal(t, "original", log.Records()[0].Details["key"])
}

func TestAppendNilDetails(t *testing.T) {
	log := NewLog()

	rec := log.Append("alice-001", "action", nil, "reason")
	assert.Nil(t, rec.Details)
	assert.Equal(t, "reason", rec.Reasoning)
}

func TestRecordsSnapshot(t *testing.T) {
	log := NewLog()
	log.Append("u1", "first", nil, "")
	log.Append("u2", "second", nil, "")

	records := log.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0].Action)
	assert.Equal(t, "second", records[1].Action)

	// Mutating the snapshot must not touch the log.
	records[0].Action = "tampered"
	assert.Equal(t, "first", log.Records()[0].Action)
}

func TestConcurrentAppend(t *testing.T) {
	log := NewLog()

	const goroutines = 20
	const perGoroutine = 50

	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perGoroutine {
				log.Append(fmt.Sprintf("user-%d", g), fmt.Sprintf("action-%d", i), nil, "")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*perGoroutine, log.Len())

	seen := make(map[string]bool)
	for _, rec := range log.Records() {
		assert.False(t, seen[rec.ID], "duplicate record id %s", rec.ID)
		seen[rec.ID] = true
	}
}

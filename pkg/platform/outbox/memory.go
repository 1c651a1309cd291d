package outbox

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemory is an outbox Store for the memory and SQLite backends and for tests.
type InMemory struct {
	mu      sync.Mutex
	entries []*Entry
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("outbox entry is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *entry
	s.entries = append(s.entries, &stored)
	return nil
}

func (s *InMemory) FetchUnprocessed(_ context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Entry
	for _, e := range s.entries {
		if !e.IsPending() {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	slices.SortStableFunc(out, func(a, b *Entry) int { return a.CreatedAt.Compare(b.CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) MarkProcessed(_ context.Context, id uuid.UUID, processedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id && e.IsPending() {
			at := processedAt
			e.ProcessedAt = &at
			return nil
		}
	}
	return fmt.Errorf("outbox entry not found or already processed: %s", id)
}

func (s *InMemory) CountPending(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.entries {
		if e.IsPending() {
			n++
		}
	}
	return n, nil
}

func (s *InMemory) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	var deleted int64
	for _, e := range s.entries {
		if e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return deleted, nil
}

// Entries returns a snapshot of every entry, pending or not.
func (s *InMemory) Entries() []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		copied := *e
		out = append(out, &copied)
	}
	return out
}

// Package outbox implements the transactional outbox: events are appended in
// the same unit of work as the business write and published later by a worker.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is a pending event in the outbox table.
type Entry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte // JSON
	CreatedAt     time.Time
	ProcessedAt   *time.Time // nil while pending
}

// IsPending reports whether the entry still needs publishing.
func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

// NewEntry creates an entry with a fresh id.
func NewEntry(aggregateType, aggregateID, eventType string, payload []byte, now time.Time) *Entry {
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}

// Store is the outbox persistence contract. Implementations must be safe for concurrent use.
type Store interface {
	// Append joins the caller's transaction when one is active in ctx.
	Append(ctx context.Context, entry *Entry) error
	// FetchUnprocessed returns up to limit pending entries, oldest first.
	FetchUnprocessed(ctx context.Context, limit int) ([]*Entry, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error
	CountPending(ctx context.Context) (int64, error)
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

package worker

import (
	"context"
	"log/slog"
	"time"

	"sampad/internal/platform/kafka/producer"
	"sampad/pkg/platform/circuit"
	"sampad/pkg/platform/outbox"
	"sampad/pkg/platform/outbox/metrics"
)

// Publisher delivers one message. *producer.Producer satisfies it.
type Publisher interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// TxRunner scopes one poll cycle so row locks taken by FetchUnprocessed are held
// until the batch is marked.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Worker polls the outbox and publishes events to Kafka.
type Worker struct {
	store        outbox.Store
	publisher    Publisher
	tx           TxRunner
	topic        string
	batchSize    int
	pollInterval time.Duration
	drainTimeout time.Duration
	metrics      *metrics.Metrics
	breaker      *circuit.Breaker
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures the Worker.
type Option func(*Worker)

func WithTopic(topic string) Option {
	return func(w *Worker) {
		w.topic = topic
	}
}

func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithBreaker replaces the publish breaker. While it is open each poll sends a
// single probe entry instead of a full batch.
func WithBreaker(b *circuit.Breaker) Option {
	return func(w *Worker) {
		if b != nil {
			w.breaker = b
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithTx wraps every poll in a transaction.
func WithTx(tx TxRunner) Option {
	return func(w *Worker) {
		w.tx = tx
	}
}

// New creates an outbox worker.
func New(store outbox.Store, publisher Publisher, opts ...Option) *Worker {
	w := &Worker{
		store:        store,
		publisher:    publisher,
		topic:        "sampad.registrations",
		batchSize:    100,
		pollInterval: time.Second,
		drainTimeout: 10 * time.Second,
		breaker:      circuit.New("kafka-publish"),
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is cancelled, then drains what is left.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll processes a single batch and returns how many entries were published.
func (w *Worker) Poll(ctx context.Context) int {
	start := time.Now()
	var published int
	err := w.inTx(ctx, func(ctx context.Context) error {
		n, err := w.processBatch(ctx)
		published = n
		return err
	})
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to fetch outbox entries", "error", err)
		if w.metrics != nil {
			w.metrics.IncPublishFailures()
		}
	}
	if w.metrics != nil {
		w.metrics.ObservePollDuration(time.Since(start).Seconds())
		if count, err := w.store.CountPending(ctx); err == nil {
			w.metrics.SetPendingDepth(count)
		}
	}
	return published
}

func (w *Worker) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if w.tx == nil {
		return fn(ctx)
	}
	return w.tx.RunInTx(ctx, fn)
}

// processBatch publishes one batch. A failed entry is left pending for the next poll.
func (w *Worker) processBatch(ctx context.Context) (int, error) {
	limit := w.batchSize
	if w.breaker.IsOpen() {
		limit = 1
	}
	entries, err := w.store.FetchUnprocessed(ctx, limit)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if w.metrics != nil {
		w.metrics.ObserveBatchSize(len(entries))
	}

	var published int
	for _, entry := range entries {
		if err := w.publishEntry(ctx, entry); err != nil {
			w.logger.ErrorContext(ctx, "failed to publish outbox entry",
				"id", entry.ID,
				"event_type", entry.EventType,
				"error", err,
			)
			if w.metrics != nil {
				w.metrics.IncPublishFailures()
			}
			if w.breaker.RecordFailure() {
				w.logger.WarnContext(ctx, "publish circuit opened, probing with single entries", "breaker", w.breaker.Name())
			}
			if w.breaker.IsOpen() {
				break
			}
			continue
		}
		if w.breaker.RecordSuccess() {
			w.logger.InfoContext(ctx, "publish circuit closed", "breaker", w.breaker.Name())
		}
		if err := w.store.MarkProcessed(ctx, entry.ID, w.now()); err != nil {
			// Published but unmarked: it will go out again, consumers dedupe on the key.
			w.logger.ErrorContext(ctx, "failed to mark entry as processed",
				"id", entry.ID,
				"error", err,
			)
			continue
		}
		published++
		if w.metrics != nil {
			w.metrics.IncPublished()
		}
	}
	return published, nil
}

func (w *Worker) publishEntry(ctx context.Context, entry *outbox.Entry) error {
	start := time.Now()
	msg := &producer.Message{
		Topic: w.topic,
		Key:   []byte(entry.ID.String()),
		Value: entry.Payload,
		Headers: map[string]string{
			"aggregate_type": entry.AggregateType,
			"aggregate_id":   entry.AggregateID,
			"event_type":     entry.EventType,
		},
	}
	if err := w.publisher.Produce(ctx, msg); err != nil {
		return err
	}
	if w.metrics != nil {
		w.metrics.ObservePublishDuration(time.Since(start).Seconds())
	}
	return nil
}

// drain keeps polling on a fresh context until the outbox is empty, nothing
// more can be published, or the drain timeout elapses.
func (w *Worker) drain() {
	w.logger.Info("draining outbox worker")
	ctx, cancel := context.WithTimeout(context.Background(), w.drainTimeout)
	defer cancel()

	for ctx.Err() == nil {
		if w.Poll(ctx) == 0 {
			return
		}
	}
}

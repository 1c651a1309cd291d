package service

import (
	"log/slog"

	registrationmetrics "sampad/internal/registration/metrics"
	id "sampad/pkg/domain"
	"sampad/pkg/payment"
	"sampad/pkg/platform/tracer"
)

// Option configures the Service.
type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *registrationmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx sets the transactional boundary. Without it an in-process lock is used,
// which only suits the in-memory store.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithOutbox makes Register append a registration.created event in the same transaction.
func WithOutbox(o OutboxAppender) Option {
	return func(s *Service) {
		s.outbox = o
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithPaymentAccount(account payment.Account) Option {
	return func(s *Service) {
		if account.CardNumber != "" {
			s.account.CardNumber = account.CardNumber
		}
		if account.Owner != "" {
			s.account.Owner = account.Owner
		}
	}
}

// WithIDGenerator replaces the UUID source. Tests use it for deterministic ids.
func WithIDGenerator(next func() id.RegistrationID) Option {
	return func(s *Service) {
		s.newID = next
	}
}

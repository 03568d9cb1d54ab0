// Package service implements promise ownership, share issuing, and the
// evaluation workflow.
package service

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"pinky/internal/platform/metrics"
	"pinky/internal/promise/ports"
	"pinky/pkg/platform/audit"
)

// tokenIssueAttempts bounds regenerate-on-collision when minting share
// tokens. With 256-bit tokens a second collision in a row means something is
// broken, not unlucky.
const tokenIssueAttempts = 3

type Service struct {
	promises    ports.PromiseStore
	shares      ports.ShareStore
	guests      ports.GuestStore
	evaluations ports.EvaluationStore
	users       ports.UserDirectory

	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor audit.Publisher
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func New(
	promises ports.PromiseStore,
	shares ports.ShareStore,
	guests ports.GuestStore,
	evaluations ports.EvaluationStore,
	users ports.UserDirectory,
	opts ...Option,
) (*Service, error) {
	if promises == nil || shares == nil || guests == nil || evaluations == nil || users == nil {
		return nil, fmt.Errorf("all promise service stores are required")
	}
	svc := &Service{
		promises:    promises,
		shares:      shares,
		guests:      guests,
		evaluations: evaluations,
		users:       users,
		logger:      slog.Default(),
		tracer:      otel.Tracer("pinky/promise"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

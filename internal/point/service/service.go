// Package service implements the point-policy catalog and the idempotent
// disbursement ledger.
package service

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"pinky/internal/platform/metrics"
	"pinky/internal/point/ports"
	"pinky/pkg/platform/audit"
)

type Service struct {
	policies ports.PolicyStore
	ledger   ports.LedgerStore
	users    ports.UserDirectory

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

func New(policies ports.PolicyStore, ledger ports.LedgerStore, users ports.UserDirectory, opts ...Option) (*Service, error) {
	if policies == nil || ledger == nil || users == nil {
		return nil, fmt.Errorf("all point service stores are required")
	}
	svc := &Service{
		policies: policies,
		ledger:   ledger,
		users:    users,
		logger:   slog.Default(),
		tracer:   otel.Tracer("pinky/point"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

package authclient

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/kbukum/deskhub/authclient"

// Metric outcomes.
const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeSkipped = "skipped"
)

type metrics struct {
	refreshTotal    metric.Int64Counter
	replayTotal     metric.Int64Counter
	terminatedTotal metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	refreshTotal, err := meter.Int64Counter("authclient.refresh.total",
		metric.WithDescription("Credential refresh attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating authclient.refresh.total counter: %w", err)
	}

	replayTotal, err := meter.Int64Counter("authclient.replay.total",
		metric.WithDescription("Requests replayed after a refresh by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating authclient.replay.total counter: %w", err)
	}

	terminatedTotal, err := meter.Int64Counter("authclient.session.terminated.total",
		metric.WithDescription("Sessions terminated by reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating authclient.session.terminated.total counter: %w", err)
	}

	return &metrics{
		refreshTotal:    refreshTotal,
		replayTotal:     replayTotal,
		terminatedTotal: terminatedTotal,
	}, nil
}

func (m *metrics) recordRefresh(ctx context.Context, r, outcome string) {
	m.refreshTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", r),
		attribute.String("outcome", outcome),
	))
}

func (m *metrics) recordReplay(ctx context.Context, r, outcome string) {
	m.replayTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", r),
		attribute.String("outcome", outcome),
	))
}

func (m *metrics) recordTermination(ctx context.Context, r string, reason Reason) {
	m.terminatedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", r),
		attribute.String("reason", string(reason)),
	))
}

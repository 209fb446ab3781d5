package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "go_scorm_attempt_keep/service"

// lifecycleMetrics は受験セッションのライフサイクルのカウンター
type lifecycleMetrics struct {
	sessions     metric.Int64Counter // outcome=created|resumed|limit_exceeded
	updates      metric.Int64Counter // outcome=ok|malformed|closed
	terminations metric.Int64Counter
	retries      metric.Int64Counter
}

// newLifecycleMetrics はグローバルの MeterProvider からカウンターを作ります。
// 未設定なら no-op になる。
func newLifecycleMetrics() *lifecycleMetrics {
	meter := otel.Meter(meterName)
	m := &lifecycleMetrics{}
	m.sessions, _ = meter.Int64Counter("scorm.test_attempt.sessions",
		metric.WithDescription("Session requests by outcome"))
	m.updates, _ = meter.Int64Counter("scorm.test_attempt.updates",
		metric.WithDescription("CMI datamodel updates by outcome"))
	m.terminations, _ = meter.Int64Counter("scorm.test_attempt.terminations",
		metric.WithDescription("Test attempts transitioned to terminated"))
	m.retries, _ = meter.Int64Counter("scorm.test_attempt.transaction_retries",
		metric.WithDescription("Transactions retried after a write conflict"))
	return m
}

func (m *lifecycleMetrics) session(ctx context.Context, outcome string) {
	m.sessions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *lifecycleMetrics) update(ctx context.Context, outcome string) {
	m.updates.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *lifecycleMetrics) terminated(ctx context.Context) {
	m.terminations.Add(ctx, 1)
}

func (m *lifecycleMetrics) retried(ctx context.Context, op string) {
	m.retries.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

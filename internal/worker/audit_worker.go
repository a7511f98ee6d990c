package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-retriage/internal/observability"
	"github.com/spec-kit/ticket-retriage/internal/service"
)

// StartAuditWorker registers audit handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}

// RunMetricsReporter logs a metrics snapshot every interval until ctx is done.
func RunMetricsReporter(ctx context.Context, metrics *observability.Metrics, logger *zap.Logger, interval time.Duration) {
	if metrics == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := metrics.Snapshot()
			logger.Info("metrics",
				zap.Any("model_calls", snap.ModelCalls),
				zap.Int64("example_replays", snap.ExampleReplays),
				zap.Any("fallbacks", snap.Fallbacks),
				zap.Any("errors", snap.Errors),
				zap.Int64("model_latency_ms_sum", snap.ModelLatencyMSum))
		}
	}
}

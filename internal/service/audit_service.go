package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-retriage/internal/domain"
	"github.com/spec-kit/ticket-retriage/internal/events"
	"github.com/spec-kit/ticket-retriage/internal/observability"
	"github.com/spec-kit/ticket-retriage/internal/repository"
)

// AuditService records re-triage outcomes and feeds the metrics counters.
type AuditService struct {
	dispatcher events.Dispatcher
	repo       repository.AuditRepository
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, repo repository.AuditRepository, metrics *observability.Metrics, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		repo:       repo,
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTriageCompleted, a.handleTriageCompleted)
	a.dispatcher.Subscribe(events.EventTriageFailed, a.handleTriageFailed)
}

// ListRecent returns the newest audit entries.
func (a *AuditService) ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	return a.repo.ListRecent(ctx, limit)
}

func (a *AuditService) handleTriageCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TriageCompletedPayload)
	if !ok {
		return nil
	}
	result := payload.Result

	if result.Source == domain.TriageSourceExample {
		a.metrics.RecordExampleReplay()
	} else {
		a.metrics.RecordModelCall(string(result.Source), payload.Latency)
	}
	fallbacks := make([]string, 0, len(result.Fallbacks))
	for _, f := range result.Fallbacks {
		a.metrics.RecordFallback(string(f))
		fallbacks = append(fallbacks, string(f))
	}

	return a.repo.Create(ctx, &domain.AuditEntry{
		RequestID:        event.RequestID,
		Source:           result.Source,
		Model:            payload.Model,
		ResidentPriority: payload.ResidentPriority,
		ResidentCategory: payload.ResidentCategory,
		AIPriority:       result.Priority,
		AICategory:       result.Category,
		Fallbacks:        fallbacks,
		LatencyMS:        payload.Latency.Milliseconds(),
	})
}

func (a *AuditService) handleTriageFailed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TriageFailedPayload)
	if !ok {
		return nil
	}
	a.metrics.RecordModelCall(payload.ErrorCode, payload.Latency)
	a.logger.Warn("re-triage failed",
		zap.String("request_id", event.RequestID),
		zap.String("code", payload.ErrorCode),
		zap.String("error", payload.Error))

	msg := payload.Error
	return a.repo.Create(ctx, &domain.AuditEntry{
		RequestID:        event.RequestID,
		Source:           domain.TriageSourceModel,
		Model:            payload.Model,
		ResidentPriority: payload.ResidentPriority,
		ResidentCategory: payload.ResidentCategory,
		LatencyMS:        payload.Latency.Milliseconds(),
		Error:            &msg,
	})
}

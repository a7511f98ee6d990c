package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-retriage/internal/domain"
	"github.com/spec-kit/ticket-retriage/internal/events"
	"github.com/spec-kit/ticket-retriage/internal/repository"
	"github.com/spec-kit/ticket-retriage/internal/triage"
	apperrors "github.com/spec-kit/ticket-retriage/pkg/util"
)

// portalTicketID is the id sent to the model for a typed ticket.
const portalTicketID = 1

// RetriageService coordinates the re-triage workflow.
type RetriageService struct {
	catalog    *Catalog
	generator  triage.Generator
	cache      repository.ResultCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// RetriageDependencies bundles collaborators for the service. Generator may be
// nil when no API key is configured.
type RetriageDependencies struct {
	Catalog    *Catalog
	Generator  triage.Generator
	Cache      repository.ResultCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

// RetriageInput is a resident ticket as typed into the portal.
type RetriageInput struct {
	Priority string
	Category string
	Comment  string
}

// NewRetriageService constructs the service.
func NewRetriageService(deps RetriageDependencies) *RetriageService {
	s := &RetriageService{
		catalog:    deps.Catalog,
		generator:  deps.Generator,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if s.cache == nil {
		s.cache = repository.NewResultCache(nil, "", 0)
	}
	if s.dispatcher == nil {
		s.dispatcher = events.NewInMemoryDispatcher()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ModelEnabled reports whether typed tickets can be re-triaged.
func (s *RetriageService) ModelEnabled() bool {
	return s.generator != nil
}

// ModelName returns the configured model, or "" when disabled.
func (s *RetriageService) ModelName() string {
	if s.generator == nil {
		return ""
	}
	return s.generator.Model()
}

// Catalog exposes the label and example catalog.
func (s *RetriageService) Catalog() *Catalog {
	return s.catalog
}

// Validate checks a typed ticket against the comment limits and the label sets.
func (s *RetriageService) Validate(input RetriageInput) (domain.Ticket, error) {
	ticket := domain.Ticket{
		ID:       portalTicketID,
		Priority: input.Priority,
		Category: input.Category,
		Comment:  input.Comment,
	}.Normalized()
	labels := s.catalog.Labels()

	details := map[string]any{}
	if ticket.Comment == "" {
		details["comment"] = "required"
	} else if n := domain.WordCount(ticket.Comment); n > domain.MaxCommentWords {
		details["comment"] = map[string]any{"words": n, "max_words": domain.MaxCommentWords}
	}
	if !labels.HasPriority(ticket.Priority) {
		details["priority"] = "must be one of the allowed priorities"
	}
	if !labels.HasCategory(ticket.Category) {
		details["category"] = "must be one of the allowed categories"
	}
	if len(details) > 0 {
		return domain.Ticket{}, apperrors.NewValidationError("invalid ticket", details)
	}
	return ticket, nil
}

// Retriage asks the model for a second opinion on a typed ticket.
func (s *RetriageService) Retriage(ctx context.Context, requestID string, input RetriageInput) (*domain.TriageResult, error) {
	ticket, err := s.Validate(input)
	if err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, apperrors.NewModelUnavailable(triage.ErrModelDisabled)
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}

	start := s.now()
	ticket.SubmittedAt = start
	labels := s.catalog.Labels()
	model := s.generator.Model()
	cacheKey := repository.CacheKey(model, labels, ticket)

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		cached.Source = domain.TriageSourceCache
		s.completed(ctx, requestID, model, ticket, *cached, s.now().Sub(start))
		return cached, nil
	} else if !errors.Is(err, repository.ErrCacheMiss) {
		s.logger.Warn("result cache read failed", zap.String("request_id", requestID), zap.Error(err))
	}

	result, err := s.callModel(ctx, ticket, labels)
	latency := s.now().Sub(start)
	if err != nil {
		s.failed(ctx, requestID, model, ticket, err, latency)
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, result); err != nil {
		s.logger.Warn("result cache write failed", zap.String("request_id", requestID), zap.Error(err))
	}
	if len(result.Fallbacks) > 0 || len(result.Warnings) > 0 {
		s.logger.Info("model output reconciled",
			zap.String("request_id", requestID),
			zap.Any("fallbacks", result.Fallbacks),
			zap.Strings("warnings", result.Warnings))
	}
	s.completed(ctx, requestID, model, ticket, result, latency)
	return &result, nil
}

// RetriageExample returns the precomputed result stored with a demo example.
func (s *RetriageService) RetriageExample(ctx context.Context, requestID string, id int) (*domain.TriageResult, domain.DemoExample, error) {
	example, ok := s.catalog.Example(id)
	if !ok {
		return nil, domain.DemoExample{}, apperrors.NewNotFound("example", map[string]any{"id": id})
	}
	result := domain.TriageResult{
		TicketID:        example.ID,
		Priority:        example.AIPriority,
		Category:        example.AICategory,
		ResidentMessage: example.SuggestedActions,
		Source:          domain.TriageSourceExample,
	}
	s.completed(ctx, requestID, "", example.Ticket(), result, 0)
	return &result, example, nil
}

func (s *RetriageService) callModel(ctx context.Context, ticket domain.Ticket, labels domain.LabelSet) (domain.TriageResult, error) {
	contents, err := triage.BuildUserContents([]triage.PortalItem{triage.NewPortalItem(ticket)})
	if err != nil {
		return domain.TriageResult{}, apperrors.NewInternalError(err)
	}

	text, err := s.generator.Generate(ctx,
		triage.BuildSystemInstruction(labels),
		contents,
		triage.ResponseSchema(labels))
	if err != nil {
		return domain.TriageResult{}, apperrors.NewModelUnavailable(err)
	}

	parsed, err := triage.ParseBatchResponse(text)
	if err != nil {
		return domain.TriageResult{}, apperrors.NewModelOutputInvalid(err)
	}

	labeled := parsed.Results[0]
	for _, r := range parsed.Results {
		if r.ID == ticket.ID {
			labeled = r
			break
		}
	}
	return triage.Reconcile(ticket, labeled, labels), nil
}

func (s *RetriageService) completed(ctx context.Context, requestID, model string, ticket domain.Ticket, result domain.TriageResult, latency time.Duration) {
	s.publish(ctx, events.Event{
		Type:      events.EventTriageCompleted,
		RequestID: requestID,
		Payload: events.TriageCompletedPayload{
			Model:            model,
			ResidentPriority: ticket.Priority,
			ResidentCategory: ticket.Category,
			Result:           result,
			Latency:          latency,
		},
	})
}

func (s *RetriageService) failed(ctx context.Context, requestID, model string, ticket domain.Ticket, err error, latency time.Duration) {
	s.publish(ctx, events.Event{
		Type:      events.EventTriageFailed,
		RequestID: requestID,
		Payload: events.TriageFailedPayload{
			Model:            model,
			ResidentPriority: ticket.Priority,
			ResidentCategory: ticket.Category,
			ErrorCode:        apperrors.ToDomainError(err).Code,
			Error:            err.Error(),
			Latency:          latency,
		},
	})
}

func (s *RetriageService) publish(ctx context.Context, event events.Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.Timestamp = s.now().UTC()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("request_id", event.RequestID),
			zap.Error(err))
	}
}

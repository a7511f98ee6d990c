package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-retriage/internal/api/dto"
	"github.com/spec-kit/ticket-retriage/internal/domain"
	"github.com/spec-kit/ticket-retriage/internal/observability"
	"github.com/spec-kit/ticket-retriage/internal/service"
	apperrors "github.com/spec-kit/ticket-retriage/pkg/util"
)

// RetriageHandler serves the re-triage JSON API.
type RetriageHandler struct {
	service *service.RetriageService
	now     func() time.Time
}

// NewRetriageHandler constructs handler.
func NewRetriageHandler(retriageService *service.RetriageService) *RetriageHandler {
	return &RetriageHandler{service: retriageService, now: time.Now}
}

// Labels GET /api/v1/labels.
func (h *RetriageHandler) Labels(c *fiber.Ctx) error {
	labels := h.service.Catalog().Labels()
	return c.JSON(fiber.Map{"data": dto.LabelsResponse{
		Priorities:      labels.Priorities,
		Categories:      labels.Categories,
		DefaultPriority: labels.DefaultPriority(),
		MaxCommentWords: domain.MaxCommentWords,
		ModelEnabled:    h.service.ModelEnabled(),
	}})
}

// Examples GET /api/v1/examples.
func (h *RetriageHandler) Examples(c *fiber.Ctx) error {
	examples := h.service.Catalog().Examples()
	items := make([]dto.ExampleSummary, 0, len(examples))
	for _, e := range examples {
		items = append(items, dto.NewExampleSummary(e))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Retriage POST /api/v1/retriage.
func (h *RetriageHandler) Retriage(c *fiber.Ctx) error {
	var req dto.RetriageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	start := h.now()
	requestID := observability.RequestID(c)
	result, err := h.service.Retriage(c.UserContext(), requestID, service.RetriageInput{
		Priority: req.Priority,
		Category: req.Category,
		Comment:  req.Comment,
	})
	if err != nil {
		return err
	}

	ticket := domain.Ticket{
		ID:       result.TicketID,
		Priority: req.Priority,
		Category: req.Category,
		Comment:  req.Comment,
	}.Normalized()
	end := h.now()
	return c.JSON(fiber.Map{"data": dto.NewRetriageResponse(requestID, h.service.ModelName(), ticket, *result, end.Sub(start), end)})
}

// RetriageExample POST /api/v1/examples/:id/retriage.
func (h *RetriageHandler) RetriageExample(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("invalid example id", map[string]any{"id": c.Params("id")})
	}

	start := h.now()
	requestID := observability.RequestID(c)
	result, example, err := h.service.RetriageExample(c.UserContext(), requestID, id)
	if err != nil {
		return err
	}
	end := h.now()
	return c.JSON(fiber.Map{"data": dto.NewRetriageResponse(requestID, "", example.Ticket(), *result, end.Sub(start), end)})
}

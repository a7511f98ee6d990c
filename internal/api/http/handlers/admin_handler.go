package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-retriage/internal/api/dto"
	"github.com/spec-kit/ticket-retriage/internal/auth"
	"github.com/spec-kit/ticket-retriage/internal/observability"
	"github.com/spec-kit/ticket-retriage/internal/service"
	apperrors "github.com/spec-kit/ticket-retriage/pkg/util"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AdminHandler exposes operator endpoints.
type AdminHandler struct {
	catalog *service.Catalog
	audit   *service.AuditService
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAdminHandler constructs handler.
func NewAdminHandler(catalog *service.Catalog, audit *service.AuditService, metrics *observability.Metrics, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{catalog: catalog, audit: audit, metrics: metrics, logger: logger}
}

// Reload POST /api/v1/admin/reload.
func (h *AdminHandler) Reload(c *fiber.Ctx) error {
	if err := h.catalog.Reload(); err != nil {
		return apperrors.NewDomainError("RELOAD_FAILED", "unable to reload label artifacts", fiber.StatusUnprocessableEntity,
			map[string]any{"reason": err.Error()})
	}
	labels := h.catalog.Labels()
	operator := ""
	if principal, ok := auth.PrincipalFromContext(c); ok {
		operator = principal.Operator
	}
	h.logger.Info("catalog reloaded", zap.String("operator", operator))
	return c.JSON(fiber.Map{"data": dto.ReloadResponse{
		Priorities: len(labels.Priorities),
		Categories: len(labels.Categories),
		Examples:   len(h.catalog.Examples()),
	}})
}

// Audit GET /api/v1/admin/audit.
func (h *AdminHandler) Audit(c *fiber.Ctx) error {
	limit := defaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxAuditLimit {
			return apperrors.NewValidationError("limit must be an integer between 1 and 500", map[string]any{"min": 1, "max": maxAuditLimit})
		}
		limit = n
	}
	entries, err := h.audit.ListRecent(c.UserContext(), limit)
	if err != nil {
		return err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.NewAuditEntryResponse(e))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Stats GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.StatsResponse{Metrics: h.metrics.Snapshot()}})
}

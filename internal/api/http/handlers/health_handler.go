package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-retriage/internal/persistence"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName  string
	version      string
	postgres     *persistence.Postgres
	redis        *persistence.Redis
	modelEnabled func() bool
}

// NewHealthHandler returns a new handler instance. Postgres and Redis are
// optional; an unconfigured store is reported as disabled, not as a failure.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis, modelEnabled func() bool) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis, modelEnabled: modelEnabled}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	for name, store := range map[string]pinger{"postgres": h.postgres, "redis": h.redis} {
		status := storeStatus(ctx, store)
		depStatus[name] = status
		if status != "ok" && status != "disabled" {
			ready = false
		}
	}

	if h.modelEnabled != nil && h.modelEnabled() {
		depStatus["model"] = "ok"
	} else {
		depStatus["model"] = "disabled"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}

type pinger interface {
	Configured() bool
	Ping(ctx context.Context) error
}

func storeStatus(ctx context.Context, store pinger) string {
	if !store.Configured() {
		return "disabled"
	}
	if err := store.Ping(ctx); err != nil {
		return err.Error()
	}
	return "ok"
}

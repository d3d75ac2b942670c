package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/assignment-service/internal/api/dto"
)

// Pinger is a dependency that can report its connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness, readiness and database probes.
type HealthHandler struct {
	serviceName string
	version     string
	store       Pinger
	redis       Pinger
	probes      singleflight.Group
}

type readiness struct {
	ready  bool
	status fiber.Map
}

// NewHealthHandler returns a new handler instance. A nil redis is reported as disabled.
func NewHealthHandler(serviceName, version string, store Pinger, redis Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, store: store, redis: redis}
}

// Home handles GET /.
func (h *HealthHandler) Home(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{Message: "API is running successfully!"})
}

// TestDB handles GET /test-db.
func (h *HealthHandler) TestDB(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		msg := "Database connection failed: " + err.Error()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   fiber.Map{"code": "DEPENDENCY_UNAVAILABLE", "message": msg},
			"message": msg,
		})
	}
	return c.JSON(dto.MessageResponse{Message: "Database connection successful!"})
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies. Concurrent
// probes share a single round of dependency checks.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	v, _, _ := h.probes.Do("ready", func() (interface{}, error) {
		return h.checkDependencies(), nil
	})
	result := v.(readiness)

	if result.ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": result.status,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": result.status,
		},
	})
}

func (h *HealthHandler) checkDependencies() readiness {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if err := h.store.Ping(ctx); err != nil {
		depStatus["database"] = err.Error()
		ready = false
	} else {
		depStatus["database"] = "ok"
	}

	if h.redis == nil {
		depStatus["redis"] = "disabled"
	} else if err := h.redis.Ping(ctx); err != nil {
		depStatus["redis"] = err.Error()
		ready = false
	} else {
		depStatus["redis"] = "ok"
	}

	return readiness{ready: ready, status: depStatus}
}

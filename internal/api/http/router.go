package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/api/http/handlers"
	"github.com/spec-kit/assignment-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Users       *handlers.UsersHandler
	Assignments *handlers.AssignmentsHandler
	Guard       *auth.AccessGuard
	Policy      auth.Policy
}

// NewApp creates the fiber application with the shared error envelope.
func NewApp(name string, bodyLimit int, logger *zap.Logger) *fiber.App {
	cfg := fiber.Config{
		AppName:      name,
		ErrorHandler: ErrorHandler(logger),
	}
	if bodyLimit > 0 {
		cfg.BodyLimit = bodyLimit
	}
	return fiber.New(cfg)
}

// RegisterRoutes wires HTTP routes. Every route is guarded by the rule the
// policy holds for its method and path template.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	policy := cfg.Policy
	if policy == nil {
		policy = auth.DefaultPolicy()
	}
	r := router{app: app, guard: cfg.Guard, policy: policy}

	r.handle(fiber.MethodGet, "/", cfg.Health.Home)
	r.handle(fiber.MethodGet, "/test-db", cfg.Health.TestDB)
	r.handle(fiber.MethodGet, "/health/live", cfg.Health.Live)
	r.handle(fiber.MethodGet, "/health/ready", cfg.Health.Ready)

	r.handle(fiber.MethodPost, "/register", cfg.Auth.Register)
	r.handle(fiber.MethodPost, "/login", cfg.Auth.Login)
	r.handle(fiber.MethodPost, "/logout", cfg.Auth.Logout)
	r.handle(fiber.MethodGet, "/protected", cfg.Auth.Protected)
	r.handle(fiber.MethodGet, "/dashboard", cfg.Auth.Dashboard)

	r.handle(fiber.MethodGet, "/users", cfg.Users.List)
	r.handle(fiber.MethodPost, "/users", cfg.Users.Create)
	r.handle(fiber.MethodGet, "/users/:id", cfg.Users.Get)
	r.handle(fiber.MethodPut, "/users/:id", cfg.Users.Update)
	r.handle(fiber.MethodDelete, "/users/:id", cfg.Users.Delete)

	r.handle(fiber.MethodPost, "/assignments", cfg.Assignments.Submit)
	r.handle(fiber.MethodPost, "/assignments/:id/feedback", cfg.Assignments.ProvideFeedback)
}

type router struct {
	app    *fiber.App
	guard  *auth.AccessGuard
	policy auth.Policy
}

func (r router) handle(method, path string, handler fiber.Handler) {
	r.app.Add(method, path, r.guard.Require(r.policy.Rule(method, path)), handler)
}

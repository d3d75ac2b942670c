package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// Rule declares who may call an endpoint.
type Rule struct {
	// Public endpoints skip the guard entirely.
	Public bool
	// Role is the exact role required; empty means any authenticated role.
	Role domain.Role
	// Deferred rules authenticate in middleware and leave the role check to the
	// handler, which calls Enforce once the target resource has been resolved.
	Deferred bool
	// Message is returned to callers rejected for their role.
	Message string
}

// PublicRule allows anonymous callers.
func PublicRule() Rule { return Rule{Public: true} }

// AuthenticatedRule allows any valid token.
func AuthenticatedRule() Rule { return Rule{} }

// RoleRule requires role, rejecting others with message.
func RoleRule(role domain.Role, message string) Rule {
	return Rule{Role: role, Message: message}
}

// DeferredRoleRule requires role but lets the handler decide when to check it.
func DeferredRoleRule(role domain.Role, message string) Rule {
	return Rule{Role: role, Deferred: true, Message: message}
}

// Endpoint identifies a route by method and path template.
type Endpoint struct {
	Method string
	Path   string
}

// Policy maps endpoints to their access rules.
type Policy map[Endpoint]Rule

// Rule returns the rule for an endpoint. Unlisted endpoints require authentication.
func (p Policy) Rule(method, path string) Rule {
	if rule, ok := p[Endpoint{Method: method, Path: path}]; ok {
		return rule
	}
	return AuthenticatedRule()
}

// DefaultPolicy is the access table for the HTTP surface.
func DefaultPolicy() Policy {
	return Policy{
		{fiber.MethodGet, "/"}:                          PublicRule(),
		{fiber.MethodGet, "/test-db"}:                   PublicRule(),
		{fiber.MethodGet, "/health/live"}:               PublicRule(),
		{fiber.MethodGet, "/health/ready"}:              PublicRule(),
		{fiber.MethodPost, "/register"}:                 PublicRule(),
		{fiber.MethodPost, "/login"}:                    PublicRule(),
		{fiber.MethodPost, "/logout"}:                   AuthenticatedRule(),
		{fiber.MethodGet, "/protected"}:                 AuthenticatedRule(),
		{fiber.MethodGet, "/dashboard"}:                 AuthenticatedRule(),
		{fiber.MethodGet, "/users"}:                     AuthenticatedRule(),
		{fiber.MethodGet, "/users/:id"}:                 AuthenticatedRule(),
		{fiber.MethodPost, "/users"}:                    RoleRule(domain.RoleFaculty, "Only Faculty can add users"),
		{fiber.MethodPut, "/users/:id"}:                 RoleRule(domain.RoleFaculty, "Only Faculty can update users"),
		{fiber.MethodDelete, "/users/:id"}:              RoleRule(domain.RoleFaculty, "Only Faculty can delete users"),
		{fiber.MethodPost, "/assignments"}:              RoleRule(domain.RoleStudent, "Only students can submit assignments"),
		{fiber.MethodPost, "/assignments/:id/feedback"}: DeferredRoleRule(domain.RoleFaculty, "Only faculty can provide feedback"),
	}
}

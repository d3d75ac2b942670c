package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assignment-service/internal/api/dto"
	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/service"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(dto.MissingFields, nil)
	}
	if err := dto.Validate(req, map[string]string{"role": "Invalid role. Allowed roles: Student, Faculty, Contributor"}); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), service.NewUser{
		Username: req.Username,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.MessageResponse{
		Message: fmt.Sprintf("User %s registered successfully as %s!", user.Username, user.Role),
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(dto.MissingFields, nil)
	}
	if err := dto.Validate(req, nil); err != nil {
		return err
	}

	_, token, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Message:   "Login successful!",
		Token:     token.Raw,
		ExpiresAt: token.ExpiresAt,
	})
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	identity, _ := auth.IdentityFromContext(c)
	if err := h.auth.Logout(c.UserContext(), identity); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Logout successful!"})
}

// Protected handles GET /protected.
func (h *AuthHandler) Protected(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.ToDomainError(auth.ErrInvalidToken)
	}
	return c.JSON(dto.WelcomeResponse{
		Message: fmt.Sprintf("Welcome %s to the protected route!", identity.Username),
		Role:    string(identity.Role),
	})
}

// Dashboard handles GET /dashboard.
func (h *AuthHandler) Dashboard(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.ToDomainError(auth.ErrInvalidToken)
	}
	return c.JSON(dto.WelcomeResponse{
		Message: fmt.Sprintf("Welcome %s!", identity.Username),
		Role:    string(identity.Role),
	})
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assignment-service/internal/api/dto"
	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/service"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

// UsersHandler exposes account management endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUsersResponse(users))
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "User")
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(*user))
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(dto.MissingFields, nil)
	}
	if err := dto.Validate(req, map[string]string{"role": "Invalid role"}); err != nil {
		return err
	}

	user, err := h.users.Create(c.UserContext(), service.NewUser{
		Username: req.Username,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User added successfully",
		"user":    dto.NewUserResponse(*user),
	})
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "User")
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if err := dto.Validate(req, map[string]string{"role": "Invalid role"}); err != nil {
		return err
	}

	update := service.UserUpdate{Username: req.Username}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		update.Role = &role
	}
	if _, err := h.users.Update(c.UserContext(), id, update); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User updated successfully"})
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "User")
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted successfully"})
}

// pathID parses the :id parameter. Non-integer ids do not name any resource.
func pathID(c *fiber.Ctx, resource string) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound(resource, map[string]any{"id": c.Params("id")})
	}
	return int64(id), nil
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assignment-service/internal/api/dto"
	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/service"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

const assignmentFileField = "assignment_file"

// AssignmentsHandler exposes submission and review endpoints.
type AssignmentsHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{assignments: assignmentService}
}

// Submit handles POST /assignments as multipart/form-data.
func (h *AssignmentsHandler) Submit(c *fiber.Ctx) error {
	identity, _ := auth.IdentityFromContext(c)

	header, err := c.FormFile(assignmentFileField)
	if err != nil {
		return apperrors.NewValidationError("No file part", nil)
	}
	if header.Filename == "" {
		return apperrors.NewValidationError("No selected file", nil)
	}

	file, err := header.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	assignment, err := h.assignments.Submit(c.UserContext(), identity, service.Submission{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		FileName:    header.Filename,
		Content:     file,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.SubmitResponse{
		Message:    "Assignment submitted successfully!",
		Assignment: dto.NewAssignmentResponse(*assignment),
	})
}

// ProvideFeedback handles POST /assignments/:id/feedback. The assignment is
// resolved before the deferred role rule so unknown ids are 404 for every caller.
func (h *AssignmentsHandler) ProvideFeedback(c *fiber.Ctx) error {
	id, err := pathID(c, "Assignment")
	if err != nil {
		return err
	}
	if _, err := h.assignments.Get(c.UserContext(), id); err != nil {
		return err
	}
	if err := auth.Enforce(c); err != nil {
		return err
	}

	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Feedback is required", nil)
	}
	if err := dto.Validate(req, nil); err != nil {
		return apperrors.NewValidationError("Feedback is required", nil)
	}

	identity, _ := auth.IdentityFromContext(c)
	feedback, err := h.assignments.ProvideFeedback(c.UserContext(), identity, id, req.Feedback)
	if err != nil {
		return err
	}
	return c.JSON(dto.FeedbackResponse{
		Message:    "Feedback provided successfully!",
		FeedbackID: feedback.ID,
	})
}

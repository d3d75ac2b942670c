package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/repository"
	"github.com/spec-kit/assignment-service/internal/storage"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

const (
	submitDenied   = "Only students can submit assignments"
	feedbackDenied = "Only faculty can provide feedback"
	previewLength  = 80
)

// AssignmentService handles submissions and faculty reviews.
type AssignmentService struct {
	store      repository.Store
	files      storage.FileStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssignmentDependencies groups collaborators for the assignment service.
type AssignmentDependencies struct {
	Store      repository.Store
	Files      storage.FileStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		store:      deps.Store,
		files:      deps.Files,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Submission is an uploaded assignment file plus its metadata.
type Submission struct {
	Title       string
	Description string
	FileName    string
	Content     io.Reader
}

// Submit stores the uploaded file and records an assignment owned by the caller.
func (s *AssignmentService) Submit(ctx context.Context, identity *domain.Identity, input Submission) (*domain.Assignment, error) {
	if identity == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	student, err := s.store.Repositories().Users.GetByUsername(ctx, identity.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewForbidden(submitDenied)
		}
		return nil, apperrors.NewStorageError(err)
	}
	if student.Role != domain.RoleStudent {
		return nil, apperrors.NewForbidden(submitDenied)
	}

	if strings.TrimSpace(input.FileName) == "" || input.Content == nil {
		return nil, apperrors.NewValidationError("No selected file", nil)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = input.FileName
	}

	location, err := s.files.Save(ctx, input.FileName, input.Content)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyFileName) {
			return nil, apperrors.NewValidationError("Invalid file name", map[string]any{"filename": input.FileName})
		}
		return nil, apperrors.NewInternalError(err)
	}

	assignment := &domain.Assignment{
		Title:       title,
		Description: input.Description,
		FileURL:     location,
		StudentID:   student.ID,
	}
	err = s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		return repos.Assignments.Create(ctx, assignment)
	})
	if err != nil {
		if rmErr := s.files.Remove(ctx, location); rmErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("file", location), zap.Error(rmErr))
		}
		return nil, apperrors.NewStorageError(err)
	}

	publish(ctx, s.dispatcher, events.EventAssignmentSubmitted, events.Actor{Username: student.Username, Role: student.Role},
		events.AssignmentSubmittedPayload{
			AssignmentID: assignment.ID,
			StudentID:    student.ID,
			Title:        assignment.Title,
			FileURL:      assignment.FileURL,
		})
	return assignment, nil
}

// Get returns one assignment.
func (s *AssignmentService) Get(ctx context.Context, id int64) (*domain.Assignment, error) {
	assignment, err := s.store.Repositories().Assignments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Assignment", "assignment_id", id)
	}
	return assignment, nil
}

// ProvideFeedback records a faculty review. The assignment's feedback and
// faculty are updated and a feedback row is appended in one transaction.
func (s *AssignmentService) ProvideFeedback(ctx context.Context, identity *domain.Identity, assignmentID int64, content string) (*domain.Feedback, error) {
	if err := auth.Check(identity, domain.RoleFaculty); err != nil {
		if errors.Is(err, auth.ErrForbidden) {
			return nil, apperrors.NewForbidden(feedbackDenied)
		}
		return nil, auth.ToDomainError(err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("Feedback is required", nil)
	}

	var (
		assignment *domain.Assignment
		feedback   *domain.Feedback
		faculty    *domain.User
	)
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		assignment, err = repos.Assignments.GetByID(ctx, assignmentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("Assignment", map[string]any{"assignment_id": assignmentID})
			}
			return err
		}
		faculty, err = repos.Users.GetByUsername(ctx, identity.Username)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewForbidden(feedbackDenied)
			}
			return err
		}
		if faculty.Role != domain.RoleFaculty {
			return apperrors.NewForbidden(feedbackDenied)
		}

		assignment.Feedback = &content
		assignment.FacultyID = &faculty.ID
		if err := repos.Assignments.UpdateReview(ctx, assignment); err != nil {
			return err
		}
		feedback = &domain.Feedback{Content: content, FacultyID: faculty.ID, AssignmentID: assignment.ID}
		return repos.Feedback.Create(ctx, feedback)
	})
	if err != nil {
		var de *apperrors.DomainError
		if errors.As(err, &de) {
			return nil, de
		}
		return nil, apperrors.NewStorageError(err)
	}

	publish(ctx, s.dispatcher, events.EventFeedbackProvided, events.Actor{Username: faculty.Username, Role: faculty.Role},
		events.FeedbackProvidedPayload{
			AssignmentID: assignment.ID,
			FeedbackID:   feedback.ID,
			FacultyID:    faculty.ID,
			StudentID:    assignment.StudentID,
			Preview:      preview(content),
		})
	return feedback, nil
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}

package dto

import "github.com/spec-kit/assignment-service/internal/domain"

// FeedbackRequest payload for POST /assignments/:id/feedback.
type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

// AssignmentResponse describes a stored submission.
type AssignmentResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	StudentID   int64   `json:"student_id"`
	Feedback    *string `json:"feedback"`
	FacultyID   *int64  `json:"faculty_id"`
}

// SubmitResponse is returned after a successful submission.
type SubmitResponse struct {
	Message    string             `json:"message"`
	Assignment AssignmentResponse `json:"assignment"`
}

// FeedbackResponse is returned after feedback is recorded.
type FeedbackResponse struct {
	Message    string `json:"message"`
	FeedbackID int64  `json:"feedback_id"`
}

// NewAssignmentResponse maps a domain assignment. The stored file path stays internal.
func NewAssignmentResponse(a domain.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		StudentID:   a.StudentID,
		Feedback:    a.Feedback,
		FacultyID:   a.FacultyID,
	}
}

package events

import (
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered      EventType = "user_registered"
	EventUserLoggedOut       EventType = "user_logged_out"
	EventAssignmentSubmitted EventType = "assignment_submitted"
	EventFeedbackProvided    EventType = "feedback_provided"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID   int64       `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// UserLoggedOutPayload payload.
type UserLoggedOutPayload struct {
	TokenID string `json:"token_id"`
}

// AssignmentSubmittedPayload payload.
type AssignmentSubmittedPayload struct {
	AssignmentID int64  `json:"assignment_id"`
	StudentID    int64  `json:"student_id"`
	Title        string `json:"title"`
	FileURL      string `json:"file_url"`
}

// FeedbackProvidedPayload payload.
type FeedbackProvidedPayload struct {
	AssignmentID int64  `json:"assignment_id"`
	FeedbackID   int64  `json:"feedback_id"`
	FacultyID    int64  `json:"faculty_id"`
	StudentID    int64  `json:"student_id"`
	Preview      string `json:"preview"`
}

package domain

import "time"

// Assignment is a file submitted by a student, optionally reviewed by faculty.
type Assignment struct {
	ID          int64
	Title       string
	Description string
	FileURL     string
	StudentID   int64
	Feedback    *string
	FacultyID   *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Feedback records a single review left by faculty on an assignment.
type Feedback struct {
	ID           int64
	Content      string
	FacultyID    int64
	AssignmentID int64
	CreatedAt    time.Time
}

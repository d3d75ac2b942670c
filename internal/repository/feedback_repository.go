package repository

import (
	"context"

	"github.com/spec-kit/assignment-service/internal/domain"
)

type feedbackRepository struct {
	db DBTX
}

// NewFeedbackRepository constructs repository.
func NewFeedbackRepository(db DBTX) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO feedbacks (content, faculty_id, assignment_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		feedback.Content,
		feedback.FacultyID,
		feedback.AssignmentID,
	).Scan(&feedback.ID, &feedback.CreatedAt)
	return translate(err)
}

package repository

import (
	"context"

	"github.com/spec-kit/assignment-service/internal/domain"
)

type assignmentRepository struct {
	db DBTX
}

// NewAssignmentRepository constructs repository.
func NewAssignmentRepository(db DBTX) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) error {
	const query = `
        INSERT INTO assignments (title, description, file_url, student_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		assignment.Title,
		assignment.Description,
		assignment.FileURL,
		assignment.StudentID,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
	return translate(err)
}

func (r *assignmentRepository) GetByID(ctx context.Context, id int64) (*domain.Assignment, error) {
	const query = `
        SELECT id, title, description, file_url, student_id, feedback, faculty_id, created_at, updated_at
        FROM assignments WHERE id=$1`
	var assignment domain.Assignment
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&assignment.ID,
		&assignment.Title,
		&assignment.Description,
		&assignment.FileURL,
		&assignment.StudentID,
		&assignment.Feedback,
		&assignment.FacultyID,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) UpdateReview(ctx context.Context, assignment *domain.Assignment) error {
	const query = `
        UPDATE assignments SET feedback=$1, faculty_id=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		assignment.Feedback,
		assignment.FacultyID,
		assignment.ID,
	).Scan(&assignment.UpdatedAt)
	return translate(err)
}

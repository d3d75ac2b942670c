package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/assignment-service/internal/persistence"
)

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func bind(db DBTX) Repositories {
	return Repositories{
		Users:       NewUserRepository(db),
		Assignments: NewAssignmentRepository(db),
		Feedback:    NewFeedbackRepository(db),
	}
}

func (s *postgresStore) Repositories() Repositories {
	return bind(s.pool)
}

func (s *postgresStore) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	return persistence.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(bind(tx))
	})
}

func (s *postgresStore) Ping(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("postgres pool not configured")
	}
	var one int
	return s.pool.QueryRow(ctx, "SELECT 1").Scan(&one)
}

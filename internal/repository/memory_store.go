package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// ErrReferenced mirrors a foreign key violation in the in-memory store.
var ErrReferenced = errors.New("record is still referenced")

// memState holds every table of the in-memory store.
type memState struct {
	users       map[int64]domain.User
	assignments map[int64]domain.Assignment
	feedback    map[int64]domain.Feedback
	nextID      map[string]int64
}

func newMemState() *memState {
	return &memState{
		users:       make(map[int64]domain.User),
		assignments: make(map[int64]domain.Assignment),
		feedback:    make(map[int64]domain.Feedback),
		nextID:      make(map[string]int64),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.assignments {
		c.assignments[k] = v
	}
	for k, v := range s.feedback {
		c.feedback[k] = v
	}
	for k, v := range s.nextID {
		c.nextID[k] = v
	}
	return c
}

func (s *memState) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

// access runs f against a state, under whatever locking the caller provides.
type access func(f func(*memState) error) error

// memoryStore is a thread-safe in-memory Store for local development and tests.
// Transactions work on a copy of the state that replaces it on commit.
type memoryStore struct {
	mu    sync.Mutex
	state *memState
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{state: newMemState(), now: time.Now}
}

func (m *memoryStore) locked(f func(*memState) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return f(m.state)
}

func (m *memoryStore) bind(run access) Repositories {
	return Repositories{
		Users:       &memUsers{run: run, now: m.now},
		Assignments: &memAssignments{run: run, now: m.now},
		Feedback:    &memFeedback{run: run, now: m.now},
	}
}

func (m *memoryStore) Repositories() Repositories {
	return m.bind(m.locked)
}

func (m *memoryStore) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	working := m.state.clone()
	run := func(f func(*memState) error) error { return f(working) }
	if err := fn(m.bind(run)); err != nil {
		return err
	}
	m.state = working
	return nil
}

func (m *memoryStore) Ping(context.Context) error { return nil }

// ---------- Users ----------

type memUsers struct {
	run access
	now func() time.Time
}

func (r *memUsers) Create(_ context.Context, user *domain.User) error {
	return r.run(func(s *memState) error {
		for _, existing := range s.users {
			if existing.Username == user.Username {
				return ErrDuplicate
			}
		}
		ts := r.now().UTC()
		user.ID = s.id("users")
		user.CreatedAt, user.UpdatedAt = ts, ts
		s.users[user.ID] = *user
		return nil
	})
}

func (r *memUsers) Update(_ context.Context, user *domain.User) error {
	return r.run(func(s *memState) error {
		current, ok := s.users[user.ID]
		if !ok {
			return ErrNotFound
		}
		for id, existing := range s.users {
			if id != user.ID && existing.Username == user.Username {
				return ErrDuplicate
			}
		}
		user.CreatedAt = current.CreatedAt
		user.UpdatedAt = r.now().UTC()
		s.users[user.ID] = *user
		return nil
	})
}

func (r *memUsers) Delete(_ context.Context, id int64) error {
	return r.run(func(s *memState) error {
		if _, ok := s.users[id]; !ok {
			return ErrNotFound
		}
		for _, assignment := range s.assignments {
			if assignment.StudentID == id || (assignment.FacultyID != nil && *assignment.FacultyID == id) {
				return ErrReferenced
			}
		}
		delete(s.users, id)
		return nil
	})
}

func (r *memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	var found domain.User
	err := r.run(func(s *memState) error {
		user, ok := s.users[id]
		if !ok {
			return ErrNotFound
		}
		found = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *memUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	var found *domain.User
	err := r.run(func(s *memState) error {
		for _, user := range s.users {
			if user.Username == username {
				u := user
				found = &u
				return nil
			}
		}
		return ErrNotFound
	})
	return found, err
}

func (r *memUsers) List(context.Context) ([]domain.User, error) {
	var result []domain.User
	err := r.run(func(s *memState) error {
		result = make([]domain.User, 0, len(s.users))
		for _, user := range s.users {
			result = append(result, user)
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, err
}

// ---------- Assignments ----------

type memAssignments struct {
	run access
	now func() time.Time
}

func (r *memAssignments) Create(_ context.Context, assignment *domain.Assignment) error {
	return r.run(func(s *memState) error {
		if _, ok := s.users[assignment.StudentID]; !ok {
			return ErrNotFound
		}
		ts := r.now().UTC()
		assignment.ID = s.id("assignments")
		assignment.CreatedAt, assignment.UpdatedAt = ts, ts
		s.assignments[assignment.ID] = *assignment
		return nil
	})
}

func (r *memAssignments) GetByID(_ context.Context, id int64) (*domain.Assignment, error) {
	var found domain.Assignment
	err := r.run(func(s *memState) error {
		assignment, ok := s.assignments[id]
		if !ok {
			return ErrNotFound
		}
		found = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *memAssignments) UpdateReview(_ context.Context, assignment *domain.Assignment) error {
	return r.run(func(s *memState) error {
		current, ok := s.assignments[assignment.ID]
		if !ok {
			return ErrNotFound
		}
		current.Feedback = assignment.Feedback
		current.FacultyID = assignment.FacultyID
		current.UpdatedAt = r.now().UTC()
		assignment.UpdatedAt = current.UpdatedAt
		s.assignments[current.ID] = current
		return nil
	})
}

// ---------- Feedback ----------

type memFeedback struct {
	run access
	now func() time.Time
}

func (r *memFeedback) Create(_ context.Context, feedback *domain.Feedback) error {
	return r.run(func(s *memState) error {
		if _, ok := s.assignments[feedback.AssignmentID]; !ok {
			return ErrNotFound
		}
		if _, ok := s.users[feedback.FacultyID]; !ok {
			return ErrNotFound
		}
		feedback.ID = s.id("feedbacks")
		feedback.CreatedAt = r.now().UTC()
		s.feedback[feedback.ID] = *feedback
		return nil
	})
}

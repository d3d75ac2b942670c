package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/config"
	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/repository"
	"github.com/spec-kit/assignment-service/internal/storage"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store       repository.Store
	guard       *auth.AccessGuard
	tokens      *auth.TokenManager
	auth        *AuthService
	users       *UserService
	assignments *AssignmentService
	recorded    *recorder
	uploadDir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Config{Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost}}
	store := repository.NewMemoryStore()
	tokens := auth.NewTokenManager("service-secret", time.Hour)
	guard := auth.NewAccessGuard(tokens)
	dispatcher := events.NewInMemoryDispatcher()
	rec := &recorder{}
	for _, et := range []events.EventType{
		events.EventUserRegistered, events.EventUserLoggedOut,
		events.EventAssignmentSubmitted, events.EventFeedbackProvided,
	} {
		dispatcher.Subscribe(et, rec.handle)
	}

	dir := t.TempDir()
	files, err := storage.NewLocalStore(dir)
	require.NoError(t, err)

	return &fixture{
		store:  store,
		guard:  guard,
		tokens: tokens,
		auth: NewAuthService(cfg, AuthDependencies{
			Store: store, Guard: guard, Tokens: tokens, Dispatcher: dispatcher,
		}),
		users:       NewUserService(cfg, store),
		assignments: NewAssignmentService(AssignmentDependencies{Store: store, Files: files, Dispatcher: dispatcher}),
		recorded:    rec,
		uploadDir:   dir,
	}
}

func (f *fixture) register(t *testing.T, username string, role domain.Role) *domain.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), NewUser{Username: username, Password: "pw-" + username, Role: role})
	require.NoError(t, err)
	return user
}

func (f *fixture) identity(t *testing.T, username string) *domain.Identity {
	t.Helper()
	_, token, err := f.auth.Login(context.Background(), username, "pw-"+username)
	require.NoError(t, err)
	identity, err := f.guard.Authorize(token.Raw, "")
	require.NoError(t, err)
	return identity
}

func status(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).HTTPStatus
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, NewUser{Username: "alice", Role: domain.RoleStudent})
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	_, err = f.auth.Register(ctx, NewUser{Username: "alice", Password: "pw", Role: "Admin"})
	assert.Equal(t, http.StatusBadRequest, status(t, err))
	assert.Equal(t, "Invalid role. Allowed roles: Student, Faculty, Contributor", apperrors.ToDomainError(err).Message)

	user := f.register(t, "alice", domain.RoleStudent)
	assert.NotEqual(t, "pw-alice", user.PasswordHash)

	_, err = f.auth.Register(ctx, NewUser{Username: "alice", Password: "other", Role: domain.RoleFaculty})
	de := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Equal(t, "CONFLICT", de.Code)
}

func TestLoginAndLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", domain.RoleStudent)

	_, _, err := f.auth.Login(ctx, "alice", "wrong")
	assert.Equal(t, http.StatusUnauthorized, status(t, err))
	_, _, err = f.auth.Login(ctx, "nobody", "pw")
	assert.Equal(t, http.StatusUnauthorized, status(t, err))
	assert.Equal(t, "Invalid username or password", apperrors.ToDomainError(err).Message)

	user, token, err := f.auth.Login(ctx, "alice", "pw-alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	identity, err := f.guard.Authorize(token.Raw, domain.RoleStudent)
	require.NoError(t, err)
	require.NoError(t, f.auth.Logout(ctx, identity))

	_, err = f.guard.Authorize(token.Raw, "")
	assert.ErrorIs(t, err, auth.ErrRevokedToken)

	assert.Equal(t, []events.EventType{events.EventUserRegistered, events.EventUserLoggedOut}, f.recorded.types())
}

func TestUserServiceLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.users.Create(ctx, NewUser{Username: "bob", Password: "pw", Role: domain.RoleContributor})
	require.NoError(t, err)

	list, err := f.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.users.Get(ctx, 999)
	assert.Equal(t, http.StatusNotFound, status(t, err))
	assert.Equal(t, "User not found", apperrors.ToDomainError(err).Message)

	role := domain.RoleFaculty
	name := "robert"
	updated, err := f.users.Update(ctx, created.ID, UserUpdate{Username: &name, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "robert", updated.Username)
	assert.Equal(t, domain.RoleFaculty, updated.Role)

	bad := domain.Role("Janitor")
	_, err = f.users.Update(ctx, created.ID, UserUpdate{Role: &bad})
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	_, err = f.users.Update(ctx, 999, UserUpdate{Username: &name})
	assert.Equal(t, http.StatusNotFound, status(t, err))

	require.NoError(t, f.users.Delete(ctx, created.ID))
	assert.Equal(t, http.StatusNotFound, status(t, f.users.Delete(ctx, created.ID)))
}

func TestSubmitAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", domain.RoleStudent)
	f.register(t, "prof", domain.RoleFaculty)
	student := f.identity(t, "alice")

	assignment, err := f.assignments.Submit(ctx, student, Submission{
		Description: "first draft",
		FileName:    "hw1.pdf",
		Content:     strings.NewReader("%PDF"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hw1.pdf", assignment.Title)
	assert.Equal(t, "first draft", assignment.Description)
	assert.Nil(t, assignment.Feedback)
	assert.True(t, strings.HasPrefix(assignment.FileURL, f.uploadDir))

	_, err = f.assignments.Submit(ctx, f.identity(t, "prof"), Submission{FileName: "x.pdf", Content: strings.NewReader("x")})
	assert.Equal(t, http.StatusForbidden, status(t, err))

	_, err = f.assignments.Submit(ctx, student, Submission{FileName: "", Content: strings.NewReader("x")})
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	assert.Contains(t, f.recorded.types(), events.EventAssignmentSubmitted)
}

type failingStore struct {
	repository.Store
}

func (s failingStore) WithinTx(context.Context, func(repository.Repositories) error) error {
	return errors.New("disk full")
}

type countingFiles struct {
	storage.FileStore
	removed []string
}

func (c *countingFiles) Remove(ctx context.Context, location string) error {
	c.removed = append(c.removed, location)
	return c.FileStore.Remove(ctx, location)
}

func TestSubmitRemovesFileWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", domain.RoleStudent)
	student := f.identity(t, "alice")

	local, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	files := &countingFiles{FileStore: local}
	svc := NewAssignmentService(AssignmentDependencies{Store: failingStore{Store: f.store}, Files: files})

	_, err = svc.Submit(context.Background(), student, Submission{FileName: "hw.txt", Content: io.LimitReader(strings.NewReader("abc"), 3)})
	assert.Equal(t, http.StatusInternalServerError, status(t, err))
	assert.Len(t, files.removed, 1)
}

func TestProvideFeedback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", domain.RoleStudent)
	prof := f.register(t, "prof", domain.RoleFaculty)
	student := f.identity(t, "alice")
	faculty := f.identity(t, "prof")

	assignment, err := f.assignments.Submit(ctx, student, Submission{Title: "HW1", FileName: "hw1.pdf", Content: strings.NewReader("x")})
	require.NoError(t, err)

	_, err = f.assignments.ProvideFeedback(ctx, student, assignment.ID, "self review")
	assert.Equal(t, http.StatusForbidden, status(t, err))

	_, err = f.assignments.ProvideFeedback(ctx, faculty, 999, "nice")
	assert.Equal(t, http.StatusNotFound, status(t, err))
	assert.Equal(t, "Assignment not found", apperrors.ToDomainError(err).Message)

	_, err = f.assignments.ProvideFeedback(ctx, faculty, assignment.ID, "  ")
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	feedback, err := f.assignments.ProvideFeedback(ctx, faculty, assignment.ID, "Great work")
	require.NoError(t, err)
	assert.Equal(t, prof.ID, feedback.FacultyID)

	stored, err := f.assignments.Get(ctx, assignment.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Feedback)
	assert.Equal(t, "Great work", *stored.Feedback)
	assert.Equal(t, prof.ID, *stored.FacultyID)
	assert.Equal(t, alice.ID, stored.StudentID)

	assert.Contains(t, f.recorded.types(), events.EventFeedbackProvided)
}

func TestPreviewTruncates(t *testing.T) {
	assert.Equal(t, "short", preview("short"))
	long := strings.Repeat("a", previewLength+10)
	assert.Equal(t, strings.Repeat("a", previewLength)+"...", preview(long))
}

package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assignment-service/internal/domain"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

func newTestGuard(t *testing.T) (*AccessGuard, *TokenManager) {
	t.Helper()
	tm := NewTokenManager("guard-secret", time.Hour)
	return NewAccessGuard(tm), tm
}

func issue(t *testing.T, tm *TokenManager, username string, role domain.Role) *IssuedToken {
	t.Helper()
	issued, err := tm.Issue(username, role)
	require.NoError(t, err)
	return issued
}

func signRaw(t *testing.T, role string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   "eve",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("guard-secret"))
	require.NoError(t, err)
	return raw
}

func TestAuthorizeReturnsIdentity(t *testing.T) {
	guard, tm := newTestGuard(t)
	token := issue(t, tm, "alice", domain.RoleStudent)

	identity, err := guard.Authorize(token.Raw, "")
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, domain.RoleStudent, identity.Role)
	assert.Equal(t, token.ID, identity.TokenID)

	identity, err = guard.Authorize(token.Raw, domain.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
}

func TestAuthorizeFailureOrder(t *testing.T) {
	guard, tm := newTestGuard(t)

	faculty := issue(t, tm, "prof", domain.RoleFaculty)
	student := issue(t, tm, "alice", domain.RoleStudent)

	revoked := issue(t, tm, "bob", domain.RoleStudent)
	guard.Revoke(&domain.Identity{TokenID: revoked.ID, ExpiresAt: revoked.ExpiresAt})

	unknownRole := signRaw(t, "Admin")

	tests := []struct {
		name     string
		raw      string
		required domain.Role
		want     error
	}{
		{"malformed", "abc.def.ghi", "", ErrInvalidToken},
		{"revoked before role check", revoked.Raw, domain.RoleFaculty, ErrRevokedToken},
		{"unknown role claim", unknownRole, "", ErrInvalidRole},
		{"role mismatch", student.Raw, domain.RoleFaculty, ErrForbidden},
		{"faculty ok", faculty.Raw, domain.RoleFaculty, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := guard.Authorize(tt.raw, tt.required)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRevokedTokenRejectedForEveryRule(t *testing.T) {
	guard, tm := newTestGuard(t)
	token := issue(t, tm, "prof", domain.RoleFaculty)

	identity, err := guard.Authorize(token.Raw, "")
	require.NoError(t, err)
	guard.Revoke(identity)
	guard.Revoke(identity)
	assert.True(t, guard.IsRevoked(token.ID))

	for _, role := range append([]domain.Role{""}, domain.Roles...) {
		_, err := guard.Authorize(token.Raw, role)
		assert.ErrorIs(t, err, ErrRevokedToken, string(role))
	}
}

func TestSweepKeepsUnexpiredRevocations(t *testing.T) {
	guard, tm := newTestGuard(t)
	token := issue(t, tm, "prof", domain.RoleFaculty)
	identity, err := guard.Authorize(token.Raw, "")
	require.NoError(t, err)
	guard.Revoke(identity)

	assert.Zero(t, guard.SweepRevocations(time.Now()))
	_, err = guard.Authorize(token.Raw, "")
	assert.ErrorIs(t, err, ErrRevokedToken)

	assert.Equal(t, 1, guard.SweepRevocations(token.ExpiresAt.Add(time.Second)))
}

func guardApp(guard *AccessGuard, rule Rule) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{"code": de.Code, "message": de.Message}})
		},
	})
	app.Get("/target", guard.Require(rule), func(c *fiber.Ctx) error {
		if err := Enforce(c); err != nil {
			return err
		}
		identity, _ := IdentityFromContext(c)
		return c.JSON(fiber.Map{"username": identity.Username})
	})
	return app
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func call(t *testing.T, app *fiber.App, header string) (int, errorBody) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/target", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed errorBody
	_ = json.Unmarshal(body, &parsed)
	return resp.StatusCode, parsed
}

func TestRequireMiddleware(t *testing.T) {
	guard, tm := newTestGuard(t)
	student := issue(t, tm, "alice", domain.RoleStudent)
	faculty := issue(t, tm, "prof", domain.RoleFaculty)

	facultyOnly := guardApp(guard, RoleRule(domain.RoleFaculty, "Only Faculty can add users"))

	status, body := call(t, facultyOnly, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)

	status, _ = call(t, facultyOnly, "Token "+faculty.Raw)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = call(t, facultyOnly, "Bearer "+student.Raw)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Only Faculty can add users", body.Error.Message)

	status, _ = call(t, facultyOnly, "Bearer "+faculty.Raw)
	assert.Equal(t, http.StatusOK, status)

	guard.Revoke(&domain.Identity{TokenID: faculty.ID, ExpiresAt: faculty.ExpiresAt})
	status, body = call(t, facultyOnly, "Bearer "+faculty.Raw)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_REVOKED", body.Error.Code)
}

func TestRequireInvalidRoleIsForbidden(t *testing.T) {
	guard, _ := newTestGuard(t)
	app := guardApp(guard, AuthenticatedRule())

	status, _ := call(t, app, "Bearer "+signRaw(t, "Janitor"))
	assert.Equal(t, http.StatusForbidden, status)
}

func TestDeferredRuleChecksInHandler(t *testing.T) {
	guard, tm := newTestGuard(t)
	student := issue(t, tm, "alice", domain.RoleStudent)
	faculty := issue(t, tm, "prof", domain.RoleFaculty)

	app := guardApp(guard, DeferredRoleRule(domain.RoleFaculty, "Only faculty can provide feedback"))

	status, body := call(t, app, "Bearer "+student.Raw)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Only faculty can provide feedback", body.Error.Message)

	status, _ = call(t, app, "Bearer "+faculty.Raw)
	assert.Equal(t, http.StatusOK, status)
}

func TestPublicRuleSkipsGuard(t *testing.T) {
	guard, _ := newTestGuard(t)
	app := fiber.New()
	app.Get("/target", guard.Require(PublicRule()), func(c *fiber.Ctx) error {
		_, ok := IdentityFromContext(c)
		return c.JSON(fiber.Map{"authenticated": ok})
	})

	status, _ := call(t, app, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestPolicyLookup(t *testing.T) {
	policy := DefaultPolicy()

	assert.True(t, policy.Rule(fiber.MethodPost, "/login").Public)
	assert.Equal(t, domain.RoleFaculty, policy.Rule(fiber.MethodDelete, "/users/:id").Role)
	assert.Equal(t, domain.RoleStudent, policy.Rule(fiber.MethodPost, "/assignments").Role)
	assert.True(t, policy.Rule(fiber.MethodPost, "/assignments/:id/feedback").Deferred)

	unlisted := policy.Rule(fiber.MethodPatch, "/unlisted")
	assert.False(t, unlisted.Public)
	assert.Empty(t, unlisted.Role)
}

package auth

import (
	"errors"

	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

var (
	// ErrInvalidToken covers malformed, badly signed and expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrRevokedToken is returned for tokens present in the revocation registry.
	ErrRevokedToken = errors.New("token has been revoked")
	// ErrInvalidRole is returned when the role claim is not a known role.
	ErrInvalidRole = errors.New("role not allowed")
	// ErrForbidden is returned when the caller's role does not match the required one.
	ErrForbidden = errors.New("insufficient role")
	// ErrSigningKey is returned when no signing key is configured.
	ErrSigningKey = errors.New("signing key unavailable")
	// ErrMissingToken is returned when the request carries no bearer token.
	ErrMissingToken = errors.New("missing authorization header")
)

// RoleError is a forbidden outcome carrying the endpoint's rejection message.
type RoleError struct {
	Message string
}

func (e *RoleError) Error() string { return e.Message }

// Is makes RoleError match ErrForbidden.
func (e *RoleError) Is(target error) bool { return target == ErrForbidden }

// ToDomainError maps guard failures onto the HTTP error taxonomy.
func ToDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMissingToken):
		return apperrors.NewUnauthorized("Missing Authorization Header")
	case errors.Is(err, ErrInvalidToken):
		return apperrors.NewUnauthorized("Invalid or expired token")
	case errors.Is(err, ErrRevokedToken):
		return apperrors.NewRevoked("Token has been revoked. Please log in again.")
	case errors.Is(err, ErrInvalidRole):
		return apperrors.NewForbidden("Access denied! Your role is not allowed.")
	case errors.Is(err, ErrForbidden):
		var roleErr *RoleError
		if errors.As(err, &roleErr) {
			return apperrors.NewForbidden(roleErr.Message)
		}
		return apperrors.NewForbidden("Access denied for your role")
	default:
		return apperrors.MapError(err)
	}
}

package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assignment-service/internal/domain"
)

const (
	identityKey     = "auth_identity"
	deferredRuleKey = "auth_deferred_rule"
)

// AccessGuard validates bearer tokens, tracks revocations and enforces role rules.
// It is the only owner of the revocation registry.
type AccessGuard struct {
	tokens   *TokenManager
	registry *RevocationRegistry
}

// NewAccessGuard constructs a guard around a token manager and an empty registry.
func NewAccessGuard(tokens *TokenManager) *AccessGuard {
	return &AccessGuard{tokens: tokens, registry: NewRevocationRegistry()}
}

// Authorize runs the guard pipeline on raw and returns the caller identity.
// An empty required role accepts any valid role.
func (g *AccessGuard) Authorize(raw string, required domain.Role) (*domain.Identity, error) {
	claims, err := g.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	if g.registry.IsRevoked(claims.ID) {
		return nil, ErrRevokedToken
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, ErrInvalidRole
	}

	identity := &domain.Identity{
		Username: claims.Subject,
		Role:     role,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}

	if err := Check(identity, required); err != nil {
		return nil, err
	}
	return identity, nil
}

// Revoke invalidates the token behind identity for the rest of the process lifetime
// or until the token expires, whichever comes first.
func (g *AccessGuard) Revoke(identity *domain.Identity) {
	if identity == nil || identity.TokenID == "" {
		return
	}
	g.registry.Revoke(identity.TokenID, identity.ExpiresAt)
}

// IsRevoked reports whether tokenID has been revoked.
func (g *AccessGuard) IsRevoked(tokenID string) bool {
	return g.registry.IsRevoked(tokenID)
}

// SweepRevocations drops revocations for tokens that expired before now.
func (g *AccessGuard) SweepRevocations(now time.Time) int {
	return g.registry.Sweep(now)
}

// Require returns middleware enforcing rule for a single route.
func (g *AccessGuard) Require(rule Rule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rule.Public {
			return c.Next()
		}

		raw, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return ToDomainError(err)
		}

		required := rule.Role
		if rule.Deferred {
			required = ""
		}
		identity, err := g.Authorize(raw, required)
		if err != nil {
			return ToDomainError(withRuleMessage(err, rule))
		}

		c.Locals(identityKey, identity)
		if rule.Deferred {
			c.Locals(deferredRuleKey, rule)
		}
		return c.Next()
	}
}

// Check enforces the required role on an already authenticated identity.
func Check(identity *domain.Identity, required domain.Role) error {
	if identity == nil {
		return ErrInvalidToken
	}
	if required != "" && !identity.Is(required) {
		return ErrForbidden
	}
	return nil
}

// Enforce applies a deferred rule stored by Require. Routes without a deferred
// rule pass unconditionally.
func Enforce(c *fiber.Ctx) error {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return ToDomainError(ErrInvalidToken)
	}
	rule, ok := c.Locals(deferredRuleKey).(Rule)
	if !ok {
		return nil
	}
	if err := Check(identity, rule.Role); err != nil {
		return ToDomainError(withRuleMessage(err, rule))
	}
	return nil
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(*domain.Identity)
	return identity, ok && identity != nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}

func withRuleMessage(err error, rule Rule) error {
	if errors.Is(err, ErrForbidden) && rule.Message != "" {
		return &RoleError{Message: rule.Message}
	}
	return err
}

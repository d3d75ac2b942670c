package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/assignment-service/internal/domain"
)

const defaultTokenTTL = time.Hour

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims describes JWT payload. The role is kept as a raw string so that
// unknown values survive parsing and are rejected by the guard.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token together with the metadata the caller needs.
type IssuedToken struct {
	Raw       string
	ID        string
	ExpiresAt time.Time
}

// Issue builds and signs a token for username carrying the role claim.
func (tm *TokenManager) Issue(username string, role domain.Role) (*IssuedToken, error) {
	if len(tm.secret) == 0 {
		return nil, ErrSigningKey
	}

	now := tm.now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString(tm.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningKey, err)
	}
	return &IssuedToken{Raw: raw, ID: claims.ID, ExpiresAt: expiresAt}, nil
}

// Parse validates signature and expiry and returns the claims.
func (tm *TokenManager) Parse(raw string) (*Claims, error) {
	if len(tm.secret) == 0 {
		return nil, ErrSigningKey
	}
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, errors.New("missing jti or sub"))
	}
	return claims, nil
}

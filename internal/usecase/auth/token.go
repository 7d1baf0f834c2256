package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	// RoleTransport is held by the chat bridge that forwards user events.
	RoleTransport Role = "transport"
	RoleAdmin     Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleTransport || r == RoleAdmin
}

// Claims identify a service caller. Identity is set for admin tokens and
// names the admin acting.
type Claims struct {
	Role     Role  `json:"role"`
	Identity int64 `json:"identity,omitempty"`
	jwt.RegisteredClaims
}

type TokenUseCase struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenUseCase(secret, issuer string, ttl time.Duration) *TokenUseCase {
	return &TokenUseCase{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source.
func (uc *TokenUseCase) WithClock(now func() time.Time) *TokenUseCase {
	uc.now = now
	return uc
}

// Issue signs a token for subject with the given role.
func (uc *TokenUseCase) Issue(subject string, role Role, identity int64) (string, time.Time, error) {
	if !role.IsValid() {
		return "", time.Time{}, domain.NewValidationError("role", fmt.Sprintf("unknown role %q", role))
	}
	if subject == "" {
		return "", time.Time{}, domain.NewValidationError("subject", "is required")
	}

	now := uc.now()
	expiresAt := now.Add(uc.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:     role,
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    uc.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	tokenString, err := token.SignedString(uc.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify checks signature, issuer and expiry and returns the claims.
func (uc *TokenUseCase) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return uc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(uc.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(uc.now),
	)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidToken, err)
	}
	if !token.Valid || !claims.Role.IsValid() {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

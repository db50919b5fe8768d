package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
	"github.com/gruzdev-dev/codex-recipes/core/ports"
)

// Gate issues and verifies HS256 access tokens.
type Gate struct {
	secret  []byte
	ttl     time.Duration
	revoker ports.TokenRevoker
	now     func() time.Time
}

func NewGate(secret string, ttl time.Duration, revoker ports.TokenRevoker) *Gate {
	return &Gate{
		secret:  []byte(secret),
		ttl:     ttl,
		revoker: revoker,
		now:     time.Now,
	}
}

func (g *Gate) Issue(userID string) (string, *domain.Identity, error) {
	if userID == "" {
		return "", nil, fmt.Errorf("%w: user ID is required", domain.ErrValidation)
	}

	now := g.now()
	id := &domain.Identity{
		UserID:    userID,
		TokenID:   uuid.New().String(),
		ExpiresAt: now.Add(g.ttl),
	}
	claims := jwt.RegisteredClaims{
		Subject:   id.UserID,
		ID:        id.TokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(id.ExpiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", nil, fmt.Errorf("%w: failed to sign token: %v", domain.ErrInternal, err)
	}
	return token, id, nil
}

// Authenticate turns a token into an Identity. Every token failure is reported as
// domain.ErrUnauthorized.
func (g *Gate) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is missing", domain.ErrUnauthorized)
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}

	if g.revoker != nil && claims.ID != "" {
		revoked, err := g.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to check revocation: %v", domain.ErrInternal, err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: token revoked", domain.ErrUnauthorized)
		}
	}

	return &domain.Identity{
		UserID:    claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke rejects the identity's token until it expires.
func (g *Gate) Revoke(ctx context.Context, id *domain.Identity) error {
	if id == nil {
		return domain.ErrUnauthorized
	}
	if g.revoker == nil || id.TokenID == "" {
		return nil
	}
	ttl := id.ExpiresAt.Sub(g.now())
	if ttl <= 0 {
		return nil
	}
	if err := g.revoker.Revoke(ctx, id.TokenID, ttl); err != nil {
		return fmt.Errorf("%w: failed to revoke token: %v", domain.ErrInternal, err)
	}
	return nil
}

package ports

import (
	"context"
	"time"
)

//go:generate mockgen -source=auth.go -destination=auth_mocks.go -package=ports TokenRevoker

// TokenRevoker keeps revoked token ids until the tokens expire on their own.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

package memory

import (
	"context"
	"sync"
	"time"
)

// Revoker is the single-process revocation list used when redis is not configured.
type Revoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewRevoker() *Revoker {
	return &Revoker{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (r *Revoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = r.now().Add(ttl)
	return nil
}

func (r *Revoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiry, ok := r.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !r.now().Before(expiry) {
		delete(r.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

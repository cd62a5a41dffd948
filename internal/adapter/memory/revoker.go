package memory

import (
	"context"
	"sync"
	"time"

	portsession "github.com/alanyang/promptshelf/internal/port/session"
)

var _ portsession.Revoker = (*Revoker)(nil)

// Revoker keeps signed-out session ids in memory until their tokens expire.
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

func (r *Revoker) Revoke(_ context.Context, sessionID string, until time.Time) error {
	r.mu.Lock()
	r.revoked[sessionID] = until
	r.mu.Unlock()
	return nil
}

func (r *Revoker) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	until, ok := r.revoked[sessionID]
	if !ok {
		return false, nil
	}
	if r.now().After(until) {
		delete(r.revoked, sessionID)
		return false, nil
	}
	return true, nil
}

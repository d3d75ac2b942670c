package auth

import (
	"sync"
	"time"
)

// RevocationRegistry is the process-wide set of revoked token ids.
// Entries keep the expiry of the token they revoke so that Sweep can drop
// them once the token would be rejected as expired anyway.
type RevocationRegistry struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewRevocationRegistry returns an empty registry.
func NewRevocationRegistry() *RevocationRegistry {
	return &RevocationRegistry{revoked: make(map[string]time.Time)}
}

// Revoke marks tokenID as revoked. Revoking an id twice keeps the first entry.
// A zero expiresAt pins the entry so that Sweep never removes it.
func (r *RevocationRegistry) Revoke(tokenID string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.revoked[tokenID]; exists {
		return
	}
	r.revoked[tokenID] = expiresAt
}

// IsRevoked reports whether tokenID has been revoked.
func (r *RevocationRegistry) IsRevoked(tokenID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, revoked := r.revoked[tokenID]
	return revoked
}

// Len returns the number of tracked revocations.
func (r *RevocationRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.revoked)
}

// Sweep removes entries whose token expired before now and returns how many were dropped.
func (r *RevocationRegistry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, expiresAt := range r.revoked {
		if expiresAt.IsZero() || expiresAt.After(now) {
			continue
		}
		delete(r.revoked, id)
		removed++
	}
	return removed
}

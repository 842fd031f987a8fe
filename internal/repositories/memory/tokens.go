package memory

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/pulse-social/backend/internal/repositories"
)

type TokenRevocationRepository struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

var _ repositories.TokenRevocationRepository = (*TokenRevocationRepository)(nil)

func NewTokenRevocationRepository() *TokenRevocationRepository {
	return &TokenRevocationRepository{revoked: make(map[string]time.Time)}
}

func (r *TokenRevocationRepository) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, exp := range r.revoked {
		if exp.Before(now) {
			delete(r.revoked, id)
		}
	}
	if expiresAt.After(now) {
		r.revoked[tokenID] = expiresAt
	}
	return nil
}

func (r *TokenRevocationRepository) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.revoked[tokenID]
	return ok && exp.After(time.Now()), nil
}

// Package memory provides in-process repository implementations. They back
// the server when no database DSN is configured and double as test fixtures.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"orgdir/internal/domain/account"
	"orgdir/internal/repository"
)

var _ account.Repo = (*AccountRepo)(nil)

type AccountRepo struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]account.Account
	byUsername map[string]uuid.UUID
	byEmail    map[string]uuid.UUID
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		byID:       make(map[uuid.UUID]account.Account),
		byUsername: make(map[string]uuid.UUID),
		byEmail:    make(map[string]uuid.UUID),
	}
}

// Create checks uniqueness and inserts under one lock, so concurrent
// registrations with the same username or email admit exactly one winner.
func (r *AccountRepo) Create(_ context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[a.Username]; ok {
		return repository.ErrConflict
	}
	if _, ok := r.byEmail[a.Email]; ok {
		return repository.ErrConflict
	}

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	r.byID[a.ID] = *a
	r.byUsername[a.Username] = a.ID
	r.byEmail[a.Email] = a.ID
	return nil
}

func (r *AccountRepo) GetByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *AccountRepo) GetByUsername(_ context.Context, username string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.byUsername, username)
}

func (r *AccountRepo) GetByEmail(_ context.Context, email string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.byEmail, email)
}

func (r *AccountRepo) lookup(index map[string]uuid.UUID, key string) (*account.Account, error) {
	id, ok := index[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a := r.byID[id]
	return &a, nil
}

// Delete exists for tests that need the account-gone-but-token-valid case.
func (r *AccountRepo) Delete(_ context.Context, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	delete(r.byUsername, a.Username)
	delete(r.byEmail, a.Email)
}

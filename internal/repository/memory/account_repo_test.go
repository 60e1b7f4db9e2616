package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"orgdir/internal/domain/account"
	"orgdir/internal/repository"
)

func TestAccountRepo_CreateAndLookups(t *testing.T) {
	r := NewAccountRepo()
	ctx := context.Background()

	a := &account.Account{Username: "alice", Email: "a@x.com", PasswordHash: "hash"}
	require.NoError(t, r.Create(ctx, a))
	require.NotZero(t, a.ID)
	require.False(t, a.CreatedAt.IsZero())

	byID, err := r.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)

	byName, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, a.ID, byName.ID)

	byEmail, err := r.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, a.ID, byEmail.ID)

	_, err = r.GetByUsername(ctx, "bob")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAccountRepo_Uniqueness(t *testing.T) {
	r := NewAccountRepo()
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &account.Account{Username: "alice", Email: "a@x.com"}))

	err := r.Create(ctx, &account.Account{Username: "alice", Email: "b@x.com"})
	require.ErrorIs(t, err, repository.ErrConflict)

	err = r.Create(ctx, &account.Account{Username: "bob", Email: "a@x.com"})
	require.ErrorIs(t, err, repository.ErrConflict)
}

// Concurrent registrations with the same username must admit exactly one
// winner; the store, not the caller, arbitrates the race.
func TestAccountRepo_ConcurrentCreateSameUsername(t *testing.T) {
	const n = 32

	r := NewAccountRepo()
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			err := r.Create(ctx, &account.Account{
				Username: "alice",
				Email:    "a@x.com",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case err == repository.ErrConflict:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	require.Equal(t, 1, wins)
	require.Equal(t, n-1, conflicts)

	a, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotZero(t, a.ID)
}

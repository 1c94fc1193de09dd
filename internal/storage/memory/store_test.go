package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/gatekeeper/internal/models"
	"github.com/hongminglow/gatekeeper/internal/storage"
	"github.com/hongminglow/gatekeeper/internal/storage/storagetest"
)

func TestStore_Contract(t *testing.T) {
	storagetest.Run(t, NewUserStore())
}

func TestStore_EmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	_, err := s.CreateUser(ctx, models.User{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)
	_, err = s.FindByEmail(ctx, "A@x.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.CreateUser(ctx, models.User{Name: "B", Email: "A@x.com"})
	assert.NoError(t, err)
}

func TestStore_DeletedEmailIsReusable(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	u, err := s.CreateUser(ctx, models.User{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.CreateUser(ctx, models.User{Name: "Again", Email: "a@x.com"})
	assert.NoError(t, err)
}

func TestStore_ListUsersOrdered(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for i := 0; i < 3; i++ {
		_, err := s.CreateUser(ctx, models.User{Name: fmt.Sprint(i), Email: fmt.Sprintf("%d@x.com", i)})
		require.NoError(t, err)
	}
	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	for i, u := range users {
		assert.Equal(t, fmt.Sprint(i), u.Name)
	}
}

func TestStore_ConcurrentCreateKeepsEmailUnique(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.CreateUser(ctx, models.User{Name: "x", Email: "race@x.com"}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)
}

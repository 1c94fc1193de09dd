// Package storagetest holds the behavioural checks every storage.UserStore
// implementation must pass.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/gatekeeper/internal/models"
	"github.com/hongminglow/gatekeeper/internal/storage"
)

// Run exercises store. Emails are namespaced per run so the suite can share
// a database with other data.
func Run(t *testing.T, store storage.UserStore) {
	t.Helper()
	ns := fmt.Sprintf("st%d", time.Now().UnixNano())
	email := func(local string) string { return fmt.Sprintf("%s_%s@example.com", ns, local) }
	str := func(s string) *string { return &s }
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		created, err := store.CreateUser(ctx, models.User{Name: "Alice", Email: email("alice"), PasswordHash: "h1", Role: models.RoleUser})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
		assert.Equal(t, "h1", created.PasswordHash)

		byID, err := store.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Email, byID.Email)
		assert.Equal(t, models.RoleUser, byID.Role)

		byEmail, err := store.FindByEmail(ctx, email("alice"))
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
	})

	t.Run("lookups miss", func(t *testing.T) {
		_, err := store.FindByEmail(ctx, email("nobody"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.FindByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := store.CreateUser(ctx, models.User{Name: "D1", Email: email("dup"), PasswordHash: "h", Role: models.RoleUser})
		require.NoError(t, err)
		_, err = store.CreateUser(ctx, models.User{Name: "D2", Email: email("dup"), PasswordHash: "h", Role: models.RoleUser})
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("update", func(t *testing.T) {
		u, err := store.CreateUser(ctx, models.User{Name: "Bob", Email: email("bob"), PasswordHash: "h", Role: models.RoleUser})
		require.NoError(t, err)
		other, err := store.CreateUser(ctx, models.User{Name: "Carol", Email: email("carol"), PasswordHash: "h", Role: models.RoleUser})
		require.NoError(t, err)

		updated, err := store.UpdateUser(ctx, u.ID, models.UserPatch{Name: str("Robert"), Role: str(models.RoleAdmin)})
		require.NoError(t, err)
		assert.Equal(t, "Robert", updated.Name)
		assert.Equal(t, email("bob"), updated.Email)
		assert.Equal(t, models.RoleAdmin, updated.Role)
		assert.Equal(t, "h", updated.PasswordHash)

		updated, err = store.UpdateUser(ctx, u.ID, models.UserPatch{Email: str(email("rob")), PasswordHash: str("h2")})
		require.NoError(t, err)
		assert.Equal(t, email("rob"), updated.Email)
		assert.Equal(t, "h2", updated.PasswordHash)

		_, err = store.FindByEmail(ctx, email("bob"))
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = store.UpdateUser(ctx, u.ID, models.UserPatch{Email: str(other.Email)})
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)

		_, err = store.UpdateUser(ctx, "not-an-id", models.UserPatch{Name: str("x")})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		u, err := store.CreateUser(ctx, models.User{Name: "Eve", Email: email("eve"), PasswordHash: "h", Role: models.RoleUser})
		require.NoError(t, err)

		require.NoError(t, store.DeleteUser(ctx, u.ID))
		_, err = store.FindByID(ctx, u.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteUser(ctx, u.ID), storage.ErrNotFound)
	})

	t.Run("count and list", func(t *testing.T) {
		before, err := store.CountByRole(ctx, models.RoleAdmin)
		require.NoError(t, err)
		_, err = store.CreateUser(ctx, models.User{Name: "Root", Email: email("root"), PasswordHash: "h", Role: models.RoleAdmin})
		require.NoError(t, err)
		after, err := store.CountByRole(ctx, models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, before+1, after)

		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		seen := map[string]bool{}
		for _, u := range users {
			seen[u.Email] = true
		}
		assert.True(t, seen[email("root")])
		assert.True(t, seen[email("alice")])
	})
}

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hongminglow/gatekeeper/internal/models"
	"github.com/hongminglow/gatekeeper/internal/storage"
)

// AdminSeed describes the administrator created on an empty system.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

// EnsureAdmin creates the seed administrator when no admin exists and
// reports whether it did. It refuses to promote an existing non-admin that
// already owns the seed email.
func (s *Service) EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	n, err := s.store.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	name, email := strings.TrimSpace(seed.Name), strings.TrimSpace(seed.Email)
	if name == "" || email == "" || seed.Password == "" {
		return false, errors.New("admin seed needs name, email and password")
	}
	digest, err := s.hashPassword(seed.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	_, err = s.store.CreateUser(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: digest,
		Role:         models.RoleAdmin,
	})
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, storage.ErrAlreadyExists) {
		return false, fmt.Errorf("create admin: %w", err)
	}

	// Another instance may have seeded concurrently.
	existing, findErr := s.store.FindByEmail(ctx, email)
	if findErr == nil && existing.IsAdmin() {
		return false, nil
	}
	return false, fmt.Errorf("admin email %s is taken by a non-admin account", email)
}

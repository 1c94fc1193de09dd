// Package account implements registration, login, self-service profile
// management and administrative user management on top of a UserStore.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hongminglow/gatekeeper/internal/auth"
	"github.com/hongminglow/gatekeeper/internal/models"
	"github.com/hongminglow/gatekeeper/internal/storage"
)

// PasswordHasher hashes and checks credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(userID, email, role string) (string, error)
}

// Service holds no mutable state; it is safe for concurrent use when the
// store is.
type Service struct {
	store  storage.UserStore
	hasher PasswordHasher
	tokens TokenIssuer

	// decoy is compared against on unknown emails so a failed lookup costs
	// the same as a wrong password.
	decoy string
}

// NewService wires the service to its collaborators.
func NewService(store storage.UserStore, hasher PasswordHasher, tokens TokenIssuer) (*Service, error) {
	decoy, err := hasher.Hash("decoy-password-never-matches")
	if err != nil {
		return nil, fmt.Errorf("prepare decoy digest: %w", err)
	}
	return &Service{store: store, hasher: hasher, tokens: tokens, decoy: decoy}, nil
}

// Session is the result of a successful login.
type Session struct {
	Token string
	User  models.User
}

// ProfileUpdate carries self-service changes. Empty fields are left as is.
type ProfileUpdate struct {
	Name     string
	Email    string
	Password string
}

// UserUpdate carries admin changes. Empty fields are left as is.
type UserUpdate struct {
	Name  string
	Email string
	Role  string
}

// Register creates a user with the default role and returns its id.
func (s *Service) Register(ctx context.Context, name, email, password string) (string, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return "", models.ErrMissingFields
	}
	digest, err := s.hashPassword(password)
	if err != nil {
		return "", err
	}

	created, err := s.store.CreateUser(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: digest,
		Role:         models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return "", models.ErrDuplicateEmail
		}
		return "", models.Internal(fmt.Errorf("create user: %w", err))
	}
	return created.ID, nil
}

// Login checks credentials and issues a session token. Unknown emails and
// wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, models.ErrMissingCredentials
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.hasher.Verify(password, s.decoy)
			return Session{}, models.ErrInvalidCredentials
		}
		return Session{}, models.Internal(fmt.Errorf("find user: %w", err))
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return Session{}, models.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return Session{}, models.Internal(fmt.Errorf("issue token: %w", err))
	}
	return Session{Token: token, User: user}, nil
}

// Profile returns the caller's own record.
func (s *Service) Profile(ctx context.Context, userID string) (models.User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

// UpdateProfile applies the caller's own changes. A new email must not
// belong to anyone else; a new password is re-hashed.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (models.User, error) {
	var patch models.UserPatch
	if name := strings.TrimSpace(in.Name); name != "" {
		patch.Name = &name
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		owner, err := s.store.FindByEmail(ctx, email)
		switch {
		case err == nil && owner.ID != userID:
			return models.User{}, models.ErrEmailTaken
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return models.User{}, models.Internal(fmt.Errorf("check email: %w", err))
		}
		patch.Email = &email
	}
	if in.Password != "" {
		digest, err := s.hashPassword(in.Password)
		if err != nil {
			return models.User{}, err
		}
		patch.PasswordHash = &digest
	}

	if patch.Empty() {
		return s.Profile(ctx, userID)
	}
	user, err := s.store.UpdateUser(ctx, userID, patch)
	if err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

// ListUsers returns every account.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, models.Internal(fmt.Errorf("list users: %w", err))
	}
	return users, nil
}

// UpdateUser applies an administrator's changes to any account. Email
// uniqueness is not pre-checked here; only the store constraint applies.
func (s *Service) UpdateUser(ctx context.Context, targetID string, in UserUpdate) (models.User, error) {
	var patch models.UserPatch
	if name := strings.TrimSpace(in.Name); name != "" {
		patch.Name = &name
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		patch.Email = &email
	}
	if role := strings.TrimSpace(in.Role); role != "" {
		if !models.ValidRole(role) {
			return models.User{}, models.ErrInvalidRole
		}
		patch.Role = &role
	}

	if patch.Empty() {
		return s.Profile(ctx, targetID)
	}
	user, err := s.store.UpdateUser(ctx, targetID, patch)
	if err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

// DeleteUser removes targetID. Administrators cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return models.ErrSelfDeletion
	}
	if err := s.store.DeleteUser(ctx, targetID); err != nil {
		return translate(err)
	}
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	if len(password) > auth.MaxPasswordBytes {
		return "", models.ErrPasswordTooLong
	}
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return "", models.Internal(err)
	}
	return digest, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return models.ErrUserNotFound
	case errors.Is(err, storage.ErrAlreadyExists):
		return models.ErrEmailTaken
	default:
		return models.Internal(err)
	}
}

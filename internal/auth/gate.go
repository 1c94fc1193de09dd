package auth

import (
	"strings"

	"github.com/hongminglow/gatekeeper/internal/models"
)

const bearerPrefix = "bearer "

// Verifier is the token check the gate depends on.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// Authenticate resolves an Authorization header value into claims.
// A missing credential yields models.ErrAuthRequired; any verification
// failure yields models.ErrInvalidSession with the reason as its cause.
func Authenticate(v Verifier, header string) (*Claims, error) {
	header = strings.TrimSpace(header)
	if header == "" || strings.EqualFold(header, strings.TrimSpace(bearerPrefix)) {
		return nil, models.ErrAuthRequired
	}
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return nil, invalidSession(ErrMalformed)
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return nil, models.ErrAuthRequired
	}
	claims, err := v.Verify(token)
	if err != nil {
		return nil, invalidSession(err)
	}
	return claims, nil
}

// RequireAdmin passes only claims carrying the admin role.
func RequireAdmin(c *Claims) error {
	if c == nil {
		return models.ErrAuthRequired
	}
	if c.Role != models.RoleAdmin {
		return models.ErrForbidden
	}
	return nil
}

func invalidSession(cause error) error {
	e := *models.ErrInvalidSession
	e.Err = cause
	return &e
}

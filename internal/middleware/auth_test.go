package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hongminglow/gatekeeper/internal/auth"
	"github.com/hongminglow/gatekeeper/internal/models"
)

type fakeGateRecorder struct {
	mu      sync.Mutex
	reasons []string
}

func (f *fakeGateRecorder) RecordGateRejection(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reasons = append(f.reasons, reason)
}

func okHandler(t *testing.T, seen **auth.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		if seen != nil {
			*seen = c
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "gatekeeper-test")
	good, err := tokens.Issue("u-1", "a@x.com", models.RoleUser)
	require.NoError(t, err)
	forged, err := auth.NewTokenManager("other", "gatekeeper-test").Issue("u-1", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		status  int
		message string
		reason  string
	}{
		{"missing", "", http.StatusUnauthorized, "authentication required", "missing"},
		{"scheme only", "Bearer ", http.StatusUnauthorized, "authentication required", "missing"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid or expired session", "malformed"},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, "invalid or expired session", "malformed"},
		{"forged", "Bearer " + forged, http.StatusUnauthorized, "invalid or expired session", "bad_signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeGateRecorder{}
			h := RequireAuth(tokens, zaptest.NewLogger(t).Sugar(), rec)(okHandler(t, nil))

			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, `{"message":"`+tt.message+`"}`, w.Body.String())
			assert.Equal(t, []string{tt.reason}, rec.reasons)
		})
	}

	t.Run("valid", func(t *testing.T) {
		rec := &fakeGateRecorder{}
		var seen *auth.Claims
		h := RequireAuth(tokens, zaptest.NewLogger(t).Sugar(), rec)(okHandler(t, &seen))

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+good)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "u-1", seen.UserID)
		assert.Empty(t, rec.reasons)
	})
}

func TestRequireAdmin(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	serve := func(claims *auth.Claims) (*httptest.ResponseRecorder, *fakeGateRecorder) {
		rec := &fakeGateRecorder{}
		h := RequireAdmin(logger, rec)(okHandler(t, nil))
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		if claims != nil {
			req = req.WithContext(ContextWithClaims(req.Context(), claims))
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w, rec
	}

	w, rec := serve(&auth.Claims{UserID: "u-1", Role: models.RoleUser})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"elevated privileges required"}`, w.Body.String())
	assert.Equal(t, []string{"forbidden"}, rec.reasons)

	w, _ = serve(nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, rec = serve(&auth.Claims{UserID: "a-1", Role: models.RoleAdmin})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, rec.reasons)
}

func TestClaimsFromContext_Empty(t *testing.T) {
	_, ok := ClaimsFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}

package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/gatekeeper/internal/auth"
	"github.com/hongminglow/gatekeeper/internal/http/respond"
	"github.com/hongminglow/gatekeeper/internal/models"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// GateRecorder counts refused requests.
type GateRecorder interface {
	RecordGateRejection(reason string)
}

// ContextWithClaims stores verified claims on ctx.
func ContextWithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, c)
}

// ClaimsFromContext returns the claims placed by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return c, ok && c != nil
}

// RequireAuth rejects requests without a valid bearer token and attaches
// the verified claims to the request context.
func RequireAuth(v auth.Verifier, logger *zap.SugaredLogger, rec GateRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.Authenticate(v, r.Header.Get("Authorization"))
			if err != nil {
				reason := rejectionReason(err)
				logger.Debugw("auth gate rejected request", "path", r.URL.Path, "reason", reason)
				if rec != nil {
					rec.RecordGateRejection(reason)
				}
				respond.Err(w, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(logger *zap.SugaredLogger, rec GateRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := ClaimsFromContext(r.Context())
			if err := auth.RequireAdmin(claims); err != nil {
				reason := rejectionReason(err)
				logger.Debugw("role gate rejected request", "path", r.URL.Path, "reason", reason)
				if rec != nil {
					rec.RecordGateRejection(reason)
				}
				respond.Err(w, logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpired):
		return "expired"
	case errors.Is(err, auth.ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, auth.ErrMalformed):
		return "malformed"
	case errors.Is(err, models.ErrAuthRequired):
		return "missing"
	case errors.Is(err, models.ErrForbidden):
		return "forbidden"
	default:
		return "invalid"
	}
}

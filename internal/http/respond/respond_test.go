package respond

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hongminglow/gatekeeper/internal/models"
)

func TestErr(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", models.ErrMissingFields, http.StatusBadRequest, `{"message":"all fields are required"}`},
		{"conflict is bad request", models.ErrDuplicateEmail, http.StatusBadRequest, `{"message":"email already registered"}`},
		{"authentication", models.ErrInvalidCredentials, http.StatusUnauthorized, `{"message":"invalid email or password"}`},
		{"authorization", models.ErrForbidden, http.StatusForbidden, `{"message":"elevated privileges required"}`},
		{"not found", models.ErrUserNotFound, http.StatusNotFound, `{"message":"user not found"}`},
		{"internal hides cause", models.Internal(errors.New("dial tcp: refused")), http.StatusInternalServerError, `{"message":"internal server error"}`},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, `{"message":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Err(rec, zap.NewNop().Sugar(), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestErr_LogsInternalCause(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core).Sugar()

	Err(httptest.NewRecorder(), logger, models.Internal(errors.New("dial tcp: refused")))
	Err(httptest.NewRecorder(), logger, models.ErrForbidden)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Contains(t, entries[0].ContextMap()["error"], "dial tcp: refused")
	}
}

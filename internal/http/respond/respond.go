package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/gatekeeper/internal/models"
	"github.com/hongminglow/gatekeeper/internal/models/dto"
)

const internalMessage = "internal server error"

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.S().Warnw("respond: encode payload failed", "error", err)
	}
}

// Error writes the {"message": ...} error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, dto.MessageResponse{Message: message})
}

// Err maps a domain error onto its status and safe message. Anything that
// is not a classified *models.Error is logged and answered with 500.
func Err(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	var e *models.Error
	if errors.As(err, &e) && e.Kind != models.KindInternal {
		Error(w, e.Kind.Status(), e.Message)
		return
	}
	if logger != nil {
		logger.Errorw("request failed", "error", err)
	}
	Error(w, http.StatusInternalServerError, internalMessage)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hongminglow/gatekeeper/internal/http/respond"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object into dst. On failure it has already
// written the response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

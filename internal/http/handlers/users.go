package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hongminglow/gatekeeper/internal/account"
	"github.com/hongminglow/gatekeeper/internal/http/respond"
	"github.com/hongminglow/gatekeeper/internal/middleware"
	"github.com/hongminglow/gatekeeper/internal/models"
	"github.com/hongminglow/gatekeeper/internal/models/dto"
)

// UsersHandler serves profile and user administration endpoints. Every
// route expects claims placed by middleware.RequireAuth.
type UsersHandler struct {
	svc    *account.Service
	logger *zap.SugaredLogger
}

func NewUsersHandler(svc *account.Service, logger *zap.SugaredLogger) *UsersHandler {
	return &UsersHandler{svc: svc, logger: logger}
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Err(w, h.logger, models.ErrAuthRequired)
		return
	}
	user, err := h.svc.Profile(r.Context(), claims.UserID)
	if err != nil {
		respond.Err(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

// UpdateMe handles PUT /users/me.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Err(w, h.logger, models.ErrAuthRequired)
		return
	}
	var req dto.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.svc.UpdateProfile(r.Context(), claims.UserID, account.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respond.Err(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.UserResponse{Message: "Profile updated successfully", User: user})
}

// List handles GET /users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		respond.Err(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

// Update handles PUT /users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.svc.UpdateUser(r.Context(), chi.URLParam(r, "id"), account.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		respond.Err(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.UserResponse{Message: "User updated successfully", User: user})
}

// Delete handles DELETE /users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Err(w, h.logger, models.ErrAuthRequired)
		return
	}
	targetID := chi.URLParam(r, "id")
	if err := h.svc.DeleteUser(r.Context(), claims.UserID, targetID); err != nil {
		respond.Err(w, h.logger, err)
		return
	}
	h.logger.Infow("user deleted", "user_id", targetID, "by", claims.UserID)
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "User deleted successfully"})
}

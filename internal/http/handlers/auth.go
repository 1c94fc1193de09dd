package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/gatekeeper/internal/account"
	"github.com/hongminglow/gatekeeper/internal/http/respond"
	"github.com/hongminglow/gatekeeper/internal/models"
	"github.com/hongminglow/gatekeeper/internal/models/dto"
)

// AuthRecorder counts register and login outcomes.
type AuthRecorder interface {
	RecordAuthEvent(event, outcome string)
}

// AuthHandler owns the register and login endpoints.
type AuthHandler struct {
	svc    *account.Service
	logger *zap.SugaredLogger
	rec    AuthRecorder
}

// NewAuthHandler constructs the handler. rec may be nil.
func NewAuthHandler(svc *account.Service, logger *zap.SugaredLogger, rec AuthRecorder) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger, rec: rec}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	h.record("register", err)
	if err != nil {
		respond.Err(w, h.logger, err)
		return
	}
	h.logger.Infow("user registered", "user_id", id)
	respond.JSON(w, http.StatusCreated, dto.RegisterResponse{Message: "User registered successfully", UserID: id})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	h.record("login", err)
	if err != nil {
		respond.Err(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.LoginResponse{Message: "Login successful", Token: sess.Token, User: sess.User})
}

func (h *AuthHandler) record(event string, err error) {
	if h.rec == nil {
		return
	}
	outcome := "success"
	if err != nil {
		var e *models.Error
		if errors.As(err, &e) {
			outcome = e.Code
		} else {
			outcome = "Internal"
		}
	}
	h.rec.RecordAuthEvent(event, outcome)
}

package dto

import "github.com/hongminglow/gatekeeper/internal/models"

// UpdateProfileRequest is the self-service update body. Empty strings are
// treated the same as absent fields.
type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the admin update body.
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type UserResponse struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

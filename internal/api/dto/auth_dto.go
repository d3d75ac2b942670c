package dto

import "time"

// RegisterRequest payload for POST /register and POST /users.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,role"`
}

// LoginRequest payload for POST /login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MessageResponse is the plain success envelope.
type MessageResponse struct {
	Message string `json:"message"`
}

// WelcomeResponse is returned by /protected and /dashboard.
type WelcomeResponse struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}

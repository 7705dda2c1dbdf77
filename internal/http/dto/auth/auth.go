// Package auth contiene los DTOs de login/logout/me.
package auth

import "time"

// LoginRequest body de POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse respuesta de login. El token también va en la cookie.
type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MeResponse describe la sesión actual.
type MeResponse struct {
	Authenticated bool      `json:"authenticated"`
	Username      string    `json:"username"`
	Role          string    `json:"role"`
	ExpiresAt     time.Time `json:"expires_at"`
}

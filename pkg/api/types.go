package api

import "github.com/platinummonkey/authgate/pkg/auth"

// RegisterRequest is the body of POST /api/v1/auth/register
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/v1/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the success envelope of every auth endpoint
type AuthResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	User    *auth.PublicUser `json:"user,omitempty"`
}

// Response messages
const (
	MsgUserCreated       = "User created successfully"
	MsgUserLoggedIn      = "User logged in successfully"
	MsgUserLoggedOut     = "User logged out successfully"
	MsgUserAuthenticated = "User authenticated successfully"

	msgUserExists       = "user already exists"
	msgUnknownAccount   = "user not found, please register."
	msgWrongCredentials = "wrong credentials"
	msgNotAuthenticated = "user not authenticated"
)

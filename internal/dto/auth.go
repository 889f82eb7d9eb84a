package dto

import "time"

// Auth Request DTOs

// RegisterRequest contains user registration data
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string `json:"lastName" validate:"required,min=1,max=100"`
	Telephone string `json:"telephone" validate:"omitempty,phone"`
	// ProfilePicture is base64 image data, optionally as a data URL
	ProfilePicture string `json:"profilePicture"`
}

// LoginRequest contains login credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest contains refresh token for renewal
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest optionally carries the refresh token to revoke alongside the access token
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Auth Response DTOs

// AuthResponse is returned by register, login and refresh
type AuthResponse struct {
	Token          string    `json:"token"`
	RefreshToken   string    `json:"refreshToken"`
	TokenType      string    `json:"tokenType"`
	ExpiresIn      int64     `json:"expiresIn"`
	ExpiresAt      time.Time `json:"expiresAt"`
	UserID         string    `json:"userId"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
}

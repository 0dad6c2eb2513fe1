package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	IP       string `json:"-"`
}

// RegisterRequest creates a self-service account.
type RegisterRequest struct {
	FullName string   `json:"fullName" validate:"required,min=3,max=200"`
	Email    string   `json:"email" validate:"required,email,max=200"`
	Password string   `json:"password" validate:"required,min=6,max=100"`
	Document string   `json:"document" validate:"required,max=20"`
	Role     UserRole `json:"role" validate:"omitempty,oneof=Admin User"`
}

// AuthResponse returns the issued token and user info.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserInfo  `json:"user"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Document string   `json:"document"`
	Role     UserRole `json:"role"`
}

// NewUserInfo projects the public fields of a user.
func NewUserInfo(u User) UserInfo {
	return UserInfo{ID: u.ID, Email: u.Email, FullName: u.FullName, Document: u.Document, Role: u.Role}
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"userId"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"name"`
	Document string   `json:"document"`
	jwt.RegisteredClaims
}

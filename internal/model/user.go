package model

import "time"

// User represents an account holder in the database.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Confirmed    bool
	RefreshToken string // empty when no session is active
	Avatar       string
	CreatedAt    time.Time
}

// SignupRequest represents a user registration request.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest carries the OAuth2 password-form credentials. Username holds the email.
type LoginRequest struct {
	Username string
	Password string
}

// RequestEmail represents a request to resend the confirmation mail.
type RequestEmail struct {
	Email string `json:"email"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// UserResponse represents user data safe for API responses (no credentials).
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Confirmed bool      `json:"confirmed"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

// SignupResponse is returned on successful registration.
type SignupResponse struct {
	User   UserResponse `json:"user"`
	Detail string       `json:"detail"`
}

// MessageResponse carries an informational message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ToResponse strips credential fields from the user.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Confirmed: u.Confirmed,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

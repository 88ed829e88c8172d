package domain

import (
	"strings"
	"time"
)

type User struct {
	UserID    string    `json:"id" dynamodbav:"user_id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Email     string    `json:"email" dynamodbav:"email"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"` // optional display-name hint
}

type SignupRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
	Name  string `json:"name"` // used only if a new account is created
}

// NormalizeEmail canonicalizes an address for use as a lookup key.
// All store and DB access goes through this so "A@x.com " and "a@x.com"
// share one pending code and one account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-notes-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OTPEnvelope wraps send-otp and signup responses. UserExists is a pointer
// so the false value is still emitted on the not-found and conflict paths.
type OTPEnvelope struct {
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	UserExists *bool  `json:"userExists,omitempty"`
}

// VerifyEnvelope wraps verify-otp responses.
type VerifyEnvelope struct {
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	User    *PublicUser `json:"user,omitempty"`
}

// ProfileEnvelope wraps GET /user responses.
type ProfileEnvelope struct {
	User  *PublicUser   `json:"user"`
	Notes []domain.Note `json:"notes"`
}

// PublicUser is the account identity exposed over the wire.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func toPublicUser(u *domain.User) *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{ID: u.UserID, Email: u.Email, Name: u.Name}
}

func boolPtr(b bool) *bool { return &b }

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

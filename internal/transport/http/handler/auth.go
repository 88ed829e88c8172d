package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-notes-api/internal/application/auth"
	"github.com/go-notes-api/internal/domain"
	"github.com/go-notes-api/internal/pkg/validate"
	"github.com/go-notes-api/internal/transport/http/middleware"
)

// AuthHandler handles the OTP login/signup/verify endpoints.
type AuthHandler struct {
	svc          auth.Service
	cookieSecure bool
	cookieTTL    time.Duration
}

func NewAuthHandler(svc auth.Service, cookieSecure bool, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{svc: svc, cookieSecure: cookieSecure, cookieTTL: cookieTTL}
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.SendOTP(r.Context(), req)
	if err != nil {
		// The client routes to signup on this one; it needs the flag.
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, OTPEnvelope{
				Error:      "User not found. Redirecting to signup.",
				UserExists: boolPtr(false),
			})
			return
		}
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OTPEnvelope{
		Message:    "OTP sent to your email.",
		UserExists: &res.UserExists,
	})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			writeJSON(w, http.StatusConflict, OTPEnvelope{
				Error:      "Account already exists. Please login.",
				UserExists: boolPtr(true),
			})
			return
		}
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OTPEnvelope{
		Message:    "OTP sent to your email.",
		UserExists: &res.UserExists,
	})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.VerifyOTP(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, VerifyEnvelope{
		Message: "Login successful",
		User:    toPublicUser(res.User),
	})
}

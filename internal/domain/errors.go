package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
)

// OTP flow failures. Kept distinct so errors.Is can tell a retryable
// mismatch apart from a dead code path (no pending, expired).
var (
	ErrRateLimited    = errors.New("rate limited")
	ErrDeliveryFailed = errors.New("delivery failed")
	ErrNoPendingCode  = errors.New("no pending code")
	ErrCodeMismatch   = errors.New("code mismatch")
	ErrOTPExpired     = errors.New("otp expired")
)

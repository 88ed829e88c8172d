package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-notes-api/internal/domain"
)

// httpError maps domain sentinel errors to HTTP status codes. Unexpected
// errors are logged and answered with a generic 500 so internals don't leak.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrBadRequest),
		errors.Is(err, domain.ErrNoPendingCode),
		errors.Is(err, domain.ErrCodeMismatch),
		errors.Is(err, domain.ErrOTPExpired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDeliveryFailed):
		writeError(w, http.StatusInternalServerError, "failed to send OTP")
	default:
		slog.Error("unhandled error", "err", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
	}
}

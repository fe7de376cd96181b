package http

import (
	"errors"
	"net/http"
	"strings"

	"monthledger/internal/core"
	"monthledger/internal/export"
	"monthledger/internal/services"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// errorResponse maps ledger errors to a status and a user-facing message.
func errorResponse(err error) *HTMXResponseBuilder {
	var fe *services.FieldError
	switch {
	case errors.Is(err, services.ErrNotGenerated), errors.Is(err, services.ErrSessionNotFound):
		return ConflictError("Generate the ledger first!")
	case errors.Is(err, export.ErrEmptyLedger):
		return ConflictError("No entries in the ledger to save.")
	case errors.Is(err, export.ErrUnknownFormat):
		return BadRequestError(err.Error())
	case errors.As(err, &fe):
		return UnprocessableEntityError("Invalid " + fe.Field + ": " + fe.Err.Error())
	case errors.Is(err, core.ErrInvalidDateFormat),
		errors.Is(err, core.ErrInvalidDateRange),
		errors.Is(err, core.ErrNegativeAmount),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrPaymentCount),
		errors.Is(err, core.ErrIndexOutOfRange):
		return UnprocessableEntityError(err.Error())
	default:
		return InternalServerError("Something went wrong")
	}
}

// clientIP prefers proxy headers over the socket address.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

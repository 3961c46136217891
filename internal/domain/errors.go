package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Closed set of conditions the API surfaces verbatim to clients. Anything
// not in this set is an internal error: logged with detail, returned as a
// bare 500.
var (
	// ErrConflict is returned when a registration email is already taken.
	ErrConflict = errors.New("email already registered")
	// ErrInvalidCredentials deliberately reads the same whether the email
	// is unknown or the password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDeactivated is returned for users with active=false.
	ErrAccountDeactivated = errors.New("account is deactivated")
	// ErrUnauthenticated is returned when no token was presented at all.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrTokenExpired is distinct from ErrInvalidToken so clients know a
	// refresh attempt is worth making.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken covers malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenMismatch is returned when a presented refresh token is not
	// the one currently stored for the user (stale or replayed).
	ErrTokenMismatch = errors.New("refresh token superseded")
	// ErrForbidden is returned for authenticated but unauthorized access.
	ErrForbidden = errors.New("forbidden")
)

// ErrUserGone marks a token whose subject no longer exists in the store.
// It is a specialization of ErrInvalidToken: errors.Is(ErrUserGone,
// ErrInvalidToken) holds, and it maps to the same status.
var ErrUserGone = fmt.Errorf("%w: user no longer exists", ErrInvalidToken)

// StatusOf maps every taxonomy error onto its transport status code.
// Unknown errors map to 500.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrAccountDeactivated),
		errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// IsAuthError reports whether err belongs to the closed taxonomy above.
func IsAuthError(err error) bool {
	return StatusOf(err) != http.StatusInternalServerError
}

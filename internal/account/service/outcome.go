package service

import (
	"errors"
	"net/http"
)

// Domain outcomes. Every failure an account flow can produce is one of these
// sentinel values; anything else that leaks out of a flow is logged and
// collapsed into ErrInternal before it crosses the transport boundary.
var (
	// ErrValidation covers missing fields and malformed input (bad email).
	ErrValidation = errors.New("validation_failed")

	// ErrUsernameTaken is returned when registration finds the username in use.
	ErrUsernameTaken = errors.New("username_taken")

	// ErrAccessFailed covers unknown usernames, wrong passwords and removal
	// claims that match no record. Deliberately indistinguishable.
	ErrAccessFailed = errors.New("access_failed")

	// ErrTOTPDeclined is returned when the one-time code does not verify.
	ErrTOTPDeclined = errors.New("totp_declined")

	// ErrAccountNotActive is returned for DEACTIVATE/DELETED accounts. No
	// engine flow transitions into those states; this guards records mutated
	// out-of-band.
	ErrAccountNotActive = errors.New("account_not_active")

	// ErrRegistrationExpired is returned when a NEW account logs in after its
	// registration window. The account is deleted as a side effect.
	ErrRegistrationExpired = errors.New("registration_expired")

	// ErrTokenIssuance is returned when session-token signing fails.
	ErrTokenIssuance = errors.New("token_issuance_failed")

	// ErrInternal is the generic outcome for unexpected failures. The cause
	// has already been logged with context by the time this is returned.
	ErrInternal = errors.New("internal_error")
)

// State markers carried on success payloads so clients can branch without
// parsing messages.
const (
	StateAccessGrant = "ACCESS_GRANT"
	StateRemoved     = "REMOVED"
)

// StatusOf maps an outcome to its HTTP-equivalent status code. The engine
// owns this choice; the transport layer only renders it.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrRegistrationExpired),
		errors.Is(err, ErrTokenIssuance):
		return http.StatusBadRequest
	case errors.Is(err, ErrAccessFailed),
		errors.Is(err, ErrTOTPDeclined),
		errors.Is(err, ErrAccountNotActive):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

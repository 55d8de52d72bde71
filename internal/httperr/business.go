package httperr

import "errors"

// Business error codes shared by the signup/session workflows. Handlers map
// these to HTTP statuses; use cases never touch the HTTP layer.
const (
	CodeNotFound             = "not_found"
	CodeInvalidState         = "invalid_state"
	CodeCapacityExceeded     = "capacity_exceeded"
	CodeAlreadySignedUp      = "already_signed_up"
	CodeNotAcceptingSignups  = "session_not_accepting_signups"
	CodeUnauthorized         = "unauthorized"
	CodeMinimumNotReached    = "minimum_participants_not_reached"
	CodeSessionNotStarted    = "session_not_started"
	CodeWaitlistEntryMissing = "waitlist_entry_not_found"
)

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// BusinessCode extracts the code from a business error, or "" when err is
// not one.
func BusinessCode(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

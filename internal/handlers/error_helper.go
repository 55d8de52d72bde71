package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/brightpaws/dogtrainer-api/internal/httperr"
)

// writeUseCaseError maps a use case error to the HTTP layer. Business codes
// get a stable status per code family; anything else is a 500.
func writeUseCaseError(c *gin.Context, err error) {
	code := httperr.BusinessCode(err)

	switch code {
	case "":
		httperr.Internal(c, "internal_error", "Something went wrong.")

	case httperr.CodeNotFound:
		httperr.NotFound(c, code, "Resource not found.")

	case httperr.CodeWaitlistEntryMissing:
		httperr.NotFound(c, code, "Waitlist entry not found.")

	case httperr.CodeUnauthorized:
		httperr.Forbidden(c, code, "You are not allowed to do that.")

	case httperr.CodeInvalidState,
		httperr.CodeCapacityExceeded,
		httperr.CodeAlreadySignedUp,
		httperr.CodeNotAcceptingSignups,
		httperr.CodeMinimumNotReached,
		httperr.CodeSessionNotStarted:
		httperr.Conflict(c, code, "The request conflicts with the current state.")

	default:
		httperr.BadRequest(c, code, "Invalid request.")
	}
}

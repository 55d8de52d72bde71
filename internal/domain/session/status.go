package session

import "github.com/brightpaws/dogtrainer-api/internal/httperr"

// ===============================
// Session Status
// ===============================

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// sessionTransitions is the closed transition table for sessions. Anything
// not listed fails with invalid_state; completed and cancelled are terminal.
var sessionTransitions = map[Status]map[Status]bool{
	StatusScheduled: {
		StatusInProgress: true,
		StatusCompleted:  true, // same-day completion without explicit start
		StatusCancelled:  true,
	},
	StatusInProgress: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
}

func canTransitionSession(from, to Status) error {
	if !sessionTransitions[from][to] {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	return nil
}

// ===============================
// Signup Status
// ===============================

type SignupStatus string

const (
	SignupPending   SignupStatus = "pending"
	SignupApproved  SignupStatus = "approved"
	SignupRejected  SignupStatus = "rejected"
	SignupCancelled SignupStatus = "cancelled"
)

var signupTransitions = map[SignupStatus]map[SignupStatus]bool{
	SignupPending: {
		SignupApproved:  true,
		SignupRejected:  true,
		SignupCancelled: true,
	},
	SignupApproved: {
		SignupCancelled: true,
	},
}

func canTransitionSignup(from, to SignupStatus) error {
	if !signupTransitions[from][to] {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	return nil
}

// ActiveSignupStatuses are the signup states that block a duplicate signup
// and receive session-cancellation notices.
func ActiveSignupStatuses() []string {
	return []string{string(SignupPending), string(SignupApproved)}
}

func InitialSignupStatus() SignupStatus {
	return SignupPending
}

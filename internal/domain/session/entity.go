package session

import (
	"time"

	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/models"
)

// ===============================
// Session Actions
// ===============================

// CanStart reports whether the session may move to in_progress: it must be
// scheduled, its start time must have arrived, and enough signups must be
// approved.
func CanStart(s *models.Session, approvedCount int, now time.Time) error {
	if err := canTransitionSession(Status(s.Status), StatusInProgress); err != nil {
		return err
	}
	if now.Before(s.StartTime) {
		return httperr.ErrBusiness(httperr.CodeSessionNotStarted)
	}
	if approvedCount < s.MinimumParticipants {
		return httperr.ErrBusiness(httperr.CodeMinimumNotReached)
	}
	return nil
}

func Start(s *models.Session, approvedCount int, now time.Time) error {
	if err := CanStart(s, approvedCount, now); err != nil {
		return err
	}

	s.Status = string(StatusInProgress)
	s.StartedAt = &now
	return nil
}

// Complete moves a session to completed. Completing straight from scheduled
// is allowed once the start time has passed, for trainers who never pressed
// start.
func Complete(s *models.Session, now time.Time) error {
	if err := canTransitionSession(Status(s.Status), StatusCompleted); err != nil {
		return err
	}
	if Status(s.Status) == StatusScheduled && now.Before(s.StartTime) {
		return httperr.ErrBusiness(httperr.CodeSessionNotStarted)
	}

	s.Status = string(StatusCompleted)
	s.CompletedAt = &now
	return nil
}

func Cancel(s *models.Session, reason string, now time.Time) error {
	if err := canTransitionSession(Status(s.Status), StatusCancelled); err != nil {
		return err
	}

	s.Status = string(StatusCancelled)
	s.CancellationReason = reason
	s.CancelledAt = &now
	return nil
}

// Resize changes a scheduled session's capacity. Shrinking below the
// already-approved count would strand confirmed dogs.
func Resize(s *models.Session, approvedCount, capacity int) error {
	if Status(s.Status) != StatusScheduled {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	if capacity < 1 {
		return httperr.ErrBusiness("invalid_capacity")
	}
	if capacity < approvedCount {
		return httperr.ErrBusiness(httperr.CodeCapacityExceeded)
	}

	s.Capacity = capacity
	return nil
}

// ===============================
// Signup Actions
// ===============================

func ApproveSignup(su *models.SessionSignup, approverID uint, now time.Time) error {
	if err := canTransitionSignup(SignupStatus(su.Status), SignupApproved); err != nil {
		return err
	}

	su.Status = string(SignupApproved)
	su.ApprovedBy = &approverID
	su.ApprovedAt = &now
	return nil
}

func RejectSignup(su *models.SessionSignup, reason string) error {
	if err := canTransitionSignup(SignupStatus(su.Status), SignupRejected); err != nil {
		return err
	}

	su.Status = string(SignupRejected)
	su.RejectionReason = reason
	return nil
}

func CancelSignup(su *models.SessionSignup, now time.Time) error {
	if err := canTransitionSignup(SignupStatus(su.Status), SignupCancelled); err != nil {
		return err
	}

	su.Status = string(SignupCancelled)
	su.CancelledAt = &now
	return nil
}

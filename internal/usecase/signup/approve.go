package signup

import (
	"context"

	"github.com/brightpaws/dogtrainer-api/internal/audit"
	"github.com/brightpaws/dogtrainer-api/internal/clock"
	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/models"
	"github.com/brightpaws/dogtrainer-api/internal/notify"
)

type ApproveSignup struct {
	repo  domain.Repository
	clock clock.Clock
	audit *audit.Dispatcher
}

func NewApproveSignup(
	repo domain.Repository,
	clk clock.Clock,
	audit *audit.Dispatcher,
) *ApproveSignup {
	return &ApproveSignup{
		repo:  repo,
		clock: clk,
		audit: audit,
	}
}

// Execute approves a pending signup. The capacity check runs inside the
// transaction with the session row locked: the requester's earlier view of
// free spots is never trusted, so two racing approvals of the last spot
// cannot both succeed.
func (uc *ApproveSignup) Execute(
	ctx context.Context,
	signupID uint,
	trainerID uint,
) (*models.SessionSignup, error) {

	pre, err := uc.repo.GetSignup(ctx, signupID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}

	if _, err := uc.repo.GetSessionForTrainer(ctx, pre.SessionID, trainerID); err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}

	now := uc.clock.Now()

	var su *models.SessionSignup
	err = uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		s, err := tx.LockSession(ctx, pre.SessionID)
		if err != nil {
			return err
		}

		// Re-read under the session lock; a transition that committed after
		// the first fetch must not be overwritten.
		su, err = tx.GetSignup(ctx, signupID)
		if err != nil {
			return httperr.ErrBusiness(httperr.CodeNotFound)
		}

		ledger := domain.NewLedger(tx)
		approved, err := ledger.ApprovedCount(ctx, s.ID)
		if err != nil {
			return err
		}
		if approved >= s.Capacity {
			return httperr.ErrBusiness(httperr.CodeCapacityExceeded)
		}

		if err := domain.ApproveSignup(su, trainerID, now); err != nil {
			return err
		}
		if err := tx.UpdateSignup(ctx, su); err != nil {
			return err
		}

		payload := notify.SessionPayload(s)
		payload["signup_id"] = su.ID
		payload["dog_id"] = su.DogID
		record, err := notify.NewRecord(notify.EventSignupApproved, su.Dog.OwnerID, payload)
		if err != nil {
			return err
		}
		return tx.EnqueueNotification(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &trainerID,
		Action:   "signup_approved",
		Entity:   "session_signup",
		EntityID: &su.ID,
	})

	return su, nil
}

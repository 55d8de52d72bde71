package signup

import (
	"context"

	"github.com/brightpaws/dogtrainer-api/internal/audit"
	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/models"
	"github.com/brightpaws/dogtrainer-api/internal/notify"
)

type RejectSignup struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewRejectSignup(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *RejectSignup {
	return &RejectSignup{
		repo:  repo,
		audit: audit,
	}
}

func (uc *RejectSignup) Execute(
	ctx context.Context,
	signupID uint,
	trainerID uint,
	reason string,
) (*models.SessionSignup, error) {

	pre, err := uc.repo.GetSignup(ctx, signupID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}

	if _, err := uc.repo.GetSessionForTrainer(ctx, pre.SessionID, trainerID); err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}

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

		if err := domain.RejectSignup(su, reason); err != nil {
			return err
		}
		if err := tx.UpdateSignup(ctx, su); err != nil {
			return err
		}

		payload := notify.SessionPayload(s)
		payload["signup_id"] = su.ID
		payload["dog_id"] = su.DogID
		payload["reason"] = reason
		record, err := notify.NewRecord(notify.EventSignupRejected, su.Dog.OwnerID, payload)
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
		Action:   "signup_rejected",
		Entity:   "session_signup",
		EntityID: &su.ID,
	})

	return su, nil
}

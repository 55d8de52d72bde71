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

type CancelSignupInput struct {
	SignupID  uint
	ActorID   uint
	ActorRole string
}

type CancelSignup struct {
	repo     domain.Repository
	clock    clock.Clock
	audit    *audit.Dispatcher
	promoter *Promoter
}

func NewCancelSignup(
	repo domain.Repository,
	clk clock.Clock,
	audit *audit.Dispatcher,
	promoter *Promoter,
) *CancelSignup {
	return &CancelSignup{
		repo:     repo,
		clock:    clk,
		audit:    audit,
		promoter: promoter,
	}
}

// Execute cancels a pending or approved signup. The dog's owner may cancel
// their own signup; the session's trainer may cancel any signup on it.
// Cancelling an approved signup frees a capacity slot, so the promoter runs
// in the same transaction.
func (uc *CancelSignup) Execute(
	ctx context.Context,
	in CancelSignupInput,
) (*models.SessionSignup, error) {

	pre, err := uc.repo.GetSignup(ctx, in.SignupID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}

	switch in.ActorRole {
	case models.RoleOwner:
		if _, err := uc.repo.GetDogForOwner(ctx, pre.DogID, in.ActorID); err != nil {
			return nil, httperr.ErrBusiness(httperr.CodeUnauthorized)
		}
	case models.RoleTrainer:
		if _, err := uc.repo.GetSessionForTrainer(ctx, pre.SessionID, in.ActorID); err != nil {
			return nil, httperr.ErrBusiness(httperr.CodeUnauthorized)
		}
	default:
		return nil, httperr.ErrBusiness(httperr.CodeUnauthorized)
	}

	now := uc.clock.Now()

	var su *models.SessionSignup
	err = uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		s, err := tx.LockSession(ctx, pre.SessionID)
		if err != nil {
			return err
		}

		// Re-read under the session lock; wasApproved decides whether a
		// spot frees up, so it must come from the current row, not the
		// pre-transaction snapshot.
		su, err = tx.GetSignup(ctx, in.SignupID)
		if err != nil {
			return httperr.ErrBusiness(httperr.CodeNotFound)
		}

		wasApproved := domain.SignupStatus(su.Status) == domain.SignupApproved

		if err := domain.CancelSignup(su, now); err != nil {
			return err
		}
		if err := tx.UpdateSignup(ctx, su); err != nil {
			return err
		}

		payload := notify.SessionPayload(s)
		payload["signup_id"] = su.ID
		payload["dog_id"] = su.DogID
		record, err := notify.NewRecord(notify.EventSignupCancelled, su.Dog.OwnerID, payload)
		if err != nil {
			return err
		}
		if err := tx.EnqueueNotification(ctx, record); err != nil {
			return err
		}

		if wasApproved {
			return uc.promoter.Promote(ctx, tx, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.ActorID,
		Action:   "signup_cancelled",
		Entity:   "session_signup",
		EntityID: &su.ID,
	})

	return su, nil
}

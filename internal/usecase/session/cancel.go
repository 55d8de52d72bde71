package session

import (
	"context"

	"github.com/brightpaws/dogtrainer-api/internal/audit"
	"github.com/brightpaws/dogtrainer-api/internal/clock"
	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/models"
	"github.com/brightpaws/dogtrainer-api/internal/notify"
)

type CancelSessionInput struct {
	SessionID uint
	TrainerID uint
	Reason    string
}

type CancelSession struct {
	repo  domain.Repository
	clock clock.Clock
	audit *audit.Dispatcher
}

func NewCancelSession(
	repo domain.Repository,
	clk clock.Clock,
	audit *audit.Dispatcher,
) *CancelSession {
	return &CancelSession{
		repo:  repo,
		clock: clk,
		audit: audit,
	}
}

// Execute cancels a session and fans the cancellation out to everyone with a
// stake in it: owners of pending and approved signups, and owners still on
// the waitlist. All notifications are enqueued in the cancelling transaction
// so a rollback leaves nothing half-announced.
func (uc *CancelSession) Execute(
	ctx context.Context,
	in CancelSessionInput,
) (*models.Session, error) {

	if _, err := uc.repo.GetSessionForTrainer(ctx, in.SessionID, in.TrainerID); err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}

	now := uc.clock.Now()
	var s *models.Session

	err := uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		locked, err := tx.LockSession(ctx, in.SessionID)
		if err != nil {
			return err
		}

		if err := domain.Cancel(locked, in.Reason, now); err != nil {
			return err
		}
		if err := tx.UpdateSession(ctx, locked); err != nil {
			return err
		}

		signups, err := tx.ListSignupsByStatus(ctx, locked.ID, domain.ActiveSignupStatuses()...)
		if err != nil {
			return err
		}
		waitlist, err := tx.ListWaitlist(ctx, locked.ID)
		if err != nil {
			return err
		}

		recipients := make(map[uint]struct{}, len(signups)+len(waitlist))
		for _, su := range signups {
			recipients[su.Dog.OwnerID] = struct{}{}
		}
		for _, e := range waitlist {
			recipients[e.Dog.OwnerID] = struct{}{}
		}

		payload := notify.SessionPayload(locked)
		payload["reason"] = in.Reason

		for ownerID := range recipients {
			record, err := notify.NewRecord(notify.EventSessionCancelled, ownerID, payload)
			if err != nil {
				return err
			}
			if err := tx.EnqueueNotification(ctx, record); err != nil {
				return err
			}
		}

		s = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.TrainerID,
		Action:   "session_cancelled",
		Entity:   "session",
		EntityID: &s.ID,
		Metadata: map[string]any{"reason": in.Reason},
	})

	return s, nil
}

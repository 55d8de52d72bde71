package signup

import (
	"context"

	"github.com/brightpaws/dogtrainer-api/internal/audit"
	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
)

type WithdrawWaitlist struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	promoter *Promoter
}

func NewWithdrawWaitlist(
	repo domain.Repository,
	audit *audit.Dispatcher,
	promoter *Promoter,
) *WithdrawWaitlist {
	return &WithdrawWaitlist{
		repo:     repo,
		audit:    audit,
		promoter: promoter,
	}
}

// Execute removes the owner's dog from a session waitlist. The withdrawing
// entry may be the notified head of the queue, so the promoter runs in the
// same transaction to pass the open spot along.
func (uc *WithdrawWaitlist) Execute(
	ctx context.Context,
	entryID uint,
	ownerID uint,
) error {

	entry, err := uc.repo.GetWaitlistEntry(ctx, entryID)
	if err != nil {
		return httperr.ErrBusiness(httperr.CodeWaitlistEntryMissing)
	}

	if _, err := uc.repo.GetDogForOwner(ctx, entry.DogID, ownerID); err != nil {
		return httperr.ErrBusiness(httperr.CodeUnauthorized)
	}

	err = uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		s, err := tx.LockSession(ctx, entry.SessionID)
		if err != nil {
			return err
		}

		if err := tx.DeleteWaitlistEntry(ctx, entry.ID); err != nil {
			return err
		}

		return uc.promoter.Promote(ctx, tx, s)
	})
	if err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &ownerID,
		Action:   "waitlist_withdrawn",
		Entity:   "session_waitlist",
		EntityID: &entry.ID,
	})

	return nil
}

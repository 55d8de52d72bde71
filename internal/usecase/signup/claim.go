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

type ClaimSpot struct {
	repo  domain.Repository
	clock clock.Clock
	audit *audit.Dispatcher
}

func NewClaimSpot(
	repo domain.Repository,
	clk clock.Clock,
	audit *audit.Dispatcher,
) *ClaimSpot {
	return &ClaimSpot{
		repo:  repo,
		clock: clk,
		audit: audit,
	}
}

// Execute converts the owner's waitlist entry into a pending signup: the
// entry is deleted and the signup created in one transaction. Claiming does
// not require a prior promotion notice; an owner may act before being
// notified. Capacity is still only consumed when the trainer approves.
func (uc *ClaimSpot) Execute(
	ctx context.Context,
	entryID uint,
	ownerID uint,
) (*models.SessionSignup, error) {

	entry, err := uc.repo.GetWaitlistEntry(ctx, entryID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeWaitlistEntryMissing)
	}

	dog, err := uc.repo.GetDogForOwner(ctx, entry.DogID, ownerID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeUnauthorized)
	}

	now := uc.clock.Now()
	var su *models.SessionSignup

	err = uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		s, err := tx.LockSession(ctx, entry.SessionID)
		if err != nil {
			return err
		}

		// A claim against a session that meanwhile stopped accepting
		// signups (cancelled, started, in the past) must not create one.
		if domain.Status(s.Status) != domain.StatusScheduled || !s.StartTime.After(now) {
			return httperr.ErrBusiness(httperr.CodeNotAcceptingSignups)
		}

		if err := tx.DeleteWaitlistEntry(ctx, entry.ID); err != nil {
			return err
		}

		su = &models.SessionSignup{
			SessionID:  s.ID,
			DogID:      dog.ID,
			Status:     string(domain.InitialSignupStatus()),
			SignedUpAt: now,
		}
		if err := tx.CreateSignup(ctx, su); err != nil {
			return err
		}

		payload := notify.SessionPayload(s)
		payload["dog_id"] = dog.ID
		payload["dog_name"] = dog.Name
		record, err := notify.NewRecord(notify.EventSignupRequested, s.TrainerID, payload)
		if err != nil {
			return err
		}
		return tx.EnqueueNotification(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &ownerID,
		Action:   "waitlist_claimed",
		Entity:   "session_signup",
		EntityID: &su.ID,
	})

	return su, nil
}

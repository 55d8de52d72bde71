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

// ======================================================
// INPUT / RESULT
// ======================================================

type RequestSignupInput struct {
	SessionID uint
	DogID     uint
	OwnerID   uint
	Notes     string
}

// RequestSignupResult carries either a pending signup or, when the session
// was full with its waitlist enabled, the waitlist entry the dog was queued
// on.
type RequestSignupResult struct {
	Signup        *models.SessionSignup   `json:"signup,omitempty"`
	WaitlistEntry *models.SessionWaitlist `json:"waitlist_entry,omitempty"`
	Queued        bool                    `json:"queued"`
}

// ======================================================
// USE CASE
// ======================================================

type RequestSignup struct {
	repo  domain.Repository
	clock clock.Clock
	audit *audit.Dispatcher
}

func NewRequestSignup(
	repo domain.Repository,
	clk clock.Clock,
	audit *audit.Dispatcher,
) *RequestSignup {
	return &RequestSignup{
		repo:  repo,
		clock: clk,
		audit: audit,
	}
}

func (uc *RequestSignup) Execute(
	ctx context.Context,
	in RequestSignupInput,
) (*RequestSignupResult, error) {

	dog, err := uc.repo.GetDogForOwner(ctx, in.DogID, in.OwnerID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}

	now := uc.clock.Now()
	var result RequestSignupResult

	err = uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		s, err := tx.LockSession(ctx, in.SessionID)
		if err != nil {
			return httperr.ErrBusiness(httperr.CodeNotFound)
		}

		// One active signup or waitlist entry per (session, dog). The
		// partial unique index backs this check up under concurrency.
		hasSignup, err := tx.HasActiveSignup(ctx, s.ID, dog.ID)
		if err != nil {
			return err
		}
		hasEntry, err := tx.HasWaitlistEntry(ctx, s.ID, dog.ID)
		if err != nil {
			return err
		}
		if hasSignup || hasEntry {
			return httperr.ErrBusiness(httperr.CodeAlreadySignedUp)
		}

		ledger := domain.NewLedger(tx)

		ok, err := ledger.CanAcceptSignup(ctx, s, now)
		if err != nil {
			return err
		}
		if !ok {
			return httperr.ErrBusiness(httperr.CodeNotAcceptingSignups)
		}

		full, err := ledger.IsFull(ctx, s)
		if err != nil {
			return err
		}

		if full {
			// CanAcceptSignup already implies the waitlist is enabled here.
			entry := &models.SessionWaitlist{
				SessionID:        s.ID,
				DogID:            dog.ID,
				JoinedWaitlistAt: now,
			}
			if err := tx.CreateWaitlistEntry(ctx, entry); err != nil {
				return err
			}

			result.WaitlistEntry = entry
			result.Queued = true
			return nil
		}

		su := &models.SessionSignup{
			SessionID:  s.ID,
			DogID:      dog.ID,
			Status:     string(domain.InitialSignupStatus()),
			SignedUpAt: now,
			Notes:      in.Notes,
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
		if err := tx.EnqueueNotification(ctx, record); err != nil {
			return err
		}

		result.Signup = su
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := "signup_requested"
	var entityID *uint
	if result.Queued {
		action = "waitlist_joined"
		entityID = &result.WaitlistEntry.ID
	} else {
		entityID = &result.Signup.ID
	}
	uc.audit.Dispatch(audit.Event{
		UserID:   &in.OwnerID,
		Action:   action,
		Entity:   "session_signup",
		EntityID: entityID,
	})

	return &result, nil
}

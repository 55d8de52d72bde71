package signup

import (
	"context"
	"time"

	"github.com/brightpaws/dogtrainer-api/internal/clock"
	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/models"
	"github.com/brightpaws/dogtrainer-api/internal/notify"
)

// Promoter advances the waitlist when approved capacity frees up. It is safe
// to call speculatively after any signup-state change: with no free spot or
// no eligible entry it does nothing.
type Promoter struct {
	clock clock.Clock

	// responseWindow is how long a notified entry holds the head of the
	// queue before Promote may notify it again. Zero disables
	// re-notification.
	responseWindow time.Duration
}

func NewPromoter(clk clock.Clock, responseWindow time.Duration) *Promoter {
	return &Promoter{
		clock:          clk,
		responseWindow: responseWindow,
	}
}

// Promote runs against the caller's transaction so the notification row
// commits or rolls back together with the state change that freed the spot.
//
// Selection is strict FIFO by joined_waitlist_at (id as tiebreak): first the
// oldest entry never notified; failing that, the oldest entry whose previous
// notification has lapsed past the response window. The entry is not
// converted to a signup; the owner must claim the spot.
func (p *Promoter) Promote(
	ctx context.Context,
	tx domain.Repository,
	s *models.Session,
) error {

	ledger := domain.NewLedger(tx)
	spots, err := ledger.AvailableSpots(ctx, s)
	if err != nil {
		return err
	}
	if spots == 0 {
		return nil
	}

	entry, err := tx.OldestUnnotifiedWaitlistEntry(ctx, s.ID)
	if err != nil {
		return err
	}

	now := p.clock.Now()

	if entry == nil && p.responseWindow > 0 {
		entry, err = tx.OldestNotifiedWaitlistBefore(ctx, s.ID, now.Add(-p.responseWindow))
		if err != nil {
			return err
		}
	}
	if entry == nil {
		return nil
	}

	entry.Notified = true
	entry.NotifiedAt = &now
	if err := tx.UpdateWaitlistEntry(ctx, entry); err != nil {
		return err
	}

	dog, err := tx.GetDog(ctx, entry.DogID)
	if err != nil {
		return err
	}

	payload := notify.SessionPayload(s)
	payload["waitlist_entry_id"] = entry.ID
	payload["dog_id"] = dog.ID
	payload["response_window_hours"] = int(p.responseWindow / time.Hour)
	record, err := notify.NewRecord(notify.EventWaitlistSpotAvailable, dog.OwnerID, payload)
	if err != nil {
		return err
	}
	return tx.EnqueueNotification(ctx, record)
}

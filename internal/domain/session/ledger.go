package session

import (
	"context"
	"time"

	"github.com/brightpaws/dogtrainer-api/internal/models"
)

// Ledger is the derived capacity view over persisted signup rows. Counts are
// recomputed from the repository on every call instead of being cached, so
// displayed capacity can never drift from the signup records. Only approved
// signups consume capacity; pending ones do not.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

func (l *Ledger) ApprovedCount(ctx context.Context, sessionID uint) (int, error) {
	return l.repo.CountApprovedSignups(ctx, sessionID)
}

func (l *Ledger) AvailableSpots(ctx context.Context, s *models.Session) (int, error) {
	approved, err := l.repo.CountApprovedSignups(ctx, s.ID)
	if err != nil {
		return 0, err
	}

	spots := s.Capacity - approved
	if spots < 0 {
		spots = 0
	}
	return spots, nil
}

func (l *Ledger) IsFull(ctx context.Context, s *models.Session) (bool, error) {
	spots, err := l.AvailableSpots(ctx, s)
	if err != nil {
		return false, err
	}
	return spots == 0, nil
}

// CanAcceptSignup reports whether a new signup request is admissible: the
// session is still scheduled, has not started, and either has a free spot or
// can queue the dog on its waitlist.
func (l *Ledger) CanAcceptSignup(ctx context.Context, s *models.Session, now time.Time) (bool, error) {
	if Status(s.Status) != StatusScheduled {
		return false, nil
	}
	if !s.StartTime.After(now) {
		return false, nil
	}

	full, err := l.IsFull(ctx, s)
	if err != nil {
		return false, err
	}
	return !full || s.WaitlistEnabled, nil
}

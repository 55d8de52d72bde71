package session

import (
	"context"

	"github.com/brightpaws/dogtrainer-api/internal/audit"
	"github.com/brightpaws/dogtrainer-api/internal/clock"
	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/models"
)

type StartSession struct {
	repo  domain.Repository
	clock clock.Clock
	audit *audit.Dispatcher
}

func NewStartSession(
	repo domain.Repository,
	clk clock.Clock,
	audit *audit.Dispatcher,
) *StartSession {
	return &StartSession{
		repo:  repo,
		clock: clk,
		audit: audit,
	}
}

// Execute moves a scheduled session to in_progress. The start gate (start
// time reached, minimum participants approved) is evaluated under the
// session row lock so a concurrent cancellation cannot slip underneath it.
func (uc *StartSession) Execute(
	ctx context.Context,
	sessionID uint,
	trainerID uint,
) (*models.Session, error) {

	if _, err := uc.repo.GetSessionForTrainer(ctx, sessionID, trainerID); err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}

	now := uc.clock.Now()
	var s *models.Session

	err := uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		locked, err := tx.LockSession(ctx, sessionID)
		if err != nil {
			return err
		}

		approved, err := tx.CountApprovedSignups(ctx, locked.ID)
		if err != nil {
			return err
		}

		if err := domain.Start(locked, approved, now); err != nil {
			return err
		}
		if err := tx.UpdateSession(ctx, locked); err != nil {
			return err
		}

		s = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &trainerID,
		Action:   "session_started",
		Entity:   "session",
		EntityID: &s.ID,
	})

	return s, nil
}

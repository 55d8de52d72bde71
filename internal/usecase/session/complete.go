package session

import (
	"context"

	"github.com/brightpaws/dogtrainer-api/internal/audit"
	"github.com/brightpaws/dogtrainer-api/internal/clock"
	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/models"
)

type CompleteSession struct {
	repo  domain.Repository
	clock clock.Clock
	audit *audit.Dispatcher
}

func NewCompleteSession(
	repo domain.Repository,
	clk clock.Clock,
	audit *audit.Dispatcher,
) *CompleteSession {
	return &CompleteSession{
		repo:  repo,
		clock: clk,
		audit: audit,
	}
}

func (uc *CompleteSession) Execute(
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

		if err := domain.Complete(locked, now); err != nil {
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
		Action:   "session_completed",
		Entity:   "session",
		EntityID: &s.ID,
	})

	return s, nil
}

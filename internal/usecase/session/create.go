package session

import (
	"context"
	"time"

	"github.com/brightpaws/dogtrainer-api/internal/audit"
	"github.com/brightpaws/dogtrainer-api/internal/clock"
	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateSessionInput struct {
	TrainerID uint

	Title       string
	Description string
	Location    string

	StartTime time.Time
	EndTime   time.Time

	Capacity            int
	MinimumParticipants int
	WaitlistEnabled     bool
	SessionType         string
	Price               float64
}

// ======================================================
// USE CASE
// ======================================================

type CreateSession struct {
	repo  domain.Repository
	clock clock.Clock
	audit *audit.Dispatcher
}

func NewCreateSession(
	repo domain.Repository,
	clk clock.Clock,
	audit *audit.Dispatcher,
) *CreateSession {
	return &CreateSession{
		repo:  repo,
		clock: clk,
		audit: audit,
	}
}

func (uc *CreateSession) Execute(
	ctx context.Context,
	in CreateSessionInput,
) (*models.Session, error) {

	if !in.EndTime.After(in.StartTime) {
		return nil, httperr.ErrBusiness("invalid_time_range")
	}
	if in.Capacity < 1 {
		return nil, httperr.ErrBusiness("invalid_capacity")
	}
	if in.MinimumParticipants < 0 {
		return nil, httperr.ErrBusiness("invalid_minimum_participants")
	}
	if !in.StartTime.After(uc.clock.Now()) {
		return nil, httperr.ErrBusiness("start_time_in_past")
	}

	switch in.SessionType {
	case models.SessionTypeIndividual, models.SessionTypeGroup, models.SessionTypeDaycare:
	case "":
		in.SessionType = models.SessionTypeGroup
	default:
		return nil, httperr.ErrBusiness("invalid_session_type")
	}

	minimum := in.MinimumParticipants
	if minimum == 0 {
		minimum = 1
	}

	s := &models.Session{
		TrainerID:           in.TrainerID,
		Title:               in.Title,
		Description:         in.Description,
		Location:            in.Location,
		StartTime:           in.StartTime,
		EndTime:             in.EndTime,
		Capacity:            in.Capacity,
		MinimumParticipants: minimum,
		WaitlistEnabled:     in.WaitlistEnabled,
		SessionType:         in.SessionType,
		Price:               in.Price,
		Status:              string(domain.StatusScheduled),
	}

	if err := uc.repo.CreateSession(ctx, s); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.TrainerID,
		Action:   "session_created",
		Entity:   "session",
		EntityID: &s.ID,
	})

	return s, nil
}

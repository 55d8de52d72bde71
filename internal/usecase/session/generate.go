package session

import (
	"context"
	"time"

	"github.com/brightpaws/dogtrainer-api/internal/audit"
	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/models"
	"github.com/brightpaws/dogtrainer-api/internal/recurrence"
)

// ======================================================
// INPUT / RESULT
// ======================================================

type GenerateSessionsInput struct {
	ScheduleID uint
	TrainerID  uint

	RangeStart time.Time
	RangeEnd   time.Time

	// Location in which the schedule's weekdays and times-of-day are
	// interpreted; usually the trainer's timezone.
	Location *time.Location
}

type GenerateSessionsResult struct {
	Created []models.Session `json:"created"`
	Skipped int              `json:"skipped"`
}

// ======================================================
// USE CASE
// ======================================================

type GenerateSessions struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewGenerateSessions(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *GenerateSessions {
	return &GenerateSessions{
		repo:  repo,
		audit: audit,
	}
}

// Execute materializes sessions from a daycare schedule over a date range.
// Dates that already carry a session generated from the same schedule are
// skipped, so re-running generation for an overlapping range is harmless.
func (uc *GenerateSessions) Execute(
	ctx context.Context,
	in GenerateSessionsInput,
) (*GenerateSessionsResult, error) {

	sched, err := uc.repo.GetScheduleForTrainer(ctx, in.ScheduleID, in.TrainerID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}

	drafts := recurrence.Expand(recurrence.Template{
		Weekdays:   sched.Weekdays(),
		StartTime:  sched.StartTime,
		EndTime:    sched.EndTime,
		ValidFrom:  sched.ValidFrom,
		ValidUntil: sched.ValidUntil,
		Active:     sched.Active,
		Location:   in.Location,
	}, in.RangeStart, in.RangeEnd)

	result := &GenerateSessionsResult{Created: []models.Session{}}

	for _, draft := range drafts {
		dayStart := draft.Date
		dayEnd := draft.Date.AddDate(0, 0, 1)

		exists, err := uc.repo.SessionExistsInRange(ctx, sched.ID, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		if exists {
			result.Skipped++
			continue
		}

		scheduleID := sched.ID
		s := models.Session{
			ScheduleID:          &scheduleID,
			TrainerID:           sched.TrainerID,
			Title:               sched.Title,
			Description:         sched.Description,
			Location:            sched.Location,
			StartTime:           draft.Start,
			EndTime:             draft.End,
			Capacity:            sched.Capacity,
			MinimumParticipants: 1,
			WaitlistEnabled:     sched.WaitlistEnabled,
			SessionType:         models.SessionTypeDaycare,
			Price:               sched.Price,
			Status:              string(domain.StatusScheduled),
		}

		if err := uc.repo.CreateSession(ctx, &s); err != nil {
			return nil, err
		}
		result.Created = append(result.Created, s)
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.TrainerID,
		Action:   "sessions_generated",
		Entity:   "daycare_schedule",
		EntityID: &sched.ID,
		Metadata: map[string]any{
			"created": len(result.Created),
			"skipped": result.Skipped,
		},
	})

	return result, nil
}

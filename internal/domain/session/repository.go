package session

import (
	"context"
	"time"

	"github.com/brightpaws/dogtrainer-api/internal/models"
)

// Repository is the persistence port for the signup/waitlist/session
// workflows. Capacity-affecting writes run inside WithTx with the session
// row locked, so the transactional capacity re-check cannot race a
// concurrent approval or cancellation.
type Repository interface {
	// WithTx runs fn against a transactional view of the repository.
	// Returning an error rolls back everything fn did.
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	// -------- Session --------
	GetSession(ctx context.Context, id uint) (*models.Session, error)
	GetSessionForTrainer(ctx context.Context, sessionID, trainerID uint) (*models.Session, error)
	// LockSession fetches the session with a row-level write lock. Only
	// meaningful inside WithTx.
	LockSession(ctx context.Context, id uint) (*models.Session, error)
	CreateSession(ctx context.Context, s *models.Session) error
	UpdateSession(ctx context.Context, s *models.Session) error
	SessionExistsInRange(ctx context.Context, scheduleID uint, dayStart, dayEnd time.Time) (bool, error)
	ListSessionsForTrainer(ctx context.Context, trainerID uint, start, end time.Time) ([]models.Session, error)
	ListOpenSessions(ctx context.Context, after time.Time, trainerID uint) ([]models.Session, error)

	// -------- Schedule --------
	GetScheduleForTrainer(ctx context.Context, scheduleID, trainerID uint) (*models.DaycareSchedule, error)

	// -------- Dog --------
	GetDog(ctx context.Context, id uint) (*models.Dog, error)
	GetDogForOwner(ctx context.Context, dogID, ownerID uint) (*models.Dog, error)

	// -------- Signup --------
	GetSignup(ctx context.Context, id uint) (*models.SessionSignup, error)
	CreateSignup(ctx context.Context, su *models.SessionSignup) error
	UpdateSignup(ctx context.Context, su *models.SessionSignup) error
	CountApprovedSignups(ctx context.Context, sessionID uint) (int, error)
	HasActiveSignup(ctx context.Context, sessionID, dogID uint) (bool, error)
	ListSignupsByStatus(ctx context.Context, sessionID uint, statuses ...string) ([]models.SessionSignup, error)
	ListSignupsForOwner(ctx context.Context, ownerID uint) ([]models.SessionSignup, error)

	// -------- Waitlist --------
	GetWaitlistEntry(ctx context.Context, id uint) (*models.SessionWaitlist, error)
	CreateWaitlistEntry(ctx context.Context, e *models.SessionWaitlist) error
	UpdateWaitlistEntry(ctx context.Context, e *models.SessionWaitlist) error
	DeleteWaitlistEntry(ctx context.Context, id uint) error
	HasWaitlistEntry(ctx context.Context, sessionID, dogID uint) (bool, error)
	ListWaitlist(ctx context.Context, sessionID uint) ([]models.SessionWaitlist, error)
	// OldestUnnotifiedWaitlistEntry returns the FIFO head among entries not
	// yet notified, or nil when none exists.
	OldestUnnotifiedWaitlistEntry(ctx context.Context, sessionID uint) (*models.SessionWaitlist, error)
	// OldestNotifiedWaitlistBefore returns the FIFO head among entries whose
	// notification is older than cutoff, or nil when none exists.
	OldestNotifiedWaitlistBefore(ctx context.Context, sessionID uint, cutoff time.Time) (*models.SessionWaitlist, error)

	// -------- Notification outbox --------
	EnqueueNotification(ctx context.Context, n *models.Notification) error
}

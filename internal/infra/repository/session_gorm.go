package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/models"
)

type SessionGormRepository struct {
	db *gorm.DB
}

func NewSessionGormRepository(db *gorm.DB) *SessionGormRepository {
	return &SessionGormRepository{db: db}
}

// WithTx wraps fn in a database transaction; the callback sees a repository
// bound to the transaction handle.
func (r *SessionGormRepository) WithTx(ctx context.Context, fn func(tx domain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&SessionGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Session
// --------------------------------------------------

func (r *SessionGormRepository) GetSession(
	ctx context.Context,
	id uint,
) (*models.Session, error) {

	var s models.Session
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionGormRepository) GetSessionForTrainer(
	ctx context.Context,
	sessionID uint,
	trainerID uint,
) (*models.Session, error) {

	var s models.Session
	if err := r.db.WithContext(ctx).
		Where("id = ? AND trainer_id = ?", sessionID, trainerID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionGormRepository) LockSession(
	ctx context.Context,
	id uint,
) (*models.Session, error) {

	var s models.Session
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionGormRepository) CreateSession(
	ctx context.Context,
	s *models.Session,
) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SessionGormRepository) UpdateSession(
	ctx context.Context,
	s *models.Session,
) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *SessionGormRepository) SessionExistsInRange(
	ctx context.Context,
	scheduleID uint,
	dayStart time.Time,
	dayEnd time.Time,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where(
			"schedule_id = ? AND start_time >= ? AND start_time < ?",
			scheduleID, dayStart, dayEnd,
		).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *SessionGormRepository) ListSessionsForTrainer(
	ctx context.Context,
	trainerID uint,
	start time.Time,
	end time.Time,
) ([]models.Session, error) {

	var sessions []models.Session
	if err := r.db.WithContext(ctx).
		Where(
			"trainer_id = ? AND start_time >= ? AND start_time < ?",
			trainerID, start, end,
		).
		Order("start_time ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *SessionGormRepository) ListOpenSessions(
	ctx context.Context,
	after time.Time,
	trainerID uint,
) ([]models.Session, error) {

	q := r.db.WithContext(ctx).
		Preload("Trainer").
		Where("status = ? AND start_time > ?", string(domain.StatusScheduled), after)

	if trainerID != 0 {
		q = q.Where("trainer_id = ?", trainerID)
	}

	var sessions []models.Session
	if err := q.Order("start_time ASC").Find(&sessions).Error; err != nil {
		return nil, err
	}

	return sessions, nil
}

// --------------------------------------------------
// Schedule
// --------------------------------------------------

func (r *SessionGormRepository) GetScheduleForTrainer(
	ctx context.Context,
	scheduleID uint,
	trainerID uint,
) (*models.DaycareSchedule, error) {

	var sched models.DaycareSchedule
	if err := r.db.WithContext(ctx).
		Where("id = ? AND trainer_id = ?", scheduleID, trainerID).
		First(&sched).Error; err != nil {
		return nil, err
	}
	return &sched, nil
}

// --------------------------------------------------
// Dog
// --------------------------------------------------

func (r *SessionGormRepository) GetDog(
	ctx context.Context,
	id uint,
) (*models.Dog, error) {

	var dog models.Dog
	if err := r.db.WithContext(ctx).First(&dog, id).Error; err != nil {
		return nil, err
	}
	return &dog, nil
}

func (r *SessionGormRepository) GetDogForOwner(
	ctx context.Context,
	dogID uint,
	ownerID uint,
) (*models.Dog, error) {

	var dog models.Dog
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", dogID, ownerID).
		First(&dog).Error; err != nil {
		return nil, err
	}
	return &dog, nil
}

// --------------------------------------------------
// Signup
// --------------------------------------------------

func (r *SessionGormRepository) GetSignup(
	ctx context.Context,
	id uint,
) (*models.SessionSignup, error) {

	var su models.SessionSignup
	if err := r.db.WithContext(ctx).
		Preload("Dog").
		First(&su, id).Error; err != nil {
		return nil, err
	}
	return &su, nil
}

func (r *SessionGormRepository) CreateSignup(
	ctx context.Context,
	su *models.SessionSignup,
) error {
	return r.db.WithContext(ctx).Create(su).Error
}

func (r *SessionGormRepository) UpdateSignup(
	ctx context.Context,
	su *models.SessionSignup,
) error {
	return r.db.WithContext(ctx).Save(su).Error
}

func (r *SessionGormRepository) CountApprovedSignups(
	ctx context.Context,
	sessionID uint,
) (int, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SessionSignup{}).
		Where("session_id = ? AND status = ?", sessionID, string(domain.SignupApproved)).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return int(count), nil
}

func (r *SessionGormRepository) HasActiveSignup(
	ctx context.Context,
	sessionID uint,
	dogID uint,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SessionSignup{}).
		Where(
			"session_id = ? AND dog_id = ? AND status IN ?",
			sessionID, dogID, domain.ActiveSignupStatuses(),
		).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *SessionGormRepository) ListSignupsByStatus(
	ctx context.Context,
	sessionID uint,
	statuses ...string,
) ([]models.SessionSignup, error) {

	var signups []models.SessionSignup
	if err := r.db.WithContext(ctx).
		Preload("Dog").
		Where("session_id = ? AND status IN ?", sessionID, statuses).
		Order("signed_up_at ASC").
		Find(&signups).Error; err != nil {
		return nil, err
	}

	return signups, nil
}

func (r *SessionGormRepository) ListSignupsForOwner(
	ctx context.Context,
	ownerID uint,
) ([]models.SessionSignup, error) {

	var signups []models.SessionSignup
	if err := r.db.WithContext(ctx).
		Preload("Dog").
		Preload("Session").
		Joins("JOIN dogs ON dogs.id = session_signups.dog_id").
		Where("dogs.owner_id = ?", ownerID).
		Order("session_signups.signed_up_at DESC").
		Find(&signups).Error; err != nil {
		return nil, err
	}

	return signups, nil
}

// --------------------------------------------------
// Waitlist
// --------------------------------------------------

func (r *SessionGormRepository) GetWaitlistEntry(
	ctx context.Context,
	id uint,
) (*models.SessionWaitlist, error) {

	var entry models.SessionWaitlist
	if err := r.db.WithContext(ctx).
		Preload("Dog").
		First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *SessionGormRepository) CreateWaitlistEntry(
	ctx context.Context,
	e *models.SessionWaitlist,
) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *SessionGormRepository) UpdateWaitlistEntry(
	ctx context.Context,
	e *models.SessionWaitlist,
) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *SessionGormRepository) DeleteWaitlistEntry(
	ctx context.Context,
	id uint,
) error {
	return r.db.WithContext(ctx).Delete(&models.SessionWaitlist{}, id).Error
}

func (r *SessionGormRepository) HasWaitlistEntry(
	ctx context.Context,
	sessionID uint,
	dogID uint,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SessionWaitlist{}).
		Where("session_id = ? AND dog_id = ?", sessionID, dogID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *SessionGormRepository) ListWaitlist(
	ctx context.Context,
	sessionID uint,
) ([]models.SessionWaitlist, error) {

	var entries []models.SessionWaitlist
	if err := r.db.WithContext(ctx).
		Preload("Dog").
		Where("session_id = ?", sessionID).
		Order("joined_waitlist_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *SessionGormRepository) OldestUnnotifiedWaitlistEntry(
	ctx context.Context,
	sessionID uint,
) (*models.SessionWaitlist, error) {

	var entry models.SessionWaitlist
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND notified = ?", sessionID, false).
		Order("joined_waitlist_at ASC, id ASC").
		First(&entry).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *SessionGormRepository) OldestNotifiedWaitlistBefore(
	ctx context.Context,
	sessionID uint,
	cutoff time.Time,
) (*models.SessionWaitlist, error) {

	var entry models.SessionWaitlist
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND notified = ? AND notified_at < ?", sessionID, true, cutoff).
		Order("joined_waitlist_at ASC, id ASC").
		First(&entry).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// --------------------------------------------------
// Notification outbox
// --------------------------------------------------

func (r *SessionGormRepository) EnqueueNotification(
	ctx context.Context,
	n *models.Notification,
) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// Compile-time check
var _ domain.Repository = (*SessionGormRepository)(nil)

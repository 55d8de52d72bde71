// Package testfixtures provides in-memory test doubles shared by the
// use case test suites.
package testfixtures

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/models"
)

var ErrNotFound = errors.New("record not found")

// MemRepo is an in-memory implementation of the session repository port.
// WithTx runs the callback against the same store without isolation; tests
// assert on observable outcomes, not rollback mechanics.
type MemRepo struct {
	mu sync.Mutex

	Sessions  map[uint]*models.Session
	Schedules map[uint]*models.DaycareSchedule
	Dogs      map[uint]*models.Dog
	Signups   map[uint]*models.SessionSignup
	Waitlist  map[uint]*models.SessionWaitlist

	Notifications []*models.Notification

	nextID uint
}

var _ domain.Repository = (*MemRepo)(nil)

func NewMemRepo() *MemRepo {
	return &MemRepo{
		Sessions:  make(map[uint]*models.Session),
		Schedules: make(map[uint]*models.DaycareSchedule),
		Dogs:      make(map[uint]*models.Dog),
		Signups:   make(map[uint]*models.SessionSignup),
		Waitlist:  make(map[uint]*models.SessionWaitlist),
	}
}

func (m *MemRepo) id() uint {
	m.nextID++
	return m.nextID
}

// -------- Seeding --------

func (m *MemRepo) SeedDog(d models.Dog) *models.Dog {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == 0 {
		d.ID = m.id()
	}
	m.Dogs[d.ID] = &d
	return &d
}

func (m *MemRepo) SeedSession(s models.Session) *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == 0 {
		s.ID = m.id()
	}
	m.Sessions[s.ID] = &s
	return &s
}

func (m *MemRepo) SeedSchedule(s models.DaycareSchedule) *models.DaycareSchedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == 0 {
		s.ID = m.id()
	}
	m.Schedules[s.ID] = &s
	return &s
}

func (m *MemRepo) SeedSignup(su models.SessionSignup) *models.SessionSignup {
	m.mu.Lock()
	defer m.mu.Unlock()
	if su.ID == 0 {
		su.ID = m.id()
	}
	if dog, ok := m.Dogs[su.DogID]; ok {
		su.Dog = *dog
	}
	m.Signups[su.ID] = &su
	return &su
}

func (m *MemRepo) SeedWaitlistEntry(e models.SessionWaitlist) *models.SessionWaitlist {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == 0 {
		e.ID = m.id()
	}
	if dog, ok := m.Dogs[e.DogID]; ok {
		e.Dog = *dog
	}
	m.Waitlist[e.ID] = &e
	return &e
}

// -------- Transaction --------

func (m *MemRepo) WithTx(ctx context.Context, fn func(tx domain.Repository) error) error {
	return fn(m)
}

// -------- Session --------

func (m *MemRepo) GetSession(ctx context.Context, id uint) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *MemRepo) GetSessionForTrainer(ctx context.Context, sessionID, trainerID uint) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sessions[sessionID]
	if !ok || s.TrainerID != trainerID {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *MemRepo) LockSession(ctx context.Context, id uint) (*models.Session, error) {
	return m.GetSession(ctx, id)
}

func (m *MemRepo) CreateSession(ctx context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == 0 {
		s.ID = m.id()
	}
	m.Sessions[s.ID] = s
	return nil
}

func (m *MemRepo) UpdateSession(ctx context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions[s.ID] = s
	return nil
}

func (m *MemRepo) SessionExistsInRange(ctx context.Context, scheduleID uint, dayStart, dayEnd time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Sessions {
		if s.ScheduleID == nil || *s.ScheduleID != scheduleID {
			continue
		}
		if !s.StartTime.Before(dayStart) && s.StartTime.Before(dayEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemRepo) ListSessionsForTrainer(ctx context.Context, trainerID uint, start, end time.Time) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, s := range m.Sessions {
		if s.TrainerID == trainerID && !s.StartTime.Before(start) && s.StartTime.Before(end) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *MemRepo) ListOpenSessions(ctx context.Context, after time.Time, trainerID uint) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, s := range m.Sessions {
		if s.Status != string(domain.StatusScheduled) || !s.StartTime.After(after) {
			continue
		}
		if trainerID != 0 && s.TrainerID != trainerID {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// -------- Schedule --------

func (m *MemRepo) GetScheduleForTrainer(ctx context.Context, scheduleID, trainerID uint) (*models.DaycareSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Schedules[scheduleID]
	if !ok || s.TrainerID != trainerID {
		return nil, ErrNotFound
	}
	return s, nil
}

// -------- Dog --------

func (m *MemRepo) GetDog(ctx context.Context, id uint) (*models.Dog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.Dogs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *MemRepo) GetDogForOwner(ctx context.Context, dogID, ownerID uint) (*models.Dog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.Dogs[dogID]
	if !ok || d.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return d, nil
}

// -------- Signup --------

func (m *MemRepo) GetSignup(ctx context.Context, id uint) (*models.SessionSignup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	su, ok := m.Signups[id]
	if !ok {
		return nil, ErrNotFound
	}
	if dog, ok := m.Dogs[su.DogID]; ok {
		su.Dog = *dog
	}
	return su, nil
}

func (m *MemRepo) CreateSignup(ctx context.Context, su *models.SessionSignup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if su.ID == 0 {
		su.ID = m.id()
	}
	if dog, ok := m.Dogs[su.DogID]; ok {
		su.Dog = *dog
	}
	m.Signups[su.ID] = su
	return nil
}

func (m *MemRepo) UpdateSignup(ctx context.Context, su *models.SessionSignup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Signups[su.ID] = su
	return nil
}

func (m *MemRepo) CountApprovedSignups(ctx context.Context, sessionID uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, su := range m.Signups {
		if su.SessionID == sessionID && su.Status == string(domain.SignupApproved) {
			count++
		}
	}
	return count, nil
}

func (m *MemRepo) HasActiveSignup(ctx context.Context, sessionID, dogID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, su := range m.Signups {
		if su.SessionID != sessionID || su.DogID != dogID {
			continue
		}
		for _, st := range domain.ActiveSignupStatuses() {
			if su.Status == st {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *MemRepo) ListSignupsByStatus(ctx context.Context, sessionID uint, statuses ...string) ([]models.SessionSignup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}
	var out []models.SessionSignup
	for _, su := range m.Signups {
		if su.SessionID != sessionID || !want[su.Status] {
			continue
		}
		cp := *su
		if dog, ok := m.Dogs[su.DogID]; ok {
			cp.Dog = *dog
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SignedUpAt.Before(out[j].SignedUpAt) })
	return out, nil
}

func (m *MemRepo) ListSignupsForOwner(ctx context.Context, ownerID uint) ([]models.SessionSignup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SessionSignup
	for _, su := range m.Signups {
		dog, ok := m.Dogs[su.DogID]
		if !ok || dog.OwnerID != ownerID {
			continue
		}
		cp := *su
		cp.Dog = *dog
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SignedUpAt.Before(out[j].SignedUpAt) })
	return out, nil
}

// -------- Waitlist --------

func (m *MemRepo) GetWaitlistEntry(ctx context.Context, id uint) (*models.SessionWaitlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Waitlist[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *MemRepo) CreateWaitlistEntry(ctx context.Context, e *models.SessionWaitlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == 0 {
		e.ID = m.id()
	}
	if dog, ok := m.Dogs[e.DogID]; ok {
		e.Dog = *dog
	}
	m.Waitlist[e.ID] = e
	return nil
}

func (m *MemRepo) UpdateWaitlistEntry(ctx context.Context, e *models.SessionWaitlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Waitlist[e.ID] = e
	return nil
}

func (m *MemRepo) DeleteWaitlistEntry(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Waitlist, id)
	return nil
}

func (m *MemRepo) HasWaitlistEntry(ctx context.Context, sessionID, dogID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Waitlist {
		if e.SessionID == sessionID && e.DogID == dogID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemRepo) ListWaitlist(ctx context.Context, sessionID uint) ([]models.SessionWaitlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SessionWaitlist
	for _, e := range m.Waitlist {
		if e.SessionID != sessionID {
			continue
		}
		cp := *e
		if dog, ok := m.Dogs[e.DogID]; ok {
			cp.Dog = *dog
		}
		out = append(out, cp)
	}
	sortWaitlist(out)
	return out, nil
}

func (m *MemRepo) OldestUnnotifiedWaitlistEntry(ctx context.Context, sessionID uint) (*models.SessionWaitlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var candidates []models.SessionWaitlist
	for _, e := range m.Waitlist {
		if e.SessionID == sessionID && !e.Notified {
			candidates = append(candidates, *e)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sortWaitlist(candidates)
	return m.Waitlist[candidates[0].ID], nil
}

func (m *MemRepo) OldestNotifiedWaitlistBefore(ctx context.Context, sessionID uint, cutoff time.Time) (*models.SessionWaitlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var candidates []models.SessionWaitlist
	for _, e := range m.Waitlist {
		if e.SessionID == sessionID && e.Notified && e.NotifiedAt != nil && e.NotifiedAt.Before(cutoff) {
			candidates = append(candidates, *e)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sortWaitlist(candidates)
	return m.Waitlist[candidates[0].ID], nil
}

func sortWaitlist(entries []models.SessionWaitlist) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].JoinedWaitlistAt.Equal(entries[j].JoinedWaitlistAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].JoinedWaitlistAt.Before(entries[j].JoinedWaitlistAt)
	})
}

// -------- Notification outbox --------

func (m *MemRepo) EnqueueNotification(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, n)
	return nil
}

// NotificationsByType filters enqueued outbox rows, newest last.
func (m *MemRepo) NotificationsByType(eventType string) []*models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Notification
	for _, n := range m.Notifications {
		if n.EventType == eventType {
			out = append(out, n)
		}
	}
	return out
}

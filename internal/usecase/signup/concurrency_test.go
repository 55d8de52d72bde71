package signup

import (
	"context"
	"testing"
	"time"

	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/models"
	"github.com/brightpaws/dogtrainer-api/internal/notify"
	"github.com/brightpaws/dogtrainer-api/internal/testfixtures"
)

// detachedRepo mimics SQL read semantics: GetSignup returns a detached copy
// of the row, and beforeLock runs once at LockSession time, standing in for
// a competing transaction that commits between the first fetch and the lock.
type detachedRepo struct {
	*testfixtures.MemRepo
	beforeLock func()
}

func (r *detachedRepo) GetSignup(ctx context.Context, id uint) (*models.SessionSignup, error) {
	su, err := r.MemRepo.GetSignup(ctx, id)
	if err != nil {
		return nil, err
	}
	row := *su
	return &row, nil
}

func (r *detachedRepo) LockSession(ctx context.Context, id uint) (*models.Session, error) {
	if r.beforeLock != nil {
		hook := r.beforeLock
		r.beforeLock = nil
		hook()
	}
	return r.MemRepo.LockSession(ctx, id)
}

func (r *detachedRepo) WithTx(ctx context.Context, fn func(tx domain.Repository) error) error {
	return fn(r)
}

func TestApproveLosesRaceToCancel(t *testing.T) {
	f := newFixture(t, 3, true)
	su := f.pendingSignup(t, f.dog.ID)

	repo := &detachedRepo{MemRepo: f.repo}
	repo.beforeLock = func() {
		f.repo.Signups[su.ID].Status = string(domain.SignupCancelled)
	}

	uc := NewApproveSignup(repo, f.clock, f.audit)

	_, err := uc.Execute(context.Background(), su.ID, trainerID)
	if !httperr.IsBusiness(err, httperr.CodeInvalidState) {
		t.Fatalf("expected %s, got %v", httperr.CodeInvalidState, err)
	}

	if got := f.repo.Signups[su.ID].Status; got != string(domain.SignupCancelled) {
		t.Errorf("status = %s, cancelled signup must stay cancelled", got)
	}
}

func TestRejectLosesRaceToApprove(t *testing.T) {
	f := newFixture(t, 3, true)
	su := f.pendingSignup(t, f.dog.ID)

	repo := &detachedRepo{MemRepo: f.repo}
	repo.beforeLock = func() {
		f.repo.Signups[su.ID].Status = string(domain.SignupApproved)
	}

	uc := NewRejectSignup(repo, f.audit)

	_, err := uc.Execute(context.Background(), su.ID, trainerID, "no room")
	if !httperr.IsBusiness(err, httperr.CodeInvalidState) {
		t.Fatalf("expected %s, got %v", httperr.CodeInvalidState, err)
	}

	if got := f.repo.Signups[su.ID].Status; got != string(domain.SignupApproved) {
		t.Errorf("status = %s, approved signup must survive a stale reject", got)
	}
}

// A cancel that races an approval must see the approved row, so the freed
// spot still reaches the waitlist.
func TestCancelRacingApprovalStillPromotes(t *testing.T) {
	f := newFixture(t, 1, true)
	su := f.pendingSignup(t, f.dog.ID)
	queuedDog, _ := f.waitlistedDog(otherID, testNow.Add(time.Minute))

	repo := &detachedRepo{MemRepo: f.repo}
	repo.beforeLock = func() {
		f.repo.Signups[su.ID].Status = string(domain.SignupApproved)
	}

	promoter := NewPromoter(f.clock, responseWindow)
	uc := NewCancelSignup(repo, f.clock, f.audit, promoter)

	cancelled, err := uc.Execute(context.Background(), CancelSignupInput{
		SignupID:  su.ID,
		ActorID:   ownerID,
		ActorRole: models.RoleOwner,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != string(domain.SignupCancelled) {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	promos := f.repo.NotificationsByType(notify.EventWaitlistSpotAvailable)
	if len(promos) != 1 || promos[0].RecipientID != queuedDog.OwnerID {
		t.Fatalf("expected promotion notification to owner %d, got %v", queuedDog.OwnerID, promos)
	}
}

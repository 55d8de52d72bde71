package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/httpresp"
	"github.com/brightpaws/dogtrainer-api/internal/middleware"
	"github.com/brightpaws/dogtrainer-api/internal/models"
	usecase "github.com/brightpaws/dogtrainer-api/internal/usecase/session"
)

// ======================================================
// HANDLER
// ======================================================

type SessionHandler struct {
	db *gorm.DB

	create   *usecase.CreateSession
	start    *usecase.StartSession
	complete *usecase.CompleteSession
	cancel   *usecase.CancelSession
}

func NewSessionHandler(
	db *gorm.DB,
	create *usecase.CreateSession,
	start *usecase.StartSession,
	complete *usecase.CompleteSession,
	cancel *usecase.CancelSession,
) *SessionHandler {
	return &SessionHandler{
		db:       db,
		create:   create,
		start:    start,
		complete: complete,
		cancel:   cancel,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateSessionRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`

	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`

	Capacity            int     `json:"capacity" binding:"required,min=1"`
	MinimumParticipants int     `json:"minimum_participants" binding:"omitempty,min=0"`
	WaitlistEnabled     *bool   `json:"waitlist_enabled"`
	SessionType         string  `json:"session_type" binding:"omitempty,oneof=individual group daycare"`
	Price               float64 `json:"price"`
}

type UpdateSessionRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`

	Capacity            *int     `json:"capacity" binding:"omitempty,min=1"`
	MinimumParticipants *int     `json:"minimum_participants" binding:"omitempty,min=1"`
	WaitlistEnabled     *bool    `json:"waitlist_enabled"`
	Price               *float64 `json:"price"`
}

type CancelSessionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

func (h *SessionHandler) Create(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid session payload.")
		return
	}

	var trainer models.User
	if err := h.db.First(&trainer, trainerID).Error; err != nil {
		httperr.Internal(c, "trainer_not_found", "Trainer not found.")
		return
	}
	loc := locationForUser(&trainer)

	start, err := parseDateTimeIn(loc, req.Date, req.StartTime)
	if err != nil {
		httperr.BadRequest(c, "invalid_date_or_time", "Invalid date or start time.")
		return
	}
	end, err := parseDateTimeIn(loc, req.Date, req.EndTime)
	if err != nil {
		httperr.BadRequest(c, "invalid_date_or_time", "Invalid date or end time.")
		return
	}

	waitlist := true
	if req.WaitlistEnabled != nil {
		waitlist = *req.WaitlistEnabled
	}

	s, err := h.create.Execute(c.Request.Context(), usecase.CreateSessionInput{
		TrainerID:           trainerID,
		Title:               req.Title,
		Description:         req.Description,
		Location:            req.Location,
		StartTime:           start,
		EndTime:             end,
		Capacity:            req.Capacity,
		MinimumParticipants: req.MinimumParticipants,
		WaitlistEnabled:     waitlist,
		SessionType:         req.SessionType,
		Price:               req.Price,
	})
	if err != nil {
		writeUseCaseError(c, err)
		return
	}

	httpresp.Created(c, s)
}

// ======================================================
// UPDATE / DELETE
// ======================================================

// Update edits a scheduled session. Started, completed and cancelled
// sessions are frozen; capacity can only shrink down to the approved count.
func (h *SessionHandler) Update(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	s, ok := h.findOwnedSession(c, trainerID)
	if !ok {
		return
	}

	if s.Status != string(domain.StatusScheduled) {
		httperr.Conflict(c, "invalid_state", "Only scheduled sessions can be edited.")
		return
	}

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid session payload.")
		return
	}

	if req.Title != nil {
		s.Title = *req.Title
	}
	if req.Description != nil {
		s.Description = *req.Description
	}
	if req.Location != nil {
		s.Location = *req.Location
	}
	if req.Capacity != nil {
		var approved int64
		h.db.Model(&models.SessionSignup{}).
			Where("session_id = ? AND status = ?", s.ID, string(domain.SignupApproved)).
			Count(&approved)

		if err := domain.Resize(s, int(approved), *req.Capacity); err != nil {
			writeUseCaseError(c, err)
			return
		}
	}
	if req.MinimumParticipants != nil {
		s.MinimumParticipants = *req.MinimumParticipants
	}
	if req.WaitlistEnabled != nil {
		s.WaitlistEnabled = *req.WaitlistEnabled
	}
	if req.Price != nil {
		s.Price = *req.Price
	}

	if err := h.db.Save(s).Error; err != nil {
		httperr.Internal(c, "failed_to_update_session", "Could not update session.")
		return
	}

	httpresp.OK(c, s)
}

// Delete removes a scheduled session nobody has interacted with yet. Once
// signups or waitlist entries exist the trainer must cancel instead, so the
// affected owners get notified.
func (h *SessionHandler) Delete(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	s, ok := h.findOwnedSession(c, trainerID)
	if !ok {
		return
	}

	if s.Status != string(domain.StatusScheduled) {
		httperr.Conflict(c, "invalid_state", "Only scheduled sessions can be deleted.")
		return
	}

	var signups int64
	h.db.Model(&models.SessionSignup{}).Where("session_id = ?", s.ID).Count(&signups)
	var waitlisted int64
	h.db.Model(&models.SessionWaitlist{}).Where("session_id = ?", s.ID).Count(&waitlisted)

	if signups > 0 || waitlisted > 0 {
		httperr.Conflict(c, "session_has_activity", "Session has signups or waitlist entries; cancel it instead.")
		return
	}

	if err := h.db.Delete(s).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_session", "Could not delete session.")
		return
	}

	httpresp.OK(c, gin.H{"deleted": true})
}

// ======================================================
// LISTING
// ======================================================

func (h *SessionHandler) List(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	var trainer models.User
	if err := h.db.First(&trainer, trainerID).Error; err != nil {
		httperr.Internal(c, "trainer_not_found", "Trainer not found.")
		return
	}
	loc := locationForUser(&trainer)

	now := time.Now().In(loc)
	from := now.AddDate(0, 0, -7)
	to := now.AddDate(0, 1, 0)

	if v := c.Query("from"); v != "" {
		parsed, err := parseDateIn(loc, v)
		if err != nil {
			httperr.BadRequest(c, "invalid_from", "Invalid from date.")
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := parseDateIn(loc, v)
		if err != nil {
			httperr.BadRequest(c, "invalid_to", "Invalid to date.")
			return
		}
		to = parsed.AddDate(0, 0, 1)
	}

	q := h.db.
		Where("trainer_id = ? AND start_time >= ? AND start_time < ?", trainerID, from, to)

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var sessions []models.Session
	if err := q.Order("start_time ASC").Find(&sessions).Error; err != nil {
		httperr.Internal(c, "failed_to_list_sessions", "Could not list sessions.")
		return
	}

	httpresp.List(c, sessions)
}

func (h *SessionHandler) Get(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	s, ok := h.findOwnedSession(c, trainerID)
	if !ok {
		return
	}

	var approved int64
	h.db.Model(&models.SessionSignup{}).
		Where("session_id = ? AND status = ?", s.ID, string(domain.SignupApproved)).
		Count(&approved)

	var waitlisted int64
	h.db.Model(&models.SessionWaitlist{}).
		Where("session_id = ?", s.ID).
		Count(&waitlisted)

	httpresp.OK(c, gin.H{
		"session":         s,
		"approved_count":  approved,
		"waitlist_length": waitlisted,
	})
}

func (h *SessionHandler) ListSignups(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	s, ok := h.findOwnedSession(c, trainerID)
	if !ok {
		return
	}

	q := h.db.
		Preload("Dog").
		Where("session_id = ?", s.ID)

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var signups []models.SessionSignup
	if err := q.Order("signed_up_at ASC").Find(&signups).Error; err != nil {
		httperr.Internal(c, "failed_to_list_signups", "Could not list signups.")
		return
	}

	httpresp.List(c, signups)
}

func (h *SessionHandler) ListWaitlist(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	s, ok := h.findOwnedSession(c, trainerID)
	if !ok {
		return
	}

	var entries []models.SessionWaitlist
	if err := h.db.
		Preload("Dog").
		Where("session_id = ?", s.ID).
		Order("joined_waitlist_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		httperr.Internal(c, "failed_to_list_waitlist", "Could not list waitlist.")
		return
	}

	httpresp.List(c, entries)
}

// ======================================================
// LIFECYCLE
// ======================================================

func (h *SessionHandler) Start(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid session id.")
		return
	}

	s, err := h.start.Execute(c.Request.Context(), uint(id), trainerID)
	if err != nil {
		writeUseCaseError(c, err)
		return
	}

	httpresp.OK(c, s)
}

func (h *SessionHandler) Complete(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid session id.")
		return
	}

	s, err := h.complete.Execute(c.Request.Context(), uint(id), trainerID)
	if err != nil {
		writeUseCaseError(c, err)
		return
	}

	httpresp.OK(c, s)
}

func (h *SessionHandler) Cancel(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid session id.")
		return
	}

	var req CancelSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "A cancellation reason is required.")
		return
	}

	s, err := h.cancel.Execute(c.Request.Context(), usecase.CancelSessionInput{
		SessionID: uint(id),
		TrainerID: trainerID,
		Reason:    req.Reason,
	})
	if err != nil {
		writeUseCaseError(c, err)
		return
	}

	httpresp.OK(c, s)
}

// ======================================================
// HELPERS
// ======================================================

func (h *SessionHandler) findOwnedSession(c *gin.Context, trainerID uint) (*models.Session, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid session id.")
		return nil, false
	}

	var s models.Session
	if err := h.db.
		Where("id = ? AND trainer_id = ?", id, trainerID).
		First(&s).Error; err != nil {
		httperr.NotFound(c, "session_not_found", "Session not found.")
		return nil, false
	}

	return &s, true
}

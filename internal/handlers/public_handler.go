package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/httpresp"
	"github.com/brightpaws/dogtrainer-api/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

// PublicHandler serves the unauthenticated browse surface: upcoming
// sessions that still accept signups, with derived availability.
type PublicHandler struct {
	db *gorm.DB
}

func NewPublicHandler(db *gorm.DB) *PublicHandler {
	return &PublicHandler{db: db}
}

type PublicSession struct {
	models.Session
	ApprovedCount  int  `json:"approved_count"`
	AvailableSpots int  `json:"available_spots"`
	WaitlistOpen   bool `json:"waitlist_open"`
}

func (h *PublicHandler) ListOpenSessions(c *gin.Context) {
	q := h.db.
		Where("status = ? AND start_time > ?", string(domain.StatusScheduled), time.Now())

	if v := c.Query("trainer_id"); v != "" {
		trainerID, err := strconv.Atoi(v)
		if err != nil {
			httperr.BadRequest(c, "invalid_trainer_id", "Invalid trainer id.")
			return
		}
		q = q.Where("trainer_id = ?", trainerID)
	}

	if v := c.Query("type"); v != "" {
		q = q.Where("session_type = ?", v)
	}

	var sessions []models.Session
	if err := q.Order("start_time ASC").Limit(100).Find(&sessions).Error; err != nil {
		httperr.Internal(c, "failed_to_list_sessions", "Could not list sessions.")
		return
	}

	out := make([]PublicSession, 0, len(sessions))
	for _, s := range sessions {
		var approved int64
		h.db.Model(&models.SessionSignup{}).
			Where("session_id = ? AND status = ?", s.ID, string(domain.SignupApproved)).
			Count(&approved)

		spots := s.Capacity - int(approved)
		if spots < 0 {
			spots = 0
		}

		out = append(out, PublicSession{
			Session:        s,
			ApprovedCount:  int(approved),
			AvailableSpots: spots,
			WaitlistOpen:   spots == 0 && s.WaitlistEnabled,
		})
	}

	httpresp.List(c, out)
}

func (h *PublicHandler) GetSession(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid session id.")
		return
	}

	var s models.Session
	if err := h.db.
		Preload("Trainer").
		First(&s, id).Error; err != nil {
		httperr.NotFound(c, "session_not_found", "Session not found.")
		return
	}

	var approved int64
	h.db.Model(&models.SessionSignup{}).
		Where("session_id = ? AND status = ?", s.ID, string(domain.SignupApproved)).
		Count(&approved)

	spots := s.Capacity - int(approved)
	if spots < 0 {
		spots = 0
	}

	httpresp.OK(c, PublicSession{
		Session:        s,
		ApprovedCount:  int(approved),
		AvailableSpots: spots,
		WaitlistOpen:   spots == 0 && s.WaitlistEnabled,
	})
}

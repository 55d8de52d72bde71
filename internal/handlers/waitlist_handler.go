package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/httpresp"
	"github.com/brightpaws/dogtrainer-api/internal/middleware"
	"github.com/brightpaws/dogtrainer-api/internal/models"
	usecase "github.com/brightpaws/dogtrainer-api/internal/usecase/signup"
)

type WaitlistHandler struct {
	db *gorm.DB

	claim    *usecase.ClaimSpot
	withdraw *usecase.WithdrawWaitlist
}

func NewWaitlistHandler(
	db *gorm.DB,
	claim *usecase.ClaimSpot,
	withdraw *usecase.WithdrawWaitlist,
) *WaitlistHandler {
	return &WaitlistHandler{
		db:       db,
		claim:    claim,
		withdraw: withdraw,
	}
}

func (h *WaitlistHandler) ListMine(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextUserID).(uint)

	var entries []models.SessionWaitlist
	if err := h.db.
		Preload("Dog").
		Preload("Session").
		Joins("JOIN dogs ON dogs.id = session_waitlists.dog_id").
		Where("dogs.owner_id = ?", ownerID).
		Order("session_waitlists.joined_waitlist_at DESC").
		Find(&entries).Error; err != nil {
		httperr.Internal(c, "failed_to_list_waitlist", "Could not list waitlist entries.")
		return
	}

	httpresp.List(c, entries)
}

// Claim converts the caller's waitlist entry into a pending signup.
func (h *WaitlistHandler) Claim(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid waitlist entry id.")
		return
	}

	su, err := h.claim.Execute(c.Request.Context(), uint(id), ownerID)
	if err != nil {
		writeUseCaseError(c, err)
		return
	}

	httpresp.Created(c, su)
}

func (h *WaitlistHandler) Withdraw(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid waitlist entry id.")
		return
	}

	if err := h.withdraw.Execute(c.Request.Context(), uint(id), ownerID); err != nil {
		writeUseCaseError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"withdrawn": true})
}

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

// ======================================================
// HANDLER
// ======================================================

type SignupHandler struct {
	db *gorm.DB

	request *usecase.RequestSignup
	approve *usecase.ApproveSignup
	reject  *usecase.RejectSignup
	cancel  *usecase.CancelSignup
}

func NewSignupHandler(
	db *gorm.DB,
	request *usecase.RequestSignup,
	approve *usecase.ApproveSignup,
	reject *usecase.RejectSignup,
	cancel *usecase.CancelSignup,
) *SignupHandler {
	return &SignupHandler{
		db:      db,
		request: request,
		approve: approve,
		reject:  reject,
		cancel:  cancel,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type RequestSignupRequest struct {
	SessionID uint   `json:"session_id" binding:"required"`
	DogID     uint   `json:"dog_id" binding:"required"`
	Notes     string `json:"notes"`
}

type RejectSignupRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ======================================================
// OWNER SIDE
// ======================================================

func (h *SignupHandler) Request(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextUserID).(uint)

	var req RequestSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid signup payload.")
		return
	}

	result, err := h.request.Execute(c.Request.Context(), usecase.RequestSignupInput{
		SessionID: req.SessionID,
		DogID:     req.DogID,
		OwnerID:   ownerID,
		Notes:     req.Notes,
	})
	if err != nil {
		writeUseCaseError(c, err)
		return
	}

	httpresp.Created(c, result)
}

func (h *SignupHandler) ListMine(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextUserID).(uint)

	q := h.db.
		Preload("Dog").
		Preload("Session").
		Joins("JOIN dogs ON dogs.id = session_signups.dog_id").
		Where("dogs.owner_id = ?", ownerID)

	if status := c.Query("status"); status != "" {
		q = q.Where("session_signups.status = ?", status)
	}

	var signups []models.SessionSignup
	if err := q.Order("session_signups.signed_up_at DESC").Find(&signups).Error; err != nil {
		httperr.Internal(c, "failed_to_list_signups", "Could not list signups.")
		return
	}

	httpresp.List(c, signups)
}

func (h *SignupHandler) Cancel(c *gin.Context) {
	actorID := c.MustGet(middleware.ContextUserID).(uint)
	actorRole := c.MustGet(middleware.ContextUserRole).(string)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid signup id.")
		return
	}

	su, err := h.cancel.Execute(c.Request.Context(), usecase.CancelSignupInput{
		SignupID:  uint(id),
		ActorID:   actorID,
		ActorRole: actorRole,
	})
	if err != nil {
		writeUseCaseError(c, err)
		return
	}

	httpresp.OK(c, su)
}

// ======================================================
// TRAINER SIDE
// ======================================================

func (h *SignupHandler) Approve(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid signup id.")
		return
	}

	su, err := h.approve.Execute(c.Request.Context(), uint(id), trainerID)
	if err != nil {
		writeUseCaseError(c, err)
		return
	}

	httpresp.OK(c, su)
}

func (h *SignupHandler) Reject(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid signup id.")
		return
	}

	var req RejectSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "A rejection reason is required.")
		return
	}

	su, err := h.reject.Execute(c.Request.Context(), uint(id), trainerID, req.Reason)
	if err != nil {
		writeUseCaseError(c, err)
		return
	}

	httpresp.OK(c, su)
}

package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/brightpaws/dogtrainer-api/internal/audit"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/httpresp"
	"github.com/brightpaws/dogtrainer-api/internal/middleware"
	"github.com/brightpaws/dogtrainer-api/internal/models"
	usecase "github.com/brightpaws/dogtrainer-api/internal/usecase/session"
)

// ======================================================
// HANDLER
// ======================================================

type ScheduleHandler struct {
	db       *gorm.DB
	audit    *audit.Dispatcher
	generate *usecase.GenerateSessions
}

func NewScheduleHandler(
	db *gorm.DB,
	audit *audit.Dispatcher,
	generate *usecase.GenerateSessions,
) *ScheduleHandler {
	return &ScheduleHandler{
		db:       db,
		audit:    audit,
		generate: generate,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateScheduleRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`

	// ISO weekdays, 1=Monday .. 7=Sunday.
	DaysOfWeek []int `json:"days_of_week" binding:"required,min=1"`

	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`

	Capacity        int     `json:"capacity" binding:"required,min=1"`
	WaitlistEnabled *bool   `json:"waitlist_enabled"`
	Price           float64 `json:"price"`

	ValidFrom  string `json:"valid_from"`
	ValidUntil string `json:"valid_until"`
}

type UpdateScheduleRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`

	DaysOfWeek []int `json:"days_of_week"`

	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`

	Capacity        *int     `json:"capacity" binding:"omitempty,min=1"`
	WaitlistEnabled *bool    `json:"waitlist_enabled"`
	Price           *float64 `json:"price"`
	Active          *bool    `json:"active"`

	// Empty string clears a bound.
	ValidFrom  *string `json:"valid_from"`
	ValidUntil *string `json:"valid_until"`
}

type GenerateSessionsRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// ======================================================
// HELPERS
// ======================================================

func validTimeOfDay(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// validityRangeOK enforces valid_until >= valid_from when both bounds are
// set; an open bound on either side is always fine.
func validityRangeOK(from, until *time.Time) bool {
	return from == nil || until == nil || !until.Before(*from)
}

func validWeekdays(days []int) bool {
	if len(days) == 0 {
		return false
	}
	for _, d := range days {
		if d < 1 || d > 7 {
			return false
		}
	}
	return true
}

func (h *ScheduleHandler) findOwnedSchedule(c *gin.Context, trainerID uint) (*models.DaycareSchedule, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid schedule id.")
		return nil, false
	}

	var sched models.DaycareSchedule
	if err := h.db.
		Where("id = ? AND trainer_id = ?", id, trainerID).
		First(&sched).Error; err != nil {
		httperr.NotFound(c, "schedule_not_found", "Schedule not found.")
		return nil, false
	}

	return &sched, true
}

// ======================================================
// CRUD
// ======================================================

func (h *ScheduleHandler) Create(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid schedule payload.")
		return
	}

	if !validWeekdays(req.DaysOfWeek) {
		httperr.BadRequest(c, "invalid_days_of_week", "Weekdays must be between 1 (Monday) and 7 (Sunday).")
		return
	}
	if !validTimeOfDay(req.StartTime) || !validTimeOfDay(req.EndTime) {
		httperr.BadRequest(c, "invalid_time_of_day", "Times must be in HH:MM format.")
		return
	}
	if req.EndTime <= req.StartTime {
		httperr.BadRequest(c, "invalid_time_range", "End time must be after start time.")
		return
	}

	var trainer models.User
	if err := h.db.First(&trainer, trainerID).Error; err != nil {
		httperr.Internal(c, "trainer_not_found", "Trainer not found.")
		return
	}
	loc := locationForUser(&trainer)

	sched := models.DaycareSchedule{
		TrainerID:   trainerID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		DaysOfWeek:  models.FormatWeekdays(req.DaysOfWeek),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
		Price:       req.Price,
		Active:      true,
	}

	sched.WaitlistEnabled = true
	if req.WaitlistEnabled != nil {
		sched.WaitlistEnabled = *req.WaitlistEnabled
	}

	if req.ValidFrom != "" {
		from, err := parseDateIn(loc, req.ValidFrom)
		if err != nil {
			httperr.BadRequest(c, "invalid_valid_from", "Invalid valid_from date.")
			return
		}
		sched.ValidFrom = &from
	}
	if req.ValidUntil != "" {
		until, err := parseDateIn(loc, req.ValidUntil)
		if err != nil {
			httperr.BadRequest(c, "invalid_valid_until", "Invalid valid_until date.")
			return
		}
		sched.ValidUntil = &until
	}
	if !validityRangeOK(sched.ValidFrom, sched.ValidUntil) {
		httperr.BadRequest(c, "invalid_validity_range", "valid_until must not be before valid_from.")
		return
	}

	if err := h.db.Create(&sched).Error; err != nil {
		httperr.Internal(c, "failed_to_create_schedule", "Could not create schedule.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &trainerID,
		Action:   "schedule_created",
		Entity:   "daycare_schedule",
		EntityID: &sched.ID,
	})

	httpresp.Created(c, sched)
}

func (h *ScheduleHandler) List(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	var schedules []models.DaycareSchedule
	if err := h.db.
		Where("trainer_id = ?", trainerID).
		Order("created_at DESC").
		Find(&schedules).Error; err != nil {
		httperr.Internal(c, "failed_to_list_schedules", "Could not list schedules.")
		return
	}

	httpresp.List(c, schedules)
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	sched, ok := h.findOwnedSchedule(c, trainerID)
	if !ok {
		return
	}

	httpresp.OK(c, sched)
}

func (h *ScheduleHandler) Update(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	sched, ok := h.findOwnedSchedule(c, trainerID)
	if !ok {
		return
	}

	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid schedule payload.")
		return
	}

	if req.Title != nil {
		sched.Title = *req.Title
	}
	if req.Description != nil {
		sched.Description = *req.Description
	}
	if req.Location != nil {
		sched.Location = *req.Location
	}
	if req.DaysOfWeek != nil {
		if !validWeekdays(req.DaysOfWeek) {
			httperr.BadRequest(c, "invalid_days_of_week", "Weekdays must be between 1 (Monday) and 7 (Sunday).")
			return
		}
		sched.DaysOfWeek = models.FormatWeekdays(req.DaysOfWeek)
	}
	if req.StartTime != nil {
		if !validTimeOfDay(*req.StartTime) {
			httperr.BadRequest(c, "invalid_time_of_day", "Times must be in HH:MM format.")
			return
		}
		sched.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		if !validTimeOfDay(*req.EndTime) {
			httperr.BadRequest(c, "invalid_time_of_day", "Times must be in HH:MM format.")
			return
		}
		sched.EndTime = *req.EndTime
	}
	if sched.EndTime <= sched.StartTime {
		httperr.BadRequest(c, "invalid_time_range", "End time must be after start time.")
		return
	}
	if req.Capacity != nil {
		sched.Capacity = *req.Capacity
	}
	if req.WaitlistEnabled != nil {
		sched.WaitlistEnabled = *req.WaitlistEnabled
	}
	if req.Price != nil {
		sched.Price = *req.Price
	}
	if req.Active != nil {
		sched.Active = *req.Active
	}
	if req.ValidFrom != nil || req.ValidUntil != nil {
		var trainer models.User
		if err := h.db.First(&trainer, trainerID).Error; err != nil {
			httperr.Internal(c, "trainer_not_found", "Trainer not found.")
			return
		}
		loc := locationForUser(&trainer)

		if req.ValidFrom != nil {
			if *req.ValidFrom == "" {
				sched.ValidFrom = nil
			} else {
				from, err := parseDateIn(loc, *req.ValidFrom)
				if err != nil {
					httperr.BadRequest(c, "invalid_valid_from", "Invalid valid_from date.")
					return
				}
				sched.ValidFrom = &from
			}
		}
		if req.ValidUntil != nil {
			if *req.ValidUntil == "" {
				sched.ValidUntil = nil
			} else {
				until, err := parseDateIn(loc, *req.ValidUntil)
				if err != nil {
					httperr.BadRequest(c, "invalid_valid_until", "Invalid valid_until date.")
					return
				}
				sched.ValidUntil = &until
			}
		}
	}
	if !validityRangeOK(sched.ValidFrom, sched.ValidUntil) {
		httperr.BadRequest(c, "invalid_validity_range", "valid_until must not be before valid_from.")
		return
	}

	if err := h.db.Save(sched).Error; err != nil {
		httperr.Internal(c, "failed_to_update_schedule", "Could not update schedule.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &trainerID,
		Action:   "schedule_updated",
		Entity:   "daycare_schedule",
		EntityID: &sched.ID,
	})

	httpresp.OK(c, sched)
}

// Delete deactivates the schedule. Already-generated sessions are untouched;
// future generation simply stops producing new ones.
func (h *ScheduleHandler) Delete(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	sched, ok := h.findOwnedSchedule(c, trainerID)
	if !ok {
		return
	}

	sched.Active = false
	if err := h.db.Save(sched).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_schedule", "Could not delete schedule.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &trainerID,
		Action:   "schedule_deactivated",
		Entity:   "daycare_schedule",
		EntityID: &sched.ID,
	})

	httpresp.OK(c, gin.H{"deleted": true})
}

// ======================================================
// GENERATE
// ======================================================

func (h *ScheduleHandler) Generate(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid schedule id.")
		return
	}

	var req GenerateSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid generate payload.")
		return
	}

	var trainer models.User
	if err := h.db.First(&trainer, trainerID).Error; err != nil {
		httperr.Internal(c, "trainer_not_found", "Trainer not found.")
		return
	}
	loc := locationForUser(&trainer)

	from, err := parseDateIn(loc, req.From)
	if err != nil {
		httperr.BadRequest(c, "invalid_from", "Invalid from date.")
		return
	}
	to, err := parseDateIn(loc, req.To)
	if err != nil {
		httperr.BadRequest(c, "invalid_to", "Invalid to date.")
		return
	}
	if to.Before(from) {
		httperr.BadRequest(c, "invalid_range", "to must not be before from.")
		return
	}

	result, err := h.generate.Execute(c.Request.Context(), usecase.GenerateSessionsInput{
		ScheduleID: uint(id),
		TrainerID:  trainerID,
		RangeStart: from,
		RangeEnd:   to,
		Location:   loc,
	})
	if err != nil {
		writeUseCaseError(c, err)
		return
	}

	httpresp.OK(c, result)
}

package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/brightpaws/dogtrainer-api/internal/audit"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/httpresp"
	"github.com/brightpaws/dogtrainer-api/internal/middleware"
	"github.com/brightpaws/dogtrainer-api/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type DogHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewDogHandler(db *gorm.DB, audit *audit.Dispatcher) *DogHandler {
	return &DogHandler{db: db, audit: audit}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateDogRequest struct {
	Name  string `json:"name" binding:"required"`
	Breed string `json:"breed"`
	Size  string `json:"size" binding:"omitempty,oneof=small medium large"`
	Notes string `json:"notes"`
}

type UpdateDogRequest struct {
	Name   *string `json:"name"`
	Breed  *string `json:"breed"`
	Size   *string `json:"size" binding:"omitempty,oneof=small medium large"`
	Notes  *string `json:"notes"`
	Active *bool   `json:"active"`
}

// ======================================================
// CRUD
// ======================================================

func (h *DogHandler) Create(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateDogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid dog payload.")
		return
	}

	dog := models.Dog{
		OwnerID: ownerID,
		Name:    req.Name,
		Breed:   req.Breed,
		Size:    req.Size,
		Notes:   req.Notes,
		Active:  true,
	}

	if err := h.db.Create(&dog).Error; err != nil {
		httperr.Internal(c, "failed_to_create_dog", "Could not create dog.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &ownerID,
		Action:   "dog_created",
		Entity:   "dog",
		EntityID: &dog.ID,
	})

	httpresp.Created(c, dog)
}

func (h *DogHandler) List(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextUserID).(uint)

	var dogs []models.Dog
	if err := h.db.
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Find(&dogs).Error; err != nil {
		httperr.Internal(c, "failed_to_list_dogs", "Could not list dogs.")
		return
	}

	httpresp.List(c, dogs)
}

func (h *DogHandler) Get(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextUserID).(uint)

	dog, ok := h.findOwnedDog(c, ownerID)
	if !ok {
		return
	}

	httpresp.OK(c, dog)
}

func (h *DogHandler) Update(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextUserID).(uint)

	dog, ok := h.findOwnedDog(c, ownerID)
	if !ok {
		return
	}

	var req UpdateDogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid dog payload.")
		return
	}

	if req.Name != nil {
		dog.Name = *req.Name
	}
	if req.Breed != nil {
		dog.Breed = *req.Breed
	}
	if req.Size != nil {
		dog.Size = *req.Size
	}
	if req.Notes != nil {
		dog.Notes = *req.Notes
	}
	if req.Active != nil {
		dog.Active = *req.Active
	}

	if err := h.db.Save(dog).Error; err != nil {
		httperr.Internal(c, "failed_to_update_dog", "Could not update dog.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &ownerID,
		Action:   "dog_updated",
		Entity:   "dog",
		EntityID: &dog.ID,
	})

	httpresp.OK(c, dog)
}

// Delete deactivates the dog instead of removing the row, so historical
// signups keep their reference.
func (h *DogHandler) Delete(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextUserID).(uint)

	dog, ok := h.findOwnedDog(c, ownerID)
	if !ok {
		return
	}

	dog.Active = false
	if err := h.db.Save(dog).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_dog", "Could not delete dog.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &ownerID,
		Action:   "dog_deactivated",
		Entity:   "dog",
		EntityID: &dog.ID,
	})

	httpresp.OK(c, gin.H{"deleted": true})
}

// ======================================================
// HELPERS
// ======================================================

func (h *DogHandler) findOwnedDog(c *gin.Context, ownerID uint) (*models.Dog, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid dog id.")
		return nil, false
	}

	var dog models.Dog
	if err := h.db.
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&dog).Error; err != nil {
		httperr.NotFound(c, "dog_not_found", "Dog not found.")
		return nil, false
	}

	return &dog, true
}

package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/middleware"
	"github.com/brightpaws/dogtrainer-api/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type ExportHandler struct {
	db *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{db: db}
}

// ======================================================
// ICS CALENDAR
// ======================================================

// Calendar exports the trainer's upcoming sessions as an iCalendar feed, one
// VEVENT per session. Cancelled sessions are excluded.
func (h *ExportHandler) Calendar(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	var trainer models.User
	if err := h.db.First(&trainer, trainerID).Error; err != nil {
		httperr.Internal(c, "trainer_not_found", "Trainer not found.")
		return
	}
	loc := locationForUser(&trainer)

	from := time.Now().In(loc).AddDate(0, 0, -7)
	to := time.Now().In(loc).AddDate(0, 3, 0)

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

	var sessions []models.Session
	if err := h.db.
		Where("trainer_id = ? AND status <> ? AND start_time >= ? AND start_time < ?",
			trainerID, "cancelled", from, to).
		Order("start_time ASC").
		Find(&sessions).Error; err != nil {
		httperr.Internal(c, "failed_to_list_sessions", "Could not list sessions.")
		return
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//brightpaws//dogtrainer-api//EN")

	for _, s := range sessions {
		evt := cal.AddEvent(fmt.Sprintf("session-%d@brightpaws", s.ID))
		evt.SetCreatedTime(s.CreatedAt)
		evt.SetDtStampTime(time.Now())
		evt.SetStartAt(s.StartTime)
		evt.SetEndAt(s.EndTime)
		evt.SetSummary(s.Title)
		if s.Description != "" {
			evt.SetDescription(s.Description)
		}
		if s.Location != "" {
			evt.SetLocation(s.Location)
		}
	}

	c.Header("Content-Disposition", `attachment; filename="sessions.ics"`)
	c.Data(http.StatusOK, "text/calendar", []byte(cal.Serialize()))
}

// ======================================================
// XLSX ROSTER
// ======================================================

// Roster exports one session's approved and pending signups plus its
// waitlist as a spreadsheet, for trainers who run check-in on paper.
func (h *ExportHandler) Roster(c *gin.Context) {
	trainerID := c.MustGet(middleware.ContextUserID).(uint)

	var s models.Session
	if err := h.db.
		Where("id = ? AND trainer_id = ?", c.Param("id"), trainerID).
		First(&s).Error; err != nil {
		httperr.NotFound(c, "session_not_found", "Session not found.")
		return
	}

	var signups []models.SessionSignup
	if err := h.db.
		Preload("Dog").
		Preload("Dog.Owner").
		Where("session_id = ? AND status IN ?", s.ID, []string{"approved", "pending"}).
		Order("status ASC, signed_up_at ASC").
		Find(&signups).Error; err != nil {
		httperr.Internal(c, "failed_to_list_signups", "Could not list signups.")
		return
	}

	var waitlist []models.SessionWaitlist
	if err := h.db.
		Preload("Dog").
		Preload("Dog.Owner").
		Where("session_id = ?", s.ID).
		Order("joined_waitlist_at ASC, id ASC").
		Find(&waitlist).Error; err != nil {
		httperr.Internal(c, "failed_to_list_waitlist", "Could not list waitlist.")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Roster"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		httperr.Internal(c, "export_failed", "Could not build roster.")
		return
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 6)
	f.SetColWidth(sheet, "B", "C", 20)
	f.SetColWidth(sheet, "D", "E", 22)
	f.SetColWidth(sheet, "F", "F", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s — %s", s.Title, s.StartTime.Format("2006-01-02 15:04")))
	f.MergeCell(sheet, "A1", "F1")
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	row := 2
	for _, col := range []struct{ cell, label string }{
		{"A", "#"}, {"B", "Dog"}, {"C", "Breed"},
		{"D", "Owner"}, {"E", "Owner phone"}, {"F", "Status"},
	} {
		f.SetCellValue(sheet, fmt.Sprintf("%s%d", col.cell, row), col.label)
	}

	row = 3
	n := 1
	for _, su := range signups {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), n)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), su.Dog.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), su.Dog.Breed)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), su.Dog.Owner.Name)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), su.Dog.Owner.Phone)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), su.Status)
		row++
		n++
	}

	for _, e := range waitlist {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), n)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.Dog.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), e.Dog.Breed)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), e.Dog.Owner.Name)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), e.Dog.Owner.Phone)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), "waitlisted")
		row++
		n++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		httperr.Internal(c, "export_failed", "Could not build roster.")
		return
	}

	filename := fmt.Sprintf("roster_session_%d.xlsx", s.ID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

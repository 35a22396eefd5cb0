package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/shift-scheduler/pkg/core/services"
	"github.com/jakechorley/shift-scheduler/pkg/db"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	Deps   services.GenerateScheduleDeps
	Reader services.ScheduleReader
	Logger *zap.Logger

	// Defaults are the run options each request starts from
	Defaults services.GenerateScheduleOptions
}

type weightsRequest struct {
	HoursLoad  *float64 `json:"hoursLoad" binding:"omitempty,min=0"`
	RoleMatch  *float64 `json:"roleMatch" binding:"omitempty,min=0"`
	Preference *float64 `json:"preference" binding:"omitempty,min=0"`
}

// ScheduleRequest is the optional body of a schedule trigger
type ScheduleRequest struct {
	DryRun           bool            `json:"dryRun"`
	ForceCommit      bool            `json:"forceCommit"`
	MaxShiftsPerDay  *int            `json:"maxShiftsPerDay" binding:"omitempty,min=1"`
	MaxWeeklyHours   *float64        `json:"maxWeeklyHours" binding:"omitempty,min=0"`
	EmitPlaceholders *bool           `json:"emitPlaceholders"`
	Weights          *weightsRequest `json:"weights"`
}

type assignmentResponse struct {
	Date       string `json:"date"`
	Day        string `json:"day"`
	Shift      string `json:"shift"`
	EmployeeID string `json:"employeeId,omitempty"`
	Status     string `json:"status"`
}

type unmetResponse struct {
	Date      string `json:"date"`
	Day       string `json:"day"`
	Shift     string `json:"shift"`
	Required  int    `json:"required"`
	Assigned  int    `json:"assigned"`
	Shortfall int    `json:"shortfall"`
}

type validationErrorResponse struct {
	Slot        string `json:"slot"`
	Criterion   string `json:"criterion"`
	Description string `json:"description"`
}

// ScheduleResponse is the result of a schedule trigger
type ScheduleResponse struct {
	RunID            string                    `json:"runId"`
	WeekStart        string                    `json:"weekStart"`
	Committed        bool                      `json:"committed"`
	DryRun           bool                      `json:"dryRun"`
	Scheduled        int                       `json:"scheduled"`
	Shortfall        int                       `json:"shortfall"`
	Assignments      []assignmentResponse      `json:"assignments"`
	Unmet            []unmetResponse           `json:"unmet"`
	ValidationErrors []validationErrorResponse `json:"validationErrors"`
	Error            string                    `json:"error,omitempty"`
}

type runResponse struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"createdAt"`
	Scheduled        int       `json:"scheduled"`
	Shortfall        int       `json:"shortfall"`
	ValidationErrors int       `json:"validationErrors"`
	Forced           bool      `json:"forced"`
}

// ViewResponse is a persisted week
type ViewResponse struct {
	WeekStart string               `json:"weekStart"`
	Shifts    []assignmentResponse `json:"shifts"`
	LatestRun *runResponse         `json:"latestRun"`
}

// ScheduleWeek runs the engine for the week in the path and commits the result
func (h *Handler) ScheduleWeek(c *gin.Context) {
	weekStart, err := h.Defaults.Calendar.ParseWeekStart(c.Param("weekStart"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// An empty body, chunked or not, means no overrides
	var req ScheduleRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	opts := h.Defaults
	opts.WeekStart = weekStart
	opts.DryRun = req.DryRun
	opts.ForceCommit = req.ForceCommit
	if req.MaxShiftsPerDay != nil {
		opts.MaxShiftsPerDay = *req.MaxShiftsPerDay
	}
	if req.MaxWeeklyHours != nil {
		opts.MaxWeeklyHours = *req.MaxWeeklyHours
	}
	if req.EmitPlaceholders != nil {
		opts.EmitPlaceholders = *req.EmitPlaceholders
	}
	if w := req.Weights; w != nil {
		if w.HoursLoad != nil {
			opts.Weights.HoursLoad = *w.HoursLoad
		}
		if w.RoleMatch != nil {
			opts.Weights.RoleMatch = *w.RoleMatch
		}
		if w.Preference != nil {
			opts.Weights.Preference = *w.Preference
		}
	}

	result, err := services.GenerateSchedule(c.Request.Context(), h.Deps, h.Logger, opts)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, toScheduleResponse(result, opts.DryRun))
	case errors.Is(err, services.ErrValidationFailed):
		resp := toScheduleResponse(result, opts.DryRun)
		resp.Error = err.Error()
		c.JSON(http.StatusUnprocessableEntity, resp)
	default:
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
	}
}

// GetSchedule returns the committed schedule for the week in the path
func (h *Handler) GetSchedule(c *gin.Context) {
	weekStart, err := h.Defaults.Calendar.ParseWeekStart(c.Param("weekStart"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := services.ViewSchedule(c.Request.Context(), h.Reader, h.Logger, h.Defaults.Calendar, weekStart)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	resp := ViewResponse{
		WeekStart: result.WeekStart,
		Shifts:    make([]assignmentResponse, 0, len(result.Shifts)),
	}
	for _, s := range result.Shifts {
		resp.Shifts = append(resp.Shifts, assignmentResponse{
			Date:       s.Date,
			Day:        s.Day.String(),
			Shift:      s.Shift,
			EmployeeID: s.EmployeeID,
			Status:     s.Status,
		})
	}
	if run := result.LatestRun; run != nil {
		resp.LatestRun = &runResponse{
			ID:               run.ID,
			CreatedAt:        run.CreatedAt,
			Scheduled:        run.Scheduled,
			Shortfall:        run.Shortfall,
			ValidationErrors: run.ValidationErrors,
			Forced:           run.Forced,
		}
	}

	c.JSON(http.StatusOK, resp)
}

// statusFor maps service errors onto HTTP status codes.
// ErrDataUnavailable is checked first as it may also wrap scheduler.ErrInvalidInput.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, scheduler.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrValidationFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func toScheduleResponse(result *services.GenerateScheduleResult, dryRun bool) ScheduleResponse {
	report := result.Report
	resp := ScheduleResponse{
		RunID:            result.RunID,
		WeekStart:        report.WeekStart.Format(db.DateFormat),
		Committed:        result.Committed,
		DryRun:           dryRun,
		Scheduled:        report.ScheduledCount(),
		Shortfall:        report.TotalShortfall(),
		Assignments:      make([]assignmentResponse, 0, len(report.Assignments)),
		Unmet:            make([]unmetResponse, 0, len(report.Unmet)),
		ValidationErrors: make([]validationErrorResponse, 0, len(report.ValidationErrors)),
	}

	for _, a := range report.Assignments {
		resp.Assignments = append(resp.Assignments, assignmentResponse{
			Date:       a.Slot.Date.Format(db.DateFormat),
			Day:        a.Slot.Day.String(),
			Shift:      a.Slot.Shift,
			EmployeeID: a.EmployeeID,
			Status:     string(a.Status),
		})
	}
	for _, u := range report.Unmet {
		resp.Unmet = append(resp.Unmet, unmetResponse{
			Date:      u.Slot.Date.Format(db.DateFormat),
			Day:       u.Slot.Day.String(),
			Shift:     u.Slot.Shift,
			Required:  u.Required,
			Assigned:  u.Assigned,
			Shortfall: u.Shortfall,
		})
	}
	for _, v := range report.ValidationErrors {
		resp.ValidationErrors = append(resp.ValidationErrors, validationErrorResponse{
			Slot:        v.SlotID,
			Criterion:   v.CriterionName,
			Description: v.Description,
		})
	}

	return resp
}

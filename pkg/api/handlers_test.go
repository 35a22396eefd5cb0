package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler/criteria"
	"github.com/jakechorley/shift-scheduler/pkg/core/services"
	"github.com/jakechorley/shift-scheduler/pkg/db"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingSource struct{}

func (failingSource) GetAvailabilitySnapshot(ctx context.Context, weekStart string) (*db.AvailabilitySnapshot, error) {
	return nil, errors.New("connection refused")
}

type failingWriter struct{}

func (failingWriter) CommitSchedule(ctx context.Context, run db.ScheduleRun, assignments []db.Assignment) error {
	return errors.New("disk full")
}

// flagAll reports one validation error per run
type flagAll struct{}

func (flagAll) Name() string { return "FlagAll" }
func (flagAll) IsEligible(*scheduler.RunState, *scheduler.Candidate, *scheduler.SlotState) bool {
	return true
}
func (flagAll) Score(*scheduler.RunState, *scheduler.Candidate, *scheduler.SlotState) float64 {
	return 0
}
func (flagAll) Weight() float64 { return 0 }
func (flagAll) ValidateRunState(*scheduler.RunState) []scheduler.SlotValidationError {
	return []scheduler.SlotValidationError{{CriterionName: "FlagAll", Description: "needs review"}}
}

func newTestStore(t *testing.T) *db.DB {
	t.Helper()
	ctx := context.Background()

	store, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.UpsertEmployees(ctx, []db.Employee{
		{ID: "alice", DisplayName: "Alice", Role: "employee"},
		{ID: "bob", DisplayName: "Bob", Role: "employee"},
	}))
	require.NoError(t, store.InsertAvailability(ctx, []db.Availability{
		{EmployeeID: "alice", WeekStart: "2024-06-03", Day: "Monday", ShiftType: "morning", Available: true},
		{EmployeeID: "bob", WeekStart: "2024-06-03", Day: "Monday", ShiftType: "morning", Available: true},
	}))
	require.NoError(t, store.InsertShiftRequirements(ctx, []db.ShiftRequirement{
		{Day: "Monday", ShiftType: "morning", Headcount: 1},
		{Day: "Monday", ShiftType: "afternoon", Headcount: 1},
	}))
	return store
}

func newTestHandler(store *db.DB) *Handler {
	return &Handler{
		Deps: services.GenerateScheduleDeps{
			Availability: store,
			Requirements: store,
			Writer:       store,
			Locks:        services.NewWeekLocks(),
		},
		Reader: store,
		Logger: zap.NewNop(),
		Defaults: services.GenerateScheduleOptions{
			Calendar: scheduler.DefaultCalendar(),
			Weights:  criteria.DefaultWeights(),
		},
	}
}

func do(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(w, req)
	return w
}

func TestScheduleWeek_CommitsAndReadsBack(t *testing.T) {
	h := newTestHandler(newTestStore(t))

	w := do(t, h, http.MethodPost, "/api/weeks/2024-06-03/schedule", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Committed)
	assert.Equal(t, "2024-06-03", resp.WeekStart)
	assert.Equal(t, 1, resp.Scheduled)
	assert.Equal(t, 1, resp.Shortfall)
	require.Len(t, resp.Assignments, 1)
	assert.Equal(t, "alice", resp.Assignments[0].EmployeeID)
	require.Len(t, resp.Unmet, 1)
	assert.Equal(t, "afternoon", resp.Unmet[0].Shift)

	w = do(t, h, http.MethodGet, "/api/weeks/2024-06-03/schedule", "")
	require.Equal(t, http.StatusOK, w.Code)

	var view ViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Shifts, 1)
	assert.Equal(t, "alice", view.Shifts[0].EmployeeID)
	assert.Equal(t, "Monday", view.Shifts[0].Day)
	require.NotNil(t, view.LatestRun)
	assert.Equal(t, resp.RunID, view.LatestRun.ID)
}

func TestScheduleWeek_DryRunWithOverrides(t *testing.T) {
	h := newTestHandler(newTestStore(t))

	w := do(t, h, http.MethodPost, "/api/weeks/2024-06-03/schedule", `{"dryRun": true, "emitPlaceholders": true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Committed)
	assert.True(t, resp.DryRun)
	require.Len(t, resp.Assignments, 2)
	assert.Equal(t, "unfilled-placeholder", resp.Assignments[1].Status)

	w = do(t, h, http.MethodGet, "/api/weeks/2024-06-03/schedule", "")
	var view ViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Empty(t, view.Shifts)
	assert.Nil(t, view.LatestRun)
}

func TestScheduleWeek_BadRequests(t *testing.T) {
	h := newTestHandler(newTestStore(t))

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "not a date", path: "/api/weeks/june/schedule"},
		{name: "not the first day", path: "/api/weeks/2024-06-05/schedule"},
		{name: "malformed body", path: "/api/weeks/2024-06-03/schedule", body: `{"dryRun":`},
		{name: "zero daily cap", path: "/api/weeks/2024-06-03/schedule", body: `{"maxShiftsPerDay": 0}`},
		{name: "negative weight", path: "/api/weeks/2024-06-03/schedule", body: `{"weights": {"hoursLoad": -1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

// chunked sends body without a Content-Length, as clients streaming the request do
func chunked(t *testing.T, h *Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Body = io.NopCloser(strings.NewReader(body))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(w, req)
	return w
}

func TestScheduleWeek_ChunkedBody(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		code      int
		committed bool
	}{
		{name: "empty", body: "", code: http.StatusOK, committed: true},
		{name: "whitespace", body: "\n", code: http.StatusOK, committed: true},
		{name: "dry run", body: `{"dryRun": true}`, code: http.StatusOK, committed: false},
		{name: "truncated", body: `{"dryRun":`, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(newTestStore(t))

			w := chunked(t, h, "/api/weeks/2024-06-03/schedule", tt.body)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code != http.StatusOK {
				return
			}

			var resp ScheduleResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.committed, resp.Committed)
			assert.Equal(t, 1, resp.Scheduled)
		})
	}
}

func TestScheduleWeek_DataUnavailable(t *testing.T) {
	store := newTestStore(t)
	h := newTestHandler(store)
	h.Deps.Availability = failingSource{}

	w := do(t, h, http.MethodPost, "/api/weeks/2024-06-03/schedule", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestScheduleWeek_PersistenceFailed(t *testing.T) {
	h := newTestHandler(newTestStore(t))
	h.Deps.Writer = failingWriter{}

	w := do(t, h, http.MethodPost, "/api/weeks/2024-06-03/schedule", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "disk full")
}

func TestScheduleWeek_ValidationRefused(t *testing.T) {
	h := newTestHandler(newTestStore(t))
	h.Defaults.Criteria = append(criteria.Build(criteria.DefaultWeights(), 0), flagAll{})

	w := do(t, h, http.MethodPost, "/api/weeks/2024-06-03/schedule", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Committed)
	require.Len(t, resp.ValidationErrors, 1)
	assert.Equal(t, "FlagAll", resp.ValidationErrors[0].Criterion)
	assert.NotEmpty(t, resp.Error)

	// Forcing commits despite the validation error
	w = do(t, h, http.MethodPost, "/api/weeks/2024-06-03/schedule", `{"forceCommit": true}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Committed)
}

func TestGetSchedule_BadWeek(t *testing.T) {
	h := newTestHandler(newTestStore(t))

	w := do(t, h, http.MethodGet, "/api/weeks/2024-06-04/schedule", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable,
		statusFor(errors.Join(services.ErrDataUnavailable, scheduler.ErrInvalidInput)))
	assert.Equal(t, http.StatusBadRequest, statusFor(scheduler.ErrInvalidInput))
	assert.Equal(t, http.StatusInternalServerError, statusFor(services.ErrPersistenceFailed))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/shift-scheduler/pkg/db"
)

func strPtr(s string) *string {
	return &s
}

func TestViewSchedule_OrdersByDateShiftAndEmployee(t *testing.T) {
	store := &mockScheduleStore{
		assignments: []db.Assignment{
			{ID: "1", ShiftDate: "2024-06-04", ShiftType: "morning", EmployeeID: strPtr("alice"), Status: "scheduled"},
			{ID: "2", ShiftDate: "2024-06-03", ShiftType: "afternoon", Status: "unfilled-placeholder"},
			{ID: "3", ShiftDate: "2024-06-03", ShiftType: "afternoon", EmployeeID: strPtr("carol"), Status: "scheduled"},
			{ID: "4", ShiftDate: "2024-06-03", ShiftType: "morning", EmployeeID: strPtr("bob"), Status: "scheduled"},
			{ID: "5", ShiftDate: "2024-06-03", ShiftType: "morning", EmployeeID: strPtr("alice"), Status: "scheduled"},
		},
		runs: []db.ScheduleRun{
			{ID: "run-1", WeekStart: "2024-06-03"},
			{ID: "run-2", WeekStart: "2024-06-03"},
		},
	}

	result, err := ViewSchedule(context.Background(), store, zap.NewNop(), scheduler.DefaultCalendar(), testWeek)
	require.NoError(t, err)

	assert.Equal(t, "2024-06-03", result.WeekStart)
	require.NotNil(t, result.LatestRun)
	assert.Equal(t, "run-2", result.LatestRun.ID)

	require.Len(t, result.Shifts, 5)
	got := make([]string, len(result.Shifts))
	for i, s := range result.Shifts {
		got[i] = s.Date + "/" + s.Shift + "/" + s.EmployeeID
	}
	assert.Equal(t, []string{
		"2024-06-03/morning/alice",
		"2024-06-03/morning/bob",
		"2024-06-03/afternoon/carol",
		"2024-06-03/afternoon/",
		"2024-06-04/morning/alice",
	}, got)
	assert.Equal(t, time.Monday, result.Shifts[0].Day)
	assert.Equal(t, "unfilled-placeholder", result.Shifts[3].Status)
}

func TestViewSchedule_NeverCommitted(t *testing.T) {
	result, err := ViewSchedule(context.Background(), &mockScheduleStore{}, zap.NewNop(), scheduler.DefaultCalendar(), testWeek)
	require.NoError(t, err)

	assert.Nil(t, result.LatestRun)
	assert.Empty(t, result.Shifts)
}

func TestViewSchedule_ReadError(t *testing.T) {
	store := &mockScheduleStore{getAssignmentsErr: errors.New("connection reset")}

	_, err := ViewSchedule(context.Background(), store, zap.NewNop(), scheduler.DefaultCalendar(), testWeek)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch assignments")
}

func TestViewSchedule_RejectsMidWeekDate(t *testing.T) {
	_, err := ViewSchedule(context.Background(), &mockScheduleStore{}, zap.NewNop(), scheduler.DefaultCalendar(), testWeek.AddDate(0, 0, 3))
	assert.ErrorIs(t, err, scheduler.ErrInvalidInput)
}

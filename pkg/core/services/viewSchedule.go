package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/shift-scheduler/pkg/db"
)

// ScheduledShift is one persisted assignment as displayed to users
type ScheduledShift struct {
	Date       string
	Day        time.Weekday
	Shift      string
	EmployeeID string
	Status     string
}

// ViewScheduleResult contains a persisted week
type ViewScheduleResult struct {
	WeekStart string
	Shifts    []ScheduledShift

	// LatestRun is nil when the week has never been committed
	LatestRun *db.ScheduleRun
}

// ViewSchedule reads the committed schedule for a week, ordered by date, shift order, then employee
func ViewSchedule(
	ctx context.Context,
	reader ScheduleReader,
	logger *zap.Logger,
	calendar scheduler.Calendar,
	weekStart time.Time,
) (*ViewScheduleResult, error) {
	week := weekStart.Format(db.DateFormat)
	logger.Debug("Starting viewSchedule", zap.String("week_start", week))

	if !calendar.IsWeekStart(weekStart) {
		return nil, fmt.Errorf("%w: %s is a %s, weeks start on %s",
			scheduler.ErrInvalidInput, week, weekStart.Weekday(), calendar.FirstDay)
	}

	assignments, err := reader.GetAssignments(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}
	logger.Debug("Found assignments", zap.Int("count", len(assignments)))

	runs, err := reader.GetScheduleRuns(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule runs: %w", err)
	}

	result := &ViewScheduleResult{
		WeekStart: week,
		Shifts:    make([]ScheduledShift, 0, len(assignments)),
	}
	if len(runs) > 0 {
		latest := runs[len(runs)-1]
		result.LatestRun = &latest
	}

	for _, a := range assignments {
		date, err := time.Parse(db.DateFormat, a.ShiftDate)
		if err != nil {
			return nil, fmt.Errorf("invalid shift date %q on assignment %s: %w", a.ShiftDate, a.ID, err)
		}
		shift := ScheduledShift{
			Date:   a.ShiftDate,
			Day:    date.Weekday(),
			Shift:  a.ShiftType,
			Status: a.Status,
		}
		if a.EmployeeID != nil {
			shift.EmployeeID = *a.EmployeeID
		}
		result.Shifts = append(result.Shifts, shift)
	}

	sort.SliceStable(result.Shifts, func(i, j int) bool {
		a, b := result.Shifts[i], result.Shifts[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Shift != b.Shift {
			return calendar.Less(
				scheduler.SlotKey{Day: a.Day, Shift: a.Shift},
				scheduler.SlotKey{Day: b.Day, Shift: b.Shift},
			)
		}
		// Placeholders (empty id) after employees
		if (a.EmployeeID == "") != (b.EmployeeID == "") {
			return b.EmployeeID == ""
		}
		return a.EmployeeID < b.EmployeeID
	})

	return result, nil
}

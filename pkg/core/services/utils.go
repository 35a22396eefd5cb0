package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/shift-scheduler/pkg/db"
)

// buildEngineInput converts stored rows into engine input.
// Unparseable day names are reported as scheduler.ErrInvalidInput.
func buildEngineInput(snapshot *db.AvailabilitySnapshot, requirements []db.ShiftRequirement) (scheduler.Input, error) {
	input := scheduler.Input{
		Employees:    make([]scheduler.Employee, 0, len(snapshot.Employees)),
		Availability: make([]scheduler.AvailabilitySlot, 0, len(snapshot.Availability)),
		Requirements: make([]scheduler.ShiftRequirement, 0, len(requirements)),
	}

	for _, e := range snapshot.Employees {
		input.Employees = append(input.Employees, scheduler.Employee{
			ID:          e.ID,
			DisplayName: e.DisplayName,
			Role:        scheduler.Role(e.Role),
		})
	}

	for _, a := range snapshot.Availability {
		day, err := scheduler.ParseWeekday(a.Day)
		if err != nil {
			return scheduler.Input{}, fmt.Errorf("%w: availability for %s: %w", scheduler.ErrInvalidInput, a.EmployeeID, err)
		}
		input.Availability = append(input.Availability, scheduler.AvailabilitySlot{
			EmployeeID: a.EmployeeID,
			Day:        day,
			Shift:      a.ShiftType,
			Available:  a.Available,
			Preferred:  a.Preferred,
		})
	}

	for _, r := range requirements {
		day, err := scheduler.ParseWeekday(r.Day)
		if err != nil {
			return scheduler.Input{}, fmt.Errorf("%w: requirement: %w", scheduler.ErrInvalidInput, err)
		}
		input.Requirements = append(input.Requirements, scheduler.ShiftRequirement{
			Day:       day,
			Shift:     r.ShiftType,
			Headcount: r.Headcount,
			Roles:     parseRoles(r.Roles),
			RoleHard:  r.RoleHard,
		})
	}

	return input, nil
}

// parseRoles splits a comma separated role list
func parseRoles(s string) []scheduler.Role {
	var roles []scheduler.Role
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		roles = append(roles, scheduler.Role(part))
	}
	return roles
}

// formatRoles joins roles into the stored comma separated form
func formatRoles(roles []string) string {
	return strings.Join(roles, ",")
}

// convertToDBRun builds the run record for a report
func convertToDBRun(runID string, report *scheduler.SchedulingReport, forced bool, createdAt time.Time) db.ScheduleRun {
	return db.ScheduleRun{
		ID:               runID,
		WeekStart:        report.WeekStart.Format(db.DateFormat),
		CreatedAt:        createdAt,
		Scheduled:        report.ScheduledCount(),
		Shortfall:        report.TotalShortfall(),
		ValidationErrors: len(report.ValidationErrors),
		Forced:           forced,
	}
}

// convertToDBAssignments converts report assignments to database assignment records
func convertToDBAssignments(runID string, report *scheduler.SchedulingReport) []db.Assignment {
	assignments := make([]db.Assignment, 0, len(report.Assignments))
	weekStart := report.WeekStart.Format(db.DateFormat)

	for _, a := range report.Assignments {
		var employeeID *string
		if a.Status == scheduler.StatusScheduled {
			id := a.EmployeeID
			employeeID = &id
		}

		assignments = append(assignments, db.Assignment{
			ID:         uuid.New().String(),
			RunID:      runID,
			WeekStart:  weekStart,
			EmployeeID: employeeID,
			ShiftDate:  a.Slot.Date.Format(db.DateFormat),
			ShiftType:  a.Slot.Shift,
			Status:     string(a.Status),
		})
	}

	return assignments
}

// sortSlotKeys orders keys by day offset then shift order of the calendar
func sortSlotKeys(cal scheduler.Calendar, keys []scheduler.SlotKey) {
	sort.SliceStable(keys, func(i, j int) bool {
		return cal.Less(keys[i], keys[j])
	})
}

package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/shift-scheduler/pkg/core/services"
	"github.com/jakechorley/shift-scheduler/pkg/db"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// staffingColor returns green when a slot is fully staffed, yellow when partly staffed and red when empty
func staffingColor(assigned, required int, green, yellow, red string) string {
	switch {
	case assigned >= required:
		return green
	case assigned > 0:
		return yellow
	default:
		return red
	}
}

type slotLine struct {
	date      string
	day       time.Weekday
	shift     string
	startsAt  time.Time
	employees []string
	required  int
}

// printScheduleReport writes the outcome of a run
func printScheduleReport(w io.Writer, result *services.GenerateScheduleResult, dryRun, forceCommit bool) {
	report := result.Report

	fmt.Fprintf(w, "\n📅 Schedule for week of %s\n\n", report.WeekStart.Format(db.DateFormat))
	fmt.Fprintf(w, "Run ID:      %s\n", result.RunID)
	fmt.Fprintf(w, "Scheduled:   %d\n", report.ScheduledCount())
	fmt.Fprintf(w, "Shortfall:   %d\n", report.TotalShortfall())
	switch {
	case dryRun:
		fmt.Fprintf(w, "Mode:        🧪 DRY RUN (not saved)\n")
	case result.Committed && len(report.ValidationErrors) > 0:
		fmt.Fprintf(w, "Status:      ⚠️  FORCED (saved despite validation errors)\n")
	case result.Committed:
		fmt.Fprintf(w, "Status:      ✅ SUCCESS (saved to database)\n")
	case !forceCommit:
		fmt.Fprintf(w, "Status:      ❌ FAILED VALIDATION (not saved, use --force-commit to save anyway)\n")
	default:
		fmt.Fprintf(w, "Status:      ❌ NOT SAVED\n")
	}
	fmt.Fprintln(w)

	if len(report.ValidationErrors) > 0 {
		fmt.Fprintf(w, "⚠️  Validation Errors (%d):\n", len(report.ValidationErrors))
		for _, verr := range report.ValidationErrors {
			slot := verr.SlotID
			if slot == "" {
				slot = "run"
			}
			fmt.Fprintf(w, "  • %s - %s: %s\n", slot, verr.CriterionName, verr.Description)
		}
		fmt.Fprintln(w)
	}

	// Group assignments by slot, then order by start time
	required := make(map[string]int)
	for _, u := range report.Unmet {
		required[u.Slot.ID()] = u.Required
	}

	var lines []*slotLine
	byID := make(map[string]*slotLine)
	for _, a := range report.Assignments {
		id := a.Slot.ID()
		line, ok := byID[id]
		if !ok {
			line = &slotLine{
				date:     a.Slot.Date.Format(db.DateFormat),
				day:      a.Slot.Day,
				shift:    a.Slot.Shift,
				startsAt: a.Slot.StartsAt,
			}
			byID[id] = line
			lines = append(lines, line)
		}
		if a.Status == scheduler.StatusScheduled {
			line.employees = append(line.employees, a.EmployeeID)
		}
	}
	for _, u := range report.Unmet {
		if _, ok := byID[u.Slot.ID()]; ok {
			continue
		}
		line := &slotLine{
			date:     u.Slot.Date.Format(db.DateFormat),
			day:      u.Slot.Day,
			shift:    u.Slot.Shift,
			startsAt: u.Slot.StartsAt,
		}
		byID[u.Slot.ID()] = line
		lines = append(lines, line)
	}
	for id, line := range byID {
		line.required = len(line.employees)
		if r, ok := required[id]; ok {
			line.required = r
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].startsAt.Before(lines[j].startsAt)
	})

	fmt.Fprintf(w, "%sAssignments:%s\n\n", colorBold, colorReset)
	if len(lines) == 0 {
		fmt.Fprintf(w, "  %sNo shifts required this week%s\n\n", colorDim, colorReset)
		return
	}
	for _, line := range lines {
		color := staffingColor(len(line.employees), line.required, colorGreen, colorYellow, colorRed)
		staff := strings.Join(line.employees, ", ")
		if staff == "" {
			staff = "-"
		}
		fmt.Fprintf(w, "  %s %-9s %-10s %s%d/%d%s  %s\n",
			line.date, line.day, line.shift, color, len(line.employees), line.required, colorReset, staff)
	}
	fmt.Fprintln(w)

	if len(report.Unmet) > 0 {
		fmt.Fprintf(w, "%sUnmet requirements (%d):%s\n", colorYellow, len(report.Unmet), colorReset)
		for _, u := range report.Unmet {
			fmt.Fprintf(w, "  • %s short by %d (%d of %d)\n", u.Slot.ID(), u.Shortfall, u.Assigned, u.Required)
		}
		fmt.Fprintln(w)
	}
}

// printSchedule writes a persisted week
func printSchedule(w io.Writer, view *services.ViewScheduleResult) {
	fmt.Fprintf(w, "\n📅 Committed schedule for week of %s\n\n", view.WeekStart)

	if view.LatestRun == nil {
		fmt.Fprintf(w, "  %sNo schedule has been committed for this week%s\n\n", colorDim, colorReset)
		return
	}

	run := view.LatestRun
	fmt.Fprintf(w, "Run ID:      %s\n", run.ID)
	fmt.Fprintf(w, "Created:     %s\n", run.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Scheduled:   %d\n", run.Scheduled)
	fmt.Fprintf(w, "Shortfall:   %d\n", run.Shortfall)
	if run.Forced {
		fmt.Fprintf(w, "Status:      ⚠️  FORCED (%d validation errors)\n", run.ValidationErrors)
	}
	fmt.Fprintln(w)

	for _, s := range view.Shifts {
		employee := s.EmployeeID
		if employee == "" {
			employee = colorRed + "(unfilled)" + colorReset
		}
		fmt.Fprintf(w, "  %s %-9s %-10s %s\n", s.Date, s.Day, s.Shift, employee)
	}
	fmt.Fprintln(w)
}

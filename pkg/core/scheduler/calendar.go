package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// ShiftDefinition describes one shift type of the working day
type ShiftDefinition struct {
	Name string

	// Start is the offset from midnight at which the shift begins
	Start time.Duration

	Hours float64
}

// Calendar defines which days and shift types make up a schedulable week.
// The order of Shifts is the order slots are filled within a day.
type Calendar struct {
	FirstDay time.Weekday
	Days     []time.Weekday
	Shifts   []ShiftDefinition
}

// DefaultCalendar returns a Monday-first week with morning and afternoon shifts, Monday to Friday
func DefaultCalendar() Calendar {
	return Calendar{
		FirstDay: time.Monday,
		Days:     []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		Shifts: []ShiftDefinition{
			{Name: "morning", Start: 9 * time.Hour, Hours: 4},
			{Name: "afternoon", Start: 13 * time.Hour, Hours: 4},
		},
	}
}

// Validate checks the calendar is usable for enumerating slots
func (c Calendar) Validate() error {
	if len(c.Days) == 0 {
		return fmt.Errorf("calendar has no days")
	}
	if len(c.Shifts) == 0 {
		return fmt.Errorf("calendar has no shifts")
	}

	seenDays := make(map[time.Weekday]bool)
	for _, day := range c.Days {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("invalid weekday %d", day)
		}
		if seenDays[day] {
			return fmt.Errorf("duplicate day %s", day)
		}
		seenDays[day] = true
	}

	seenShifts := make(map[string]bool)
	for _, shift := range c.Shifts {
		if shift.Name == "" {
			return fmt.Errorf("shift with empty name")
		}
		if seenShifts[shift.Name] {
			return fmt.Errorf("duplicate shift %q", shift.Name)
		}
		if shift.Hours <= 0 {
			return fmt.Errorf("shift %q must have positive hours, got %v", shift.Name, shift.Hours)
		}
		if shift.Start < 0 || shift.Start >= 24*time.Hour {
			return fmt.Errorf("shift %q start %s is outside the day", shift.Name, shift.Start)
		}
		seenShifts[shift.Name] = true
	}

	return nil
}

// DayOffset returns how many days after the week start the given weekday falls
func (c Calendar) DayOffset(day time.Weekday) int {
	return (int(day) - int(c.FirstDay) + 7) % 7
}

// HasDay reports whether the weekday is part of the schedulable week
func (c Calendar) HasDay(day time.Weekday) bool {
	for _, d := range c.Days {
		if d == day {
			return true
		}
	}
	return false
}

// Shift returns the definition for the named shift
func (c Calendar) Shift(name string) (ShiftDefinition, bool) {
	for _, s := range c.Shifts {
		if s.Name == name {
			return s, true
		}
	}
	return ShiftDefinition{}, false
}

// shiftOrder returns the position of the named shift within the day, or -1
func (c Calendar) shiftOrder(name string) int {
	for i, s := range c.Shifts {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Less orders slot keys by day offset then shift order
func (c Calendar) Less(a, b SlotKey) bool {
	oa, ob := c.DayOffset(a.Day), c.DayOffset(b.Day)
	if oa != ob {
		return oa < ob
	}
	return c.shiftOrder(a.Shift) < c.shiftOrder(b.Shift)
}

// IsWeekStart reports whether date falls on the calendar's first day of the week
func (c Calendar) IsWeekStart(date time.Time) bool {
	return date.Weekday() == c.FirstDay
}

// WeekStartFor returns the start of the week containing date, normalised to midnight UTC
func (c Calendar) WeekStartFor(date time.Time) time.Time {
	normalized := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	back := (int(normalized.Weekday()) - int(c.FirstDay) + 7) % 7
	return normalized.AddDate(0, 0, -back)
}

// Slot builds the concrete slot for the given week and key
func (c Calendar) Slot(weekStart time.Time, key SlotKey) (ShiftSlot, error) {
	def, ok := c.Shift(key.Shift)
	if !ok {
		return ShiftSlot{}, fmt.Errorf("unknown shift %q", key.Shift)
	}
	if !c.HasDay(key.Day) {
		return ShiftSlot{}, fmt.Errorf("day %s is not part of the calendar", key.Day)
	}

	date := weekStart.AddDate(0, 0, c.DayOffset(key.Day))
	return ShiftSlot{
		WeekStart: weekStart,
		Day:       key.Day,
		Shift:     key.Shift,
		Date:      date,
		StartsAt:  date.Add(def.Start),
		Hours:     def.Hours,
	}, nil
}

// ParseWeekday parses an English weekday name or its three letter abbreviation
func ParseWeekday(s string) (time.Weekday, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if normalized == name || normalized == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday %q", s)
}

// ParseWeekStart parses a YYYY-MM-DD date and checks it falls on the calendar's first day
func (c Calendar) ParseWeekStart(s string) (time.Time, error) {
	date, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid week start %q: %w", s, err)
	}
	if !c.IsWeekStart(date) {
		return time.Time{}, fmt.Errorf("week start %s is a %s, expected %s", s, date.Weekday(), c.FirstDay)
	}
	return date, nil
}

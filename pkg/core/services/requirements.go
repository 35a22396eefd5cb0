package services

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-scheduler/internal/config"
	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/shift-scheduler/pkg/db"
)

// ConfigRequirements provides shift requirements from configuration.
// Defaults give the standing headcount per (day, shift); overrides change it on dates matching an RRULE.
type ConfigRequirements struct {
	calendar  scheduler.Calendar
	defaults  []config.RequirementDefault
	overrides []requirementOverride
	logger    *zap.Logger
}

type requirementOverride struct {
	rrule     string
	option    *rrule.ROption
	shift     string
	headcount *int
}

// NewConfigRequirements parses the configured overrides
func NewConfigRequirements(calendar scheduler.Calendar, settings config.RequirementsSettings, logger *zap.Logger) (*ConfigRequirements, error) {
	overrides := make([]requirementOverride, 0, len(settings.Overrides))
	for i, o := range settings.Overrides {
		option, err := o.Option()
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for override %d: %w", i, err)
		}
		overrides = append(overrides, requirementOverride{
			rrule:     o.RRule,
			option:    option,
			shift:     o.Shift,
			headcount: o.Headcount,
		})
	}

	return &ConfigRequirements{
		calendar:  calendar,
		defaults:  settings.Defaults,
		overrides: overrides,
		logger:    logger,
	}, nil
}

// GetShiftRequirements returns the week's requirements with matching overrides applied.
// Rows are ordered by day then shift in calendar order.
func (c *ConfigRequirements) GetShiftRequirements(ctx context.Context, weekStart string) ([]db.ShiftRequirement, error) {
	start, err := time.Parse(db.DateFormat, weekStart)
	if err != nil {
		return nil, fmt.Errorf("invalid week start %q: %w", weekStart, err)
	}

	byKey := make(map[scheduler.SlotKey]*db.ShiftRequirement)
	var keys []scheduler.SlotKey

	for _, d := range c.defaults {
		day, err := scheduler.ParseWeekday(d.Day)
		if err != nil {
			return nil, fmt.Errorf("requirement default: %w", err)
		}
		key := scheduler.SlotKey{Day: day, Shift: d.Shift}
		if _, exists := byKey[key]; exists {
			return nil, fmt.Errorf("duplicate requirement default for %s", key)
		}
		byKey[key] = &db.ShiftRequirement{
			WeekStart: weekStart,
			Day:       day.String(),
			ShiftType: d.Shift,
			Headcount: d.Headcount,
			Roles:     formatRoles(d.Roles),
			RoleHard:  d.RoleHard,
		}
		keys = append(keys, key)
	}

	dates, err := c.matchingDates(start)
	if err != nil {
		return nil, err
	}

	for _, date := range dates {
		for _, o := range date.overrides {
			if o.headcount == nil {
				continue
			}
			for _, shift := range c.calendar.Shifts {
				if o.shift != "" && o.shift != shift.Name {
					continue
				}
				key := scheduler.SlotKey{Day: date.day, Shift: shift.Name}
				row, exists := byKey[key]
				if !exists {
					row = &db.ShiftRequirement{WeekStart: weekStart, Day: date.day.String(), ShiftType: shift.Name}
					byKey[key] = row
					keys = append(keys, key)
				}
				row.Headcount = *o.headcount

				c.logger.Debug("Applied requirement override",
					zap.String("rrule", o.rrule),
					zap.String("slot", key.String()),
					zap.Int("headcount", row.Headcount))
			}
		}
	}

	sortSlotKeys(c.calendar, keys)

	result := make([]db.ShiftRequirement, 0, len(keys))
	for _, key := range keys {
		result = append(result, *byKey[key])
	}
	return result, nil
}

type overrideDate struct {
	day       time.Weekday
	overrides []requirementOverride
}

// matchingDates returns, per calendar day of the week, the overrides whose RRULE hits that date.
// Later overrides win when several match the same slot.
func (c *ConfigRequirements) matchingDates(weekStart time.Time) ([]overrideDate, error) {
	weekEnd := weekStart.AddDate(0, 0, 7).Add(-time.Second)

	matched := make(map[string][]requirementOverride)
	for _, o := range c.overrides {
		option := *o.option
		// Unanchored rules match the same days in every week, so any nearby start will do
		if option.Dtstart.IsZero() {
			option.Dtstart = weekStart.AddDate(0, 0, -7)
		}
		rule, err := rrule.NewRRule(option)
		if err != nil {
			return nil, fmt.Errorf("failed to build rrule %q: %w", o.rrule, err)
		}

		for _, occurrence := range rule.Between(weekStart, weekEnd, true) {
			date := occurrence.Format(db.DateFormat)
			matched[date] = append(matched[date], o)
		}
	}

	var result []overrideDate
	for _, day := range c.calendar.Days {
		date := weekStart.AddDate(0, 0, c.calendar.DayOffset(day)).Format(db.DateFormat)
		if overrides, ok := matched[date]; ok {
			result = append(result, overrideDate{day: day, overrides: overrides})
		}
	}
	return result, nil
}

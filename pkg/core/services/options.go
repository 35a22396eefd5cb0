package services

import (
	"fmt"

	"github.com/jakechorley/shift-scheduler/internal/config"
	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler/criteria"
)

// OptionsFromConfig builds run options from the engine and calendar configuration.
// WeekStart is left for the caller to set.
func OptionsFromConfig(cfg *config.Config) (GenerateScheduleOptions, error) {
	calendar, err := cfg.SchedulerCalendar()
	if err != nil {
		return GenerateScheduleOptions{}, fmt.Errorf("invalid calendar: %w", err)
	}

	weights := criteria.DefaultWeights()
	if w := cfg.Engine.Weights.HoursLoad; w != nil {
		weights.HoursLoad = *w
	}
	if w := cfg.Engine.Weights.RoleMatch; w != nil {
		weights.RoleMatch = *w
	}
	if w := cfg.Engine.Weights.Preference; w != nil {
		weights.Preference = *w
	}

	return GenerateScheduleOptions{
		Calendar:         calendar,
		Weights:          weights,
		MaxShiftsPerDay:  cfg.Engine.MaxShiftsPerDay,
		MaxWeeklyHours:   cfg.Engine.MaxWeeklyHours,
		EmitPlaceholders: cfg.Engine.EmitPlaceholders,
	}, nil
}

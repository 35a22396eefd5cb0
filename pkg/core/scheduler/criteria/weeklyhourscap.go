package criteria

import (
	"fmt"
	"sort"

	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler"
)

// WeeklyHoursCapCriterion prevents any employee from exceeding a maximum number of hours in the week.
//
// Eligibility:
//   - Returns false if assigning the slot would push the candidate's hours above the cap
//   - A cap of 0 disables the criterion
//
// Score:
//   - No ranking opinion (always 0)
//
// Validation:
//   - Reports every employee whose final hours exceed the cap
type WeeklyHoursCapCriterion struct {
	maxHours float64
}

// NewWeeklyHoursCapCriterion creates a new WeeklyHoursCapCriterion
func NewWeeklyHoursCapCriterion(maxHours float64) *WeeklyHoursCapCriterion {
	return &WeeklyHoursCapCriterion{maxHours: maxHours}
}

func (c *WeeklyHoursCapCriterion) Name() string {
	return "WeeklyHoursCap"
}

func (c *WeeklyHoursCapCriterion) IsEligible(state *scheduler.RunState, candidate *scheduler.Candidate, slot *scheduler.SlotState) bool {
	if c.maxHours <= 0 {
		return true
	}
	return state.Load.Hours(candidate.Employee.ID)+slot.Slot.Hours <= c.maxHours
}

func (c *WeeklyHoursCapCriterion) Score(state *scheduler.RunState, candidate *scheduler.Candidate, slot *scheduler.SlotState) float64 {
	return 0
}

func (c *WeeklyHoursCapCriterion) Weight() float64 {
	return 0
}

func (c *WeeklyHoursCapCriterion) ValidateRunState(state *scheduler.RunState) []scheduler.SlotValidationError {
	var errors []scheduler.SlotValidationError
	if c.maxHours <= 0 {
		return errors
	}

	// Sort for a stable error order
	ids := make([]string, 0, len(state.Load))
	for id := range state.Load {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		hours := state.Load.Hours(id)
		if hours > c.maxHours {
			errors = append(errors, scheduler.SlotValidationError{
				CriterionName: c.Name(),
				Description:   fmt.Sprintf("Employee %s has %.1f hours, above the weekly cap of %.1f", id, hours, c.maxHours),
			})
		}
	}

	return errors
}

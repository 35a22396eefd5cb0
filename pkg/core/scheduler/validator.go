package scheduler

import (
	"fmt"
	"time"
)

const builtinCriterionName = "Builtin"

// ValidateRunState validates the final run state against the built-in invariants
// (capacity, availability, daily cap) and every provided criterion.
// An empty slice indicates the schedule is internally consistent.
func ValidateRunState(state *RunState, criteria []Criterion) []SlotValidationError {
	errors := []SlotValidationError{}

	perDate := make(map[string]map[string]int)

	for _, slot := range state.Slots {
		slotID := slot.Slot.ID()

		if len(slot.Assigned) > slot.Requirement.Headcount {
			errors = append(errors, SlotValidationError{
				SlotID:        slotID,
				CriterionName: builtinCriterionName,
				Description: fmt.Sprintf("Slot is overfilled: has %d employees but requires %d",
					len(slot.Assigned), slot.Requirement.Headcount),
			})
		}

		seen := make(map[string]bool)
		for _, employeeID := range slot.Assigned {
			if seen[employeeID] {
				errors = append(errors, SlotValidationError{
					SlotID:        slotID,
					CriterionName: builtinCriterionName,
					Description:   fmt.Sprintf("Employee %s assigned twice to the same slot", employeeID),
				})
			}
			seen[employeeID] = true

			if !state.IsAvailable(employeeID, slot.Slot.Key()) {
				errors = append(errors, SlotValidationError{
					SlotID:        slotID,
					CriterionName: builtinCriterionName,
					Description:   fmt.Sprintf("Employee %s is not available for this slot", employeeID),
				})
			}

			date := slot.Slot.Date.Format(time.DateOnly)
			if perDate[employeeID] == nil {
				perDate[employeeID] = make(map[string]int)
			}
			perDate[employeeID][date]++
			if perDate[employeeID][date] == state.MaxShiftsPerDay+1 {
				errors = append(errors, SlotValidationError{
					SlotID:        slotID,
					CriterionName: builtinCriterionName,
					Description: fmt.Sprintf("Employee %s exceeds %d shift(s) on %s",
						employeeID, state.MaxShiftsPerDay, date),
				})
			}
		}
	}

	for _, criterion := range criteria {
		errors = append(errors, criterion.ValidateRunState(state)...)
	}

	return errors
}

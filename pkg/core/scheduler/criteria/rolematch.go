package criteria

import (
	"fmt"

	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler"
)

// RoleMatchCriterion applies the role restriction carried by a shift requirement.
//
// Eligibility:
//   - Returns false when the requirement's role restriction is hard and the candidate's role is not in it
//
// Score:
//   - 1 when the requirement restricts roles softly and the candidate's role is not in it, 0 otherwise
//   - Weighted heavily by default so mismatched candidates are only used when nobody else is eligible
//
// Validation:
//   - Reports employees assigned to hard-restricted slots outside the allowed roles
type RoleMatchCriterion struct {
	weight float64
}

// NewRoleMatchCriterion creates a new RoleMatchCriterion with the given mismatch penalty weight
func NewRoleMatchCriterion(weight float64) *RoleMatchCriterion {
	return &RoleMatchCriterion{weight: weight}
}

func (c *RoleMatchCriterion) Name() string {
	return "RoleMatch"
}

func (c *RoleMatchCriterion) IsEligible(state *scheduler.RunState, candidate *scheduler.Candidate, slot *scheduler.SlotState) bool {
	req := slot.Requirement
	if !req.RoleHard {
		return true
	}
	return req.AcceptsRole(candidate.Employee.Role)
}

func (c *RoleMatchCriterion) Score(state *scheduler.RunState, candidate *scheduler.Candidate, slot *scheduler.SlotState) float64 {
	if slot.Requirement.AcceptsRole(candidate.Employee.Role) {
		return 0
	}
	return 1
}

func (c *RoleMatchCriterion) Weight() float64 {
	return c.weight
}

func (c *RoleMatchCriterion) ValidateRunState(state *scheduler.RunState) []scheduler.SlotValidationError {
	var errors []scheduler.SlotValidationError

	for _, slot := range state.Slots {
		if !slot.Requirement.RoleHard {
			continue
		}
		for _, employeeID := range slot.Assigned {
			employee := state.Employees[employeeID]
			if !slot.Requirement.AcceptsRole(employee.Role) {
				errors = append(errors, scheduler.SlotValidationError{
					SlotID:        slot.Slot.ID(),
					CriterionName: c.Name(),
					Description:   fmt.Sprintf("Employee %s has role %s which this slot does not accept", employeeID, employee.Role),
				})
			}
		}
	}

	return errors
}

package criteria

import (
	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler"
)

// HoursLoadCriterion balances work by preferring employees with fewer hours assigned in the run.
//
// Eligibility:
//   - No eligibility constraints (always returns true)
//
// Score:
//   - The hours already assigned to the candidate this run
//   - Earlier slots therefore go to the least loaded employees
type HoursLoadCriterion struct {
	weight float64
}

// NewHoursLoadCriterion creates a new HoursLoadCriterion with the given weight
func NewHoursLoadCriterion(weight float64) *HoursLoadCriterion {
	return &HoursLoadCriterion{weight: weight}
}

func (c *HoursLoadCriterion) Name() string {
	return "HoursLoad"
}

func (c *HoursLoadCriterion) IsEligible(state *scheduler.RunState, candidate *scheduler.Candidate, slot *scheduler.SlotState) bool {
	return true
}

func (c *HoursLoadCriterion) Score(state *scheduler.RunState, candidate *scheduler.Candidate, slot *scheduler.SlotState) float64 {
	return state.Load.Hours(candidate.Employee.ID)
}

func (c *HoursLoadCriterion) Weight() float64 {
	return c.weight
}

func (c *HoursLoadCriterion) ValidateRunState(state *scheduler.RunState) []scheduler.SlotValidationError {
	return nil
}

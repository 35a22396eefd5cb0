package criteria

import (
	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler"
)

// PreferenceCriterion favours employees who marked the slot as preferred.
// Scores -1 for preferred slots so a positive weight acts as a bonus.
type PreferenceCriterion struct {
	weight float64
}

// NewPreferenceCriterion creates a new PreferenceCriterion with the given bonus weight
func NewPreferenceCriterion(weight float64) *PreferenceCriterion {
	return &PreferenceCriterion{weight: weight}
}

func (c *PreferenceCriterion) Name() string {
	return "Preference"
}

func (c *PreferenceCriterion) IsEligible(state *scheduler.RunState, candidate *scheduler.Candidate, slot *scheduler.SlotState) bool {
	return true
}

func (c *PreferenceCriterion) Score(state *scheduler.RunState, candidate *scheduler.Candidate, slot *scheduler.SlotState) float64 {
	if candidate.Availability.Preferred {
		return -1
	}
	return 0
}

func (c *PreferenceCriterion) Weight() float64 {
	return c.weight
}

func (c *PreferenceCriterion) ValidateRunState(state *scheduler.RunState) []scheduler.SlotValidationError {
	return nil
}

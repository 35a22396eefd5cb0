package criteria

import "github.com/jakechorley/shift-scheduler/pkg/core/scheduler"

// Default weights. Hours load dominates ordinary ranking; a role mismatch
// outweighs any realistic difference in weekly hours.
const (
	DefaultWeightHoursLoad  = 10.0
	DefaultWeightRoleMatch  = 1000.0
	DefaultWeightPreference = 0.0
)

// Weights configures the built-in criteria
type Weights struct {
	HoursLoad  float64
	RoleMatch  float64
	Preference float64
}

// DefaultWeights returns the default criterion weights
func DefaultWeights() Weights {
	return Weights{
		HoursLoad:  DefaultWeightHoursLoad,
		RoleMatch:  DefaultWeightRoleMatch,
		Preference: DefaultWeightPreference,
	}
}

// Build assembles the standard criteria set.
// maxWeeklyHours of 0 leaves weekly hours uncapped.
func Build(weights Weights, maxWeeklyHours float64) []scheduler.Criterion {
	return []scheduler.Criterion{
		NewHoursLoadCriterion(weights.HoursLoad),
		NewRoleMatchCriterion(weights.RoleMatch),
		NewPreferenceCriterion(weights.Preference),
		NewWeeklyHoursCapCriterion(maxWeeklyHours),
	}
}

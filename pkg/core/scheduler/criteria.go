package scheduler

// Criterion defines the interface for pluggable ranking criteria.
// Criteria influence which eligible candidates are preferred for a slot and can veto candidates outright.
type Criterion interface {
	// Name returns a human-readable identifier for this criterion
	Name() string

	// IsEligible determines if a candidate may be assigned to a slot at all.
	// This acts as a veto - if ANY criterion returns false, the candidate is excluded.
	IsEligible(state *RunState, candidate *Candidate, slot *SlotState) bool

	// Score returns the criterion's raw cost for assigning the candidate to the slot.
	// Lower is better. The ranker multiplies it by Weight and sums across criteria.
	// Return 0 if this criterion has no opinion.
	Score(state *RunState, candidate *Candidate, slot *SlotState) float64

	// Weight returns the multiplier applied to Score
	Weight() float64

	// ValidateRunState checks the finished run against this criterion's hard requirements
	ValidateRunState(state *RunState) []SlotValidationError
}

package scheduler

import "sort"

// Ranker orders eligible candidates for a slot using weighted criteria
type Ranker struct {
	criteria []Criterion
}

// NewRanker creates a ranker over the given criteria
func NewRanker(criteria []Criterion) *Ranker {
	return &Ranker{criteria: criteria}
}

// Rank returns the candidates ordered best first.
// Scores are weighted sums where lower is better; ties are broken by employee id ascending
// so the order is fully determined by the inputs.
func (r *Ranker) Rank(state *RunState, slot *SlotState, candidates []*Candidate) []*Candidate {
	scores := make(map[string]float64, len(candidates))
	for _, candidate := range candidates {
		scores[candidate.Employee.ID] = r.Score(state, candidate, slot)
	}

	ranked := make([]*Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		idI, idJ := ranked[i].Employee.ID, ranked[j].Employee.ID
		if scores[idI] != scores[idJ] {
			return scores[idI] < scores[idJ]
		}
		return idI < idJ
	})

	return ranked
}

// Score computes the weighted cost of assigning the candidate to the slot
func (r *Ranker) Score(state *RunState, candidate *Candidate, slot *SlotState) float64 {
	total := 0.0
	for _, criterion := range r.criteria {
		weight := criterion.Weight()
		if weight == 0 {
			continue
		}
		total += criterion.Score(state, candidate, slot) * weight
	}
	return total
}

// IsEligible applies every criterion veto
func (r *Ranker) IsEligible(state *RunState, candidate *Candidate, slot *SlotState) bool {
	for _, criterion := range r.criteria {
		if !criterion.IsEligible(state, candidate, slot) {
			return false
		}
	}
	return true
}

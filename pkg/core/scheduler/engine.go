package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrInvalidInput is returned when the availability or requirement data is malformed
	ErrInvalidInput = errors.New("invalid scheduling input")

	// ErrRunNotRunnable is returned when Execute is called on a run that has already finished
	ErrRunNotRunnable = errors.New("run is not in a runnable state")
)

// DefaultMaxShiftsPerDay allows one shift per employee per day
const DefaultMaxShiftsPerDay = 1

// Phase is the lifecycle state of a run
type Phase int

const (
	PhaseInitialized Phase = iota
	PhaseSlotsEnumerated
	PhaseAssigning
	PhaseCompleted
	PhaseAborted
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialized:
		return "Initialized"
	case PhaseSlotsEnumerated:
		return "SlotsEnumerated"
	case PhaseAssigning:
		return "Assigning"
	case PhaseCompleted:
		return "Completed"
	case PhaseAborted:
		return "Aborted"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Config contains the engine configuration for a run
type Config struct {
	// Calendar defines the schedulable days and shift types
	Calendar Calendar

	// Criteria used to veto and rank candidates
	Criteria []Criterion

	// MaxShiftsPerDay caps how many slots one employee may hold on the same date.
	// Zero means DefaultMaxShiftsPerDay.
	MaxShiftsPerDay int

	// EmitPlaceholders adds an unfilled-placeholder assignment for every missing employee
	EmitPlaceholders bool
}

// Input is the data snapshot a run schedules against
type Input struct {
	Employees    []Employee
	Availability []AvailabilitySlot
	Requirements []ShiftRequirement
}

// Run is a single scheduling invocation for one week.
// A run is not safe for concurrent use and executes at most once.
type Run struct {
	weekStart time.Time
	config    Config
	ranker    *Ranker

	phase  Phase
	err    error
	state  *RunState
	report *SchedulingReport
}

// NewRun creates a run for the week starting at weekStart
func NewRun(weekStart time.Time, config Config) *Run {
	if config.MaxShiftsPerDay <= 0 {
		config.MaxShiftsPerDay = DefaultMaxShiftsPerDay
	}
	return &Run{
		weekStart: weekStart,
		config:    config,
		ranker:    NewRanker(config.Criteria),
		phase:     PhaseInitialized,
	}
}

// Phase returns the run's current lifecycle state
func (r *Run) Phase() Phase {
	return r.phase
}

// Err returns the reason the run was aborted, if any
func (r *Run) Err() error {
	return r.err
}

// State returns the run state, or nil before slots are enumerated
func (r *Run) State() *RunState {
	return r.state
}

// Abort moves the run to the Aborted state. Used when upstream data cannot be fetched.
func (r *Run) Abort(err error) {
	if r.phase == PhaseCompleted {
		return
	}
	r.phase = PhaseAborted
	r.err = err
	r.state = nil
	r.report = nil
}

// Execute schedules the week against the given input snapshot.
// Unmet requirements are reported in the returned report, not as errors.
func (r *Run) Execute(input Input) (*SchedulingReport, error) {
	if r.phase != PhaseInitialized {
		return nil, fmt.Errorf("%w: %s", ErrRunNotRunnable, r.phase)
	}

	state, err := r.initState(input)
	if err != nil {
		r.Abort(err)
		return nil, err
	}
	r.state = state
	r.phase = PhaseSlotsEnumerated

	r.phase = PhaseAssigning
	report := &SchedulingReport{
		WeekStart:   r.weekStart,
		Assignments: []Assignment{},
		Unmet:       []UnmetRequirement{},
	}

	for _, slot := range state.Slots {
		r.fillSlot(slot, report)
	}

	report.ValidationErrors = ValidateRunState(state, r.config.Criteria)

	r.report = report
	r.phase = PhaseCompleted
	return report, nil
}

// initState validates the input and enumerates the week's slots in fill order
func (r *Run) initState(input Input) (*RunState, error) {
	cal := r.config.Calendar
	if err := cal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if !cal.IsWeekStart(r.weekStart) {
		return nil, fmt.Errorf("%w: week start %s is a %s, expected %s",
			ErrInvalidInput, r.weekStart.Format(time.DateOnly), r.weekStart.Weekday(), cal.FirstDay)
	}

	state := &RunState{
		WeekStart:       r.weekStart,
		Calendar:        cal,
		Employees:       make(map[string]Employee, len(input.Employees)),
		Availability:    make(map[SlotKey]map[string]AvailabilitySlot),
		Slots:           []*SlotState{},
		Load:            make(RunningLoad),
		ShiftsPerDate:   make(map[string]map[string]int),
		MaxShiftsPerDay: r.config.MaxShiftsPerDay,
	}

	for _, emp := range input.Employees {
		if emp.ID == "" {
			return nil, fmt.Errorf("%w: employee with empty id", ErrInvalidInput)
		}
		if !emp.Role.IsValid() {
			return nil, fmt.Errorf("%w: employee %s has invalid role %q", ErrInvalidInput, emp.ID, emp.Role)
		}
		if _, exists := state.Employees[emp.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate employee %s", ErrInvalidInput, emp.ID)
		}
		state.Employees[emp.ID] = emp
	}

	for _, avail := range input.Availability {
		if _, exists := state.Employees[avail.EmployeeID]; !exists {
			return nil, fmt.Errorf("%w: availability for unknown employee %s", ErrInvalidInput, avail.EmployeeID)
		}
		key := avail.Key()
		if _, err := cal.Slot(r.weekStart, key); err != nil {
			return nil, fmt.Errorf("%w: availability for %s: %w", ErrInvalidInput, avail.EmployeeID, err)
		}
		byEmployee, ok := state.Availability[key]
		if !ok {
			byEmployee = make(map[string]AvailabilitySlot)
			state.Availability[key] = byEmployee
		}
		if _, exists := byEmployee[avail.EmployeeID]; exists {
			return nil, fmt.Errorf("%w: duplicate availability for %s on %s", ErrInvalidInput, avail.EmployeeID, key)
		}
		byEmployee[avail.EmployeeID] = avail
	}

	seen := make(map[SlotKey]bool)
	for _, req := range input.Requirements {
		key := req.Key()
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate requirement for %s", ErrInvalidInput, key)
		}
		seen[key] = true

		if req.Headcount < 0 {
			return nil, fmt.Errorf("%w: negative headcount %d for %s", ErrInvalidInput, req.Headcount, key)
		}
		for _, role := range req.Roles {
			if !role.IsValid() {
				return nil, fmt.Errorf("%w: requirement %s has invalid role %q", ErrInvalidInput, key, role)
			}
		}

		slot, err := cal.Slot(r.weekStart, key)
		if err != nil {
			return nil, fmt.Errorf("%w: requirement: %w", ErrInvalidInput, err)
		}

		// Zero headcount means the slot is not scheduled
		if req.Headcount == 0 {
			continue
		}

		state.Slots = append(state.Slots, &SlotState{
			Slot:        slot,
			Requirement: req,
			Assigned:    []string{},
		})
	}

	sort.SliceStable(state.Slots, func(i, j int) bool {
		return cal.Less(state.Slots[i].Slot.Key(), state.Slots[j].Slot.Key())
	})

	return state, nil
}

// fillSlot assigns the best ranked eligible candidates to a single slot
func (r *Run) fillSlot(slot *SlotState, report *SchedulingReport) {
	candidates := r.eligibleCandidates(slot)
	ranked := r.ranker.Rank(r.state, slot, candidates)

	for _, candidate := range ranked {
		if slot.IsFull() {
			break
		}
		r.state.recordAssignment(candidate.Employee.ID, slot)
		report.Assignments = append(report.Assignments, Assignment{
			EmployeeID: candidate.Employee.ID,
			Slot:       slot.Slot,
			Status:     StatusScheduled,
		})
	}

	shortfall := slot.RemainingCapacity()
	if shortfall == 0 {
		return
	}

	report.Unmet = append(report.Unmet, UnmetRequirement{
		Slot:      slot.Slot,
		Required:  slot.Requirement.Headcount,
		Assigned:  len(slot.Assigned),
		Shortfall: shortfall,
	})

	if r.config.EmitPlaceholders {
		for range shortfall {
			report.Assignments = append(report.Assignments, Assignment{
				Slot:   slot.Slot,
				Status: StatusUnfilledPlaceholder,
			})
		}
	}
}

// eligibleCandidates returns employees available for exactly this slot, under the daily cap,
// and not vetoed by any criterion. The result is sorted by employee id.
func (r *Run) eligibleCandidates(slot *SlotState) []*Candidate {
	key := slot.Slot.Key()
	byEmployee := r.state.Availability[key]

	ids := make([]string, 0, len(byEmployee))
	for id := range byEmployee {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	candidates := make([]*Candidate, 0, len(ids))
	for _, id := range ids {
		avail := byEmployee[id]
		if !avail.Available {
			continue
		}
		if r.state.ShiftsOn(id, slot.Slot.Date) >= r.state.MaxShiftsPerDay {
			continue
		}

		candidate := &Candidate{
			Employee:     r.state.Employees[id],
			Availability: avail,
		}
		if !r.ranker.IsEligible(r.state, candidate, slot) {
			continue
		}
		candidates = append(candidates, candidate)
	}

	return candidates
}

package scheduler

import "time"

// Candidate pairs an employee with their availability entry for the slot being filled
type Candidate struct {
	Employee     Employee
	Availability AvailabilitySlot
}

// SlotState is a slot being filled during a run
type SlotState struct {
	Slot        ShiftSlot
	Requirement ShiftRequirement

	// Assigned holds employee ids in the order they were assigned
	Assigned []string
}

// RemainingCapacity returns how many more employees the slot needs
func (s *SlotState) RemainingCapacity() int {
	return max(s.Requirement.Headcount-len(s.Assigned), 0)
}

// IsFull returns true if the slot has reached its required headcount
func (s *SlotState) IsFull() bool {
	return s.RemainingCapacity() == 0
}

// RunState is the mutable state of a single scheduling run
type RunState struct {
	WeekStart time.Time
	Calendar  Calendar

	// Employees by id
	Employees map[string]Employee

	// Availability indexed by slot key then employee id
	Availability map[SlotKey]map[string]AvailabilitySlot

	// Slots in fill order
	Slots []*SlotState

	// Load is the hours assigned per employee so far in this run
	Load RunningLoad

	// ShiftsPerDate counts assignments per employee per calendar date
	ShiftsPerDate map[string]map[string]int

	MaxShiftsPerDay int
}

// IsAvailable reports whether the employee has a true availability entry for the key
func (rs *RunState) IsAvailable(employeeID string, key SlotKey) bool {
	entry, ok := rs.Availability[key][employeeID]
	return ok && entry.Available
}

// ShiftsOn returns how many slots the employee holds on the given date
func (rs *RunState) ShiftsOn(employeeID string, date time.Time) int {
	return rs.ShiftsPerDate[employeeID][date.Format(time.DateOnly)]
}

func (rs *RunState) recordAssignment(employeeID string, slot *SlotState) {
	slot.Assigned = append(slot.Assigned, employeeID)
	rs.Load.Add(employeeID, slot.Slot.Hours)

	perDate, ok := rs.ShiftsPerDate[employeeID]
	if !ok {
		perDate = make(map[string]int)
		rs.ShiftsPerDate[employeeID] = perDate
	}
	perDate[slot.Slot.Date.Format(time.DateOnly)]++
}

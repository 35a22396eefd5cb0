package scheduler

import (
	"fmt"
	"slices"
	"time"
)

// Role is the job role of an employee
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

// IsValid reports whether the role is one the scheduler knows how to staff
func (r Role) IsValid() bool {
	return r == RoleEmployee || r == RoleManager
}

// AssignmentStatus describes whether an assignment carries a real employee
type AssignmentStatus string

const (
	StatusScheduled           AssignmentStatus = "scheduled"
	StatusUnfilledPlaceholder AssignmentStatus = "unfilled-placeholder"
)

// Employee is a read-only snapshot of a schedulable person
type Employee struct {
	ID          string
	DisplayName string
	Role        Role
}

// SlotKey identifies a (day, shift type) pair within a week
type SlotKey struct {
	Day   time.Weekday
	Shift string
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s-%s", k.Day, k.Shift)
}

// AvailabilitySlot records whether an employee can work a given (day, shift).
// Absence of an entry means unavailable.
type AvailabilitySlot struct {
	EmployeeID string
	Day        time.Weekday
	Shift      string
	Available  bool

	// Preferred marks slots the employee would like to work
	Preferred bool
}

// Key returns the slot key this entry refers to
func (a AvailabilitySlot) Key() SlotKey {
	return SlotKey{Day: a.Day, Shift: a.Shift}
}

// ShiftRequirement is the staffing needed for one (day, shift)
type ShiftRequirement struct {
	Day       time.Weekday
	Shift     string
	Headcount int

	// Roles optionally restricts which roles may fill the slot.
	// Empty means any role.
	Roles []Role

	// RoleHard excludes candidates outside Roles entirely instead of penalising them
	RoleHard bool
}

// Key returns the slot key this requirement refers to
func (r ShiftRequirement) Key() SlotKey {
	return SlotKey{Day: r.Day, Shift: r.Shift}
}

// AcceptsRole reports whether the requirement's role restriction admits the given role
func (r ShiftRequirement) AcceptsRole(role Role) bool {
	return len(r.Roles) == 0 || slices.Contains(r.Roles, role)
}

// ShiftSlot is a concrete unit of work within the scheduled week
type ShiftSlot struct {
	WeekStart time.Time
	Day       time.Weekday
	Shift     string

	// Date is WeekStart plus the day's offset in the week
	Date time.Time

	// StartsAt is Date plus the shift's start offset
	StartsAt time.Time

	// Hours is the slot's duration and the amount added to RunningLoad per assignment
	Hours float64
}

// Key returns the (day, shift) key of the slot
func (s ShiftSlot) Key() SlotKey {
	return SlotKey{Day: s.Day, Shift: s.Shift}
}

// ID returns a stable identifier for the slot
func (s ShiftSlot) ID() string {
	return s.Date.Format(time.DateOnly) + "/" + s.Shift
}

// Assignment links an employee to a slot. Never mutated after creation.
type Assignment struct {
	EmployeeID string
	Slot       ShiftSlot
	Status     AssignmentStatus
}

// UnmetRequirement reports a slot that could not be fully staffed
type UnmetRequirement struct {
	Slot      ShiftSlot
	Required  int
	Assigned  int
	Shortfall int
}

// SlotValidationError describes a constraint violation found after a run
type SlotValidationError struct {
	SlotID        string
	CriterionName string
	Description   string
}

// SchedulingReport is the output of a completed run
type SchedulingReport struct {
	WeekStart        time.Time
	Assignments      []Assignment
	Unmet            []UnmetRequirement
	ValidationErrors []SlotValidationError
}

// ScheduledCount returns the number of assignments that carry an employee
func (r *SchedulingReport) ScheduledCount() int {
	count := 0
	for _, a := range r.Assignments {
		if a.Status == StatusScheduled {
			count++
		}
	}
	return count
}

// TotalShortfall sums the shortfall across all unmet requirements
func (r *SchedulingReport) TotalShortfall() int {
	total := 0
	for _, u := range r.Unmet {
		total += u.Shortfall
	}
	return total
}

// RunningLoad tracks hours assigned per employee within a single run
type RunningLoad map[string]float64

// Hours returns the hours assigned so far to the employee
func (l RunningLoad) Hours(employeeID string) float64 {
	return l[employeeID]
}

// Add increments the employee's assigned hours
func (l RunningLoad) Add(employeeID string, hours float64) {
	l[employeeID] += hours
}

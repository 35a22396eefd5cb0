package criteria

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler"
)

var testWeek = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func newSlot(t *testing.T, day time.Weekday, shift string, requirement scheduler.ShiftRequirement) *scheduler.SlotState {
	t.Helper()
	slot, err := scheduler.DefaultCalendar().Slot(testWeek, scheduler.SlotKey{Day: day, Shift: shift})
	require.NoError(t, err)
	requirement.Day = day
	requirement.Shift = shift
	return &scheduler.SlotState{Slot: slot, Requirement: requirement, Assigned: []string{}}
}

func newCandidate(id string, role scheduler.Role, preferred bool) *scheduler.Candidate {
	return &scheduler.Candidate{
		Employee: scheduler.Employee{ID: id, Role: role},
		Availability: scheduler.AvailabilitySlot{
			EmployeeID: id,
			Available:  true,
			Preferred:  preferred,
		},
	}
}

func newState(load scheduler.RunningLoad, employees ...scheduler.Employee) *scheduler.RunState {
	state := &scheduler.RunState{
		WeekStart: testWeek,
		Calendar:  scheduler.DefaultCalendar(),
		Employees: map[string]scheduler.Employee{},
		Load:      load,
	}
	for _, e := range employees {
		state.Employees[e.ID] = e
	}
	return state
}

func TestHoursLoadCriterion(t *testing.T) {
	c := NewHoursLoadCriterion(10)
	state := newState(scheduler.RunningLoad{"alice": 8})
	slot := newSlot(t, time.Monday, "morning", scheduler.ShiftRequirement{Headcount: 1})

	assert.Equal(t, "HoursLoad", c.Name())
	assert.Equal(t, 10.0, c.Weight())
	assert.True(t, c.IsEligible(state, newCandidate("alice", scheduler.RoleEmployee, false), slot))
	assert.Equal(t, 8.0, c.Score(state, newCandidate("alice", scheduler.RoleEmployee, false), slot))
	assert.Equal(t, 0.0, c.Score(state, newCandidate("bob", scheduler.RoleEmployee, false), slot))
	assert.Empty(t, c.ValidateRunState(state))
}

func TestRoleMatchCriterion_Soft(t *testing.T) {
	c := NewRoleMatchCriterion(1000)
	state := newState(scheduler.RunningLoad{})
	slot := newSlot(t, time.Monday, "morning", scheduler.ShiftRequirement{
		Headcount: 1,
		Roles:     []scheduler.Role{scheduler.RoleManager},
	})

	manager := newCandidate("mia", scheduler.RoleManager, false)
	employee := newCandidate("eve", scheduler.RoleEmployee, false)

	assert.True(t, c.IsEligible(state, employee, slot))
	assert.Equal(t, 0.0, c.Score(state, manager, slot))
	assert.Equal(t, 1.0, c.Score(state, employee, slot))
}

func TestRoleMatchCriterion_NoRestriction(t *testing.T) {
	c := NewRoleMatchCriterion(1000)
	state := newState(scheduler.RunningLoad{})
	slot := newSlot(t, time.Monday, "morning", scheduler.ShiftRequirement{Headcount: 1})

	assert.Equal(t, 0.0, c.Score(state, newCandidate("eve", scheduler.RoleEmployee, false), slot))
	assert.Equal(t, 0.0, c.Score(state, newCandidate("mia", scheduler.RoleManager, false), slot))
}

func TestRoleMatchCriterion_Hard(t *testing.T) {
	c := NewRoleMatchCriterion(1000)
	eve := scheduler.Employee{ID: "eve", Role: scheduler.RoleEmployee}
	mia := scheduler.Employee{ID: "mia", Role: scheduler.RoleManager}
	state := newState(scheduler.RunningLoad{}, eve, mia)
	slot := newSlot(t, time.Monday, "morning", scheduler.ShiftRequirement{
		Headcount: 2,
		Roles:     []scheduler.Role{scheduler.RoleManager},
		RoleHard:  true,
	})

	assert.False(t, c.IsEligible(state, newCandidate("eve", scheduler.RoleEmployee, false), slot))
	assert.True(t, c.IsEligible(state, newCandidate("mia", scheduler.RoleManager, false), slot))

	slot.Assigned = []string{"mia", "eve"}
	state.Slots = []*scheduler.SlotState{slot}

	errs := c.ValidateRunState(state)
	require.Len(t, errs, 1)
	assert.Equal(t, "RoleMatch", errs[0].CriterionName)
	assert.Equal(t, "2024-06-03/morning", errs[0].SlotID)
	assert.Contains(t, errs[0].Description, "eve")
}

func TestPreferenceCriterion(t *testing.T) {
	c := NewPreferenceCriterion(5)
	state := newState(scheduler.RunningLoad{})
	slot := newSlot(t, time.Monday, "morning", scheduler.ShiftRequirement{Headcount: 1})

	assert.Equal(t, -1.0, c.Score(state, newCandidate("alice", scheduler.RoleEmployee, true), slot))
	assert.Equal(t, 0.0, c.Score(state, newCandidate("bob", scheduler.RoleEmployee, false), slot))
	assert.Equal(t, 5.0, c.Weight())
}

func TestWeeklyHoursCapCriterion(t *testing.T) {
	c := NewWeeklyHoursCapCriterion(8)
	state := newState(scheduler.RunningLoad{"alice": 8, "bob": 4})
	slot := newSlot(t, time.Tuesday, "morning", scheduler.ShiftRequirement{Headcount: 1})

	assert.False(t, c.IsEligible(state, newCandidate("alice", scheduler.RoleEmployee, false), slot))
	assert.True(t, c.IsEligible(state, newCandidate("bob", scheduler.RoleEmployee, false), slot))
	assert.Equal(t, 0.0, c.Weight())
	assert.Empty(t, c.ValidateRunState(state))

	state.Load["carol"] = 12
	state.Load["alice"] = 9
	errs := c.ValidateRunState(state)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Description, "alice")
	assert.Contains(t, errs[1].Description, "carol")
}

func TestWeeklyHoursCapCriterion_Disabled(t *testing.T) {
	c := NewWeeklyHoursCapCriterion(0)
	state := newState(scheduler.RunningLoad{"alice": 100})
	slot := newSlot(t, time.Monday, "morning", scheduler.ShiftRequirement{Headcount: 1})

	assert.True(t, c.IsEligible(state, newCandidate("alice", scheduler.RoleEmployee, false), slot))
	assert.Empty(t, c.ValidateRunState(state))
}

func TestBuild(t *testing.T) {
	built := Build(DefaultWeights(), 0)

	names := make([]string, len(built))
	for i, c := range built {
		names[i] = c.Name()
	}
	assert.Equal(t, []string{"HoursLoad", "RoleMatch", "Preference", "WeeklyHoursCap"}, names)
	assert.Equal(t, DefaultWeightHoursLoad, built[0].Weight())
	assert.Equal(t, DefaultWeightRoleMatch, built[1].Weight())
}

// A soft role mismatch only wins the slot when nobody with the right role is available
func TestRanking_RoleMismatchOutweighsLoad(t *testing.T) {
	ranker := scheduler.NewRanker(Build(DefaultWeights(), 0))
	state := newState(scheduler.RunningLoad{"mia": 32})
	slot := newSlot(t, time.Friday, "morning", scheduler.ShiftRequirement{
		Headcount: 1,
		Roles:     []scheduler.Role{scheduler.RoleManager},
	})

	ranked := ranker.Rank(state, slot, []*scheduler.Candidate{
		newCandidate("eve", scheduler.RoleEmployee, false),
		newCandidate("mia", scheduler.RoleManager, false),
	})
	require.Len(t, ranked, 2)
	assert.Equal(t, "mia", ranked[0].Employee.ID)
}

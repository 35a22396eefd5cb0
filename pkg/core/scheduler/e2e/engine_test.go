package e2e

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler/criteria"
)

var week = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func defaultConfig() scheduler.Config {
	return scheduler.Config{
		Calendar: scheduler.DefaultCalendar(),
		Criteria: criteria.Build(criteria.DefaultWeights(), 0),
	}
}

func run(t *testing.T, cfg scheduler.Config, input scheduler.Input) *scheduler.SchedulingReport {
	t.Helper()
	report, err := scheduler.NewRun(week, cfg).Execute(input)
	require.NoError(t, err)
	return report
}

func TestMondayExample(t *testing.T) {
	input := scheduler.Input{
		Employees: []scheduler.Employee{
			{ID: "alice", DisplayName: "Alice", Role: scheduler.RoleEmployee},
			{ID: "bob", DisplayName: "Bob", Role: scheduler.RoleEmployee},
			{ID: "carol", DisplayName: "Carol", Role: scheduler.RoleEmployee},
		},
		Availability: []scheduler.AvailabilitySlot{
			{EmployeeID: "alice", Day: time.Monday, Shift: "morning", Available: true},
			{EmployeeID: "alice", Day: time.Monday, Shift: "afternoon", Available: true},
			{EmployeeID: "bob", Day: time.Monday, Shift: "morning", Available: true},
			{EmployeeID: "carol", Day: time.Monday, Shift: "morning", Available: true},
		},
		Requirements: []scheduler.ShiftRequirement{
			{Day: time.Monday, Shift: "morning", Headcount: 2},
			{Day: time.Monday, Shift: "afternoon", Headcount: 1},
		},
	}

	report := run(t, defaultConfig(), input)

	require.Len(t, report.Assignments, 2)
	for _, a := range report.Assignments {
		assert.Equal(t, "2024-06-03/morning", a.Slot.ID())
	}
	assert.Equal(t, "alice", report.Assignments[0].EmployeeID)
	assert.Equal(t, "bob", report.Assignments[1].EmployeeID)

	require.Len(t, report.Unmet, 1)
	assert.Equal(t, "2024-06-03/afternoon", report.Unmet[0].Slot.ID())
	assert.Equal(t, 1, report.Unmet[0].Shortfall)
	assert.Empty(t, report.ValidationErrors)
}

func TestHardRoleRestrictionLeavesSlotUnfilled(t *testing.T) {
	input := scheduler.Input{
		Employees: []scheduler.Employee{
			{ID: "eve", Role: scheduler.RoleEmployee},
			{ID: "mia", Role: scheduler.RoleManager},
		},
		Availability: []scheduler.AvailabilitySlot{
			{EmployeeID: "eve", Day: time.Tuesday, Shift: "morning", Available: true},
			{EmployeeID: "mia", Day: time.Tuesday, Shift: "morning", Available: true},
		},
		Requirements: []scheduler.ShiftRequirement{
			{Day: time.Tuesday, Shift: "morning", Headcount: 2, Roles: []scheduler.Role{scheduler.RoleManager}, RoleHard: true},
		},
	}

	report := run(t, defaultConfig(), input)

	require.Len(t, report.Assignments, 1)
	assert.Equal(t, "mia", report.Assignments[0].EmployeeID)
	require.Len(t, report.Unmet, 1)
	assert.Equal(t, 1, report.Unmet[0].Shortfall)
}

func TestWeeklyCapSpreadsWork(t *testing.T) {
	cfg := defaultConfig()
	cfg.Criteria = criteria.Build(criteria.DefaultWeights(), 8)

	var availability []scheduler.AvailabilitySlot
	var requirements []scheduler.ShiftRequirement
	for _, day := range cfg.Calendar.Days {
		availability = append(availability, scheduler.AvailabilitySlot{EmployeeID: "alice", Day: day, Shift: "morning", Available: true})
		requirements = append(requirements, scheduler.ShiftRequirement{Day: day, Shift: "morning", Headcount: 1})
	}

	report := run(t, cfg, scheduler.Input{
		Employees:    []scheduler.Employee{{ID: "alice", Role: scheduler.RoleEmployee}},
		Availability: availability,
		Requirements: requirements,
	})

	assert.Equal(t, 2, report.ScheduledCount())
	assert.Equal(t, 3, report.TotalShortfall())
	assert.Empty(t, report.ValidationErrors)
}

func TestPreferenceBreaksEqualLoad(t *testing.T) {
	weights := criteria.DefaultWeights()
	weights.Preference = 1
	cfg := defaultConfig()
	cfg.Criteria = criteria.Build(weights, 0)

	report := run(t, cfg, scheduler.Input{
		Employees: []scheduler.Employee{
			{ID: "alice", Role: scheduler.RoleEmployee},
			{ID: "bob", Role: scheduler.RoleEmployee},
		},
		Availability: []scheduler.AvailabilitySlot{
			{EmployeeID: "alice", Day: time.Monday, Shift: "morning", Available: true},
			{EmployeeID: "bob", Day: time.Monday, Shift: "morning", Available: true, Preferred: true},
		},
		Requirements: []scheduler.ShiftRequirement{{Day: time.Monday, Shift: "morning", Headcount: 1}},
	})

	require.Len(t, report.Assignments, 1)
	assert.Equal(t, "bob", report.Assignments[0].EmployeeID)
}

// randomInput builds a full week with random availability and headcounts
func randomInput(seed uint64, employeeCount int) scheduler.Input {
	rng := rand.New(rand.NewPCG(seed, seed))
	cal := scheduler.DefaultCalendar()

	input := scheduler.Input{}
	for i := range employeeCount {
		role := scheduler.RoleEmployee
		if i%4 == 0 {
			role = scheduler.RoleManager
		}
		input.Employees = append(input.Employees, scheduler.Employee{ID: fmt.Sprintf("emp-%02d", i), Role: role})
	}

	for _, day := range cal.Days {
		for _, shift := range cal.Shifts {
			req := scheduler.ShiftRequirement{Day: day, Shift: shift.Name, Headcount: rng.IntN(5)}
			if rng.IntN(3) == 0 {
				req.Roles = []scheduler.Role{scheduler.RoleManager}
				req.RoleHard = rng.IntN(2) == 0
			}
			input.Requirements = append(input.Requirements, req)

			for _, emp := range input.Employees {
				if rng.IntN(3) == 0 {
					continue
				}
				input.Availability = append(input.Availability, scheduler.AvailabilitySlot{
					EmployeeID: emp.ID,
					Day:        day,
					Shift:      shift.Name,
					Available:  rng.IntN(4) != 0,
					Preferred:  rng.IntN(5) == 0,
				})
			}
		}
	}

	// Shuffle to show input order does not matter
	rng.Shuffle(len(input.Availability), func(i, j int) {
		input.Availability[i], input.Availability[j] = input.Availability[j], input.Availability[i]
	})
	rng.Shuffle(len(input.Requirements), func(i, j int) {
		input.Requirements[i], input.Requirements[j] = input.Requirements[j], input.Requirements[i]
	})

	return input
}

func TestRandomWeeks_Properties(t *testing.T) {
	for seed := range uint64(25) {
		t.Run(fmt.Sprintf("seed-%d", seed), func(t *testing.T) {
			input := randomInput(seed, 8)
			report := run(t, defaultConfig(), input)

			available := make(map[string]bool)
			for _, a := range input.Availability {
				if a.Available {
					available[a.EmployeeID+"|"+a.Key().String()] = true
				}
			}
			headcount := make(map[string]int)
			for _, r := range input.Requirements {
				headcount[r.Key().String()] = r.Headcount
			}

			perSlot := make(map[string]int)
			perDay := make(map[string]int)
			inSlot := make(map[string]bool)
			for _, a := range report.Assignments {
				require.Equal(t, scheduler.StatusScheduled, a.Status)
				key := a.Slot.Key().String()

				assert.True(t, available[a.EmployeeID+"|"+key], "%s assigned to %s without availability", a.EmployeeID, key)
				assert.False(t, inSlot[a.EmployeeID+"|"+key], "%s assigned twice to %s", a.EmployeeID, key)
				inSlot[a.EmployeeID+"|"+key] = true

				perSlot[key]++
				perDay[a.EmployeeID+"|"+a.Slot.Date.Format(time.DateOnly)]++
			}

			for key, count := range perSlot {
				assert.LessOrEqual(t, count, headcount[key], "slot %s overfilled", key)
			}
			for key, count := range perDay {
				assert.LessOrEqual(t, count, scheduler.DefaultMaxShiftsPerDay, "%s over daily cap", key)
			}

			// Every shortfall is accounted for exactly
			shortfall := make(map[string]int)
			for _, u := range report.Unmet {
				shortfall[u.Slot.Key().String()] = u.Shortfall
				assert.Equal(t, u.Required-u.Assigned, u.Shortfall)
			}
			for key, required := range headcount {
				assert.Equal(t, required, perSlot[key]+shortfall[key], "slot %s", key)
			}

			assert.Empty(t, report.ValidationErrors)
		})
	}
}

func TestRandomWeeks_Deterministic(t *testing.T) {
	for seed := range uint64(10) {
		first := run(t, defaultConfig(), randomInput(seed, 10))
		second := run(t, defaultConfig(), randomInput(seed, 10))

		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("seed %d: schedules differ (-first +second):\n%s", seed, diff)
		}
	}
}

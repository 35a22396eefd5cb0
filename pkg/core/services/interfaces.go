package services

import (
	"context"

	"github.com/jakechorley/shift-scheduler/pkg/db"
)

// AvailabilitySource reads a consistent snapshot of employees and availability for a week
type AvailabilitySource interface {
	GetAvailabilitySnapshot(ctx context.Context, weekStart string) (*db.AvailabilitySnapshot, error)
}

// RequirementSource provides the shift requirements for a week
type RequirementSource interface {
	GetShiftRequirements(ctx context.Context, weekStart string) ([]db.ShiftRequirement, error)
}

// ScheduleWriter persists a run and its assignments atomically, replacing the week's previous assignments
type ScheduleWriter interface {
	CommitSchedule(ctx context.Context, run db.ScheduleRun, assignments []db.Assignment) error
}

// ScheduleReader reads persisted schedules back
type ScheduleReader interface {
	GetAssignments(ctx context.Context, weekStart string) ([]db.Assignment, error)
	GetScheduleRuns(ctx context.Context, weekStart string) ([]db.ScheduleRun, error)
}

package db

import "context"

// Database defines the interface for all database operations.
// Both the gorm-backed db.DB and postgres.DB implement this interface.
type Database interface {
	GetAvailabilitySnapshot(ctx context.Context, weekStart string) (*AvailabilitySnapshot, error)
	GetShiftRequirements(ctx context.Context, weekStart string) ([]ShiftRequirement, error)
	CommitSchedule(ctx context.Context, run ScheduleRun, assignments []Assignment) error
	GetAssignments(ctx context.Context, weekStart string) ([]Assignment, error)
	GetScheduleRuns(ctx context.Context, weekStart string) ([]ScheduleRun, error)
	RunMigrations(ctx context.Context) error
	Close() error
}

var _ Database = (*DB)(nil)

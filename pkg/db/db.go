package db

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB provides database operations on top of gorm. Used with sqlite for local runs and tests.
type DB struct {
	gorm *gorm.DB
}

// Open opens the sqlite database at path (":memory:" for an in-memory database) and migrates the schema
func Open(path string) (*DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps an in-memory database alive and serialises writers
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	d := &DB{gorm: gdb}
	if err := d.RunMigrations(context.Background()); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return d, nil
}

// RunMigrations brings the schema up to date with the models
func (d *DB) RunMigrations(ctx context.Context) error {
	err := d.gorm.WithContext(ctx).AutoMigrate(
		&Employee{},
		&Availability{},
		&ShiftRequirement{},
		&ScheduleRun{},
		&Assignment{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the underlying connection
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// GetAvailabilitySnapshot reads schedulable employees and their availability for the week in one transaction
func (d *DB) GetAvailabilitySnapshot(ctx context.Context, weekStart string) (*AvailabilitySnapshot, error) {
	snapshot := &AvailabilitySnapshot{WeekStart: weekStart}

	err := d.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role IN ?", SchedulableRoles).Order("id").Find(&snapshot.Employees).Error; err != nil {
			return fmt.Errorf("failed to query employees: %w", err)
		}

		err := tx.
			Joins("JOIN employee ON employee.id = availability.employee_id").
			Where("availability.week_start = ? AND employee.role IN ?", weekStart, SchedulableRoles).
			Order("availability.employee_id, availability.day, availability.shift_type").
			Find(&snapshot.Availability).Error
		if err != nil {
			return fmt.Errorf("failed to query availability: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// GetShiftRequirements returns the week's own requirement rows, or the template rows when the week has none
func (d *DB) GetShiftRequirements(ctx context.Context, weekStart string) ([]ShiftRequirement, error) {
	var requirements []ShiftRequirement
	err := d.gorm.WithContext(ctx).Where("week_start = ?", weekStart).Order("id").Find(&requirements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query shift requirements: %w", err)
	}
	if len(requirements) > 0 {
		return requirements, nil
	}

	err = d.gorm.WithContext(ctx).Where("week_start = ?", "").Order("id").Find(&requirements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query template shift requirements: %w", err)
	}
	return requirements, nil
}

// CommitSchedule replaces the week's assignments with the given run in a single transaction.
// Nothing is written if any statement fails.
func (d *DB) CommitSchedule(ctx context.Context, run ScheduleRun, assignments []Assignment) error {
	return d.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("week_start = ?", run.WeekStart).Delete(&Assignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete previous assignments: %w", err)
		}

		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("failed to insert schedule run: %w", err)
		}

		for i := range assignments {
			if err := tx.Create(&assignments[i]).Error; err != nil {
				return fmt.Errorf("failed to insert assignment %s: %w", assignments[i].ID, err)
			}
		}
		return nil
	})
}

// GetAssignments returns the committed assignments for the week
func (d *DB) GetAssignments(ctx context.Context, weekStart string) ([]Assignment, error) {
	var assignments []Assignment
	err := d.gorm.WithContext(ctx).Where("week_start = ?", weekStart).Order("shift_date, id").Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	return assignments, nil
}

// GetScheduleRuns returns every committed run for the week, oldest first
func (d *DB) GetScheduleRuns(ctx context.Context, weekStart string) ([]ScheduleRun, error) {
	var runs []ScheduleRun
	err := d.gorm.WithContext(ctx).Where("week_start = ?", weekStart).Order("created_at").Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule runs: %w", err)
	}
	return runs, nil
}

// UpsertEmployees inserts or replaces employee rows
func (d *DB) UpsertEmployees(ctx context.Context, employees []Employee) error {
	if len(employees) == 0 {
		return nil
	}
	if err := d.gorm.WithContext(ctx).Save(&employees).Error; err != nil {
		return fmt.Errorf("failed to upsert employees: %w", err)
	}
	return nil
}

// InsertAvailability inserts availability rows
func (d *DB) InsertAvailability(ctx context.Context, rows []Availability) error {
	if len(rows) == 0 {
		return nil
	}
	if err := d.gorm.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert availability: %w", err)
	}
	return nil
}

// InsertShiftRequirements inserts requirement rows
func (d *DB) InsertShiftRequirements(ctx context.Context, rows []ShiftRequirement) error {
	if len(rows) == 0 {
		return nil
	}
	if err := d.gorm.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert shift requirements: %w", err)
	}
	return nil
}

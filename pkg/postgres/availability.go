package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/shift-scheduler/pkg/db"
)

// GetAvailabilitySnapshot reads schedulable employees and their availability for the week.
// Both reads share one read-only repeatable-read transaction so the snapshot is consistent.
func (d *DB) GetAvailabilitySnapshot(ctx context.Context, weekStart string) (*db.AvailabilitySnapshot, error) {
	tx, err := d.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	snapshot := &db.AvailabilitySnapshot{WeekStart: weekStart}

	rows, err := tx.Query(ctx, `
		SELECT id, display_name, role
		FROM employee
		WHERE role = ANY($1)
		ORDER BY id
	`, db.SchedulableRoles)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	for rows.Next() {
		var e db.Employee
		if err := rows.Scan(&e.ID, &e.DisplayName, &e.Role); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		snapshot.Employees = append(snapshot.Employees, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}

	rows, err = tx.Query(ctx, `
		SELECT a.id, a.employee_id, a.week_start, a.day, a.shift_type, a.available, a.preferred
		FROM availability a
		JOIN employee e ON e.id = a.employee_id
		WHERE a.week_start = $1 AND e.role = ANY($2)
		ORDER BY a.employee_id, a.day, a.shift_type
	`, weekStart, db.SchedulableRoles)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a db.Availability
		var week time.Time
		if err := rows.Scan(&a.ID, &a.EmployeeID, &week, &a.Day, &a.ShiftType, &a.Available, &a.Preferred); err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		a.WeekStart = week.Format(db.DateFormat)
		snapshot.Availability = append(snapshot.Availability, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating availability: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return snapshot, nil
}

// GetShiftRequirements returns the week's own requirement rows, or the template rows when the week has none
func (d *DB) GetShiftRequirements(ctx context.Context, weekStart string) ([]db.ShiftRequirement, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, week_start, day, shift_type, headcount, roles, role_hard
		FROM shift_requirement
		WHERE week_start = $1
		   OR (week_start IS NULL AND NOT EXISTS (SELECT 1 FROM shift_requirement WHERE week_start = $1))
		ORDER BY id
	`, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift requirements: %w", err)
	}
	defer rows.Close()

	var requirements []db.ShiftRequirement
	for rows.Next() {
		var r db.ShiftRequirement
		var week *time.Time
		if err := rows.Scan(&r.ID, &week, &r.Day, &r.ShiftType, &r.Headcount, &r.Roles, &r.RoleHard); err != nil {
			return nil, fmt.Errorf("failed to scan shift requirement: %w", err)
		}
		if week != nil {
			r.WeekStart = week.Format(db.DateFormat)
		}
		requirements = append(requirements, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shift requirements: %w", err)
	}

	return requirements, nil
}

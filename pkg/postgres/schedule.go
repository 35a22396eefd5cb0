package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/shift-scheduler/pkg/db"
)

var _ db.Database = (*DB)(nil)

// CommitSchedule replaces the week's assignments with the given run in a single transaction.
// Concurrent commits for the same week are serialised by a transaction-scoped advisory lock.
func (d *DB) CommitSchedule(ctx context.Context, run db.ScheduleRun, assignments []db.Assignment) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('schedule:' || $1::text))`, run.WeekStart); err != nil {
		return fmt.Errorf("failed to lock week %s: %w", run.WeekStart, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM assignment WHERE week_start = $1`, run.WeekStart); err != nil {
		return fmt.Errorf("failed to delete previous assignments: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO schedule_run (id, week_start, created_at, scheduled, shortfall, validation_errors, forced)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.ID, run.WeekStart, run.CreatedAt.UTC(), run.Scheduled, run.Shortfall, run.ValidationErrors, run.Forced)
	if err != nil {
		return fmt.Errorf("failed to insert schedule run: %w", err)
	}

	for _, a := range assignments {
		_, err := tx.Exec(ctx, `
			INSERT INTO assignment (id, run_id, week_start, employee_id, shift_date, shift_type, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, a.ID, a.RunID, a.WeekStart, a.EmployeeID, a.ShiftDate, a.ShiftType, a.Status)
		if err != nil {
			return fmt.Errorf("failed to insert assignment %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetAssignments returns the committed assignments for the week
func (d *DB) GetAssignments(ctx context.Context, weekStart string) ([]db.Assignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, run_id, week_start, employee_id, shift_date, shift_type, status
		FROM assignment
		WHERE week_start = $1
		ORDER BY shift_date, id
	`, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		var a db.Assignment
		var week, shiftDate time.Time
		if err := rows.Scan(&a.ID, &a.RunID, &week, &a.EmployeeID, &shiftDate, &a.ShiftType, &a.Status); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.WeekStart = week.Format(db.DateFormat)
		a.ShiftDate = shiftDate.Format(db.DateFormat)
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// GetScheduleRuns returns every committed run for the week, oldest first
func (d *DB) GetScheduleRuns(ctx context.Context, weekStart string) ([]db.ScheduleRun, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, week_start, created_at, scheduled, shortfall, validation_errors, forced
		FROM schedule_run
		WHERE week_start = $1
		ORDER BY created_at
	`, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule runs: %w", err)
	}
	defer rows.Close()

	var runs []db.ScheduleRun
	for rows.Next() {
		var r db.ScheduleRun
		var week time.Time
		if err := rows.Scan(&r.ID, &week, &r.CreatedAt, &r.Scheduled, &r.Shortfall, &r.ValidationErrors, &r.Forced); err != nil {
			return nil, fmt.Errorf("failed to scan schedule run: %w", err)
		}
		r.WeekStart = week.Format(db.DateFormat)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule runs: %w", err)
	}

	return runs, nil
}

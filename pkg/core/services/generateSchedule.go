package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler/criteria"
	"github.com/jakechorley/shift-scheduler/pkg/db"
)

// GenerateScheduleDeps contains the collaborators of a scheduling run
type GenerateScheduleDeps struct {
	Availability AvailabilitySource
	Requirements RequirementSource
	Writer       ScheduleWriter
	Locks        *WeekLocks
}

// GenerateScheduleOptions configures a single run
type GenerateScheduleOptions struct {
	WeekStart        time.Time
	Calendar         scheduler.Calendar
	Weights          criteria.Weights
	MaxShiftsPerDay  int
	MaxWeeklyHours   float64
	EmitPlaceholders bool

	// Criteria replaces the standard criteria built from Weights and MaxWeeklyHours when set
	Criteria []scheduler.Criterion

	// DryRun skips persistence entirely
	DryRun bool

	// ForceCommit persists the schedule even if validation fails
	ForceCommit bool
}

// GenerateScheduleResult contains the outcome of a run
type GenerateScheduleResult struct {
	RunID     string
	Report    *scheduler.SchedulingReport
	Committed bool
}

// GenerateSchedule schedules one week: fetch snapshot and requirements, run the engine, commit.
// Understaffing is reported in the result, never as an error.
// When validation fails without ForceCommit the result is returned together with ErrValidationFailed.
func GenerateSchedule(
	ctx context.Context,
	deps GenerateScheduleDeps,
	logger *zap.Logger,
	opts GenerateScheduleOptions,
) (*GenerateScheduleResult, error) {
	weekStart := opts.WeekStart.Format(db.DateFormat)
	logger = logger.With(zap.String("week_start", weekStart))

	logger.Debug("Starting generateSchedule",
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("force_commit", opts.ForceCommit))

	if !opts.Calendar.IsWeekStart(opts.WeekStart) {
		return nil, fmt.Errorf("%w: %s is a %s, weeks start on %s",
			scheduler.ErrInvalidInput, weekStart, opts.WeekStart.Weekday(), opts.Calendar.FirstDay)
	}

	// Step 1: Serialise runs for the same week
	if deps.Locks != nil {
		unlock, err := deps.Locks.Lock(ctx, weekStart)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire week lock: %w", err)
		}
		defer unlock()
	}

	runCriteria := opts.Criteria
	if runCriteria == nil {
		runCriteria = criteria.Build(opts.Weights, opts.MaxWeeklyHours)
	}

	run := scheduler.NewRun(opts.WeekStart, scheduler.Config{
		Calendar:         opts.Calendar,
		Criteria:         runCriteria,
		MaxShiftsPerDay:  opts.MaxShiftsPerDay,
		EmitPlaceholders: opts.EmitPlaceholders,
	})

	// Step 2: Fetch availability and requirements concurrently
	logger.Debug("Fetching availability snapshot and requirements")
	var snapshot *db.AvailabilitySnapshot
	var requirements []db.ShiftRequirement

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := deps.Availability.GetAvailabilitySnapshot(gctx, weekStart)
		if err != nil {
			return fmt.Errorf("failed to fetch availability: %w", err)
		}
		snapshot = s
		return nil
	})
	g.Go(func() error {
		r, err := deps.Requirements.GetShiftRequirements(gctx, weekStart)
		if err != nil {
			return fmt.Errorf("failed to fetch shift requirements: %w", err)
		}
		requirements = r
		return nil
	})
	if err := g.Wait(); err != nil {
		err = fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		run.Abort(err)
		logger.Error("Run aborted", zap.Error(err))
		return nil, err
	}
	logger.Debug("Fetched scheduling data",
		zap.Int("employees", len(snapshot.Employees)),
		zap.Int("availability", len(snapshot.Availability)),
		zap.Int("requirements", len(requirements)))

	input, err := buildEngineInput(snapshot, requirements)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		run.Abort(err)
		logger.Error("Run aborted", zap.Error(err))
		return nil, err
	}

	// Step 3: Run the engine
	logger.Info("Running assignment engine")
	report, err := run.Execute(input)
	if err != nil {
		if errors.Is(err, scheduler.ErrInvalidInput) {
			err = fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
		logger.Error("Run aborted", zap.Error(err))
		return nil, err
	}

	logger.Info("Scheduling completed",
		zap.Int("scheduled", report.ScheduledCount()),
		zap.Int("unmet_slots", len(report.Unmet)),
		zap.Int("shortfall", report.TotalShortfall()),
		zap.Int("validation_errors", len(report.ValidationErrors)))

	for _, unmet := range report.Unmet {
		logger.Warn("Unmet requirement",
			zap.String("slot", unmet.Slot.ID()),
			zap.Int("required", unmet.Required),
			zap.Int("assigned", unmet.Assigned),
			zap.Int("shortfall", unmet.Shortfall))
	}
	for _, verr := range report.ValidationErrors {
		logger.Warn("Validation error",
			zap.String("criterion", verr.CriterionName),
			zap.String("slot", verr.SlotID),
			zap.String("description", verr.Description))
	}

	result := &GenerateScheduleResult{
		RunID:  uuid.New().String(),
		Report: report,
	}

	// Step 4: Commit
	if opts.DryRun {
		logger.Info("Dry run mode - schedule not saved")
		return result, nil
	}

	valid := len(report.ValidationErrors) == 0
	if !valid && !opts.ForceCommit {
		logger.Warn("Schedule invalid - not saving to database (use forceCommit to save anyway)")
		return result, fmt.Errorf("%w: %d validation error(s)", ErrValidationFailed, len(report.ValidationErrors))
	}

	logger.Info("Saving schedule to database",
		zap.String("run_id", result.RunID),
		zap.Bool("forced", !valid))

	dbRun := convertToDBRun(result.RunID, report, !valid, time.Now().UTC())
	dbAssignments := convertToDBAssignments(result.RunID, report)
	if err := deps.Writer.CommitSchedule(ctx, dbRun, dbAssignments); err != nil {
		err = fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
		logger.Error("Commit failed", zap.Error(err))
		return nil, err
	}

	result.Committed = true
	logger.Info("Schedule saved", zap.Int("assignments", len(dbAssignments)))

	return result, nil
}

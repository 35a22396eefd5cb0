package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-scheduler/pkg/core/services"
)

// ScheduleWeekCmd creates the scheduleWeek command
func ScheduleWeekCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scheduleWeek <week_start>",
		Short: "Generate and commit the schedule for a week",
		Long: `Run the assignment engine for the week starting on <week_start> (YYYY-MM-DD) and commit the result.
The week's previous assignments are replaced. Unmet requirements are reported but never fail the run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			forceCommit, _ := cmd.Flags().GetBool("force-commit")
			source, _ := cmd.Flags().GetString("requirements")

			opts, err := services.OptionsFromConfig(app.Cfg)
			if err != nil {
				return err
			}
			opts.WeekStart, err = opts.Calendar.ParseWeekStart(args[0])
			if err != nil {
				return err
			}
			opts.DryRun = dryRun
			opts.ForceCommit = forceCommit

			if err := applyEngineFlags(cmd, &opts); err != nil {
				return err
			}

			app.Logger.Debug("scheduleWeek command",
				zap.String("week_start", args[0]),
				zap.Bool("dry_run", dryRun),
				zap.Bool("force_commit", forceCommit),
				zap.String("requirements", source))

			deps, err := app.ScheduleDeps(source)
			if err != nil {
				return err
			}

			result, err := services.GenerateSchedule(app.Ctx, deps, app.Logger, opts)
			if err != nil && !errors.Is(err, services.ErrValidationFailed) {
				return fmt.Errorf("scheduling failed: %w", err)
			}

			printScheduleReport(cmd.OutOrStdout(), result, dryRun, forceCommit)
			return err
		},
	}

	cmd.Flags().Bool("dry-run", false, "Run without saving to database")
	cmd.Flags().Bool("force-commit", false, "Save the schedule even if validation fails")
	cmd.Flags().Int("max-shifts-per-day", 0, "Maximum shifts one employee may work per day")
	cmd.Flags().Float64("max-weekly-hours", 0, "Maximum hours one employee may work per week (0 for no cap)")
	cmd.Flags().Bool("placeholders", false, "Record unfilled places as placeholder assignments")
	cmd.Flags().Float64("weight-hours", 0, "Weight of the hours load criterion")
	cmd.Flags().Float64("weight-role", 0, "Weight of the role match criterion")
	cmd.Flags().Float64("weight-preference", 0, "Weight of the preference criterion")
	cmd.Flags().String("requirements", "", "Requirement source: config or database (defaults to config file setting)")

	return cmd
}

// applyEngineFlags overrides configured engine options with flags set on the command line
func applyEngineFlags(cmd *cobra.Command, opts *services.GenerateScheduleOptions) error {
	flags := cmd.Flags()

	if flags.Changed("max-shifts-per-day") {
		n, _ := flags.GetInt("max-shifts-per-day")
		if n < 1 {
			return fmt.Errorf("--max-shifts-per-day must be at least 1, got %d", n)
		}
		opts.MaxShiftsPerDay = n
	}
	if flags.Changed("max-weekly-hours") {
		opts.MaxWeeklyHours, _ = flags.GetFloat64("max-weekly-hours")
	}
	if flags.Changed("placeholders") {
		opts.EmitPlaceholders, _ = flags.GetBool("placeholders")
	}

	weights := []struct {
		flag   string
		target *float64
	}{
		{"weight-hours", &opts.Weights.HoursLoad},
		{"weight-role", &opts.Weights.RoleMatch},
		{"weight-preference", &opts.Weights.Preference},
	}
	for _, w := range weights {
		if !flags.Changed(w.flag) {
			continue
		}
		v, _ := flags.GetFloat64(w.flag)
		if v < 0 {
			return fmt.Errorf("--%s must not be negative, got %v", w.flag, v)
		}
		*w.target = v
	}

	if opts.MaxWeeklyHours < 0 {
		return fmt.Errorf("--max-weekly-hours must not be negative, got %v", opts.MaxWeeklyHours)
	}

	return nil
}

package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-scheduler/pkg/core/services"
)

// ViewScheduleCmd creates the viewSchedule command
func ViewScheduleCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewSchedule <week_start>",
		Short: "Show the committed schedule for a week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calendar, err := app.Cfg.SchedulerCalendar()
			if err != nil {
				return err
			}
			weekStart, err := calendar.ParseWeekStart(args[0])
			if err != nil {
				return err
			}

			app.Logger.Debug("viewSchedule command", zap.String("week_start", args[0]))

			result, err := services.ViewSchedule(app.Ctx, app.Database, app.Logger, calendar, weekStart)
			if err != nil {
				return err
			}

			printSchedule(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-scheduler/internal/config"
	"github.com/jakechorley/shift-scheduler/pkg/core/services"
	"github.com/jakechorley/shift-scheduler/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database db.Database
	Locks    *services.WeekLocks
	Logger   *zap.Logger
	Ctx      context.Context
}

// RequirementSource returns the requirement provider named by source ("config" or "database").
// An empty source uses the configured default.
func (app *AppContext) RequirementSource(source string) (services.RequirementSource, error) {
	if source == "" {
		source = app.Cfg.Requirements.Source
	}

	switch source {
	case config.RequirementsFromDatabase:
		return app.Database, nil
	case config.RequirementsFromConfig:
		calendar, err := app.Cfg.SchedulerCalendar()
		if err != nil {
			return nil, err
		}
		return services.NewConfigRequirements(calendar, app.Cfg.Requirements, app.Logger)
	default:
		return nil, fmt.Errorf("unknown requirements source %q (expected %s or %s)",
			source, config.RequirementsFromConfig, config.RequirementsFromDatabase)
	}
}

// ScheduleDeps wires the run collaborators for the given requirement source
func (app *AppContext) ScheduleDeps(source string) (services.GenerateScheduleDeps, error) {
	requirements, err := app.RequirementSource(source)
	if err != nil {
		return services.GenerateScheduleDeps{}, err
	}

	return services.GenerateScheduleDeps{
		Availability: app.Database,
		Requirements: requirements,
		Writer:       app.Database,
		Locks:        app.Locks,
	}, nil
}

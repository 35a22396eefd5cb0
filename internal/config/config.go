package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/shift-scheduler/pkg/core/scheduler"
)

// DatabaseURLEnv overrides database.url when set
const DatabaseURLEnv = "SCHEDULER_DATABASE_URL"

const (
	DefaultServerAddr = ":8080"
	DefaultLogDir     = "logs"
)

// Requirement sources
const (
	RequirementsFromConfig   = "config"
	RequirementsFromDatabase = "database"
)

// DatabaseConfig selects the storage backend
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"required,oneof=postgres sqlite"`
	URL    string `yaml:"url" validate:"required"`
}

// ShiftConfig defines one shift type of the working day
type ShiftConfig struct {
	Name  string  `yaml:"name" validate:"required"`
	Start string  `yaml:"start" validate:"required,clock"`
	Hours float64 `yaml:"hours" validate:"gt=0,lte=24"`
}

// CalendarConfig defines the schedulable week. Omit to use the default Monday to Friday calendar.
type CalendarConfig struct {
	FirstDay string        `yaml:"firstDay,omitempty" validate:"omitempty,weekday"`
	Days     []string      `yaml:"days" validate:"required,min=1,dive,weekday"`
	Shifts   []ShiftConfig `yaml:"shifts" validate:"required,min=1,dive"`
}

// WeightsConfig overrides the default criterion weights. Nil leaves the default.
type WeightsConfig struct {
	HoursLoad  *float64 `yaml:"hoursLoad,omitempty" validate:"omitempty,min=0"`
	RoleMatch  *float64 `yaml:"roleMatch,omitempty" validate:"omitempty,min=0"`
	Preference *float64 `yaml:"preference,omitempty" validate:"omitempty,min=0"`
}

// EngineConfig tunes the assignment engine
type EngineConfig struct {
	MaxShiftsPerDay  int           `yaml:"maxShiftsPerDay,omitempty" validate:"min=0"`
	MaxWeeklyHours   float64       `yaml:"maxWeeklyHours,omitempty" validate:"min=0"`
	EmitPlaceholders bool          `yaml:"emitPlaceholders,omitempty"`
	Weights          WeightsConfig `yaml:"weights,omitempty"`
}

// RequirementDefault is the standing headcount for a (day, shift)
type RequirementDefault struct {
	Day       string   `yaml:"day" validate:"required,weekday"`
	Shift     string   `yaml:"shift" validate:"required"`
	Headcount int      `yaml:"headcount" validate:"min=0"`
	Roles     []string `yaml:"roles,omitempty" validate:"dive,oneof=employee manager"`
	RoleHard  bool     `yaml:"roleHard,omitempty"`
}

// RequirementOverride changes headcount on dates matching an RRULE, e.g. closures or busy days.
// An empty Shift applies to every shift on the matching date.
// Start anchors a rule that has no DTSTART of its own.
type RequirementOverride struct {
	RRule     string `yaml:"rrule" validate:"required"`
	Start     string `yaml:"start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Shift     string `yaml:"shift,omitempty"`
	Headcount *int   `yaml:"headcount,omitempty" validate:"omitempty,min=0"`
}

// Option parses the override's rule, using Start as its DTSTART when one is given.
// A zero Dtstart on the result means the rule is unanchored and matches the same way in every week.
// Rules whose occurrences depend on where they start are rejected unless anchored.
func (o RequirementOverride) Option() (*rrule.ROption, error) {
	option, err := rrule.StrToROption(o.RRule)
	if err != nil {
		return nil, err
	}

	if o.Start != "" {
		if !option.Dtstart.IsZero() {
			return nil, fmt.Errorf("start %s conflicts with the rule's DTSTART", o.Start)
		}
		option.Dtstart, err = time.Parse("2006-01-02", o.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid start %q: %w", o.Start, err)
		}
	}

	if option.Dtstart.IsZero() {
		if part := startDependentPart(option); part != "" {
			return nil, fmt.Errorf("rule uses %s and needs a start date", part)
		}
	}

	return option, nil
}

// startDependentPart names the first part of the rule whose matches depend on DTSTART
func startDependentPart(option *rrule.ROption) string {
	switch {
	case option.Interval > 1:
		return "INTERVAL"
	case option.Count > 0:
		return "COUNT"
	case !option.Until.IsZero():
		return "UNTIL"
	}

	// Without any BY-day part the day of the month or week is taken from DTSTART
	switch option.Freq {
	case rrule.YEARLY, rrule.MONTHLY, rrule.WEEKLY:
		if len(option.Byweekday) == 0 && len(option.Bymonthday) == 0 && len(option.Byyearday) == 0 &&
			len(option.Byweekno) == 0 && len(option.Byeaster) == 0 {
			return "FREQ=" + option.Freq.String() + " without a BYDAY or BYMONTHDAY"
		}
	}
	return ""
}

// RequirementsSettings configures where shift requirements come from
type RequirementsSettings struct {
	Source    string                `yaml:"source,omitempty" validate:"omitempty,oneof=config database"`
	Defaults  []RequirementDefault  `yaml:"defaults,omitempty" validate:"dive"`
	Overrides []RequirementOverride `yaml:"overrides,omitempty" validate:"dive"`
}

type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

type LoggingConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// Config represents the application configuration
type Config struct {
	Database     DatabaseConfig       `yaml:"database"`
	Calendar     *CalendarConfig      `yaml:"calendar,omitempty"`
	Engine       EngineConfig         `yaml:"engine,omitempty"`
	Requirements RequirementsSettings `yaml:"requirements,omitempty"`
	Server       ServerConfig         `yaml:"server,omitempty"`
	Logging      LoggingConfig        `yaml:"logging,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, err := scheduler.ParseWeekday(fl.Field().String())
		return err == nil
	})
	validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := ParseClock(fl.Field().String())
		return err == nil
	})
}

// Load loads the configuration for the default environment
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads and validates the configuration from scheduler_config.<env>.yaml,
// or scheduler_config.yaml when env is empty.
// It looks for the config file in the current directory first, then in the user's home directory.
// A .env file in the current directory is loaded first if present.
func LoadWithEnv(env string) (*Config, error) {
	// Missing .env is fine
	_ = godotenv.Load()

	configPath, err := findConfigFile(configFileName(env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if url := os.Getenv(DatabaseURLEnv); url != "" {
		cfg.Database.URL = url
	}
	cfg.applyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = DefaultLogDir
	}
	if c.Requirements.Source == "" {
		c.Requirements.Source = RequirementsFromConfig
	}
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, override := range cfg.Requirements.Overrides {
		if _, err := override.Option(); err != nil {
			return fmt.Errorf("invalid rrule in requirements.overrides[%d]: %w", i, err)
		}
	}

	if _, err := cfg.SchedulerCalendar(); err != nil {
		return fmt.Errorf("invalid calendar: %w", err)
	}

	return nil
}

// SchedulerCalendar converts the calendar section into a scheduler.Calendar
func (c *Config) SchedulerCalendar() (scheduler.Calendar, error) {
	if c.Calendar == nil {
		return scheduler.DefaultCalendar(), nil
	}

	cal := scheduler.Calendar{FirstDay: time.Monday}
	if c.Calendar.FirstDay != "" {
		day, err := scheduler.ParseWeekday(c.Calendar.FirstDay)
		if err != nil {
			return scheduler.Calendar{}, err
		}
		cal.FirstDay = day
	}

	for _, name := range c.Calendar.Days {
		day, err := scheduler.ParseWeekday(name)
		if err != nil {
			return scheduler.Calendar{}, err
		}
		cal.Days = append(cal.Days, day)
	}

	for _, shift := range c.Calendar.Shifts {
		start, err := ParseClock(shift.Start)
		if err != nil {
			return scheduler.Calendar{}, fmt.Errorf("shift %s: %w", shift.Name, err)
		}
		cal.Shifts = append(cal.Shifts, scheduler.ShiftDefinition{
			Name:  shift.Name,
			Start: start,
			Hours: shift.Hours,
		})
	}

	if err := cal.Validate(); err != nil {
		return scheduler.Calendar{}, err
	}
	return cal, nil
}

// ParseClock parses a "HH:MM" time of day into an offset from midnight
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func configFileName(env string) string {
	if env == "" {
		return "scheduler_config.yaml"
	}
	return fmt.Sprintf("scheduler_config.%s.yaml", env)
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(configFileName string) (string, error) {
	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}

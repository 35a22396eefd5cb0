package db

import "time"

// DateFormat is the layout of every date column held as text
const DateFormat = time.DateOnly

// Employee is a schedulable member of staff
type Employee struct {
	ID          string `gorm:"primaryKey"`
	DisplayName string `gorm:"not null"`
	Role        string `gorm:"not null"`
}

func (Employee) TableName() string { return "employee" }

// Availability is one employee's answer for a (day, shift type) in a week
type Availability struct {
	ID         uint   `gorm:"primaryKey"`
	EmployeeID string `gorm:"not null;uniqueIndex:idx_availability_slot"`
	WeekStart  string `gorm:"not null;uniqueIndex:idx_availability_slot"`
	Day        string `gorm:"not null;uniqueIndex:idx_availability_slot"`
	ShiftType  string `gorm:"not null;uniqueIndex:idx_availability_slot"`
	Available  bool   `gorm:"not null"`
	Preferred  bool   `gorm:"not null;default:false"`
}

func (Availability) TableName() string { return "availability" }

// ShiftRequirement is the headcount for a (day, shift type).
// An empty WeekStart marks a template row used for any week without its own rows.
type ShiftRequirement struct {
	ID        uint   `gorm:"primaryKey"`
	WeekStart string `gorm:"not null;default:'';uniqueIndex:idx_requirement_slot"`
	Day       string `gorm:"not null;uniqueIndex:idx_requirement_slot"`
	ShiftType string `gorm:"not null;uniqueIndex:idx_requirement_slot"`
	Headcount int    `gorm:"not null"`

	// Roles is a comma separated list of accepted roles, empty for any
	Roles    string `gorm:"not null;default:''"`
	RoleHard bool   `gorm:"not null;default:false"`
}

func (ShiftRequirement) TableName() string { return "shift_requirement" }

// ScheduleRun records one committed scheduling run
type ScheduleRun struct {
	ID               string    `gorm:"primaryKey"`
	WeekStart        string    `gorm:"not null;index"`
	CreatedAt        time.Time `gorm:"not null"`
	Scheduled        int       `gorm:"not null"`
	Shortfall        int       `gorm:"not null"`
	ValidationErrors int       `gorm:"not null"`
	Forced           bool      `gorm:"not null;default:false"`
}

func (ScheduleRun) TableName() string { return "schedule_run" }

// Assignment is a persisted slot assignment. EmployeeID is nil for unfilled placeholders.
type Assignment struct {
	ID         string  `gorm:"primaryKey"`
	RunID      string  `gorm:"not null;index"`
	WeekStart  string  `gorm:"not null;index"`
	EmployeeID *string `gorm:"uniqueIndex:idx_assignment_employee_slot"`
	ShiftDate  string  `gorm:"not null;uniqueIndex:idx_assignment_employee_slot"`
	ShiftType  string  `gorm:"not null;uniqueIndex:idx_assignment_employee_slot"`
	Status     string  `gorm:"not null"`
}

func (Assignment) TableName() string { return "assignment" }

// AvailabilitySnapshot is a consistent read of the employees and their availability for one week
type AvailabilitySnapshot struct {
	WeekStart    string
	Employees    []Employee
	Availability []Availability
}

// SchedulableRoles are the employee roles the scheduler reads
var SchedulableRoles = []string{"employee", "manager"}

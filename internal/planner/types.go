package planner

import (
	"fmt"
	"time"
)

// StatusScheduled is the status written on every engine-generated block.
const StatusScheduled = "scheduled"

// horizonDays is the forward planning window, inclusive of today.
const horizonDays = 7

// defaultColor is used when neither the course nor the task carries one.
const defaultColor = "#aaaaaa"

// Preferences is the per-user study profile. Exactly one record per user.
type Preferences struct {
	UserID         string
	SessionMinutes int
	BreakMinutes   int
	MaxPerDay      int
}

func (p Preferences) Validate() error {
	if p.SessionMinutes < 1 {
		return fmt.Errorf("preferred session length must be positive, got %d", p.SessionMinutes)
	}
	if p.BreakMinutes < 0 {
		return fmt.Errorf("preferred break length must not be negative, got %d", p.BreakMinutes)
	}
	if p.MaxPerDay < 1 {
		return fmt.Errorf("max classes per day must be >= 1, got %d", p.MaxPerDay)
	}
	return nil
}

// AvailabilityWindow is a recurring weekly free-time block. Windows never wrap
// past midnight: Start < End on the same day.
type AvailabilityWindow struct {
	ID     string
	UserID string
	Day    time.Weekday
	Start  ClockMinutes
	End    ClockMinutes
}

// Task is one unit of schedulable work. EstimatedMinutes of zero means the
// user's preferred session length. A nil DueDate means no deadline.
type Task struct {
	ID               string
	UserID           string
	CourseID         string
	Title            string
	DueDate          *time.Time
	EstimatedMinutes int
	Priority         int
	Completed        bool
	Color            string
}

// Enrollment carries the course-level color override for a user's course.
type Enrollment struct {
	CourseID      string
	ColorOverride string
}

// ScheduleBlock is a concrete task-to-interval assignment, the engine's
// output. IDs are assigned by the persistence layer.
type ScheduleBlock struct {
	UserID          string
	CourseID        string
	TaskID          string
	StartAt         time.Time
	EndAt           time.Time
	Status          string
	CreatedByEngine bool
	Color           string
}

// Slot is a candidate placement window. End is provisional (Start plus one
// session); the packer shrinks Start as it fills capacity.
type Slot struct {
	Date  time.Time
	Day   time.Weekday
	Start ClockMinutes
	End   ClockMinutes
}

func (s Slot) remaining() int {
	return int(s.End - s.Start)
}

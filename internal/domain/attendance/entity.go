package attendance

import (
	"math"
	"time"
)

// DateLayout is the local calendar day an attendance record belongs to.
const DateLayout = "2006-01-02"

type Attendance struct {
	ID           string
	EmployeeID   string
	EmpID        string
	EmployeeName string
	Date         string
	CheckIn      time.Time
	CheckOut     *time.Time
	PhotoPath    *string
	Status       Status
	Note         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
)

func (s Status) IsValid() bool {
	return s == StatusPresent || s == StatusLate
}

// WorkingHours returns the hours between check-in and check-out, or nil while
// the employee is still checked in.
func (a Attendance) WorkingHours() *float64 {
	if a.CheckOut == nil {
		return nil
	}
	hours := a.CheckOut.Sub(a.CheckIn).Hours()
	hours = math.Round(hours*100) / 100
	return &hours
}

// StatusAt classifies a check-in made at t against the late threshold, both in t's location.
func StatusAt(t time.Time, lateHour, lateMinute int) Status {
	threshold := time.Date(t.Year(), t.Month(), t.Day(), lateHour, lateMinute, 0, 0, t.Location())
	if t.After(threshold) {
		return StatusLate
	}
	return StatusPresent
}

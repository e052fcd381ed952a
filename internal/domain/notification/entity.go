package notification

import "time"

// NotificationType is also the event name on the realtime stream
type NotificationType string

const (
	TypeAttendanceCheckedIn  NotificationType = "attendance.checked_in"
	TypeAttendanceCheckedOut NotificationType = "attendance.checked_out"
	TypeLeaveRequested       NotificationType = "leave.requested"
	TypeLeaveDecided         NotificationType = "leave.decided"
)

// Notification is a transient message pushed to connected clients. Nothing is persisted.
type Notification struct {
	ID        string
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]interface{}
	CreatedAt time.Time
}

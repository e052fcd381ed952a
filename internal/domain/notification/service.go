package notification

import "context"

// Notifier delivers notifications without blocking the caller. Delivery is best effort.
type Notifier interface {
	// NotifyEmployee pushes to every open connection of one employee
	NotifyEmployee(ctx context.Context, employeeID string, req CreateNotificationRequest)

	// NotifyManagers pushes to every connected admin and boss, and to external sinks
	NotifyManagers(ctx context.Context, req CreateNotificationRequest)
}

// Sink forwards manager notifications to an outside channel such as a chat group.
type Sink interface {
	Send(ctx context.Context, text string) error
}

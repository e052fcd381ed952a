package dashboard

import "context"

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// GetDashboard returns the day's counters, each computed concurrently
	GetDashboard(ctx context.Context, req DashboardRequest) (DashboardResponse, error)
}

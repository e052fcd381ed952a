package dashboard

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"

type DashboardRequest struct {
	Date string `json:"date"` // YYYY-MM-DD, defaults to today
}

func (r *DashboardRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Date != "" {
		if _, ok := validator.IsValidDate(r.Date); !ok {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

// DashboardResponse summarises one day of attendance for admins and the boss
type DashboardResponse struct {
	Date            string `json:"date"`
	TotalEmployees  int64  `json:"total_employees"`
	ActiveEmployees int64  `json:"active_employees"`
	Admins          int64  `json:"admins"`
	CheckedIn       int64  `json:"checked_in"`
	Late            int64  `json:"late"`
	NotCheckedIn    int64  `json:"not_checked_in"`
	PendingLeaves   int64  `json:"pending_leaves"`
	GeneratedAt     string `json:"generated_at"`
}

package report

import (
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

const (
	DefaultDays = 7
	MaxDays     = 90
	DefaultTopN = 10
)

// ========================================
// CRON LOGS
// ========================================

type CronLogsRequest struct {
	Days int `json:"days"`
	TopN int `json:"top_n"`
}

func (r *CronLogsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Days == 0 {
		r.Days = DefaultDays
	}
	if r.Days < 0 || r.Days > MaxDays {
		errs = append(errs, validator.ValidationError{
			Field:   "days",
			Message: "days must be between 1 and 90",
		})
	}

	if r.TopN == 0 {
		r.TopN = DefaultTopN
	}
	if r.TopN < 0 || r.TopN > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "top_n",
			Message: "top_n must be between 1 and 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CronLogsReport struct {
	PeriodStart  string       `json:"period_start"`
	PeriodEnd    string       `json:"period_end"`
	Days         int          `json:"days"`
	GeneratedAt  string       `json:"generated_at"`
	Daily        []DailyCount `json:"daily"`
	TopOffenders []Offender   `json:"top_offenders"`
	Health       Health       `json:"health"`
}

// DailyCount splits one day's records by how they were closed. Leave and
// absent markers are counted on their own and contribute no worked hours.
type DailyCount struct {
	Date           string  `json:"date"`
	AutoClosed     int     `json:"auto_closed"`
	ManuallyClosed int     `json:"manually_closed"`
	NeverClosed    int     `json:"never_closed"`
	OnLeave        int     `json:"on_leave"`
	Absent         int     `json:"absent"`
	HoursWorked    float64 `json:"hours_worked"`
}

type Offender struct {
	EmployeeID   string   `json:"employee_id"`
	EmployeeName string   `json:"employee_name"`
	Count        int      `json:"count"`
	Dates        []string `json:"dates"`
}

type Health struct {
	MostRecentDayProcessed *string `json:"most_recent_day_processed"`
	AveragePerDay          float64 `json:"average_per_day"`
	TotalAutoLogouts       int     `json:"total_auto_logouts"`
}

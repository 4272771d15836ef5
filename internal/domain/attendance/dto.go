package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// ========================================
// ACTION DTOs
// ========================================

// MarkRequest is the input of mark-login, mark-leave and mark-absent.
type MarkRequest struct {
	EmployeeID string    `json:"employee_id" validate:"required"`
	Date       string    `json:"date" validate:"required,datetime=2006-01-02"`
	DayOfWeek  string    `json:"day_of_week" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	LoginTime  time.Time `json:"login_time" validate:"required"`
	StartLat   *float64  `json:"start_lat" validate:"required,latitude"`
	StartLng   *float64  `json:"start_lng" validate:"required,longitude"`
}

func (r *MarkRequest) Validate() error {
	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
	return validator.Struct(r)
}

func (r *MarkRequest) Location() *Location {
	return &Location{Latitude: *r.StartLat, Longitude: *r.StartLng}
}

type LogoutRequest struct {
	EmployeeID string    `json:"employee_id" validate:"required"`
	Date       string    `json:"date" validate:"required,datetime=2006-01-02"`
	LogoutTime time.Time `json:"logout_time" validate:"required"`
	EndLat     *float64  `json:"end_lat" validate:"required,latitude"`
	EndLng     *float64  `json:"end_lng" validate:"required,longitude"`
}

func (r *LogoutRequest) Validate() error {
	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
	return validator.Struct(r)
}

func (r *LogoutRequest) Location() *Location {
	return &Location{Latitude: *r.EndLat, Longitude: *r.EndLng}
}

// BreakRequest is the input of start-break and end-break.
type BreakRequest struct {
	EmployeeID string    `json:"employee_id" validate:"required"`
	Date       string    `json:"date" validate:"required,datetime=2006-01-02"`
	Time       time.Time `json:"time" validate:"required"`
}

func (r *BreakRequest) Validate() error {
	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
	return validator.Struct(r)
}

// UpdateAttendanceRequest for admin/manager to update attendance records
// This allows fixing wrong attendance data, employee forgot to log out, etc.
type UpdateAttendanceRequest struct {
	ID                   string     `json:"-"`
	LoginTime            *time.Time `json:"login_time,omitempty"`
	LogoutTime           *time.Time `json:"logout_time,omitempty"`
	BreakStartTime       *time.Time `json:"break_start_time,omitempty"`
	BreakEndTime         *time.Time `json:"break_end_time,omitempty"`
	BreakDurationMinutes *int       `json:"break_duration_minutes,omitempty" validate:"omitempty,min=0,max=1440"`
	Status               *string    `json:"status,omitempty" validate:"omitempty,oneof=present absent on_leave on_break active inactive"`
	StartLat             *float64   `json:"start_lat,omitempty" validate:"omitempty,latitude"`
	StartLng             *float64   `json:"start_lng,omitempty" validate:"omitempty,longitude"`
	EndLat               *float64   `json:"end_lat,omitempty" validate:"omitempty,latitude"`
	EndLng               *float64   `json:"end_lng,omitempty" validate:"omitempty,longitude"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	errs := validator.StructErrors(r)

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if (r.StartLat == nil) != (r.StartLng == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_lat",
			Message: "start_lat and start_lng must be provided together",
		})
	}

	if (r.EndLat == nil) != (r.EndLng == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_lat",
			Message: "end_lat and end_lng must be provided together",
		})
	}

	if r.isEmpty() {
		errs = append(errs, validator.ValidationError{
			Field:   "request",
			Message: "at least one field must be provided",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r *UpdateAttendanceRequest) isEmpty() bool {
	return r.LoginTime == nil && r.LogoutTime == nil &&
		r.BreakStartTime == nil && r.BreakEndTime == nil &&
		r.BreakDurationMinutes == nil && r.Status == nil &&
		r.StartLat == nil && r.EndLat == nil
}

// ========================================
// RESPONSE DTOs
// ========================================

type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type AttendanceResponse struct {
	ID                    string            `json:"id"`
	EmployeeID            string            `json:"employee_id"`
	EmployeeName          string            `json:"employee_name,omitempty"`
	Department            *string           `json:"department,omitempty"`
	DateOfWorking         string            `json:"date_of_working"`
	DayOfWeek             string            `json:"day_of_week"`
	LoginTime             string            `json:"login_time"`
	LogoutTime            *string           `json:"logout_time,omitempty"`
	BreakStartTime        *string           `json:"break_start_time,omitempty"`
	BreakEndTime          *string           `json:"break_end_time,omitempty"`
	BreakDuration         int64             `json:"break_duration"` // milliseconds
	StartLocation         *LocationResponse `json:"start_location,omitempty"`
	EndLocation           *LocationResponse `json:"end_location,omitempty"`
	TravelDistanceMeters  *float64          `json:"travel_distance_m,omitempty"`
	WorkedMinutes         *int              `json:"worked_minutes,omitempty"`
	WorkingHoursCompleted bool              `json:"working_hours_completed"`
	AutoClosed            bool              `json:"auto_closed"`
	Status                string            `json:"status"`
	State                 string            `json:"state"`
	CreatedAt             string            `json:"created_at"`
	UpdatedAt             string            `json:"updated_at"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// AttendanceStatusResponse describes the caller's day and which actions are
// currently allowed.
type AttendanceStatusResponse struct {
	Date            string              `json:"date"`
	DayOfWeek       string              `json:"day_of_week"`
	State           string              `json:"state"`
	HasRecord       bool                `json:"has_record"`
	TodayAttendance *AttendanceResponse `json:"today_attendance,omitempty"`
	CanLogin        bool                `json:"can_login"`
	CanLogout       bool                `json:"can_logout"`
	CanStartBreak   bool                `json:"can_start_break"`
	CanEndBreak     bool                `json:"can_end_break"`
	Message         string              `json:"message"`
}

// ========================================
// FILTER DTOs
// ========================================

type AttendanceFilter struct {
	// Search & Filter
	EmployeeID *string `json:"employee_id,omitempty"`
	Department *string `json:"department,omitempty"`
	Date       *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, employee_name, login_time, logout_time, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validatePagination(&f.Page, &f.Limit)...)

	// Status validation
	if f.Status != nil && *f.Status != "" {
		if !validator.IsInSlice(*f.Status, Statuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: " + strings.Join(Statuses, ", "),
			})
		}
	}

	errs = append(errs, validateDates(f.Date, f.StartDate, f.EndDate)...)

	// Sort validation
	if f.SortBy != "" {
		validSortFields := []string{"date", "employee_name", "login_time", "logout_time", "status"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: date, employee_name, login_time, logout_time, status",
			})
		}
	} else {
		f.SortBy = "date" // Default sort
	}

	if f.SortOrder != "" {
		validSortOrders := []string{"asc", "desc"}
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), validSortOrders) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MyAttendanceFilter struct {
	// Search & Filter (no employee filters)
	Date      *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ToFilter scopes the filter to one employee, newest first.
func (f MyAttendanceFilter) ToFilter(employeeID string) AttendanceFilter {
	return AttendanceFilter{
		EmployeeID: &employeeID,
		Date:       f.Date,
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
		Status:     f.Status,
		Page:       f.Page,
		Limit:      f.Limit,
		SortBy:     "date",
		SortOrder:  "desc",
	}
}

func validatePagination(page, limit *int) validator.ValidationErrors {
	var errs validator.ValidationErrors

	// Page validation
	if *page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if *page == 0 {
		*page = 1 // Default page
	}

	// Limit validation
	if *limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if *limit == 0 {
		*limit = 20 // Default limit
	}
	if *limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	return errs
}

func validateDates(date, start, end *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	check := func(field string, value *string) (time.Time, bool) {
		if value == nil || *value == "" {
			return time.Time{}, false
		}
		t, valid := validator.IsValidDate(*value)
		if !valid {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must be in YYYY-MM-DD format",
			})
		}
		return t, valid
	}

	check("date", date)
	from, okFrom := check("start_date", start)
	to, okTo := check("end_date", end)
	if okFrom && okTo && to.Before(from) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	return errs
}

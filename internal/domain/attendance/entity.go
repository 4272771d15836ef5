package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workhours"
)

// Status is the persisted attendance status of a day record.
type Status string

const (
	StatusPresent  Status = "present"
	StatusAbsent   Status = "absent"
	StatusOnLeave  Status = "on_leave"
	StatusOnBreak  Status = "on_break"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Statuses lists every valid Status, in display order.
var Statuses = []string{
	string(StatusPresent),
	string(StatusAbsent),
	string(StatusOnLeave),
	string(StatusOnBreak),
	string(StatusActive),
	string(StatusInactive),
}

// OpenStatuses are the statuses a record can carry while its logout is unset.
var OpenStatuses = []Status{StatusPresent, StatusActive, StatusOnBreak}

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusOnLeave, StatusOnBreak, StatusActive, StatusInactive:
		return true
	}
	return false
}

// IsMarker reports whether s is a zero-duration leave/absent status.
func (s Status) IsMarker() bool {
	return s == StatusOnLeave || s == StatusAbsent
}

// State is the lifecycle position of a day record.
type State string

const (
	StateNoRecord State = "not_started"
	StateWorking  State = "working"
	StateOnBreak  State = "on_break"
	StateClosed   State = "closed"
	StateLeave    State = "on_leave"
	StateAbsent   State = "absent"
)

type Location struct {
	Latitude  float64
	Longitude float64
}

type Attendance struct {
	ID                    string
	EmployeeID            string
	DateOfWorking         time.Time
	DayOfWeek             string
	LoginTime             time.Time
	LogoutTime            *time.Time
	BreakStartTime        *time.Time
	BreakEndTime          *time.Time
	BreakDuration         time.Duration
	StartLocation         *Location
	EndLocation           *Location
	WorkingHoursCompleted bool
	Status                Status
	CreatedAt             time.Time
	UpdatedAt             time.Time

	// DTO
	EmployeeName       *string
	EmployeeDepartment *string
}

// NewPresent builds the record created by a login.
func NewPresent(employeeID string, date time.Time, dayOfWeek string, login time.Time, loc *Location) Attendance {
	return Attendance{
		EmployeeID:    employeeID,
		DateOfWorking: date,
		DayOfWeek:     dayOfWeek,
		LoginTime:     login,
		StartLocation: loc,
		Status:        StatusPresent,
	}
}

// NewMarker builds a zero-duration leave or absent record.
func NewMarker(status Status, employeeID string, date time.Time, dayOfWeek string, at time.Time, loc *Location) (Attendance, error) {
	if !status.IsMarker() {
		return Attendance{}, fmt.Errorf("%w: %s is not a leave or absent status", ErrInvalidStatus, status)
	}
	logout := at
	return Attendance{
		EmployeeID:    employeeID,
		DateOfWorking: date,
		DayOfWeek:     dayOfWeek,
		LoginTime:     at,
		LogoutTime:    &logout,
		StartLocation: loc,
		EndLocation:   loc,
		Status:        status,
	}, nil
}

func (a Attendance) State() State {
	switch {
	case a.Status == StatusOnLeave:
		return StateLeave
	case a.Status == StatusAbsent:
		return StateAbsent
	case a.LogoutTime != nil:
		return StateClosed
	case a.Status == StatusOnBreak:
		return StateOnBreak
	default:
		return StateWorking
	}
}

// IsOpen reports whether the record still waits for a logout.
func (a Attendance) IsOpen() bool {
	return a.LogoutTime == nil && !a.Status.IsMarker()
}

func (a Attendance) OnBreak() bool {
	return a.IsOpen() && a.Status == StatusOnBreak
}

// HasOpenBreak reports whether the latest break window has no end yet.
func (a Attendance) HasOpenBreak() bool {
	return a.BreakStartTime != nil && a.BreakEndTime == nil
}

// Worked returns the worked duration of a closed record.
func (a Attendance) Worked() (time.Duration, bool) {
	if a.LogoutTime == nil {
		return 0, false
	}
	return workhours.Worked(a.LoginTime, *a.LogoutTime, a.BreakDuration), true
}

// StartBreak opens a break at t. Only the latest break window is kept;
// earlier breaks live on in BreakDuration.
func (a *Attendance) StartBreak(t time.Time) error {
	if !a.IsOpen() || a.Status == StatusOnBreak {
		return &TransitionError{Action: ActionStartBreak, State: a.State()}
	}
	if t.Before(a.LoginTime) {
		return ErrBreakBeforeLogin
	}
	if a.BreakEndTime != nil && t.Before(*a.BreakEndTime) {
		return ErrBreakOverlap
	}

	start := t
	a.BreakStartTime = &start
	a.BreakEndTime = nil
	a.Status = StatusOnBreak
	return nil
}

// EndBreak closes the open break at t and accumulates its length.
func (a *Attendance) EndBreak(t time.Time) error {
	if !a.OnBreak() || a.BreakStartTime == nil || a.BreakEndTime != nil {
		return &TransitionError{Action: ActionEndBreak, State: a.State()}
	}
	if t.Before(*a.BreakStartTime) {
		return ErrBreakEndBeforeStart
	}

	end := t
	a.BreakEndTime = &end
	a.BreakDuration += end.Sub(*a.BreakStartTime)
	a.Status = StatusActive
	return nil
}

// Logout closes the record at t. An open break is closed at t first.
func (a *Attendance) Logout(t time.Time, loc *Location, expected time.Duration) error {
	if !a.IsOpen() {
		return fmt.Errorf("%w: attendance is %s", ErrNoOpenRecord, a.State())
	}
	if t.Before(a.LoginTime) {
		return ErrLogoutBeforeLogin
	}
	if a.OnBreak() {
		if err := a.EndBreak(t); err != nil {
			return err
		}
	}

	logout := t
	a.LogoutTime = &logout
	a.EndLocation = loc
	a.Status = StatusInactive
	a.Recompute(expected)
	return nil
}

// ForceLogout closes a record left open past the day cutoff. The logout is
// never placed before the login, a pending break is closed at the logout
// instant and the start location stands in for a missing end location.
func (a *Attendance) ForceLogout(cutoff time.Time, expected time.Duration) error {
	if !a.IsOpen() {
		return fmt.Errorf("%w: attendance is %s", ErrAlreadyClosed, a.State())
	}

	logout := cutoff
	if logout.Before(a.LoginTime) {
		logout = a.LoginTime
	}
	if a.OnBreak() && a.BreakStartTime != nil {
		end := logout
		if end.Before(*a.BreakStartTime) {
			end = *a.BreakStartTime
		}
		a.BreakEndTime = &end
		a.BreakDuration += end.Sub(*a.BreakStartTime)
	}

	a.LogoutTime = &logout
	if a.EndLocation == nil {
		a.EndLocation = a.StartLocation
	}
	a.Status = StatusInactive
	a.Recompute(expected)
	return nil
}

// Recompute derives WorkingHoursCompleted from the time fields.
func (a *Attendance) Recompute(expected time.Duration) {
	if a.LogoutTime == nil {
		a.WorkingHoursCompleted = false
		return
	}
	a.WorkingHoursCompleted = workhours.Completed(a.LoginTime, *a.LogoutTime, a.BreakDuration, expected)
}

// Validate checks the record invariants.
func (a Attendance) Validate() error {
	if !a.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, a.Status)
	}
	if a.LogoutTime != nil && a.LogoutTime.Before(a.LoginTime) {
		return ErrLogoutBeforeLogin
	}
	if a.BreakEndTime != nil {
		if a.BreakStartTime == nil {
			return ErrBreakEndBeforeStart
		}
		if a.BreakEndTime.Before(*a.BreakStartTime) {
			return ErrBreakEndBeforeStart
		}
	}
	if a.BreakDuration < 0 {
		return ErrNegativeBreak
	}
	if a.Status.IsMarker() {
		if a.LogoutTime == nil || !a.LogoutTime.Equal(a.LoginTime) {
			return fmt.Errorf("%w: %s record must have logout equal to login", ErrInvalidStatus, a.Status)
		}
		if a.BreakStartTime != nil || a.BreakEndTime != nil || a.BreakDuration != 0 {
			return fmt.Errorf("%w: %s record cannot carry a break", ErrInvalidStatus, a.Status)
		}
	}
	if a.LogoutTime == nil && a.Status == StatusInactive {
		return fmt.Errorf("%w: inactive record must have a logout time", ErrInvalidStatus)
	}
	if a.LogoutTime != nil && a.Status == StatusOnBreak {
		return fmt.Errorf("%w: closed record cannot be on break", ErrInvalidStatus)
	}
	if a.Status == StatusOnBreak && !a.HasOpenBreak() {
		return fmt.Errorf("%w: on_break record must have an open break", ErrInvalidStatus)
	}
	if a.Status != StatusOnBreak && a.HasOpenBreak() {
		return fmt.Errorf("%w: %s record cannot have an open break", ErrInvalidStatus, a.Status)
	}
	return nil
}

// Transition actions.
const (
	ActionMarkLogin  = "mark_login"
	ActionMarkLeave  = "mark_leave"
	ActionMarkAbsent = "mark_absent"
	ActionMarkLogout = "mark_logout"
	ActionStartBreak = "start_break"
	ActionEndBreak   = "end_break"
	ActionUpdate     = "update"
	ActionAutoLogout = "auto_logout"
)

// TransitionError reports an action that the record's current state does
// not allow. It matches ErrInvalidState with errors.Is.
type TransitionError struct {
	Action string
	State  State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s: attendance is %s", e.Action, e.State)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidState
}

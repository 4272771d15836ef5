package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workday"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workhours"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	employee.EmployeeRepository
	resolver *workday.Resolver
	locks    *keylock.Locker
	metrics  *metrics.Metrics
	hub      *sse.Hub
}

// MarkLogin implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MarkLogin(ctx context.Context, req attendance.MarkRequest) (attendance.AttendanceResponse, error) {
	return a.mark(ctx, attendance.ActionMarkLogin, attendance.StatusPresent, req)
}

// MarkLeave implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MarkLeave(ctx context.Context, req attendance.MarkRequest) (attendance.AttendanceResponse, error) {
	return a.mark(ctx, attendance.ActionMarkLeave, attendance.StatusOnLeave, req)
}

// MarkAbsent implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MarkAbsent(ctx context.Context, req attendance.MarkRequest) (attendance.AttendanceResponse, error) {
	return a.mark(ctx, attendance.ActionMarkAbsent, attendance.StatusAbsent, req)
}

// mark creates the day record for login, leave and absent.
func (a *AttendanceServiceImpl) mark(ctx context.Context, action string, status attendance.Status, req attendance.MarkRequest) (resp attendance.AttendanceResponse, err error) {
	defer func() { a.metrics.ObserveTransition(action, err) }()

	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	date, err := a.resolveDate(req.Date, req.LoginTime, "login_time")
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if want := a.resolver.DayOfWeek(date); req.DayOfWeek != want {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{{
			Field:   "day_of_week",
			Message: fmt.Sprintf("day_of_week must be %s for %s", want, req.Date),
		}}
	}

	unlock := a.locks.Lock(lockKey(req.EmployeeID, date))
	defer unlock()

	var created attendance.Attendance
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := a.EmployeeRepository.GetByID(ctx, req.EmployeeID)
		if err != nil {
			return err
		}

		_, err = a.AttendanceRepository.GetByEmployeeAndDate(ctx, emp.ID, date)
		if err == nil {
			return attendance.ErrDuplicateRecord
		}
		if !errors.Is(err, attendance.ErrAttendanceNotFound) {
			return fmt.Errorf("failed to check existing attendance: %w", err)
		}

		record := attendance.NewPresent(emp.ID, date, req.DayOfWeek, req.LoginTime, req.Location())
		if status.IsMarker() {
			record, err = attendance.NewMarker(status, emp.ID, date, req.DayOfWeek, req.LoginTime, req.Location())
			if err != nil {
				return err
			}
		}

		created, err = a.AttendanceRepository.Create(ctx, record)
		if err != nil {
			return err
		}

		if next, ok := employeeStatusFor(created.Status); ok {
			if err := a.EmployeeRepository.UpdateStatus(ctx, emp.ID, next); err != nil {
				return fmt.Errorf("failed to update employee status: %w", err)
			}
		}

		created.EmployeeName = &emp.FullName
		created.EmployeeDepartment = emp.Department
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	resp = a.toResponse(created)
	a.publish(sse.EventAttendanceUpdated, created.EmployeeID, resp)
	return resp, nil
}

// MarkLogout implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MarkLogout(ctx context.Context, req attendance.LogoutRequest) (resp attendance.AttendanceResponse, err error) {
	defer func() { a.metrics.ObserveTransition(attendance.ActionMarkLogout, err) }()

	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	date, err := a.parseDate(req.Date)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return a.mutate(ctx, req.EmployeeID, date, attendance.ActionMarkLogout,
		func(rec *attendance.Attendance, emp employee.Employee) error {
			return rec.Logout(req.LogoutTime, req.Location(), expectedHours(emp))
		})
}

// StartBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.BreakRequest) (resp attendance.AttendanceResponse, err error) {
	defer func() { a.metrics.ObserveTransition(attendance.ActionStartBreak, err) }()

	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	date, err := a.parseDate(req.Date)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return a.mutate(ctx, req.EmployeeID, date, attendance.ActionStartBreak,
		func(rec *attendance.Attendance, _ employee.Employee) error {
			return rec.StartBreak(req.Time)
		})
}

// EndBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context, req attendance.BreakRequest) (resp attendance.AttendanceResponse, err error) {
	defer func() { a.metrics.ObserveTransition(attendance.ActionEndBreak, err) }()

	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	date, err := a.parseDate(req.Date)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return a.mutate(ctx, req.EmployeeID, date, attendance.ActionEndBreak,
		func(rec *attendance.Attendance, _ employee.Employee) error {
			return rec.EndBreak(req.Time)
		})
}

// mutate runs one read-modify-write of the (employee, date) record while
// holding the key lock and the row lock.
func (a *AttendanceServiceImpl) mutate(ctx context.Context, employeeID string, date time.Time, action string, apply func(rec *attendance.Attendance, emp employee.Employee) error) (attendance.AttendanceResponse, error) {
	unlock := a.locks.Lock(lockKey(employeeID, date))
	defer unlock()

	var updated attendance.Attendance
	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := a.AttendanceRepository.GetByEmployeeAndDateForUpdate(ctx, employeeID, date)
		if err != nil {
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				return missingRecordError(action)
			}
			return fmt.Errorf("failed to get attendance: %w", err)
		}

		emp, err := a.EmployeeRepository.GetByID(ctx, employeeID)
		if err != nil {
			return err
		}

		if err := apply(&rec, emp); err != nil {
			return err
		}
		if err := rec.Validate(); err != nil {
			return err
		}

		if err := a.AttendanceRepository.Update(ctx, rec); err != nil {
			return err
		}

		if next, ok := employeeStatusFor(rec.Status); ok {
			if err := a.EmployeeRepository.UpdateStatus(ctx, emp.ID, next); err != nil {
				return fmt.Errorf("failed to update employee status: %w", err)
			}
		}

		rec.EmployeeName = &emp.FullName
		rec.EmployeeDepartment = emp.Department
		updated = rec
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	resp := a.toResponse(updated)
	a.publish(sse.EventAttendanceUpdated, updated.EmployeeID, resp)
	return resp, nil
}

func missingRecordError(action string) error {
	if action == attendance.ActionMarkLogout {
		return fmt.Errorf("%w: attendance is %s", attendance.ErrNoOpenRecord, attendance.StateNoRecord)
	}
	return &attendance.TransitionError{Action: action, State: attendance.StateNoRecord}
}

// UpdateAttendance implements attendance.AttendanceService.
// This allows managers/owners to fix attendance data like wrong login times, etc.
func (a *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, req attendance.UpdateAttendanceRequest) (resp attendance.AttendanceResponse, err error) {
	defer func() { a.metrics.ObserveTransition(attendance.ActionUpdate, err) }()

	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	existing, err := a.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	unlock := a.locks.Lock(lockKey(existing.EmployeeID, existing.DateOfWorking))
	defer unlock()

	var updated attendance.Attendance
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := a.AttendanceRepository.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}

		emp, err := a.EmployeeRepository.GetByID(ctx, rec.EmployeeID)
		if err != nil {
			return err
		}

		applyOverride(&rec, req)
		rec.Recompute(expectedHours(emp))
		if err := rec.Validate(); err != nil {
			return err
		}

		if err := a.AttendanceRepository.Update(ctx, rec); err != nil {
			return err
		}

		// Only today's record drives the employee's live status.
		if rec.DateOfWorking.Equal(a.resolver.Today()) {
			if next, ok := employeeStatusFor(rec.Status); ok {
				if err := a.EmployeeRepository.UpdateStatus(ctx, emp.ID, next); err != nil {
					return fmt.Errorf("failed to update employee status: %w", err)
				}
			}
		}

		rec.EmployeeName = &emp.FullName
		rec.EmployeeDepartment = emp.Department
		updated = rec
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("attendance overridden", "attendance_id", updated.ID, "employee_id", updated.EmployeeID)

	resp = a.toResponse(updated)
	a.publish(sse.EventAttendanceUpdated, updated.EmployeeID, resp)
	return resp, nil
}

// applyOverride copies the provided fields onto rec and keeps the status
// consistent with the resulting time fields.
func applyOverride(rec *attendance.Attendance, req attendance.UpdateAttendanceRequest) {
	openStart := rec.BreakStartTime
	if !rec.HasOpenBreak() {
		openStart = nil
	}

	if req.LoginTime != nil {
		rec.LoginTime = *req.LoginTime
	}
	if req.LogoutTime != nil {
		logout := *req.LogoutTime
		rec.LogoutTime = &logout
	}
	if req.BreakStartTime != nil {
		start := *req.BreakStartTime
		rec.BreakStartTime = &start
	}
	if req.BreakEndTime != nil {
		end := *req.BreakEndTime
		rec.BreakEndTime = &end
	}
	if req.BreakDurationMinutes != nil {
		rec.BreakDuration = time.Duration(*req.BreakDurationMinutes) * time.Minute
	} else if req.BreakStartTime != nil && req.BreakEndTime != nil && !req.BreakEndTime.Before(*req.BreakStartTime) {
		rec.BreakDuration = req.BreakEndTime.Sub(*req.BreakStartTime)
	} else if req.BreakStartTime == nil && req.BreakEndTime != nil && openStart != nil && !req.BreakEndTime.Before(*openStart) {
		rec.BreakDuration += req.BreakEndTime.Sub(*openStart)
	}
	if req.StartLat != nil && req.StartLng != nil {
		rec.StartLocation = &attendance.Location{Latitude: *req.StartLat, Longitude: *req.StartLng}
	}
	if req.EndLat != nil && req.EndLng != nil {
		rec.EndLocation = &attendance.Location{Latitude: *req.EndLat, Longitude: *req.EndLng}
	}

	// A logout closes any break still open, as MarkLogout does.
	if rec.LogoutTime != nil && rec.HasOpenBreak() {
		end := *rec.LogoutTime
		if end.Before(*rec.BreakStartTime) {
			end = *rec.BreakStartTime
		}
		rec.BreakEndTime = &end
		if req.BreakDurationMinutes == nil {
			rec.BreakDuration += end.Sub(*rec.BreakStartTime)
		}
	}

	switch {
	case req.Status != nil:
		rec.Status = attendance.Status(*req.Status)
	case rec.Status.IsMarker():
	case rec.LogoutTime != nil:
		rec.Status = attendance.StatusInactive
	case rec.HasOpenBreak():
		rec.Status = attendance.StatusOnBreak
	case rec.Status == attendance.StatusOnBreak:
		rec.Status = attendance.StatusActive
	}

	if rec.Status.IsMarker() {
		logout := rec.LoginTime
		rec.LogoutTime = &logout
		rec.BreakStartTime = nil
		rec.BreakEndTime = nil
		rec.BreakDuration = 0
	}
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	att, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	return a.toResponse(att), nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	attendances, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	// Map to response
	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, a.toResponse(att))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	first := (filter.Page-1)*filter.Limit + 1
	showing := fmt.Sprintf("%d-%d of %d", first, min(filter.Page*filter.Limit, int(total)), total)
	if first > int(total) {
		showing = fmt.Sprintf("0 of %d", total)
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, employeeID string, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if validator.IsEmpty(employeeID) {
		return attendance.ListAttendanceResponse{}, attendance.ErrUnauthorized
	}
	return a.ListAttendance(ctx, filter.ToFilter(employeeID))
}

// GetTodayStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetTodayStatus(ctx context.Context, employeeID string) (attendance.AttendanceStatusResponse, error) {
	if _, err := a.EmployeeRepository.GetByID(ctx, employeeID); err != nil {
		return attendance.AttendanceStatusResponse{}, err
	}

	today := a.resolver.Today()
	status := attendance.AttendanceStatusResponse{
		Date:      a.resolver.FormatDate(today),
		DayOfWeek: a.resolver.DayOfWeek(today),
	}

	rec, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		if !errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceStatusResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
		}
		status.State = string(attendance.StateNoRecord)
		status.CanLogin = true
		status.Message = "You have not logged in today"
		return status, nil
	}

	resp := a.toResponse(rec)
	state := rec.State()
	status.HasRecord = true
	status.TodayAttendance = &resp
	status.State = string(state)

	switch state {
	case attendance.StateWorking:
		status.CanLogout = true
		status.CanStartBreak = true
		status.Message = "You are logged in"
	case attendance.StateOnBreak:
		status.CanLogout = true
		status.CanEndBreak = true
		status.Message = "You are on a break"
	case attendance.StateClosed:
		status.Message = "You have logged out for today"
	case attendance.StateLeave:
		status.Message = "You are on leave today"
	case attendance.StateAbsent:
		status.Message = "You are marked absent today"
	}

	return status, nil
}

// resolveDate parses the civil date and checks it is the date the instant
// falls on.
func (a *AttendanceServiceImpl) resolveDate(dateStr string, instant time.Time, field string) (time.Time, error) {
	date, err := a.parseDate(dateStr)
	if err != nil {
		return time.Time{}, err
	}
	if want := a.resolver.DateOf(instant); !date.Equal(want) {
		return time.Time{}, validator.ValidationErrors{{
			Field:   "date",
			Message: fmt.Sprintf("date must be %s for the given %s", a.resolver.FormatDate(want), field),
		}}
	}
	return date, nil
}

func (a *AttendanceServiceImpl) parseDate(dateStr string) (time.Time, error) {
	date, err := a.resolver.ParseDate(dateStr)
	if err != nil {
		return time.Time{}, validator.ValidationErrors{{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		}}
	}
	return date, nil
}

// expectedHours resolves the employee's expected daily duration, warning
// when a configured value had to be replaced by the default.
func expectedHours(emp employee.Employee) time.Duration {
	expected, fellBack := workhours.ExpectedOrDefault(emp.WorkingHours)
	if fellBack {
		slog.Warn("invalid working hours, using default",
			"employee_id", emp.ID,
			"working_hours", *emp.WorkingHours,
			"default", workhours.DefaultExpected.String(),
		)
	}
	return expected
}

func (a *AttendanceServiceImpl) publish(event, employeeID string, data interface{}) {
	a.hub.Publish(sse.Event{EmployeeID: employeeID, Event: event, Data: data})
}

// employeeStatusFor projects a record status onto the employee directory.
// Absence leaves the employee's status untouched.
func employeeStatusFor(s attendance.Status) (employee.Status, bool) {
	switch s {
	case attendance.StatusPresent, attendance.StatusActive:
		return employee.StatusActive, true
	case attendance.StatusOnBreak:
		return employee.StatusOnBreak, true
	case attendance.StatusInactive:
		return employee.StatusInactive, true
	case attendance.StatusOnLeave:
		return employee.StatusOnLeave, true
	}
	return "", false
}

func lockKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format(workday.DateLayout)
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	resolver *workday.Resolver,
	locks *keylock.Locker,
	m *metrics.Metrics,
	hub *sse.Hub,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		resolver:             resolver,
		locks:                locks,
		metrics:              m,
		hub:                  hub,
	}
}

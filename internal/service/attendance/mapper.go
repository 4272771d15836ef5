package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
)

// timePtrToString formats an optional instant in the civil timezone.
func timePtrToString(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	format := t.In(loc).Format(time.RFC3339)
	return &format
}

func locationToResponse(l *attendance.Location) *attendance.LocationResponse {
	if l == nil {
		return nil
	}
	return &attendance.LocationResponse{Latitude: l.Latitude, Longitude: l.Longitude}
}

// travelDistance is the rounded distance between where the day was opened and
// where it was closed. Markers and open records have none.
func travelDistance(att attendance.Attendance) *float64 {
	if att.Status.IsMarker() || att.StartLocation == nil || att.EndLocation == nil {
		return nil
	}
	d := geo.Distance(
		geo.Point{Lat: att.StartLocation.Latitude, Lng: att.StartLocation.Longitude},
		geo.Point{Lat: att.EndLocation.Latitude, Lng: att.EndLocation.Longitude},
	)
	d = math.Round(d)
	return &d
}

// toResponse converts an Attendance entity to AttendanceResponse
func (a *AttendanceServiceImpl) toResponse(att attendance.Attendance) attendance.AttendanceResponse {
	return mapAttendanceToResponse(att, a.resolver.Location(), a.resolver.IsCutoffSignature)
}

func mapAttendanceToResponse(att attendance.Attendance, loc *time.Location, isCutoff func(time.Time) bool) attendance.AttendanceResponse {
	var employeeName string
	if att.EmployeeName != nil {
		employeeName = *att.EmployeeName
	}

	var workedMinutes *int
	if worked, ok := att.Worked(); ok && !att.Status.IsMarker() {
		minutes := int(worked / time.Minute)
		workedMinutes = &minutes
	}

	autoClosed := att.LogoutTime != nil && !att.Status.IsMarker() && isCutoff(*att.LogoutTime)

	return attendance.AttendanceResponse{
		ID:                    att.ID,
		EmployeeID:            att.EmployeeID,
		EmployeeName:          employeeName,
		Department:            att.EmployeeDepartment,
		DateOfWorking:         att.DateOfWorking.Format("2006-01-02"),
		DayOfWeek:             att.DayOfWeek,
		LoginTime:             att.LoginTime.In(loc).Format(time.RFC3339),
		LogoutTime:            timePtrToString(att.LogoutTime, loc),
		BreakStartTime:        timePtrToString(att.BreakStartTime, loc),
		BreakEndTime:          timePtrToString(att.BreakEndTime, loc),
		BreakDuration:         att.BreakDuration.Milliseconds(),
		StartLocation:         locationToResponse(att.StartLocation),
		EndLocation:           locationToResponse(att.EndLocation),
		TravelDistanceMeters:  travelDistance(att),
		WorkedMinutes:         workedMinutes,
		WorkingHoursCompleted: att.WorkingHoursCompleted,
		AutoClosed:            autoClosed,
		Status:                string(att.Status),
		State:                 string(att.State()),
		CreatedAt:             att.CreatedAt.In(loc).Format("2006-01-02 15:04:05"),
		UpdatedAt:             att.UpdatedAt.In(loc).Format("2006-01-02 15:04:05"),
	}
}

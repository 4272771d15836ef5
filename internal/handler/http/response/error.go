package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var transition *attendance.TransitionError
	if errors.As(err, &transition) {
		Conflict(w, transition.Error())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrManagerAccessRequired),
		errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrActingForOtherEmployee),
		errors.Is(err, user.ErrInvalidCronSecret),
		errors.Is(err, attendance.ErrUnauthorized):
		Forbidden(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance not found")
	case errors.Is(err, attendance.ErrDuplicateRecord):
		BadRequest(w, "Attendance already marked for this date", nil)
	case errors.Is(err, attendance.ErrLogoutBeforeLogin),
		errors.Is(err, attendance.ErrBreakBeforeLogin),
		errors.Is(err, attendance.ErrBreakEndBeforeStart),
		errors.Is(err, attendance.ErrBreakOverlap),
		errors.Is(err, attendance.ErrNegativeBreak),
		errors.Is(err, attendance.ErrInvalidStatus):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrNoOpenRecord),
		errors.Is(err, attendance.ErrAlreadyClosed),
		errors.Is(err, attendance.ErrInvalidState):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrTransientStore):
		ServiceUnavailable(w, "Attendance store temporarily unavailable, please retry")

	// Report errors
	case errors.Is(err, report.ErrReportGenerationFailed):
		slog.Error("report generation failed", "error", err)
		InternalServerError(w, "Failed to generate report")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

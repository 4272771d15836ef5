package attendance

import "errors"

// Attendance domain errors
var (
	// Conflict errors
	ErrDuplicateRecord = errors.New("attendance already marked for this date")
	ErrNoOpenRecord    = errors.New("no open attendance record for this date")
	ErrInvalidState    = errors.New("invalid attendance state transition")
	ErrAlreadyClosed   = errors.New("attendance record is already closed")

	// Ordering errors
	ErrLogoutBeforeLogin   = errors.New("logout time cannot be earlier than login time")
	ErrBreakBeforeLogin    = errors.New("break cannot start before login time")
	ErrBreakEndBeforeStart = errors.New("break end cannot be earlier than break start")
	ErrBreakOverlap        = errors.New("break cannot start before the previous break ended")
	ErrNegativeBreak       = errors.New("break duration cannot be negative")
	ErrInvalidStatus       = errors.New("invalid attendance status")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrUnauthorized       = errors.New("unauthorized to access this attendance record")
	ErrTransientStore     = errors.New("attendance store temporarily unavailable")
	ErrScanFailed         = errors.New("failed to scan open attendance records")
)

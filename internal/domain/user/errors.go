package user

import "errors"

var (
	ErrInvalidToken            = errors.New("invalid or expired token")
	ErrManagerAccessRequired   = errors.New("manager access required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrActingForOtherEmployee  = errors.New("cannot record attendance for another employee")
	ErrInvalidCronSecret       = errors.New("invalid cron secret")
)

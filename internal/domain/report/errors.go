package report

import "errors"

// ErrReportGenerationFailed wraps store failures while reading the window.
var ErrReportGenerationFailed = errors.New("failed to build cron logs report")

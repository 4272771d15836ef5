package http

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

type CronHandler interface {
	RunAutoLogout(w http.ResponseWriter, r *http.Request)
}

type cronHandlerImpl struct {
	autoLogoutService attendance.AutoLogoutService
}

func NewCronHandler(autoLogoutService attendance.AutoLogoutService) CronHandler {
	return &cronHandlerImpl{
		autoLogoutService: autoLogoutService,
	}
}

// RunAutoLogout handles POST /cron/run-auto-logout. The summary is returned
// for every outcome: 200 when all records closed, 207 when some failed and
// 500 when nothing could be closed.
func (h *cronHandlerImpl) RunAutoLogout(w http.ResponseWriter, r *http.Request) {
	summary, err := h.autoLogoutService.RunAutoLogout(r.Context())
	if err != nil && !errors.Is(err, attendance.ErrScanFailed) {
		response.HandleError(w, err)
		return
	}

	switch summary.Status {
	case attendance.RunSuccess:
		response.WithStatus(w, http.StatusOK, "Auto-logout completed", summary)
	case attendance.RunPartialSuccess:
		response.WithStatus(w, http.StatusMultiStatus, "Auto-logout completed with failures", summary)
	default:
		response.WithStatus(w, http.StatusInternalServerError, "Auto-logout failed", summary)
	}
}

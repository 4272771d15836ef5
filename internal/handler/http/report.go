package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

type ReportHandler interface {
	// Auto-logout activity over a trailing window
	GetCronLogs(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GetCronLogs handles GET /reports/cron-logs
func (h *reportHandlerImpl) GetCronLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req report.CronLogsRequest

	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			response.BadRequest(w, "invalid days parameter", nil)
			return
		}
		req.Days = days
	}

	if topStr := r.URL.Query().Get("top"); topStr != "" {
		top, err := strconv.Atoi(topStr)
		if err != nil {
			response.BadRequest(w, "invalid top parameter", nil)
			return
		}
		req.TopN = top
	}

	result, err := h.reportService.GenerateCronLogs(ctx, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/go-chi/chi/v5"
)

const sseKeepalive = 30 * time.Second

type AttendanceHandler interface {
	MarkLogin(w http.ResponseWriter, r *http.Request)
	MarkLeave(w http.ResponseWriter, r *http.Request)
	MarkAbsent(w http.ResponseWriter, r *http.Request)
	MarkLogout(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	GetTodayStatus(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	jwtService        jwt.Service
	hub               *sse.Hub
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, jwtService jwt.Service, hub *sse.Hub) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		jwtService:        jwtService,
		hub:               hub,
	}
}

// decodeFor decodes the body into req and checks the caller may act for the
// employee it names. An omitted employee_id defaults to the caller's.
func decodeFor(w http.ResponseWriter, r *http.Request, req interface{}, employeeID *string) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "Invalid request body", map[string]string{"body": err.Error()})
		return false
	}

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidToken)
		return false
	}
	if *employeeID == "" {
		*employeeID = claims.EmployeeID
	}
	if *employeeID != "" && !claims.CanActFor(*employeeID) {
		response.HandleError(w, user.ErrActingForOtherEmployee)
		return false
	}
	return true
}

func (h *attendanceHandlerImpl) mark(w http.ResponseWriter, r *http.Request, fn func(attendance.MarkRequest) (attendance.AttendanceResponse, error), message string) {
	var req attendance.MarkRequest
	if !decodeFor(w, r, &req, &req.EmployeeID) {
		return
	}

	result, err := fn(req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, message, result)
}

// MarkLogin implements AttendanceHandler.
func (h *attendanceHandlerImpl) MarkLogin(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, func(req attendance.MarkRequest) (attendance.AttendanceResponse, error) {
		return h.attendanceService.MarkLogin(r.Context(), req)
	}, "Login marked successfully")
}

// MarkLeave implements AttendanceHandler.
func (h *attendanceHandlerImpl) MarkLeave(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, func(req attendance.MarkRequest) (attendance.AttendanceResponse, error) {
		return h.attendanceService.MarkLeave(r.Context(), req)
	}, "Leave marked successfully")
}

// MarkAbsent implements AttendanceHandler.
func (h *attendanceHandlerImpl) MarkAbsent(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, func(req attendance.MarkRequest) (attendance.AttendanceResponse, error) {
		return h.attendanceService.MarkAbsent(r.Context(), req)
	}, "Absence marked successfully")
}

// MarkLogout implements AttendanceHandler.
func (h *attendanceHandlerImpl) MarkLogout(w http.ResponseWriter, r *http.Request) {
	var req attendance.LogoutRequest
	if !decodeFor(w, r, &req, &req.EmployeeID) {
		return
	}

	result, err := h.attendanceService.MarkLogout(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Logout marked successfully", result)
}

// StartBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	var req attendance.BreakRequest
	if !decodeFor(w, r, &req, &req.EmployeeID) {
		return
	}

	result, err := h.attendanceService.StartBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break started", result)
}

// EndBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	var req attendance.BreakRequest
	if !decodeFor(w, r, &req, &req.EmployeeID) {
		return
	}

	result, err := h.attendanceService.EndBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break ended", result)
}

func queryPtr(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{
		EmployeeID: queryPtr(r, "employee_id"),
		Department: queryPtr(r, "department"),
		Date:       queryPtr(r, "date"),
		StartDate:  queryPtr(r, "start_date"),
		EndDate:    queryPtr(r, "end_date"),
		Status:     queryPtr(r, "status"),
		Page:       queryInt(r, "page", 1),
		Limit:      queryInt(r, "limit", 20),
		SortBy:     r.URL.Query().Get("sort_by"),
		SortOrder:  r.URL.Query().Get("sort_order"),
	}

	results, err := h.attendanceService.ListAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	filter := attendance.MyAttendanceFilter{
		Date:      queryPtr(r, "date"),
		StartDate: queryPtr(r, "start_date"),
		EndDate:   queryPtr(r, "end_date"),
		Status:    queryPtr(r, "status"),
		Page:      queryInt(r, "page", 1),
		Limit:     queryInt(r, "limit", 20),
	}

	results, err := h.attendanceService.GetMyAttendance(r.Context(), claims.EmployeeID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// GetTodayStatus implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetTodayStatus(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	employeeID := claims.EmployeeID
	if requested := r.URL.Query().Get("employee_id"); requested != "" {
		if !claims.CanActFor(requested) {
			response.HandleError(w, user.ErrActingForOtherEmployee)
			return
		}
		employeeID = requested
	}
	if employeeID == "" {
		response.HandleError(w, attendance.ErrUnauthorized)
		return
	}

	result, err := h.attendanceService.GetTodayStatus(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements AttendanceHandler.
func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req attendance.UpdateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", map[string]string{"body": err.Error()})
		return
	}
	req.ID = id

	result, err := h.attendanceService.UpdateAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance updated successfully", result)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.attendanceService.GetAttendance(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	claims, _ := middleware.ClaimsFromContext(r.Context())
	if !claims.CanActFor(result.EmployeeID) {
		response.HandleError(w, attendance.ErrAttendanceNotFound)
		return
	}

	response.Success(w, result)
}

type sseTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// GetSSEToken generates a short-lived token for SSE connections
func (h *attendanceHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.EmployeeID == "" {
		response.HandleError(w, attendance.ErrUnauthorized)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(claims)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, sseTokenResponse{Token: token, ExpiresIn: expiresIn})
}

// Stream pushes the caller's attendance events over SSE.
func (h *attendanceHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter (SSE doesn't support custom headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil || claims.EmployeeID == "" {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(claims.EmployeeID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"employee_id\":%q}\n\n", claims.EmployeeID)
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

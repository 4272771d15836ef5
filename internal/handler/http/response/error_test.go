package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{
			name:     "validation",
			err:      validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}},
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{name: "duplicate", err: attendance.ErrDuplicateRecord, wantCode: http.StatusBadRequest, wantErr: "BAD_REQUEST"},
		{name: "logout before login", err: attendance.ErrLogoutBeforeLogin, wantCode: http.StatusBadRequest, wantErr: "BAD_REQUEST"},
		{name: "employee missing", err: fmt.Errorf("lookup: %w", employee.ErrEmployeeNotFound), wantCode: http.StatusNotFound, wantErr: "NOT_FOUND"},
		{name: "attendance missing", err: attendance.ErrAttendanceNotFound, wantCode: http.StatusNotFound, wantErr: "NOT_FOUND"},
		{
			name:     "transition",
			err:      &attendance.TransitionError{Action: attendance.ActionEndBreak, State: attendance.StateWorking},
			wantCode: http.StatusConflict,
			wantErr:  "CONFLICT",
		},
		{name: "no open record", err: attendance.ErrNoOpenRecord, wantCode: http.StatusConflict, wantErr: "CONFLICT"},
		{name: "transient", err: attendance.ErrTransientStore, wantCode: http.StatusServiceUnavailable, wantErr: "SERVICE_UNAVAILABLE"},
		{name: "manager required", err: user.ErrManagerAccessRequired, wantCode: http.StatusForbidden, wantErr: "FORBIDDEN"},
		{name: "bad token", err: user.ErrInvalidToken, wantCode: http.StatusUnauthorized, wantErr: "UNAUTHORIZED"},
		{name: "report", err: fmt.Errorf("%w: timeout", report.ErrReportGenerationFailed), wantCode: http.StatusInternalServerError, wantErr: "INTERNAL_SERVER_ERROR"},
		{name: "unknown", err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantErr: "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)

			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantErr, body.Error.Code)
		})
	}
}

func TestWithStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WithStatus(rec, http.StatusMultiStatus, "partial", map[string]int{"failed": 1})

	assert.Equal(t, http.StatusMultiStatus, rec.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "partial", body.Message)
}

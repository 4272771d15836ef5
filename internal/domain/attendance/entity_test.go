package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 15, hour, minute, 0, 0, ist)
}

func newOpen() Attendance {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	return NewPresent("emp-1", date, "Friday", at(9, 0), &Location{Latitude: 12.97, Longitude: 77.59})
}

func TestNewPresent(t *testing.T) {
	a := newOpen()

	assert.Equal(t, StatusPresent, a.Status)
	assert.Equal(t, StateWorking, a.State())
	assert.True(t, a.IsOpen())
	assert.False(t, a.OnBreak())
	assert.NoError(t, a.Validate())
}

func TestNewMarker(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	leave, err := NewMarker(StatusOnLeave, "emp-1", date, "Friday", at(9, 0), nil)
	require.NoError(t, err)
	require.NotNil(t, leave.LogoutTime)
	assert.True(t, leave.LogoutTime.Equal(leave.LoginTime))
	assert.False(t, leave.IsOpen())
	assert.Equal(t, StateLeave, leave.State())
	assert.NoError(t, leave.Validate())

	absent, err := NewMarker(StatusAbsent, "emp-1", date, "Friday", at(9, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, StateAbsent, absent.State())

	_, err = NewMarker(StatusPresent, "emp-1", date, "Friday", at(9, 0), nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestBreakCycle(t *testing.T) {
	a := newOpen()

	require.NoError(t, a.StartBreak(at(13, 0)))
	assert.Equal(t, StatusOnBreak, a.Status)
	assert.True(t, a.OnBreak())

	err := a.StartBreak(at(13, 5))
	assert.ErrorIs(t, err, ErrInvalidState)
	var terr *TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, StateOnBreak, terr.State)

	require.NoError(t, a.EndBreak(at(13, 30)))
	assert.Equal(t, StatusActive, a.Status)
	assert.Equal(t, 30*time.Minute, a.BreakDuration)

	assert.ErrorIs(t, a.EndBreak(at(13, 40)), ErrInvalidState)

	require.NoError(t, a.StartBreak(at(16, 0)))
	require.NoError(t, a.EndBreak(at(16, 15)))
	assert.Equal(t, 45*time.Minute, a.BreakDuration)
	assert.NoError(t, a.Validate())
}

func TestBreakOrdering(t *testing.T) {
	a := newOpen()

	assert.ErrorIs(t, a.StartBreak(at(8, 0)), ErrBreakBeforeLogin)

	require.NoError(t, a.StartBreak(at(13, 0)))
	assert.ErrorIs(t, a.EndBreak(at(12, 0)), ErrBreakEndBeforeStart)
	assert.True(t, a.OnBreak())

	require.NoError(t, a.EndBreak(at(13, 30)))
	assert.ErrorIs(t, a.StartBreak(at(13, 10)), ErrBreakOverlap)
}

func TestLogout(t *testing.T) {
	a := newOpen()
	end := &Location{Latitude: 1, Longitude: 2}

	assert.ErrorIs(t, a.Logout(at(8, 0), end, 8*time.Hour), ErrLogoutBeforeLogin)
	assert.True(t, a.IsOpen())

	require.NoError(t, a.Logout(at(17, 30), end, 8*time.Hour))
	assert.Equal(t, StateClosed, a.State())
	assert.Equal(t, StatusInactive, a.Status)
	assert.True(t, a.WorkingHoursCompleted)
	assert.Equal(t, end, a.EndLocation)

	err := a.Logout(at(18, 0), end, 8*time.Hour)
	assert.ErrorIs(t, err, ErrNoOpenRecord)
	assert.Contains(t, err.Error(), "closed")
}

func TestLogout_ClosesOpenBreak(t *testing.T) {
	a := newOpen()
	require.NoError(t, a.StartBreak(at(16, 0)))

	require.NoError(t, a.Logout(at(17, 0), nil, 8*time.Hour))

	require.NotNil(t, a.BreakEndTime)
	assert.True(t, a.BreakEndTime.Equal(at(17, 0)))
	assert.Equal(t, time.Hour, a.BreakDuration)
	assert.False(t, a.WorkingHoursCompleted)
	assert.NoError(t, a.Validate())
}

func TestForceLogout(t *testing.T) {
	a := newOpen()
	require.NoError(t, a.StartBreak(at(13, 0)))
	require.NoError(t, a.EndBreak(at(13, 30)))

	require.NoError(t, a.ForceLogout(at(23, 59), 8*time.Hour))

	require.NotNil(t, a.LogoutTime)
	assert.True(t, a.LogoutTime.Equal(at(23, 59)))
	assert.Equal(t, 30*time.Minute, a.BreakDuration)
	assert.True(t, a.WorkingHoursCompleted)
	assert.Equal(t, a.StartLocation, a.EndLocation)
	assert.Equal(t, StatusInactive, a.Status)

	assert.ErrorIs(t, a.ForceLogout(at(23, 59), 8*time.Hour), ErrAlreadyClosed)
}

func TestForceLogout_OpenBreakAndLateLogin(t *testing.T) {
	a := newOpen()
	require.NoError(t, a.StartBreak(at(22, 0)))

	require.NoError(t, a.ForceLogout(at(23, 59), 8*time.Hour))
	assert.Equal(t, 119*time.Minute, a.BreakDuration)
	assert.NoError(t, a.Validate())

	late := NewPresent("emp-2", a.DateOfWorking, "Friday", at(23, 59).Add(30*time.Second), nil)
	require.NoError(t, late.ForceLogout(at(23, 59), 8*time.Hour))
	assert.True(t, late.LogoutTime.Equal(late.LoginTime))
	assert.False(t, late.WorkingHoursCompleted)
}

func TestValidate(t *testing.T) {
	before := at(8, 0)
	breakStart := at(13, 0)
	breakEnd := at(12, 0)

	tests := []struct {
		name    string
		mutate  func(a *Attendance)
		wantErr error
	}{
		{"logout before login", func(a *Attendance) { a.LogoutTime = &before }, ErrLogoutBeforeLogin},
		{"break end before start", func(a *Attendance) { a.BreakStartTime = &breakStart; a.BreakEndTime = &breakEnd }, ErrBreakEndBeforeStart},
		{"break end without start", func(a *Attendance) { a.BreakEndTime = &breakEnd }, ErrBreakEndBeforeStart},
		{"negative break", func(a *Attendance) { a.BreakDuration = -time.Minute }, ErrNegativeBreak},
		{"unknown status", func(a *Attendance) { a.Status = "late" }, ErrInvalidStatus},
		{"marker without logout", func(a *Attendance) { a.Status = StatusAbsent }, ErrInvalidStatus},
		{"inactive without logout", func(a *Attendance) { a.Status = StatusInactive }, ErrInvalidStatus},
		{"on_break without a break", func(a *Attendance) { a.Status = StatusOnBreak }, ErrInvalidStatus},
		{"on_break with a closed break", func(a *Attendance) {
			start, end := at(12, 0), at(12, 30)
			a.BreakStartTime, a.BreakEndTime = &start, &end
			a.Status = StatusOnBreak
		}, ErrInvalidStatus},
		{"active with an open break", func(a *Attendance) { a.BreakStartTime = &breakStart; a.Status = StatusActive }, ErrInvalidStatus},
		{"present with an open break", func(a *Attendance) { a.BreakStartTime = &breakStart }, ErrInvalidStatus},
		{"closed with an open break", func(a *Attendance) {
			logout := at(18, 0)
			a.BreakStartTime = &breakStart
			a.LogoutTime = &logout
			a.Status = StatusInactive
		}, ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newOpen()
			tt.mutate(&a)
			assert.ErrorIs(t, a.Validate(), tt.wantErr)
		})
	}
}

func TestAutoLogoutSummary_ResolveStatus(t *testing.T) {
	tests := []struct {
		name       string
		processed  int
		failed     int
		scanFailed bool
		want       RunStatus
	}{
		{"nothing to do", 0, 0, false, RunSuccess},
		{"all processed", 3, 0, false, RunSuccess},
		{"some failed", 2, 1, false, RunPartialSuccess},
		{"all failed", 0, 2, false, RunFailure},
		{"scan failed", 0, 0, true, RunFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := AutoLogoutSummary{RecordsProcessed: tt.processed, RecordsFailed: tt.failed}
			assert.Equal(t, tt.want, s.ResolveStatus(tt.scanFailed))
			assert.Equal(t, tt.want, s.Status)
		})
	}
}

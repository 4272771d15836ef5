package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/retry"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workday"
)

var errWriteTimeout = errors.New("write timeout")

// fakeStore is an in-memory attendance repository.
type fakeStore struct {
	mu      sync.Mutex
	seq     int
	records map[string]attendance.Attendance

	findErr     error
	findResult  []attendance.Attendance // returned verbatim when set
	updateFails map[string]int          // attendance id -> remaining failures
	updateCalls map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records:     make(map[string]attendance.Attendance),
		updateFails: make(map[string]int),
		updateCalls: make(map[string]int),
	}
}

func (f *fakeStore) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.records {
		if existing.EmployeeID == a.EmployeeID && existing.DateOfWorking.Equal(a.DateOfWorking) {
			return attendance.Attendance{}, attendance.ErrDuplicateRecord
		}
	}

	f.seq++
	a.ID = fmt.Sprintf("att-%d", f.seq)
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	f.records[a.ID] = a
	return a, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (f *fakeStore) GetByIDForUpdate(ctx context.Context, id string) (attendance.Attendance, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeStore) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.records {
		if a.EmployeeID == employeeID && a.DateOfWorking.Equal(date) {
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (f *fakeStore) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	return f.GetByEmployeeAndDate(ctx, employeeID, date)
}

func (f *fakeStore) Update(ctx context.Context, a attendance.Attendance) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updateCalls[a.ID]++
	if f.updateFails[a.ID] > 0 {
		f.updateFails[a.ID]--
		return fmt.Errorf("%w: %v", attendance.ErrTransientStore, errWriteTimeout)
	}
	if _, ok := f.records[a.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	a.EmployeeName = nil
	a.EmployeeDepartment = nil
	a.UpdatedAt = time.Now()
	f.records[a.ID] = a
	return nil
}

func (f *fakeStore) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []attendance.Attendance
	for _, a := range f.records {
		if filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(a.Status) != *filter.Status {
			continue
		}
		if filter.Date != nil && a.DateOfWorking.Format(workday.DateLayout) != *filter.Date {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateOfWorking.After(out[j].DateOfWorking) })

	total := int64(len(out))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(out) {
		return []attendance.Attendance{}, total, nil
	}
	end := min(start+filter.Limit, len(out))
	return out[start:end], total, nil
}

func (f *fakeStore) FindOpenByDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.findResult != nil {
		return f.findResult, nil
	}

	var out []attendance.Attendance
	for _, a := range f.records {
		if !a.DateOfWorking.Equal(date) || !a.IsOpen() {
			continue
		}
		for _, s := range attendance.OpenStatuses {
			if a.Status == s {
				out = append(out, a)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) all() []attendance.Attendance {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]attendance.Attendance, 0, len(f.records))
	for _, a := range f.records {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// fakeEmployees is an in-memory employee directory.
type fakeEmployees struct {
	mu        sync.Mutex
	employees map[string]employee.Employee
	statusErr error
}

func newFakeEmployees(emps ...employee.Employee) *fakeEmployees {
	f := &fakeEmployees{employees: make(map[string]employee.Employee)}
	for _, e := range emps {
		f.employees[e.ID] = e
	}
	return f
}

func (f *fakeEmployees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployees) UpdateStatus(ctx context.Context, id string, status employee.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.statusErr != nil {
		return f.statusErr
	}
	e, ok := f.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.Status = status
	f.employees[id] = e
	return nil
}

func (f *fakeEmployees) status(id string) employee.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.employees[id].Status
}

// fakeTx runs fn directly; the fakes apply writes immediately.
type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// recordingSleep collects the backoff waits instead of sleeping.
type recordingSleep struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *recordingSleep) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits = append(r.waits, d)
	return nil
}

type fixture struct {
	store     *fakeStore
	employees *fakeEmployees
	resolver  *workday.Resolver
	locks     *keylock.Locker
	hub       *sse.Hub
	sleep     *recordingSleep
	service   attendance.AttendanceService
	job       attendance.AutoLogoutService
}

var ist = time.FixedZone("IST", 5*3600+30*60)

// today is the civil date the fixture clock sits on.
var today = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 15, hour, minute, 0, 0, ist)
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func newFixture(t *testing.T, emps ...employee.Employee) *fixture {
	t.Helper()

	loc, err := workday.FixedZone("IST", "+05:30")
	require.NoError(t, err)
	now := at(23, 59)
	resolver := workday.NewResolver(loc, 23, 59, workday.ClockFunc(func() time.Time { return now }))

	if len(emps) == 0 {
		emps = []employee.Employee{
			{ID: "emp-1", FullName: "Asha Rao", Status: employee.StatusInactive},
			{ID: "emp-2", FullName: "Bala Iyer", Status: employee.StatusInactive},
		}
	}

	f := &fixture{
		store:     newFakeStore(),
		employees: newFakeEmployees(emps...),
		resolver:  resolver,
		locks:     keylock.New(),
		hub:       sse.NewHub(),
		sleep:     &recordingSleep{},
	}

	f.service = NewAttendanceService(fakeTx{}, f.store, f.employees, resolver, f.locks, nil, f.hub)

	policy := retry.DefaultPolicy()
	policy.Sleep = f.sleep.Sleep
	f.job = NewAutoLogoutService(fakeTx{}, f.store, f.employees, resolver, f.locks,
		AutoLogoutConfig{Policy: policy, Workers: 4}, nil, f.hub)

	return f
}

func loginRequest(employeeID string, login time.Time) attendance.MarkRequest {
	return attendance.MarkRequest{
		EmployeeID: employeeID,
		Date:       "2024-03-15",
		DayOfWeek:  "Friday",
		LoginTime:  login,
		StartLat:   floatPtr(12.9716),
		StartLng:   floatPtr(77.5946),
	}
}

func breakRequest(employeeID string, t time.Time) attendance.BreakRequest {
	return attendance.BreakRequest{EmployeeID: employeeID, Date: "2024-03-15", Time: t}
}

func logoutRequest(employeeID string, t time.Time) attendance.LogoutRequest {
	return attendance.LogoutRequest{
		EmployeeID: employeeID,
		Date:       "2024-03-15",
		LogoutTime: t,
		EndLat:     floatPtr(12.98),
		EndLng:     floatPtr(77.60),
	}
}

package validator

import (
	"testing"
	"time"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "login_time", Message: "invalid"},
		{Field: "start_lat", Message: "required"},
	}
	got := errs.Error()
	want := "login_time: invalid; start_lat: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "login_time", Message: "invalid"},
		{Field: "start_lat", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"login_time": "invalid", "start_lat": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestIsValidDateTime(t *testing.T) {
	got, ok := IsValidDateTime("2024-03-15T09:00:00+05:30")
	if !ok {
		t.Fatalf("IsValidDateTime(offset) = false, want true")
	}
	if want := time.Date(2024, 3, 15, 3, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("IsValidDateTime(offset) = %v, want %v", got, want)
	}
	if _, ok := IsValidDateTime("2024-03-15T03:30:00.123456Z"); !ok {
		t.Errorf("IsValidDateTime(nano) = false, want true")
	}
	for _, s := range []string{"2024-03-15 09:00:00", "09:00", ""} {
		if _, ok := IsValidDateTime(s); ok {
			t.Errorf("IsValidDateTime(%q) = true, want false", s)
		}
	}
}

type structFixture struct {
	EmployeeID string   `json:"employee_id" validate:"required"`
	Date       string   `json:"date" validate:"required,datetime=2006-01-02"`
	Lat        *float64 `json:"start_lat" validate:"required,latitude"`
	Status     string   `json:"status" validate:"omitempty,oneof=present absent"`
}

func TestStruct_UsesJSONFieldNames(t *testing.T) {
	bad := 123.0
	err := Struct(&structFixture{Date: "15-03-2024", Lat: &bad, Status: "late"})
	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("Struct() error type = %T, want ValidationErrors", err)
	}
	got := errs.ToMap()
	for _, field := range []string{"employee_id", "date", "start_lat", "status"} {
		if _, ok := got[field]; !ok {
			t.Errorf("Struct() missing error for %q in %v", field, got)
		}
	}
	if got["employee_id"] != "employee_id is required" {
		t.Errorf("employee_id message = %q", got["employee_id"])
	}
}

func TestStruct_Valid(t *testing.T) {
	lat := -6.2
	if err := Struct(&structFixture{EmployeeID: "e1", Date: "2024-03-15", Lat: &lat}); err != nil {
		t.Errorf("Struct(valid) = %v, want nil", err)
	}
}

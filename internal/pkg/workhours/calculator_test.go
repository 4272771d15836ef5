package workhours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestParseExpected(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"08:00", 8 * time.Hour, true},
		{"07:30", 7*time.Hour + 30*time.Minute, true},
		{"9:15", 9*time.Hour + 15*time.Minute, true},
		{"00:00", 0, false},
		{"", 0, false},
		{"eight", 0, false},
		{"08:60", 0, false},
		{"08", 0, false},
		{"-1:00", 0, false},
		{"25:00", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseExpected(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestExpectedOrDefault(t *testing.T) {
	d, fellBack := ExpectedOrDefault(nil)
	assert.Equal(t, DefaultExpected, d)
	assert.False(t, fellBack)

	d, fellBack = ExpectedOrDefault(strPtr("06:00"))
	assert.Equal(t, 6*time.Hour, d)
	assert.False(t, fellBack)

	// "00:00" is the unset sentinel: default, not zero.
	d, fellBack = ExpectedOrDefault(strPtr("00:00"))
	assert.Equal(t, DefaultExpected, d)
	assert.True(t, fellBack)

	d, fellBack = ExpectedOrDefault(strPtr("garbage"))
	assert.Equal(t, DefaultExpected, d)
	assert.True(t, fellBack)
}

func TestCompleted(t *testing.T) {
	login := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		logout   time.Time
		brk      time.Duration
		expected time.Duration
		want     bool
	}{
		{"exactly expected", login.Add(8 * time.Hour), 0, 8 * time.Hour, true},
		{"one minute short", login.Add(8*time.Hour - time.Minute), 0, 8 * time.Hour, false},
		{"break pushes under", login.Add(8 * time.Hour), 30 * time.Minute, 8 * time.Hour, false},
		{"day-end close with break", time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC), 30 * time.Minute, 8 * time.Hour, true},
		{"zero elapsed", login, 0, 8 * time.Hour, false},
		{"clock skew", login.Add(-time.Hour), 0, 8 * time.Hour, false},
		{"zero expected but no work", login, 0, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Completed(login, c.logout, c.brk, c.expected))
		})
	}
}

func TestCompletedIsDeterministic(t *testing.T) {
	login := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	logout := login.Add(8*time.Hour + 10*time.Minute)

	first := Completed(login, logout, 5*time.Minute, DefaultExpected)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Completed(login, logout, 5*time.Minute, DefaultExpected))
	}
}

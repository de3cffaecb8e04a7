package utils

import (
	"time"

	"github.com/dutycal/dutycal/pkg/schedule"
)

type Clock interface {
	Now() time.Time
}

// SystemClock reports the wall clock in Location (local time when nil).
type SystemClock struct {
	Location *time.Location
}

func (s SystemClock) Now() time.Time {
	if s.Location == nil {
		return time.Now()
	}
	return time.Now().In(s.Location)
}

type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}

// Today is the calendar day of the clock's current instant.
func Today(c Clock) schedule.Date {
	return schedule.DateOf(c.Now())
}

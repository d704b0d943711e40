package utils

import (
	"time"
	_ "time/tzdata"

	"github.com/dailydollars/dailydollars/pkg/ledger"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
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

// Today returns the calendar date the clock shows in the given IANA timezone. An empty or unknown
// timezone falls back to UTC.
func Today(clock Clock, timezone string) ledger.Date {
	return ledger.DateOf(clock.Now().In(Location(timezone)))
}

func Location(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

package ledger

import "fmt"

type DayStatus string

const (
	NoSpend DayStatus = "no_spend"
	Under   DayStatus = "under"
	Over    DayStatus = "over"
)

// DayRecord is the terminal, immutable result of closing one calendar day.
type DayRecord struct {
	Date                  Date
	PeriodId              string
	AllowanceCents        int64
	PostedSpendCents      int64
	SlushBeforeCents      int64
	SlushAfterCents       int64
	SpendableTodayCents   int64
	BlueStreakContinues   bool
	OrangeStreakContinues bool
	// BlueStreakCount and OrangeStreakCount are the counters after this day was applied.
	BlueStreakCount   int
	OrangeStreakCount int
	Status            DayStatus
}

// SlushChangeCents is the day's contribution to slush (positive when under budget).
func (r DayRecord) SlushChangeCents() int64 {
	return r.SlushAfterCents - r.SlushBeforeCents
}

type SlushState struct {
	PeriodId     string
	BalanceCents int64
}

// StreakState is scoped to the account and survives period boundaries.
type StreakState struct {
	BlueCurrentCount   int
	OrangeCurrentCount int
}

// Ledger is the complete mutable accounting state of one account. It is a value: operations return
// the next state and never modify the receiver, so a failed operation leaves the caller's copy intact.
type Ledger struct {
	// LastClosed is the most recently closed day, zero when nothing was closed yet.
	LastClosed Date
	Slush      SlushState
	Streaks    StreakState
}

// EnterPeriod binds slush to a newly opened period. Streaks and the close sequence carry over.
func (l Ledger) EnterPeriod(periodId string, openingSlushCents int64) Ledger {
	l.Slush = SlushState{PeriodId: periodId, BalanceCents: openingSlushCents}
	return l
}

// NextDayToClose returns the only date CloseDay accepts next, or zero when any date is accepted.
func (l Ledger) NextDayToClose() Date {
	if l.LastClosed.IsZero() {
		return Date{}
	}
	return l.LastClosed.AddDays(1)
}

// CloseDay applies one day's allowance and posted spend to the ledger. It must be called exactly once
// per date, in date order, without gaps. Carryover from earlier days lives only in the slush balance.
func (l Ledger) CloseDay(date Date, allowanceCents int64, postedSpendCents int64) (DayRecord, Ledger, error) {
	if date.IsZero() {
		return DayRecord{}, l, fmt.Errorf("%w: date is required", ErrValidation)
	}
	if allowanceCents < 0 {
		return DayRecord{}, l, fmt.Errorf("%w: negative allowance %d", ErrValidation, allowanceCents)
	}
	if postedSpendCents < 0 {
		return DayRecord{}, l, fmt.Errorf("%w: negative posted spend %d", ErrValidation, postedSpendCents)
	}
	if !l.LastClosed.IsZero() {
		switch {
		case date.Equal(l.LastClosed):
			return DayRecord{}, l, fmt.Errorf("%w: %s", ErrDuplicateClose, date)
		case date.Before(l.LastClosed):
			return DayRecord{}, l, fmt.Errorf("%w: %s is before last closed day %s", ErrOutOfOrderClose, date, l.LastClosed)
		case date.After(l.NextDayToClose()):
			return DayRecord{}, l, fmt.Errorf("%w: %s must be closed before %s", ErrOutOfOrderClose, l.NextDayToClose(), date)
		}
	}

	delta := allowanceCents - postedSpendCents
	slushBefore := l.Slush.BalanceCents
	slushAfter := slushBefore + delta

	blue := postedSpendCents == 0
	orange := slushAfter >= 0

	next := l
	next.LastClosed = date
	next.Slush.BalanceCents = slushAfter
	next.Streaks = advanceStreaks(l.Streaks, blue, orange)

	record := DayRecord{
		Date:                  date,
		PeriodId:              l.Slush.PeriodId,
		AllowanceCents:        allowanceCents,
		PostedSpendCents:      postedSpendCents,
		SlushBeforeCents:      slushBefore,
		SlushAfterCents:       slushAfter,
		SpendableTodayCents:   delta,
		BlueStreakContinues:   blue,
		OrangeStreakContinues: orange,
		BlueStreakCount:       next.Streaks.BlueCurrentCount,
		OrangeStreakCount:     next.Streaks.OrangeCurrentCount,
		Status:                dayStatus(allowanceCents, postedSpendCents),
	}
	return record, next, nil
}

func advanceStreaks(s StreakState, blue bool, orange bool) StreakState {
	if blue {
		s.BlueCurrentCount++
	} else {
		s.BlueCurrentCount = 0
	}
	if orange {
		s.OrangeCurrentCount++
	} else {
		s.OrangeCurrentCount = 0
	}
	return s
}

func dayStatus(allowanceCents int64, postedSpendCents int64) DayStatus {
	switch {
	case postedSpendCents == 0:
		return NoSpend
	case postedSpendCents <= allowanceCents:
		return Under
	default:
		return Over
	}
}

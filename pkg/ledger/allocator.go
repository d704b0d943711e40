package ledger

import "fmt"

// maxRemainderCents is the largest drift the last day may absorb.
const maxRemainderCents = 100

// DailyAllowanceSchedule holds the allowance for each day index of a period.
type DailyAllowanceSchedule []int64

func (s DailyAllowanceSchedule) Total() int64 {
	var total int64
	for _, a := range s {
		total += a
	}
	return total
}

// For returns the allowance of the given day index.
func (s DailyAllowanceSchedule) For(dayIndex int) (int64, error) {
	if dayIndex < 0 || dayIndex >= len(s) {
		return 0, fmt.Errorf("%w: day index %d outside schedule of %d days", ErrValidation, dayIndex, len(s))
	}
	return s[dayIndex], nil
}

// Allocate spreads a period's discretionary total over numDays whole-dollar allowances. The remainder
// goes entirely to the last day, so the schedule always sums to the total exactly. A remainder larger
// than one dollar means the day count does not fit the total and is rejected.
func Allocate(discretionaryTotalCents int64, numDays int) (DailyAllowanceSchedule, error) {
	if numDays <= 0 {
		return nil, fmt.Errorf("%w: period must have at least one day, got %d", ErrValidation, numDays)
	}
	if discretionaryTotalCents < 0 {
		return nil, fmt.Errorf("%w: negative discretionary total %d", ErrValidation, discretionaryTotalCents)
	}

	days := int64(numDays)
	base := discretionaryTotalCents / (days * 100) * 100
	remainder := discretionaryTotalCents - base*days
	if remainder > maxRemainderCents || remainder < -maxRemainderCents {
		return nil, fmt.Errorf("%w: remainder of %d cents over %d days exceeds %d cents",
			ErrInvalidPeriodLength, remainder, numDays, maxRemainderCents)
	}

	schedule := make(DailyAllowanceSchedule, numDays)
	for i := range schedule {
		schedule[i] = base
	}
	schedule[numDays-1] += remainder
	return schedule, nil
}

// SplitAllocatable divides total into the largest part Allocate accepts for numDays and the
// whole-dollar reserve that does not fit. The reserve is meant to seed the period's opening slush,
// so no money is lost and no day drifts by more than a dollar.
func SplitAllocatable(totalCents int64, numDays int) (allocatable int64, reserve int64) {
	if numDays <= 0 || totalCents < 0 {
		return totalCents, 0
	}
	days := int64(numDays)
	base := totalCents / (days * 100) * 100
	remainder := totalCents - base*days
	kept := min(remainder, maxRemainderCents)
	return base*days + kept, remainder - kept
}

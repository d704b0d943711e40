package period

import (
	"fmt"

	"github.com/dailydollars/dailydollars/internal/rest"
	"github.com/dailydollars/dailydollars/pkg/ledger"
)

var ErrPeriodNotFound = fmt.Errorf("period %w", rest.ErrNotFound)

// Period is an opened pay period as the service stores it.
//
// DiscretionaryTotalCents of the embedded period is the part that the allowance schedule spreads over the
// days. What does not divide into whole dollars beyond the last day's share is RoundingReserveCents; it
// was added to OpeningSlushCents so no money goes missing.
type Period struct {
	ledger.Period
	RoundingReserveCents int64
	// TotalRevised is set once the discretionary total was corrected by hand.
	TotalRevised bool
}

// CarriedSlushCents is the opening slush that came from the previous period.
func (p Period) CarriedSlushCents() int64 {
	return p.OpeningSlushCents - p.RoundingReserveCents
}

// allocate splits totalCents over the period's days and updates the totals to match the schedule.
func (p Period) allocate(totalCents int64) (Period, ledger.DailyAllowanceSchedule, error) {
	carried := p.CarriedSlushCents()
	allocatable, reserve := ledger.SplitAllocatable(totalCents, p.NumDays())
	schedule, err := ledger.Allocate(allocatable, p.NumDays())
	if err != nil {
		return Period{}, nil, err
	}
	p.DiscretionaryTotalCents = allocatable
	p.RoundingReserveCents = reserve
	p.OpeningSlushCents = carried + reserve
	return p, schedule, nil
}

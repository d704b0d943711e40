package ledger

import (
	"fmt"
	"time"
)

type Cadence string

const (
	Weekly   Cadence = "weekly"
	Biweekly Cadence = "biweekly"
	Monthly  Cadence = "monthly"
)

func (c Cadence) Valid() bool {
	switch c {
	case Weekly, Biweekly, Monthly:
		return true
	}
	return false
}

// regularPaychecksPerBiweeklyPeriod is the paycheck count that carries the monthly bills in a
// biweekly pay-month. A third paycheck in the same window carries no bill share.
const regularPaychecksPerBiweeklyPeriod = 2

type Period struct {
	Id        string
	Cadence   Cadence
	StartDate Date
	EndDate   Date
	PayAnchor Date
	// Paydays are the anchor-aligned paydays inside [StartDate, EndDate].
	Paydays                 []Date
	DiscretionaryTotalCents int64
	ExtraPaycheckDetected   bool
	OpeningSlushCents       int64
	// SentToSavingsCents is informational: the engine reports the split, it never moves money.
	SentToSavingsCents  int64
	DiscardedSlushCents int64
}

func (p Period) NumDays() int {
	return p.StartDate.DaysUntil(p.EndDate) + 1
}

func (p Period) Contains(date Date) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// DayIndex returns the zero based position of date in the period.
func (p Period) DayIndex(date Date) (int, error) {
	if !p.Contains(date) {
		return 0, fmt.Errorf("%w: %s is outside period %s..%s", ErrValidation, date, p.StartDate, p.EndDate)
	}
	return p.StartDate.DaysUntil(date), nil
}

type CarryKind string

const (
	KeepAll          CarryKind = "keep"
	SendAllToSavings CarryKind = "savings"
	Split            CarryKind = "split"
)

// CarryChoice is the user's decision about positive slush left at the end of a period.
// The zero value means no choice was made and keeps everything.
type CarryChoice struct {
	Kind      CarryKind
	KeepCents int64
}

type CarryResult struct {
	OpeningSlushCents   int64
	SentToSavingsCents  int64
	DiscardedSlushCents int64
}

// ResolveCarry splits the closing period's slush into the next period's opening slush and the part
// reported as sent to savings. Negative slush is never carried: the next period starts from zero.
func ResolveCarry(priorSlushCents int64, choice CarryChoice) (CarryResult, error) {
	if priorSlushCents < 0 {
		return CarryResult{DiscardedSlushCents: priorSlushCents}, nil
	}
	switch choice.Kind {
	case "", KeepAll:
		return CarryResult{OpeningSlushCents: priorSlushCents}, nil
	case SendAllToSavings:
		return CarryResult{SentToSavingsCents: priorSlushCents}, nil
	case Split:
		if choice.KeepCents < 0 || choice.KeepCents > priorSlushCents {
			return CarryResult{}, fmt.Errorf("%w: keep amount %d must be between 0 and %d",
				ErrValidation, choice.KeepCents, priorSlushCents)
		}
		return CarryResult{
			OpeningSlushCents:  choice.KeepCents,
			SentToSavingsCents: priorSlushCents - choice.KeepCents,
		}, nil
	default:
		return CarryResult{}, fmt.Errorf("%w: unknown carry choice %q", ErrValidation, choice.Kind)
	}
}

type OpenPeriodRequest struct {
	Id        string
	Cadence   Cadence
	PayAnchor Date
	// On is any date the new period must contain, usually the day after the previous period ended.
	// Zero means the pay anchor itself.
	On Date
	// PaycheckAmounts are assigned to the period's paydays in order. When there are fewer amounts
	// than paydays, the last amount repeats.
	PaycheckAmounts        []int64
	MonthlyBillsTotalCents int64
	PriorSlushCents        int64
	CarryChoice            CarryChoice
}

// OpenPeriod resolves the period containing req.On: its date range and paydays, its discretionary
// total and the slush it opens with. Streaks are not part of a period and are never touched here.
func OpenPeriod(req OpenPeriodRequest) (Period, error) {
	if !req.Cadence.Valid() {
		return Period{}, fmt.Errorf("%w: unknown cadence %q", ErrValidation, req.Cadence)
	}
	if req.PayAnchor.IsZero() {
		return Period{}, fmt.Errorf("%w: pay anchor is required", ErrValidation)
	}
	if len(req.PaycheckAmounts) == 0 {
		return Period{}, fmt.Errorf("%w: no paycheck amounts", ErrInsufficientData)
	}
	for _, amount := range req.PaycheckAmounts {
		if amount < 0 {
			return Period{}, fmt.Errorf("%w: negative paycheck amount %d", ErrValidation, amount)
		}
	}
	if req.MonthlyBillsTotalCents < 0 {
		return Period{}, fmt.Errorf("%w: negative monthly bills total %d", ErrValidation, req.MonthlyBillsTotalCents)
	}
	on := req.On
	if on.IsZero() {
		on = req.PayAnchor
	}

	start, end, paydays := periodRange(req.Cadence, req.PayAnchor, on)
	if len(req.PaycheckAmounts) > len(paydays) {
		return Period{}, fmt.Errorf("%w: %d paycheck amounts for %d paydays",
			ErrValidation, len(req.PaycheckAmounts), len(paydays))
	}

	var income int64
	for i := range paydays {
		income += req.PaycheckAmounts[min(i, len(req.PaycheckAmounts)-1)]
	}
	discretionary := income - billsAllocatedToPeriod(req.Cadence, req.MonthlyBillsTotalCents, len(paydays))
	if discretionary < 0 {
		return Period{}, fmt.Errorf("%w: bills exceed paychecks by %d cents", ErrValidation, -discretionary)
	}

	carry, err := ResolveCarry(req.PriorSlushCents, req.CarryChoice)
	if err != nil {
		return Period{}, err
	}

	return Period{
		Id:                      req.Id,
		Cadence:                 req.Cadence,
		StartDate:               start,
		EndDate:                 end,
		PayAnchor:               req.PayAnchor,
		Paydays:                 paydays,
		DiscretionaryTotalCents: discretionary,
		ExtraPaycheckDetected:   req.Cadence == Biweekly && len(paydays) > regularPaychecksPerBiweeklyPeriod,
		OpeningSlushCents:       carry.OpeningSlushCents,
		SentToSavingsCents:      carry.SentToSavingsCents,
		DiscardedSlushCents:     carry.DiscardedSlushCents,
	}, nil
}

func billsAllocatedToPeriod(cadence Cadence, monthlyBillsCents int64, paydays int) int64 {
	switch cadence {
	case Weekly:
		return monthlyBillsCents * 12 / 52
	case Biweekly:
		return monthlyBillsCents / 2 * int64(min(paydays, regularPaychecksPerBiweeklyPeriod))
	default:
		return monthlyBillsCents
	}
}

// periodRange returns the inclusive date range of the period containing on and its paydays.
func periodRange(cadence Cadence, anchor Date, on Date) (Date, Date, []Date) {
	switch cadence {
	case Weekly:
		start := paydayOnOrBefore(anchor, 7, on)
		return start, start.AddDays(6), []Date{start}
	case Biweekly:
		payday := paydayOnOrBefore(anchor, 14, on)
		start := firstPaydayOfMonth(anchor, payday.Year, payday.Month)
		nextMonth := NewDate(payday.Year, payday.Month+1, 1)
		end := firstPaydayOfMonth(anchor, nextMonth.Year, nextMonth.Month).AddDays(-1)
		var paydays []Date
		for d := start; !d.After(end); d = d.AddDays(14) {
			paydays = append(paydays, d)
		}
		return start, end, paydays
	default:
		start := monthlyPayday(anchor, on.Year, on.Month)
		if start.After(on) {
			prev := NewDate(on.Year, on.Month-1, 1)
			start = monthlyPayday(anchor, prev.Year, prev.Month)
		}
		following := NewDate(start.Year, start.Month+1, 1)
		end := monthlyPayday(anchor, following.Year, following.Month).AddDays(-1)
		return start, end, []Date{start}
	}
}

// paydayOnOrBefore returns the latest date on or before on that is a whole number of steps from anchor.
func paydayOnOrBefore(anchor Date, step int, on Date) Date {
	diff := anchor.DaysUntil(on)
	k := diff / step
	if diff%step < 0 {
		k--
	}
	return anchor.AddDays(k * step)
}

func firstPaydayOfMonth(anchor Date, year int, month time.Month) Date {
	first := NewDate(year, month, 1)
	payday := paydayOnOrBefore(anchor, 14, first)
	if payday.Before(first) {
		payday = payday.AddDays(14)
	}
	return payday
}

// monthlyPayday is the anchor's day of month in the given month, clamped to the month's last day.
func monthlyPayday(anchor Date, year int, month time.Month) Date {
	return Date{Year: year, Month: month, Day: min(anchor.Day, daysInMonth(year, month))}
}

package daily

import (
	"context"
	"errors"
	"fmt"

	"github.com/dailydollars/dailydollars/internal/event_bus"
	"github.com/dailydollars/dailydollars/internal/utils"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/dailydollars/dailydollars/pkg/period"
	"github.com/dailydollars/dailydollars/pkg/rules"
	"github.com/dailydollars/dailydollars/pkg/transaction"
	"github.com/dailydollars/dailydollars/pkg/user"
	log "github.com/sirupsen/logrus"
)

// Today is the live view of a day that may still be open.
type Today struct {
	Date     ledger.Date
	PeriodId string
	Closed   bool
	// SpendableTodayCents is allowance minus posted spend. AvailableCents adds the slush on top.
	AllowanceCents      int64
	PostedSpendCents    int64
	SpendableTodayCents int64
	AvailableCents      int64
	SlushCents          int64
	BlueStreakCount     int
	OrangeStreakCount   int
	// RemainingPeriodCents is the discretionary total minus everything posted in the period so far.
	RemainingPeriodCents int64
	DaysLeft             int
}

type Service interface {
	// CloseDay closes date for the current user. The record and the new ledger state are stored atomically.
	CloseDay(ctx context.Context, date ledger.Date) (ledger.DayRecord, error)
	State(ctx context.Context) (ledger.Ledger, error)
	LastClosed(ctx context.Context) (ledger.Date, error)
	Records(ctx context.Context, periodId string) ([]ledger.DayRecord, error)
	// Today returns the live view of date, or of today in the user's timezone when date is zero.
	Today(ctx context.Context, date ledger.Date) (Today, error)
	// CatchUp closes every open day up to and including through, opening follow-up periods with the
	// default carry choice.
	CatchUp(ctx context.Context, through ledger.Date) ([]ledger.DayRecord, error)
}

type ServiceImpl struct {
	repo         Repository
	periods      period.Service
	transactions transaction.Service
	rules        rules.Service
	classifier   ledger.Classifier
	eventBus     *event_bus.EventBus
	clock        utils.Clock
}

func NewService(
	repo Repository,
	periods period.Service,
	transactions transaction.Service,
	rulesService rules.Service,
	classifier ledger.Classifier,
	eventBus *event_bus.EventBus,
	clock utils.Clock,
) *ServiceImpl {
	return &ServiceImpl{
		repo:         repo,
		periods:      periods,
		transactions: transactions,
		rules:        rulesService,
		classifier:   classifier,
		eventBus:     eventBus,
		clock:        clock,
	}
}

func (s *ServiceImpl) CloseDay(ctx context.Context, date ledger.Date) (ledger.DayRecord, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return ledger.DayRecord{}, fmt.Errorf("failed to get current user: %w", err)
	}
	p, allowance, err := s.allowance(ctx, date)
	if err != nil {
		return ledger.DayRecord{}, err
	}
	posted, err := s.postedSpend(ctx, date)
	if err != nil {
		return ledger.DayRecord{}, err
	}

	var record ledger.DayRecord
	var next ledger.Ledger
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		state, err := repo.LockState(ctx, userId)
		if err != nil {
			return err
		}
		if state.Slush.PeriodId != p.Id {
			state = state.EnterPeriod(p.Id, p.OpeningSlushCents)
		}
		record, next, err = state.CloseDay(date, allowance, posted)
		if err != nil {
			return err
		}
		if err := repo.StoreRecord(ctx, userId, record); err != nil {
			return err
		}
		return repo.SaveState(ctx, userId, next)
	})
	if err != nil {
		return ledger.DayRecord{}, err
	}
	log.Debugf("closed %s for user %d: allowance %d, spend %d, slush %d", date, userId, allowance, posted,
		record.SlushAfterCents)

	if s.eventBus != nil {
		err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.DayClosedType, event_bus.DayClosed{
			UserId:            userId,
			PeriodId:          record.PeriodId,
			Date:              record.Date,
			AllowanceCents:    record.AllowanceCents,
			PostedSpendCents:  record.PostedSpendCents,
			SlushAfterCents:   record.SlushAfterCents,
			BlueStreakCount:   record.BlueStreakCount,
			OrangeStreakCount: record.OrangeStreakCount,
			Status:            record.Status,
		}))
		if err != nil {
			log.Warnf("day %s closed but subscribers failed: %v", date, err)
		}
	}
	return record, nil
}

// allowance finds the period containing date and the allowance the schedule gives that day.
func (s *ServiceImpl) allowance(ctx context.Context, date ledger.Date) (period.Period, int64, error) {
	p, err := s.periods.ForDate(ctx, date)
	if errors.Is(err, period.ErrPeriodNotFound) {
		return period.Period{}, 0, fmt.Errorf("%w: no period contains %s", ledger.ErrInsufficientData, date)
	}
	if err != nil {
		return period.Period{}, 0, err
	}
	schedule, err := s.periods.Schedule(ctx, p.Id)
	if err != nil {
		return period.Period{}, 0, err
	}
	dayIndex, err := p.DayIndex(date)
	if err != nil {
		return period.Period{}, 0, err
	}
	allowance, err := schedule.For(dayIndex)
	if err != nil {
		return period.Period{}, 0, err
	}
	return p, allowance, nil
}

func (s *ServiceImpl) postedSpend(ctx context.Context, date ledger.Date) (int64, error) {
	txs, overrides, err := s.transactions.ForDay(ctx, date)
	if err != nil {
		return 0, err
	}
	ignore, bills, err := s.rules.Rulesets(ctx)
	if err != nil {
		return 0, err
	}
	return ledger.AggregateDay(date, s.classifier.ClassifyAll(txs, ignore, bills, overrides)), nil
}

func (s *ServiceImpl) State(ctx context.Context) (ledger.Ledger, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.State(ctx, userId)
}

func (s *ServiceImpl) LastClosed(ctx context.Context) (ledger.Date, error) {
	state, err := s.State(ctx)
	return state.LastClosed, err
}

func (s *ServiceImpl) Records(ctx context.Context, periodId string) ([]ledger.DayRecord, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if _, err := s.periods.Get(ctx, periodId); err != nil {
		return nil, err
	}
	return s.repo.Records(ctx, userId, periodId)
}

func (s *ServiceImpl) Today(ctx context.Context, date ledger.Date) (Today, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Today{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if date.IsZero() {
		date = utils.Today(s.clock, currentUser.Settings.Timezone)
	}
	p, allowance, err := s.allowance(ctx, date)
	if err != nil {
		return Today{}, err
	}
	state, err := s.repo.State(ctx, currentUser.Id)
	if err != nil {
		return Today{}, err
	}
	records, err := s.repo.Records(ctx, currentUser.Id, p.Id)
	if err != nil {
		return Today{}, err
	}

	view := Today{
		Date:              date,
		PeriodId:          p.Id,
		AllowanceCents:    allowance,
		SlushCents:        p.OpeningSlushCents,
		BlueStreakCount:   state.Streaks.BlueCurrentCount,
		OrangeStreakCount: state.Streaks.OrangeCurrentCount,
		DaysLeft:          date.DaysUntil(p.EndDate) + 1,
	}
	if state.Slush.PeriodId == p.Id {
		view.SlushCents = state.Slush.BalanceCents
	}

	var postedInPeriod int64
	for _, record := range records {
		postedInPeriod += record.PostedSpendCents
		if record.Date.Equal(date) {
			view.Closed = true
			view.PostedSpendCents = record.PostedSpendCents
			view.SlushCents = record.SlushBeforeCents
		}
	}
	if !view.Closed {
		view.PostedSpendCents, err = s.postedSpend(ctx, date)
		if err != nil {
			return Today{}, err
		}
		postedInPeriod += view.PostedSpendCents
	}
	view.SpendableTodayCents = view.AllowanceCents - view.PostedSpendCents
	view.AvailableCents = view.SlushCents + view.SpendableTodayCents
	view.RemainingPeriodCents = p.DiscretionaryTotalCents - postedInPeriod
	return view, nil
}

func (s *ServiceImpl) CatchUp(ctx context.Context, through ledger.Date) ([]ledger.DayRecord, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	state, err := s.repo.State(ctx, userId)
	if err != nil {
		return nil, err
	}
	from := state.NextDayToClose()
	if from.IsZero() {
		latest, err := s.periods.Latest(ctx)
		if errors.Is(err, period.ErrPeriodNotFound) {
			return nil, fmt.Errorf("%w: no period opened yet", ledger.ErrInsufficientData)
		}
		if err != nil {
			return nil, err
		}
		from = latest.StartDate
	}

	var closed []ledger.DayRecord
	for day := from; !day.After(through); day = day.AddDays(1) {
		if err := s.ensurePeriod(ctx, day); err != nil {
			return closed, err
		}
		record, err := s.CloseDay(ctx, day)
		if err != nil {
			return closed, err
		}
		closed = append(closed, record)
	}
	if len(closed) > 0 {
		log.Infof("caught up %d days for user %d through %s", len(closed), userId, through)
	}
	return closed, nil
}

// ensurePeriod opens the period following the latest one when no period contains day.
func (s *ServiceImpl) ensurePeriod(ctx context.Context, day ledger.Date) error {
	_, err := s.periods.ForDate(ctx, day)
	if !errors.Is(err, period.ErrPeriodNotFound) {
		return err
	}
	opened, err := s.periods.OpenNext(ctx, ledger.CarryChoice{})
	if err != nil {
		return err
	}
	if !opened.Contains(day) {
		return fmt.Errorf("%w: next period %s..%s does not contain %s", ledger.ErrInsufficientData,
			opened.StartDate, opened.EndDate, day)
	}
	return nil
}

package period

import (
	"context"
	"errors"
	"fmt"

	"github.com/dailydollars/dailydollars/internal/event_bus"
	"github.com/dailydollars/dailydollars/internal/utils"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/dailydollars/dailydollars/pkg/rules"
	"github.com/dailydollars/dailydollars/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrPeriodAlreadyOpened = fmt.Errorf("%w: a period is already open", ledger.ErrValidation)
var ErrPeriodNotClosed = fmt.Errorf("%w: previous period has unclosed days", ledger.ErrValidation)

// LedgerFunc returns the current user's ledger state.
type LedgerFunc func(ctx context.Context) (ledger.Ledger, error)

type Service interface {
	// OpenFirst opens the period containing on, or today when on is zero. It fails once any period exists.
	OpenFirst(ctx context.Context, on ledger.Date) (Period, error)
	// OpenNext opens the period following the latest one. Every day of the latest period must be closed.
	OpenNext(ctx context.Context, carry ledger.CarryChoice) (Period, error)
	Current(ctx context.Context) (Period, error)
	ForDate(ctx context.Context, date ledger.Date) (Period, error)
	Get(ctx context.Context, id string) (Period, error)
	Latest(ctx context.Context) (Period, error)
	Schedule(ctx context.Context, id string) (ledger.DailyAllowanceSchedule, error)
	// ReviseDiscretionaryTotal replaces the discretionary total and reallocates the schedule. It is allowed
	// once per period and only before any of its days was closed.
	ReviseDiscretionaryTotal(ctx context.Context, id string, totalCents int64) (Period, error)
}

type ServiceImpl struct {
	repo     Repository
	rules    rules.Service
	ledger   LedgerFunc
	eventBus *event_bus.EventBus
	clock    utils.Clock
}

func NewService(repo Repository, rulesService rules.Service, ledgerState LedgerFunc, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		rules:    rulesService,
		ledger:   ledgerState,
		eventBus: eventBus,
		clock:    clock,
	}
}

func (s *ServiceImpl) OpenFirst(ctx context.Context, on ledger.Date) (Period, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Period{}, fmt.Errorf("failed to get current user: %w", err)
	}
	_, err = s.repo.Latest(ctx, currentUser.Id)
	if err == nil {
		return Period{}, ErrPeriodAlreadyOpened
	}
	if !errors.Is(err, ErrPeriodNotFound) {
		return Period{}, err
	}
	if on.IsZero() {
		on = utils.Today(s.clock, currentUser.Settings.Timezone)
	}
	return s.open(ctx, currentUser, on, 0, ledger.CarryChoice{}, ledger.Date{})
}

func (s *ServiceImpl) OpenNext(ctx context.Context, carry ledger.CarryChoice) (Period, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Period{}, fmt.Errorf("failed to get current user: %w", err)
	}
	latest, err := s.repo.Latest(ctx, currentUser.Id)
	if err != nil {
		return Period{}, err
	}
	state, err := s.ledger(ctx)
	if err != nil {
		return Period{}, err
	}
	if state.LastClosed.Before(latest.EndDate) {
		return Period{}, fmt.Errorf("%w: period ends %s, last closed day is %s", ErrPeriodNotClosed, latest.EndDate, state.LastClosed)
	}
	var priorSlush int64
	if state.Slush.PeriodId == latest.Id {
		priorSlush = state.Slush.BalanceCents
	}
	return s.open(ctx, currentUser, latest.EndDate.AddDays(1), priorSlush, carry, latest.EndDate.AddDays(1))
}

func (s *ServiceImpl) open(ctx context.Context, u user.User, on ledger.Date, priorSlush int64, carry ledger.CarryChoice, expectedStart ledger.Date) (Period, error) {
	if !u.Settings.HasPayProfile() {
		return Period{}, fmt.Errorf("%w: user %d has no pay profile", ledger.ErrInsufficientData, u.Id)
	}
	bills, err := s.rules.MonthlyBillsTotal(ctx)
	if err != nil {
		return Period{}, err
	}
	opened, err := ledger.OpenPeriod(ledger.OpenPeriodRequest{
		Id:                     uuid.NewString(),
		Cadence:                u.Settings.PayCadence,
		PayAnchor:              u.Settings.PayAnchor,
		On:                     on,
		PaycheckAmounts:        []int64{u.Settings.PaycheckCents},
		MonthlyBillsTotalCents: bills,
		PriorSlushCents:        priorSlush,
		CarryChoice:            carry,
	})
	if err != nil {
		return Period{}, err
	}
	if !expectedStart.IsZero() && !opened.StartDate.Equal(expectedStart) {
		return Period{}, fmt.Errorf("%w: pay profile yields a period starting %s, expected %s",
			ledger.ErrValidation, opened.StartDate, expectedStart)
	}

	p, schedule, err := Period{Period: opened}.allocate(opened.DiscretionaryTotalCents)
	if err != nil {
		return Period{}, err
	}
	if err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		return repo.Store(ctx, u.Id, p, schedule)
	}); err != nil {
		return Period{}, err
	}
	log.Infof("opened %s period %s..%s for user %d with %d cents discretionary", p.Cadence, p.StartDate, p.EndDate,
		u.Id, p.DiscretionaryTotalCents)

	if s.eventBus != nil {
		err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.PeriodOpenedType, event_bus.PeriodOpened{
			UserId:                  u.Id,
			PeriodId:                p.Id,
			StartDate:               p.StartDate,
			EndDate:                 p.EndDate,
			DiscretionaryTotalCents: p.DiscretionaryTotalCents,
			OpeningSlushCents:       p.OpeningSlushCents,
			ExtraPaycheckDetected:   p.ExtraPaycheckDetected,
		}))
		if err != nil {
			log.Warnf("period %s opened but subscribers failed: %v", p.Id, err)
		}
	}
	return p, nil
}

func (s *ServiceImpl) Current(ctx context.Context) (Period, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Period{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ForDate(ctx, currentUser.Id, utils.Today(s.clock, currentUser.Settings.Timezone))
}

func (s *ServiceImpl) ForDate(ctx context.Context, date ledger.Date) (Period, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Period{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ForDate(ctx, userId, date)
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Period, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Period{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) Latest(ctx context.Context) (Period, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Period{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Latest(ctx, userId)
}

func (s *ServiceImpl) Schedule(ctx context.Context, id string) (ledger.DailyAllowanceSchedule, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Schedule(ctx, id)
}

func (s *ServiceImpl) ReviseDiscretionaryTotal(ctx context.Context, id string, totalCents int64) (Period, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Period{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if totalCents < 0 {
		return Period{}, fmt.Errorf("%w: negative discretionary total %d", ledger.ErrValidation, totalCents)
	}
	state, err := s.ledger(ctx)
	if err != nil {
		return Period{}, err
	}

	var revised Period
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		p, err := repo.Get(ctx, userId, id)
		if err != nil {
			return err
		}
		if p.TotalRevised {
			return fmt.Errorf("%w: discretionary total of period %s was already revised", ledger.ErrValidation, id)
		}
		if !state.LastClosed.IsZero() && !state.LastClosed.Before(p.StartDate) {
			return fmt.Errorf("%w: period %s already has closed days", ledger.ErrValidation, id)
		}
		p, schedule, err := p.allocate(totalCents)
		if err != nil {
			return err
		}
		p.TotalRevised = true
		if err := repo.UpdateTotals(ctx, userId, p, schedule); err != nil {
			return err
		}
		revised = p
		return nil
	})
	if err != nil {
		return Period{}, err
	}
	log.Infof("discretionary total of period %s revised to %d cents", id, revised.DiscretionaryTotalCents)
	return revised, nil
}

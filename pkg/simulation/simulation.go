package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/dailydollars/dailydollars/internal/event_bus"
	"github.com/dailydollars/dailydollars/internal/utils"
	"github.com/dailydollars/dailydollars/pkg/daily"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/dailydollars/dailydollars/pkg/period"
	"github.com/dailydollars/dailydollars/pkg/rules"
	"github.com/dailydollars/dailydollars/pkg/transaction"
	"github.com/dailydollars/dailydollars/pkg/user"
	log "github.com/sirupsen/logrus"
)

// Result is everything the engine produced while replaying a scenario.
type Result struct {
	Periods []period.Period
	Days    []ledger.DayRecord
	Final   ledger.Ledger
}

// Run replays the scenario against in-memory repositories: it opens the first period on the start
// date, closes every day through the end date and opens each following period with the scenario's
// carry choice.
func Run(ctx context.Context, s Scenario) (Result, error) {
	p, err := s.plan()
	if err != nil {
		return Result{}, err
	}
	ctx = user.WithUser(ctx, p.user)

	bus := event_bus.NewEventBus()
	clock := &utils.MockClock{FixedNow: p.through.AddDays(1).Time().Add(12 * time.Hour)}

	var dailyService *daily.ServiceImpl
	rulesService := rules.NewService(rules.NewRepositoryStub(), bus)
	txService := transaction.NewService(transaction.NewRepositoryStub(), rulesService, p.classifier,
		func(ctx context.Context) (ledger.Date, error) {
			return dailyService.LastClosed(ctx)
		})
	periodService := period.NewService(period.NewRepositoryStub(), rulesService,
		func(ctx context.Context) (ledger.Ledger, error) {
			return dailyService.State(ctx)
		}, bus, clock)
	dailyService = daily.NewService(daily.NewRepositoryStub(), periodService, txService, rulesService,
		p.classifier, bus, clock)

	for _, rule := range p.rules {
		if _, err := rulesService.Create(ctx, rule); err != nil {
			return Result{}, fmt.Errorf("rule %q: %w", rule.Pattern, err)
		}
	}
	stored, err := txService.Ingest(ctx, p.transactions)
	if err != nil {
		return Result{}, err
	}
	for _, t := range stored {
		if tag, ok := p.overrides[t.ExternalId]; ok {
			if _, err := txService.Retag(ctx, t.Id, tag); err != nil {
				return Result{}, fmt.Errorf("transaction %s: %w", t.ExternalId, err)
			}
		}
	}

	var result Result
	current, err := periodService.OpenFirst(ctx, p.start)
	if err != nil {
		return Result{}, err
	}
	result.Periods = append(result.Periods, current)

	for day := current.StartDate; !day.After(p.through); day = day.AddDays(1) {
		if !current.Contains(day) {
			current, err = periodService.OpenNext(ctx, p.carry)
			if err != nil {
				return result, err
			}
			result.Periods = append(result.Periods, current)
		}
		record, err := dailyService.CloseDay(ctx, day)
		if err != nil {
			return result, fmt.Errorf("close %s: %w", day, err)
		}
		result.Days = append(result.Days, record)
	}

	result.Final, err = dailyService.State(ctx)
	if err != nil {
		return result, err
	}
	log.Debugf("simulated %d days over %d periods", len(result.Days), len(result.Periods))
	return result, nil
}

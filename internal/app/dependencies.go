package app

import (
	"context"

	"github.com/dailydollars/dailydollars/internal/config"
	"github.com/dailydollars/dailydollars/internal/event_bus"
	"github.com/dailydollars/dailydollars/internal/utils"
	"github.com/dailydollars/dailydollars/pkg/daily"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/dailydollars/dailydollars/pkg/period"
	"github.com/dailydollars/dailydollars/pkg/rules"
	"github.com/dailydollars/dailydollars/pkg/transaction"
	"github.com/dailydollars/dailydollars/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	UserService user.Service
	UserHandler *user.Handler

	RulesService *rules.ServiceImpl
	RulesHandler *rules.Handler

	TransactionService *transaction.ServiceImpl
	TransactionHandler *transaction.Handler

	PeriodService *period.ServiceImpl
	PeriodHandler *period.Handler

	DailyService *daily.ServiceImpl
	DailyHandler *daily.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}
	classifier := ledger.NewClassifier(cfg.Ledger.RecurringCategories)

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.RulesService = rules.NewService(rules.NewRepository(db), deps.EventBus)
	deps.RulesHandler = rules.NewHandler(deps.RulesService)

	// transactions and periods read the ledger state owned by the daily service, built last
	deps.TransactionService = transaction.NewService(transaction.NewRepository(db), deps.RulesService, classifier,
		func(ctx context.Context) (ledger.Date, error) {
			return deps.DailyService.LastClosed(ctx)
		})
	deps.TransactionService.SubscribeToRuleChanges(deps.EventBus)
	deps.TransactionHandler = transaction.NewHandler(deps.TransactionService)

	deps.PeriodService = period.NewService(period.NewRepository(db), deps.RulesService,
		func(ctx context.Context) (ledger.Ledger, error) {
			return deps.DailyService.State(ctx)
		}, deps.EventBus, deps.Clock)
	deps.PeriodHandler = period.NewHandler(deps.PeriodService)

	deps.DailyService = daily.NewService(daily.NewRepository(db), deps.PeriodService, deps.TransactionService,
		deps.RulesService, classifier, deps.EventBus, deps.Clock)
	deps.DailyHandler = daily.NewHandler(deps.DailyService, deps.Clock)

	return deps
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dailydollars/dailydollars/internal/config"
	"github.com/dailydollars/dailydollars/internal/database"
	"github.com/dailydollars/dailydollars/internal/messaging"
	"github.com/dailydollars/dailydollars/internal/scheduler"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg       config.Application
	db        *pgxpool.Pool
	router    *mux.Router
	srv       *http.Server
	scheduler *scheduler.Scheduler
	broker    *messaging.Client
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context, cfg config.Application) (*Application, error) {
	// DB + migrations
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(cfg.Database); err != nil {
		db.Close()
		return nil, err
	}

	r := mux.NewRouter()

	// Build dependencies (services, handlers...)
	deps := BuildDependencies(db, cfg)

	// Middleware chain
	SetupMiddleware(r, deps)

	// Routes
	RegisterRoutes(r, deps)

	application := &Application{cfg: cfg, db: db, router: r}

	if cfg.Messaging.Enabled {
		client, err := messaging.NewClient(cfg.Messaging.Url, cfg.Messaging.Exchange)
		if err != nil {
			log.Warnf("message broker unavailable, ledger events will not be forwarded: %v", err)
		} else {
			messaging.NewForwarder(client).Subscribe(deps.EventBus)
			application.broker = client
		}
	}

	if cfg.Scheduler.Enabled {
		s := scheduler.NewScheduler(ctx, deps.UserService, deps.DailyService, deps.Clock)
		if err := s.Register(cfg.Scheduler.Cron); err != nil {
			application.close()
			return nil, err
		}
		application.scheduler = s
	}

	application.srv = &http.Server{
		Handler:      r,
		Addr:         cfg.Http.Addr,
		WriteTimeout: cfg.Http.WriteTimeout,
		ReadTimeout:  cfg.Http.ReadTimeout,
		IdleTimeout:  cfg.Http.IdleTimeout,
	}

	return application, nil
}

// Run starts the HTTP server and the scheduler and blocks until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if a.scheduler != nil {
		a.scheduler.Start()
		defer a.scheduler.Stop()
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *Application) close() {
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			log.Warnf("failed to close message broker connection: %v", err)
		}
	}
	a.db.Close()
}

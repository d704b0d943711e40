package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/dailydollars/dailydollars/internal/utils"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/dailydollars/dailydollars/pkg/user"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type DayCloser interface {
	CatchUp(ctx context.Context, through ledger.Date) ([]ledger.DayRecord, error)
}

type UserLister interface {
	GetAllUsers(ctx context.Context) ([]user.User, error)
}

// Scheduler closes finished days for every user on a cron schedule. A day is finished once midnight
// passed in the user's timezone, so the job runs more often than daily.
type Scheduler struct {
	cron   *cron.Cron
	users  UserLister
	closer DayCloser
	clock  utils.Clock
	ctx    context.Context
}

func NewScheduler(ctx context.Context, users UserLister, closer DayCloser, clock utils.Clock) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		users:  users,
		closer: closer,
		clock:  clock,
		ctx:    ctx,
	}
}

func (s *Scheduler) Register(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.CloseFinishedDays(s.ctx); err != nil {
			log.Errorf("closing finished days: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("register day close task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("scheduler stopped")
}

// CloseFinishedDays catches every user with a pay profile up through yesterday in their timezone. Users
// without an opened period are skipped; a failure for one user does not stop the others.
func (s *Scheduler) CloseFinishedDays(ctx context.Context) error {
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	var errs []error
	for _, u := range users {
		if !u.Settings.HasPayProfile() {
			continue
		}
		yesterday := utils.Today(s.clock, u.Settings.Timezone).AddDays(-1)
		closed, err := s.closer.CatchUp(user.WithUser(ctx, u), yesterday)
		if errors.Is(err, ledger.ErrInsufficientData) {
			log.Debugf("user %d has nothing to close: %v", u.Id, err)
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", u.Id, err))
			continue
		}
		if len(closed) > 0 {
			log.Infof("closed %d days for user %d", len(closed), u.Id)
		}
	}
	return errors.Join(errs...)
}

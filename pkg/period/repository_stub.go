package period

import (
	"context"
	"slices"
	"sync"

	"github.com/dailydollars/dailydollars/pkg/ledger"
)

type RepositoryStub struct {
	mu        sync.RWMutex
	periods   map[string]Period
	userIds   map[string]int
	schedules map[string]ledger.DailyAllowanceSchedule
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		periods:   make(map[string]Period),
		userIds:   make(map[string]int),
		schedules: make(map[string]ledger.DailyAllowanceSchedule),
	}
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return fn(r)
}

func (r *RepositoryStub) Store(ctx context.Context, userId int, p Period, schedule ledger.DailyAllowanceSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.periods[p.Id] = p
	r.userIds[p.Id] = userId
	r.schedules[p.Id] = slices.Clone(schedule)
	return nil
}

func (r *RepositoryStub) UpdateTotals(ctx context.Context, userId int, p Period, schedule ledger.DailyAllowanceSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.periods[p.Id]; !ok || r.userIds[p.Id] != userId {
		return ErrPeriodNotFound
	}
	r.periods[p.Id] = p
	r.schedules[p.Id] = slices.Clone(schedule)
	return nil
}

func (r *RepositoryStub) Get(ctx context.Context, userId int, id string) (Period, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.periods[id]
	if !ok || r.userIds[id] != userId {
		return Period{}, ErrPeriodNotFound
	}
	return p, nil
}

func (r *RepositoryStub) Latest(ctx context.Context, userId int) (Period, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest Period
	found := false
	for id, p := range r.periods {
		if r.userIds[id] != userId {
			continue
		}
		if !found || p.StartDate.After(latest.StartDate) {
			latest = p
			found = true
		}
	}
	if !found {
		return Period{}, ErrPeriodNotFound
	}
	return latest, nil
}

func (r *RepositoryStub) ForDate(ctx context.Context, userId int, date ledger.Date) (Period, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, p := range r.periods {
		if r.userIds[id] == userId && p.Contains(date) {
			return p, nil
		}
	}
	return Period{}, ErrPeriodNotFound
}

func (r *RepositoryStub) Schedule(ctx context.Context, periodId string) (ledger.DailyAllowanceSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schedule, ok := r.schedules[periodId]
	if !ok {
		return nil, ErrPeriodNotFound
	}
	return slices.Clone(schedule), nil
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.periods = make(map[string]Period)
	r.userIds = make(map[string]int)
	r.schedules = make(map[string]ledger.DailyAllowanceSchedule)
}

package daily

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dailydollars/dailydollars/pkg/ledger"
)

type RepositoryStub struct {
	mu      sync.RWMutex
	states  map[int]ledger.Ledger
	records map[int]map[ledger.Date]ledger.DayRecord
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		states:  make(map[int]ledger.Ledger),
		records: make(map[int]map[ledger.Date]ledger.DayRecord),
	}
}

// WithTransaction stages writes and applies them only when fn succeeds.
func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	staged := &stagedRepository{parent: r, states: map[int]ledger.Ledger{}}
	if err := fn(staged); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for userId, state := range staged.states {
		r.states[userId] = state
	}
	for _, s := range staged.records {
		if r.records[s.userId] == nil {
			r.records[s.userId] = make(map[ledger.Date]ledger.DayRecord)
		}
		r.records[s.userId][s.record.Date] = s.record
	}
	return nil
}

func (r *RepositoryStub) State(ctx context.Context, userId int) (ledger.Ledger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[userId], nil
}

func (r *RepositoryStub) LockState(ctx context.Context, userId int) (ledger.Ledger, error) {
	return r.State(ctx, userId)
}

func (r *RepositoryStub) SaveState(ctx context.Context, userId int, state ledger.Ledger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[userId] = state
	return nil
}

func (r *RepositoryStub) StoreRecord(ctx context.Context, userId int, record ledger.DayRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[userId][record.Date]; exists {
		return fmt.Errorf("day record %s already stored", record.Date)
	}
	if r.records[userId] == nil {
		r.records[userId] = make(map[ledger.Date]ledger.DayRecord)
	}
	r.records[userId][record.Date] = record
	return nil
}

func (r *RepositoryStub) Record(ctx context.Context, userId int, date ledger.Date) (ledger.DayRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[userId][date]
	if !ok {
		return ledger.DayRecord{}, ErrRecordNotFound
	}
	return record, nil
}

func (r *RepositoryStub) Records(ctx context.Context, userId int, periodId string) ([]ledger.DayRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var records []ledger.DayRecord
	for _, record := range r.records[userId] {
		if record.PeriodId == periodId {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = make(map[int]ledger.Ledger)
	r.records = make(map[int]map[ledger.Date]ledger.DayRecord)
}

type stagedRecord struct {
	userId int
	record ledger.DayRecord
}

type stagedRepository struct {
	parent  *RepositoryStub
	states  map[int]ledger.Ledger
	records []stagedRecord
}

func (s *stagedRepository) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return fn(s)
}

func (s *stagedRepository) State(ctx context.Context, userId int) (ledger.Ledger, error) {
	if state, ok := s.states[userId]; ok {
		return state, nil
	}
	return s.parent.State(ctx, userId)
}

func (s *stagedRepository) LockState(ctx context.Context, userId int) (ledger.Ledger, error) {
	return s.State(ctx, userId)
}

func (s *stagedRepository) SaveState(ctx context.Context, userId int, state ledger.Ledger) error {
	s.states[userId] = state
	return nil
}

func (s *stagedRepository) StoreRecord(ctx context.Context, userId int, record ledger.DayRecord) error {
	if _, err := s.parent.Record(ctx, userId, record.Date); err == nil {
		return fmt.Errorf("day record %s already stored", record.Date)
	}
	s.records = append(s.records, stagedRecord{userId: userId, record: record})
	return nil
}

func (s *stagedRepository) Record(ctx context.Context, userId int, date ledger.Date) (ledger.DayRecord, error) {
	for _, staged := range s.records {
		if staged.userId == userId && staged.record.Date.Equal(date) {
			return staged.record, nil
		}
	}
	return s.parent.Record(ctx, userId, date)
}

func (s *stagedRepository) Records(ctx context.Context, userId int, periodId string) ([]ledger.DayRecord, error) {
	return s.parent.Records(ctx, userId, periodId)
}

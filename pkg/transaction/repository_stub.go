package transaction

import (
	"context"
	"sort"
	"sync"

	"github.com/dailydollars/dailydollars/pkg/ledger"
)

type RepositoryStub struct {
	mu           sync.RWMutex
	transactions map[string]Transaction
	userIds      map[string]int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		transactions: make(map[string]Transaction),
		userIds:      make(map[string]int),
	}
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return fn(r)
}

func (r *RepositoryStub) Upsert(ctx context.Context, userId int, tx Transaction) (Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx.TagOverride = ""
	for id, existing := range r.transactions {
		if r.userIds[id] == userId && existing.ExternalId == tx.ExternalId {
			tx.Id = id
			tx.TagOverride = existing.TagOverride
			break
		}
	}
	r.transactions[tx.Id] = tx
	r.userIds[tx.Id] = userId
	return tx, nil
}

func (r *RepositoryStub) Get(ctx context.Context, userId int, id string) (Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.transactions[id]
	if !ok || r.userIds[id] != userId {
		return Transaction{}, ErrTransactionNotFound
	}
	return tx, nil
}

func (r *RepositoryStub) List(ctx context.Context, userId int, from ledger.Date, to ledger.Date) ([]Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []Transaction
	for id, tx := range r.transactions {
		if r.userIds[id] != userId {
			continue
		}
		if !from.IsZero() && tx.Date.Before(from) {
			continue
		}
		if !to.IsZero() && tx.Date.After(to) {
			continue
		}
		result = append(result, tx)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ExternalId < result[j].ExternalId
	})
	return result, nil
}

func (r *RepositoryStub) UpdateTag(ctx context.Context, userId int, id string, tag ledger.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[id]
	if !ok || r.userIds[id] != userId {
		return ErrTransactionNotFound
	}
	tx.Tag = tag
	r.transactions[id] = tx
	return nil
}

func (r *RepositoryStub) SetOverride(ctx context.Context, userId int, id string, tag ledger.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[id]
	if !ok || r.userIds[id] != userId {
		return ErrTransactionNotFound
	}
	tx.TagOverride = tag
	r.transactions[id] = tx
	return nil
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = make(map[string]Transaction)
	r.userIds = make(map[string]int)
}

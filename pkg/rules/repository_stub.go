package rules

import (
	"context"
	"sort"
	"sync"
)

type RepositoryStub struct {
	mu      sync.RWMutex
	rules   map[int]Rule
	userIds map[int]int
	nextId  int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		rules:   make(map[int]Rule),
		userIds: make(map[int]int),
	}
}

func (r *RepositoryStub) List(ctx context.Context, userId int) ([]Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []Rule
	for id, rule := range r.rules {
		if r.userIds[id] == userId {
			result = append(result, rule)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

func (r *RepositoryStub) Get(ctx context.Context, userId int, id int) (Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[id]
	if !ok || r.userIds[id] != userId {
		return Rule{}, ErrRuleNotFound
	}
	return rule, nil
}

func (r *RepositoryStub) Create(ctx context.Context, userId int, rule Rule) (Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextId++
	rule.Id = r.nextId
	r.rules[rule.Id] = rule
	r.userIds[rule.Id] = userId
	return rule, nil
}

func (r *RepositoryStub) Update(ctx context.Context, userId int, rule Rule) (Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[rule.Id]; !ok || r.userIds[rule.Id] != userId {
		return Rule{}, ErrRuleNotFound
	}
	r.rules[rule.Id] = rule
	return rule, nil
}

func (r *RepositoryStub) Delete(ctx context.Context, userId int, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[id]; !ok || r.userIds[id] != userId {
		return ErrRuleNotFound
	}
	delete(r.rules, id)
	delete(r.userIds, id)
	return nil
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = make(map[int]Rule)
	r.userIds = make(map[int]int)
	r.nextId = 0
}

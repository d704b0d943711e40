package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/dailydollars/dailydollars/internal/event_bus"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/dailydollars/dailydollars/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	List(ctx context.Context) ([]Rule, error)
	Create(ctx context.Context, rule Rule) (Rule, error)
	Update(ctx context.Context, rule Rule) (Rule, error)
	Delete(ctx context.Context, id int) error
	// Rulesets returns the current user's rules in the form the classifier takes.
	Rulesets(ctx context.Context) ([]ledger.IgnoreRule, []ledger.BillRule, error)
	MonthlyBillsTotal(ctx context.Context) (int64, error)
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

func (s *ServiceImpl) List(ctx context.Context) ([]Rule, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.List(ctx, userId)
}

func (s *ServiceImpl) Create(ctx context.Context, rule Rule) (Rule, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Rule{}, fmt.Errorf("failed to get current user: %w", err)
	}
	rule = normalize(rule)
	if err := rule.validate(); err != nil {
		return Rule{}, err
	}
	created, err := s.repo.Create(ctx, userId, rule)
	if err != nil {
		return Rule{}, err
	}
	log.Debugf("created %s rule %d for user %d", created.Kind, created.Id, userId)
	return created, s.publishChanged(ctx, userId, created.Id)
}

func (s *ServiceImpl) Update(ctx context.Context, rule Rule) (Rule, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Rule{}, fmt.Errorf("failed to get current user: %w", err)
	}
	rule = normalize(rule)
	if err := rule.validate(); err != nil {
		return Rule{}, err
	}
	updated, err := s.repo.Update(ctx, userId, rule)
	if err != nil {
		return Rule{}, err
	}
	return updated, s.publishChanged(ctx, userId, updated.Id)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if err := s.repo.Delete(ctx, userId, id); err != nil {
		return err
	}
	return s.publishChanged(ctx, userId, id)
}

func (s *ServiceImpl) Rulesets(ctx context.Context) ([]ledger.IgnoreRule, []ledger.BillRule, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	var ignore []ledger.IgnoreRule
	var bills []ledger.BillRule
	for _, r := range all {
		switch r.Kind {
		case Ignore:
			ignore = append(ignore, ledger.IgnoreRule{Pattern: r.Pattern, Category: r.Category})
		case Bill:
			bills = append(bills, ledger.BillRule{Pattern: r.Pattern, Category: r.Category})
		}
	}
	return ignore, bills, nil
}

func (s *ServiceImpl) MonthlyBillsTotal(ctx context.Context) (int64, error) {
	all, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, r := range all {
		total += r.MonthlyCents()
	}
	return total, nil
}

func (s *ServiceImpl) publishChanged(ctx context.Context, userId int, ruleId int) error {
	if s.eventBus == nil {
		return nil
	}
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.RulesChangedType, event_bus.RulesChanged{
		UserId: userId,
		RuleId: ruleId,
	}))
	if err != nil {
		return fmt.Errorf("rule %d saved but subscribers failed: %w", ruleId, err)
	}
	return nil
}

func normalize(rule Rule) Rule {
	rule.Pattern = strings.TrimSpace(rule.Pattern)
	rule.Category = strings.TrimSpace(rule.Category)
	if rule.Frequency == "" {
		rule.Frequency = Monthly
	}
	return rule
}

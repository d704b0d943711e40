package transaction

import (
	"context"
	"fmt"
	"strings"

	"github.com/dailydollars/dailydollars/internal/event_bus"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/dailydollars/dailydollars/pkg/rules"
	"github.com/dailydollars/dailydollars/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// LastClosedFunc reports the current user's last closed day, zero when nothing was closed yet.
type LastClosedFunc func(ctx context.Context) (ledger.Date, error)

type Service interface {
	// Ingest stores transactions, classifying each with the current rules. Re-ingesting an external id
	// updates the stored row and keeps its override.
	Ingest(ctx context.Context, txs []Transaction) ([]Transaction, error)
	List(ctx context.Context, from ledger.Date, to ledger.Date) ([]Transaction, error)
	// ForDay returns the day's transactions in engine form together with the user's overrides.
	ForDay(ctx context.Context, date ledger.Date) ([]ledger.Transaction, ledger.Overrides, error)
	Retag(ctx context.Context, id string, tag ledger.Tag) (Transaction, error)
	ClearOverride(ctx context.Context, id string) (Transaction, error)
	// Reclassify re-runs classification for transactions dated after the last closed day. It returns
	// the number of transactions whose tag changed.
	Reclassify(ctx context.Context) (int, error)
}

type ServiceImpl struct {
	repo       Repository
	rules      rules.Service
	classifier ledger.Classifier
	lastClosed LastClosedFunc
}

func NewService(repo Repository, rulesService rules.Service, classifier ledger.Classifier, lastClosed LastClosedFunc) *ServiceImpl {
	return &ServiceImpl{
		repo:       repo,
		rules:      rulesService,
		classifier: classifier,
		lastClosed: lastClosed,
	}
}

// SubscribeToRuleChanges makes every rule change reclassify the open days of the affected user.
func (s *ServiceImpl) SubscribeToRuleChanges(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped[event_bus.RulesChanged](bus, event_bus.RulesChangedType,
		func(e event_bus.EventT[event_bus.RulesChanged]) error {
			changed, err := s.Reclassify(e.Context())
			if err != nil {
				return fmt.Errorf("reclassify after rule %d changed: %w", e.Data.RuleId, err)
			}
			log.Debugf("rule %d changed, %d transactions of user %d reclassified", e.Data.RuleId, changed, e.Data.UserId)
			return nil
		})
}

func (s *ServiceImpl) Ingest(ctx context.Context, txs []Transaction) ([]Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	for i := range txs {
		txs[i].ExternalId = strings.TrimSpace(txs[i].ExternalId)
		if txs[i].ExternalId == "" {
			return nil, fmt.Errorf("%w: transaction %d has no external id", ledger.ErrValidation, i)
		}
		if txs[i].Date.IsZero() {
			return nil, fmt.Errorf("%w: transaction %s has no date", ledger.ErrValidation, txs[i].ExternalId)
		}
	}

	ignore, bills, err := s.rules.Rulesets(ctx)
	if err != nil {
		return nil, err
	}

	stored := make([]Transaction, 0, len(txs))
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		for _, tx := range txs {
			tx.Id = uuid.NewString()
			tx.Tag = s.classifier.Classify(tx.ToLedger(), ignore, bills)
			saved, err := repo.Upsert(ctx, userId, tx)
			if err != nil {
				return err
			}
			stored = append(stored, saved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("ingested %d transactions for user %d", len(stored), userId)
	return stored, nil
}

func (s *ServiceImpl) List(ctx context.Context, from ledger.Date, to ledger.Date) ([]Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, fmt.Errorf("%w: range end %s is before start %s", ledger.ErrValidation, to, from)
	}
	return s.repo.List(ctx, userId, from, to)
}

func (s *ServiceImpl) ForDay(ctx context.Context, date ledger.Date) ([]ledger.Transaction, ledger.Overrides, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get current user: %w", err)
	}
	stored, err := s.repo.List(ctx, userId, date, date)
	if err != nil {
		return nil, nil, err
	}
	txs := make([]ledger.Transaction, 0, len(stored))
	overrides := ledger.Overrides{}
	for _, tx := range stored {
		txs = append(txs, tx.ToLedger())
		if tx.TagOverride != "" {
			overrides[tx.Id] = tx.TagOverride
		}
	}
	return txs, overrides, nil
}

func (s *ServiceImpl) Retag(ctx context.Context, id string, tag ledger.Tag) (Transaction, error) {
	if !overridable[tag] {
		return Transaction{}, fmt.Errorf("%w: cannot tag a transaction as %q", ledger.ErrValidation, tag)
	}
	return s.setOverride(ctx, id, tag)
}

func (s *ServiceImpl) ClearOverride(ctx context.Context, id string) (Transaction, error) {
	return s.setOverride(ctx, id, "")
}

func (s *ServiceImpl) setOverride(ctx context.Context, id string, tag ledger.Tag) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	var updated Transaction
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		if err := repo.SetOverride(ctx, userId, id, tag); err != nil {
			return err
		}
		updated, err = repo.Get(ctx, userId, id)
		return err
	})
	return updated, err
}

func (s *ServiceImpl) Reclassify(ctx context.Context) (int, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current user: %w", err)
	}
	var from ledger.Date
	if s.lastClosed != nil {
		lastClosed, err := s.lastClosed(ctx)
		if err != nil {
			return 0, err
		}
		if !lastClosed.IsZero() {
			from = lastClosed.AddDays(1)
		}
	}
	ignore, bills, err := s.rules.Rulesets(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		open, err := repo.List(ctx, userId, from, ledger.Date{})
		if err != nil {
			return err
		}
		for _, tx := range open {
			tag := s.classifier.Classify(tx.ToLedger(), ignore, bills)
			if tag == tx.Tag {
				continue
			}
			if err := repo.UpdateTag(ctx, userId, tx.Id, tag); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	return changed, err
}

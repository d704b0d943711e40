package simulation

import (
	"fmt"
	"os"

	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/dailydollars/dailydollars/pkg/rules"
	"github.com/dailydollars/dailydollars/pkg/transaction"
	"github.com/dailydollars/dailydollars/pkg/user"
	"gopkg.in/yaml.v3"
)

// Scenario describes a pay profile, rules and a transaction feed replayed day by day.
type Scenario struct {
	Timezone            string        `yaml:"timezone"`
	Pay                 PayProfile    `yaml:"pay"`
	Start               string        `yaml:"start"`
	Through             string        `yaml:"through"`
	Carry               Carry         `yaml:"carry"`
	RecurringCategories []string      `yaml:"recurringCategories"`
	Rules               []Rule        `yaml:"rules"`
	Transactions        []Transaction `yaml:"transactions"`
}

type PayProfile struct {
	Cadence       string `yaml:"cadence"`
	Anchor        string `yaml:"anchor"`
	PaycheckCents int64  `yaml:"paycheck"`
}

// Carry applies to every period boundary in the scenario.
type Carry struct {
	Kind      string `yaml:"kind"`
	KeepCents int64  `yaml:"keep"`
}

type Rule struct {
	Kind        string `yaml:"kind"`
	Pattern     string `yaml:"pattern"`
	Category    string `yaml:"category"`
	AmountCents int64  `yaml:"amount"`
	Frequency   string `yaml:"frequency"`
}

type Transaction struct {
	Id          string `yaml:"id"`
	Date        string `yaml:"date"`
	Merchant    string `yaml:"merchant"`
	Category    string `yaml:"category"`
	AmountCents int64  `yaml:"amount"`
	Tag         string `yaml:"tag"`
}

func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("%w: parse scenario: %v", ledger.ErrValidation, err)
	}
	return s, nil
}

// plan is a scenario with every field parsed into engine types.
type plan struct {
	user         user.User
	start        ledger.Date
	through      ledger.Date
	carry        ledger.CarryChoice
	classifier   ledger.Classifier
	rules        []rules.Rule
	transactions []transaction.Transaction
	overrides    map[string]ledger.Tag
}

func (s Scenario) plan() (plan, error) {
	anchor, err := ledger.ParseDate(s.Pay.Anchor)
	if err != nil {
		return plan{}, fmt.Errorf("pay anchor: %w", err)
	}
	start, err := ledger.ParseDate(s.Start)
	if err != nil {
		return plan{}, fmt.Errorf("start: %w", err)
	}
	through, err := ledger.ParseDate(s.Through)
	if err != nil {
		return plan{}, fmt.Errorf("through: %w", err)
	}
	if through.Before(start) {
		return plan{}, fmt.Errorf("%w: through %s is before start %s", ledger.ErrValidation, through, start)
	}
	timezone := s.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	p := plan{
		user: user.User{
			Id:       1,
			Uid:      "simulation",
			Username: "simulation",
			Settings: user.Settings{
				Timezone:      timezone,
				PayCadence:    ledger.Cadence(s.Pay.Cadence),
				PayAnchor:     anchor,
				PaycheckCents: s.Pay.PaycheckCents,
			},
		},
		start:     start,
		through:   through,
		carry:     ledger.CarryChoice{Kind: ledger.CarryKind(s.Carry.Kind), KeepCents: s.Carry.KeepCents},
		overrides: map[string]ledger.Tag{},
	}
	if !p.user.Settings.HasPayProfile() {
		return plan{}, fmt.Errorf("%w: scenario pay profile is incomplete", ledger.ErrInsufficientData)
	}

	categories := s.RecurringCategories
	if len(categories) == 0 {
		categories = ledger.DefaultRecurringCategories
	}
	p.classifier = ledger.NewClassifier(categories)

	for _, r := range s.Rules {
		p.rules = append(p.rules, rules.Rule{
			Kind:        rules.Kind(r.Kind),
			Pattern:     r.Pattern,
			Category:    r.Category,
			AmountCents: r.AmountCents,
			Frequency:   rules.Frequency(r.Frequency),
		})
	}
	for i, t := range s.Transactions {
		date, err := ledger.ParseDate(t.Date)
		if err != nil {
			return plan{}, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		id := t.Id
		if id == "" {
			id = fmt.Sprintf("sim-%d", i+1)
		}
		p.transactions = append(p.transactions, transaction.Transaction{
			ExternalId:  id,
			Date:        date,
			Merchant:    t.Merchant,
			Category:    t.Category,
			AmountCents: t.AmountCents,
		})
		if t.Tag != "" {
			p.overrides[id] = ledger.Tag(t.Tag)
		}
	}
	return p, nil
}

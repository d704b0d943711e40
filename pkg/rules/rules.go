package rules

import (
	"fmt"
	"strings"

	"github.com/dailydollars/dailydollars/internal/rest"
	"github.com/dailydollars/dailydollars/pkg/ledger"
)

var ErrRuleNotFound = fmt.Errorf("rule %w", rest.ErrNotFound)

type Kind string

const (
	Ignore Kind = "ignore"
	Bill   Kind = "bill"
)

type Frequency string

const (
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
	Yearly   Frequency = "yearly"
)

// Rule is a user maintained merchant pattern. Bill rules may carry the expected amount, which feeds the
// monthly bills total subtracted from each period's income.
type Rule struct {
	Id          int
	Kind        Kind
	Pattern     string
	Category    string
	AmountCents int64
	Frequency   Frequency
}

// MonthlyCents normalizes the bill amount to a month: weekly x4.33, biweekly x2.17, yearly /12.
// Ignore rules cost nothing.
func (r Rule) MonthlyCents() int64 {
	if r.Kind != Bill {
		return 0
	}
	switch r.Frequency {
	case Weekly:
		return r.AmountCents * 433 / 100
	case Biweekly:
		return r.AmountCents * 217 / 100
	case Yearly:
		return r.AmountCents / 12
	default:
		return r.AmountCents
	}
}

func (r Rule) validate() error {
	if strings.TrimSpace(r.Pattern) == "" {
		return fmt.Errorf("%w: pattern is required", ledger.ErrValidation)
	}
	if r.Kind != Ignore && r.Kind != Bill {
		return fmt.Errorf("%w: unknown rule kind %q", ledger.ErrValidation, r.Kind)
	}
	switch r.Frequency {
	case Weekly, Biweekly, Monthly, Yearly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ledger.ErrValidation, r.Frequency)
	}
	if r.AmountCents < 0 {
		return fmt.Errorf("%w: bill amount must not be negative", ledger.ErrValidation)
	}
	return nil
}

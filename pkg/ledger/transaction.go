package ledger

import "strings"

type Tag string

const (
	TagSpend   Tag = "spend"
	TagBill    Tag = "bill"
	TagIgnored Tag = "ignored"
	TagRefund  Tag = "refund"
)

func (t Tag) Valid() bool {
	switch t {
	case TagSpend, TagBill, TagIgnored, TagRefund:
		return true
	}
	return false
}

// Transaction is the engine's read view of a bank or manual transaction.
type Transaction struct {
	Id       string
	Date     Date
	Merchant string
	Category string
	// AmountCents is signed: negative is money out, positive money in.
	AmountCents int64
	Tag         Tag
}

type IgnoreRule struct {
	Pattern  string
	Category string
}

type BillRule struct {
	Pattern  string
	Category string
}

// DefaultRecurringCategories are transaction categories treated as bills without an explicit rule.
var DefaultRecurringCategories = []string{
	"rent",
	"housing",
	"utilities",
	"rent and utilities",
	"rent_and_utilities",
	"subscriptions",
	"insurance",
	"loan payments",
	"loan_payments",
}

// Classifier tags transactions. The zero value recognises no recurring categories.
type Classifier struct {
	recurring map[string]struct{}
}

func NewClassifier(recurringCategories []string) Classifier {
	recurring := make(map[string]struct{}, len(recurringCategories))
	for _, c := range recurringCategories {
		if n := normalize(c); n != "" {
			recurring[n] = struct{}{}
		}
	}
	return Classifier{recurring: recurring}
}

var defaultClassifier = NewClassifier(DefaultRecurringCategories)

// Classify tags tx with the default recurring categories.
func Classify(tx Transaction, ignoreRules []IgnoreRule, billRules []BillRule) Tag {
	return defaultClassifier.Classify(tx, ignoreRules, billRules)
}

// Classify is a pure function of its inputs. Ignore rules win over bill rules, inbound money that is
// neither is a refund, everything else is spend.
func (c Classifier) Classify(tx Transaction, ignoreRules []IgnoreRule, billRules []BillRule) Tag {
	merchant := normalize(tx.Merchant)
	for _, rule := range ignoreRules {
		if matches(merchant, rule.Pattern) {
			return TagIgnored
		}
	}
	for _, rule := range billRules {
		if matches(merchant, rule.Pattern) {
			return TagBill
		}
	}
	if _, ok := c.recurring[normalize(tx.Category)]; ok {
		return TagBill
	}
	if tx.AmountCents > 0 {
		return TagRefund
	}
	return TagSpend
}

// Overrides holds user re-tags keyed by transaction id. They are sticky: classification never
// replaces an overridden tag.
type Overrides map[string]Tag

// ClassifyAll returns a tagged copy of txs. Overridden transactions keep their override.
func (c Classifier) ClassifyAll(txs []Transaction, ignoreRules []IgnoreRule, billRules []BillRule, overrides Overrides) []Transaction {
	tagged := make([]Transaction, len(txs))
	for i, tx := range txs {
		if tag, ok := overrides[tx.Id]; ok {
			tx.Tag = tag
		} else {
			tx.Tag = c.Classify(tx, ignoreRules, billRules)
		}
		tagged[i] = tx
	}
	return tagged
}

func matches(normalizedMerchant string, pattern string) bool {
	p := normalize(pattern)
	return p != "" && strings.Contains(normalizedMerchant, p)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AggregateDay sums the absolute amounts of spend-tagged transactions on date. Bills, ignored
// transactions and refunds never count.
func AggregateDay(date Date, txs []Transaction) int64 {
	var posted int64
	for _, tx := range txs {
		if tx.Tag != TagSpend || !tx.Date.Equal(date) {
			continue
		}
		if tx.AmountCents < 0 {
			posted -= tx.AmountCents
		} else {
			posted += tx.AmountCents
		}
	}
	return posted
}

package transaction

import (
	"fmt"

	"github.com/dailydollars/dailydollars/internal/rest"
	"github.com/dailydollars/dailydollars/pkg/ledger"
)

var ErrTransactionNotFound = fmt.Errorf("transaction %w", rest.ErrNotFound)

// Transaction is a stored bank or manual transaction. Tag is what the classifier decided at the last
// (re)classification; TagOverride is the user's sticky choice and wins when set.
type Transaction struct {
	Id          string
	ExternalId  string
	Date        ledger.Date
	Merchant    string
	Category    string
	AmountCents int64
	Tag         ledger.Tag
	TagOverride ledger.Tag
}

func (t Transaction) EffectiveTag() ledger.Tag {
	if t.TagOverride != "" {
		return t.TagOverride
	}
	return t.Tag
}

func (t Transaction) ToLedger() ledger.Transaction {
	return ledger.Transaction{
		Id:          t.Id,
		Date:        t.Date,
		Merchant:    t.Merchant,
		Category:    t.Category,
		AmountCents: t.AmountCents,
		Tag:         t.EffectiveTag(),
	}
}

// overridable are the tags a user may pick by hand.
var overridable = map[ledger.Tag]bool{
	ledger.TagSpend:   true,
	ledger.TagBill:    true,
	ledger.TagIgnored: true,
}

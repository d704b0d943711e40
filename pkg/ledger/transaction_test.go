package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	ignore := []IgnoreRule{{Pattern: "Transfer to Savings"}}
	bills := []BillRule{{Pattern: "netflix", Category: "subscriptions"}, {Pattern: "  "}}

	tests := []struct {
		name string
		tx   Transaction
		want Tag
	}{
		{
			name: "ignore rule matches merchant case-insensitively",
			tx:   Transaction{Merchant: "ONLINE TRANSFER TO SAVINGS 1234", AmountCents: -50000},
			want: TagIgnored,
		},
		{
			name: "ignore rule wins over bill rule and category",
			tx:   Transaction{Merchant: "transfer to savings netflix", Category: "rent", AmountCents: -100},
			want: TagIgnored,
		},
		{
			name: "bill rule matches substring",
			tx:   Transaction{Merchant: "Netflix.com", AmountCents: -1599},
			want: TagBill,
		},
		{
			name: "recurring category is a bill",
			tx:   Transaction{Merchant: "Landlord LLC", Category: " Rent and Utilities ", AmountCents: -120000},
			want: TagBill,
		},
		{
			name: "inbound money is a refund",
			tx:   Transaction{Merchant: "Grocer", Category: "groceries", AmountCents: 1250},
			want: TagRefund,
		},
		{
			name: "everything else is spend",
			tx:   Transaction{Merchant: "Grocer", Category: "groceries", AmountCents: -4210},
			want: TagSpend,
		},
		{
			name: "blank pattern never matches",
			tx:   Transaction{Merchant: "Coffee", AmountCents: -450},
			want: TagSpend,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.tx, ignore, bills))
		})
	}
}

func TestClassifier_CustomCategories(t *testing.T) {
	classifier := NewClassifier([]string{"Gym"})
	tx := Transaction{Merchant: "Fit Club", Category: "gym", AmountCents: -3000}

	assert.Equal(t, TagBill, classifier.Classify(tx, nil, nil))
	assert.Equal(t, TagSpend, Classifier{}.Classify(tx, nil, nil))
	assert.Equal(t, TagSpend, classifier.Classify(Transaction{Category: "rent", AmountCents: -1}, nil, nil))
}

func TestClassifier_ClassifyAll(t *testing.T) {
	// given
	txs := []Transaction{
		{Id: "a", Merchant: "Netflix", AmountCents: -1599},
		{Id: "b", Merchant: "Grocer", AmountCents: -4000},
		{Id: "c", Merchant: "Grocer", AmountCents: -2000},
	}
	bills := []BillRule{{Pattern: "netflix"}}
	overrides := Overrides{"a": TagSpend, "c": TagIgnored}

	// when
	tagged := defaultClassifier.ClassifyAll(txs, nil, bills, overrides)

	// then
	assert.Equal(t, TagSpend, tagged[0].Tag)
	assert.Equal(t, TagSpend, tagged[1].Tag)
	assert.Equal(t, TagIgnored, tagged[2].Tag)
	assert.Equal(t, Tag(""), txs[0].Tag, "input must not be modified")
}

func TestAggregateDay(t *testing.T) {
	date := NewDate(2025, 8, 11)
	txs := []Transaction{
		{Date: date, AmountCents: -1200, Tag: TagSpend},
		{Date: date, AmountCents: -800, Tag: TagSpend},
		{Date: date, AmountCents: -90000, Tag: TagBill},
		{Date: date, AmountCents: -50000, Tag: TagIgnored},
		{Date: date, AmountCents: 700, Tag: TagRefund},
		{Date: date.AddDays(1), AmountCents: -500, Tag: TagSpend},
	}

	t.Run("should sum only spend on the date", func(t *testing.T) {
		assert.Equal(t, int64(2000), AggregateDay(date, txs))
	})

	t.Run("should not change when bills and ignored transactions are added", func(t *testing.T) {
		more := append(txs,
			Transaction{Date: date, AmountCents: -12345, Tag: TagBill},
			Transaction{Date: date, AmountCents: -999, Tag: TagIgnored},
		)
		assert.Equal(t, AggregateDay(date, txs), AggregateDay(date, more))
	})

	t.Run("should be zero for an empty day", func(t *testing.T) {
		assert.Equal(t, int64(0), AggregateDay(date.AddDays(-1), txs))
	})
}

package simulation

import (
	"context"
	"testing"

	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Run("should replay a weekly scenario across a period boundary", func(t *testing.T) {
		// given
		scenario, err := LoadScenario("testdata/weekly.yaml")
		require.NoError(t, err)

		// when
		result, err := Run(context.Background(), scenario)

		// then
		require.NoError(t, err)
		require.Len(t, result.Periods, 2)
		require.Len(t, result.Days, 9)

		first, second := result.Periods[0], result.Periods[1]
		assert.Equal(t, ledger.NewDate(2025, 1, 12), first.EndDate)
		assert.Equal(t, int64(70000), first.DiscretionaryTotalCents)
		assert.Equal(t, ledger.NewDate(2025, 1, 13), second.StartDate)
		assert.Equal(t, int64(5000), second.OpeningSlushCents)
		assert.Equal(t, int64(50500), second.SentToSavingsCents)

		slush := make([]int64, 0, len(result.Days))
		for _, day := range result.Days {
			slush = append(slush, day.SlushAfterCents)
		}
		assert.Equal(t, []int64{7500, 17500, 27500, 25500, 35500, 45500, 55500, 15000, 25000}, slush)
		assert.Equal(t, ledger.NewDate(2025, 1, 14), result.Final.LastClosed)
		assert.Equal(t, int64(25000), result.Final.Slush.BalanceCents)
	})

	t.Run("should reject a scenario without a pay profile", func(t *testing.T) {
		scenario, err := ParseScenario([]byte(`start: "2025-01-06"
through: "2025-01-07"
`))
		require.NoError(t, err)

		_, err = Run(context.Background(), scenario)

		assert.ErrorIs(t, err, ledger.ErrInsufficientData)
	})

	t.Run("should reject an end date before the start", func(t *testing.T) {
		scenario, err := ParseScenario([]byte(`pay: {cadence: monthly, anchor: "2025-03-01", paycheck: 100000}
start: "2025-03-10"
through: "2025-03-01"
`))
		require.NoError(t, err)

		_, err = Run(context.Background(), scenario)

		assert.ErrorIs(t, err, ledger.ErrValidation)
	})
}

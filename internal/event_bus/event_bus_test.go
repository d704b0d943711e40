package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_Publish(t *testing.T) {
	t.Run("should deliver typed payloads in registration order", func(t *testing.T) {
		// given
		bus := NewEventBus()
		var received []string
		SubscribeTyped[RulesChanged](bus, RulesChangedType, func(e EventT[RulesChanged]) error {
			received = append(received, "first")
			assert.Equal(t, 7, e.Data.RuleId)
			return nil
		})
		bus.Subscribe(RulesChangedType, func(e Event) error {
			received = append(received, "second")
			return nil
		})

		// when
		err := bus.Publish(NewEvent(context.Background(), RulesChangedType, RulesChanged{UserId: 1, RuleId: 7}))

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, received)
	})

	t.Run("should skip typed handlers for other payload types", func(t *testing.T) {
		bus := NewEventBus()
		called := false
		SubscribeTyped[DayClosed](bus, DayClosedType, func(e EventT[DayClosed]) error {
			called = true
			return nil
		})

		err := bus.Publish(NewEvent(context.Background(), DayClosedType, PeriodOpened{}))

		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("should run all handlers and join their errors", func(t *testing.T) {
		// given
		bus := NewEventBus()
		failure := errors.New("boom")
		calls := 0
		bus.Subscribe(DayClosedType, func(e Event) error {
			calls++
			return failure
		})
		bus.Subscribe(DayClosedType, func(e Event) error {
			calls++
			panic("handler exploded")
		})
		bus.Subscribe(DayClosedType, func(e Event) error {
			calls++
			return nil
		})

		// when
		err := bus.Publish(NewEvent(context.Background(), DayClosedType, DayClosed{}))

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, failure)
		assert.Contains(t, err.Error(), "handler exploded")
		assert.Equal(t, 3, calls)
	})

	t.Run("should stop delivering after unsubscribe", func(t *testing.T) {
		bus := NewEventBus()
		calls := 0
		unsubscribe := bus.Subscribe(PeriodOpenedType, func(e Event) error {
			calls++
			return nil
		})

		require.NoError(t, bus.Publish(NewEvent(context.Background(), PeriodOpenedType, PeriodOpened{})))
		unsubscribe()
		require.NoError(t, bus.Publish(NewEvent(context.Background(), PeriodOpenedType, PeriodOpened{})))

		assert.Equal(t, 1, calls)
	})

	t.Run("should refuse to publish with a cancelled context", func(t *testing.T) {
		bus := NewEventBus()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := bus.Publish(NewEvent(ctx, PeriodOpenedType, PeriodOpened{}))

		assert.ErrorIs(t, err, context.Canceled)
	})
}

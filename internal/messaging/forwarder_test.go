package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dailydollars/dailydollars/internal/event_bus"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	routingKey string
	body       []byte
}

type publisherStub struct {
	messages []published
	err      error
}

func (p *publisherStub) Publish(ctx context.Context, routingKey string, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, published{routingKey: routingKey, body: body})
	return nil
}

func TestForwarder(t *testing.T) {
	t.Run("should forward closed days with the event type as routing key", func(t *testing.T) {
		// given
		bus := event_bus.NewEventBus()
		publisher := &publisherStub{}
		NewForwarder(publisher).Subscribe(bus)

		// when
		err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.DayClosedType, event_bus.DayClosed{
			UserId:           1,
			PeriodId:         "p-1",
			Date:             ledger.NewDate(2025, 3, 3),
			AllowanceCents:   10000,
			PostedSpendCents: 11200,
			SlushAfterCents:  1900,
			Status:           ledger.Over,
		}))

		// then
		require.NoError(t, err)
		require.Len(t, publisher.messages, 1)
		assert.Equal(t, "ledger.day.closed", publisher.messages[0].routingKey)
		var message DayClosedMessage
		require.NoError(t, json.Unmarshal(publisher.messages[0].body, &message))
		assert.Equal(t, "2025-03-03", message.Date)
		assert.Equal(t, "over", message.Status)
		assert.Equal(t, int64(1900), message.SlushAfterCents)
	})

	t.Run("should forward opened periods", func(t *testing.T) {
		bus := event_bus.NewEventBus()
		publisher := &publisherStub{}
		NewForwarder(publisher).Subscribe(bus)

		err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.PeriodOpenedType, event_bus.PeriodOpened{
			PeriodId:              "p-2",
			StartDate:             ledger.NewDate(2025, 1, 3),
			EndDate:               ledger.NewDate(2025, 2, 13),
			ExtraPaycheckDetected: true,
		}))

		require.NoError(t, err)
		require.Len(t, publisher.messages, 1)
		assert.Equal(t, "period.opened", publisher.messages[0].routingKey)
		assert.JSONEq(t, `{"userId":0,"periodId":"p-2","startDate":"2025-01-03","endDate":"2025-02-13",
			"discretionaryTotalCents":0,"openingSlushCents":0,"extraPaycheckDetected":true}`,
			string(publisher.messages[0].body))
	})

	t.Run("should surface broker failures to the publisher of the event", func(t *testing.T) {
		bus := event_bus.NewEventBus()
		broker := errors.New("connection closed")
		NewForwarder(&publisherStub{err: broker}).Subscribe(bus)

		err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.DayClosedType, event_bus.DayClosed{}))

		assert.ErrorIs(t, err, broker)
	})
}

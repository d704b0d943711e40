package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dailydollars/dailydollars/internal/event_bus"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

type DayClosedMessage struct {
	UserId            int    `json:"userId"`
	PeriodId          string `json:"periodId"`
	Date              string `json:"date"`
	AllowanceCents    int64  `json:"allowanceCents"`
	PostedSpendCents  int64  `json:"postedSpendCents"`
	SlushAfterCents   int64  `json:"slushAfterCents"`
	BlueStreakCount   int    `json:"blueStreakCount"`
	OrangeStreakCount int    `json:"orangeStreakCount"`
	Status            string `json:"status"`
}

type PeriodOpenedMessage struct {
	UserId                  int    `json:"userId"`
	PeriodId                string `json:"periodId"`
	StartDate               string `json:"startDate"`
	EndDate                 string `json:"endDate"`
	DiscretionaryTotalCents int64  `json:"discretionaryTotalCents"`
	OpeningSlushCents       int64  `json:"openingSlushCents"`
	ExtraPaycheckDetected   bool   `json:"extraPaycheckDetected"`
}

// Forwarder relays ledger events from the in-process bus to the message broker. The event type is
// the routing key.
type Forwarder struct {
	publisher Publisher
}

func NewForwarder(publisher Publisher) *Forwarder {
	return &Forwarder{publisher: publisher}
}

func (f *Forwarder) Subscribe(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped[event_bus.DayClosed](bus, event_bus.DayClosedType,
		func(e event_bus.EventT[event_bus.DayClosed]) error {
			return f.forward(e.Context(), event_bus.DayClosedType, DayClosedMessage{
				UserId:            e.Data.UserId,
				PeriodId:          e.Data.PeriodId,
				Date:              e.Data.Date.String(),
				AllowanceCents:    e.Data.AllowanceCents,
				PostedSpendCents:  e.Data.PostedSpendCents,
				SlushAfterCents:   e.Data.SlushAfterCents,
				BlueStreakCount:   e.Data.BlueStreakCount,
				OrangeStreakCount: e.Data.OrangeStreakCount,
				Status:            string(e.Data.Status),
			})
		})
	event_bus.SubscribeTyped[event_bus.PeriodOpened](bus, event_bus.PeriodOpenedType,
		func(e event_bus.EventT[event_bus.PeriodOpened]) error {
			return f.forward(e.Context(), event_bus.PeriodOpenedType, PeriodOpenedMessage{
				UserId:                  e.Data.UserId,
				PeriodId:                e.Data.PeriodId,
				StartDate:               e.Data.StartDate.String(),
				EndDate:                 e.Data.EndDate.String(),
				DiscretionaryTotalCents: e.Data.DiscretionaryTotalCents,
				OpeningSlushCents:       e.Data.OpeningSlushCents,
				ExtraPaycheckDetected:   e.Data.ExtraPaycheckDetected,
			})
		})
}

func (f *Forwarder) forward(ctx context.Context, eventType event_bus.EventType, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", eventType, err)
	}
	return f.publisher.Publish(ctx, string(eventType), body)
}

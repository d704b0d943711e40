package event_bus

import "github.com/dailydollars/dailydollars/pkg/ledger"

const (
	DayClosedType    EventType = "ledger.day.closed"
	PeriodOpenedType EventType = "period.opened"
	RulesChangedType EventType = "rules.changed"
)

type DayClosed struct {
	UserId            int
	PeriodId          string
	Date              ledger.Date
	AllowanceCents    int64
	PostedSpendCents  int64
	SlushAfterCents   int64
	BlueStreakCount   int
	OrangeStreakCount int
	Status            ledger.DayStatus
}

type PeriodOpened struct {
	UserId                  int
	PeriodId                string
	StartDate               ledger.Date
	EndDate                 ledger.Date
	DiscretionaryTotalCents int64
	OpeningSlushCents       int64
	// ExtraPaycheckDetected lets listeners offer the "third paycheck" choice.
	ExtraPaycheckDetected bool
}

// RulesChanged is published after any ignore or bill rule is created, updated or deleted.
type RulesChanged struct {
	UserId int
	RuleId int
}

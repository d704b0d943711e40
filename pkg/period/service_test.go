package period

import (
	"context"
	"testing"
	"time"

	"github.com/dailydollars/dailydollars/internal/event_bus"
	"github.com/dailydollars/dailydollars/internal/utils"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/dailydollars/dailydollars/pkg/rules"
	"github.com/dailydollars/dailydollars/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monthlyUser = user.User{
	Id:       1,
	Username: "period_user",
	Settings: user.Settings{
		Timezone:      "Europe/Warsaw",
		PayCadence:    ledger.Monthly,
		PayAnchor:     ledger.NewDate(2025, 3, 15),
		PaycheckCents: 300000,
	},
}

var ctx = user.WithUser(context.Background(), monthlyUser)

var repoStub = NewRepositoryStub()
var rulesRepoStub = rules.NewRepositoryStub()

var service *ServiceImpl
var bus *event_bus.EventBus
var clock *utils.MockClock
var state ledger.Ledger

func setup(t *testing.T) func() {
	bus = event_bus.NewEventBus()
	clock = &utils.MockClock{FixedNow: time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)}
	state = ledger.Ledger{}
	rulesService := rules.NewService(rulesRepoStub, nil)
	_, err := rulesService.Create(ctx, rules.Rule{Kind: rules.Bill, Pattern: "landlord", AmountCents: 50000, Frequency: rules.Monthly})
	require.NoError(t, err)
	service = NewService(repoStub, rulesService, func(ctx context.Context) (ledger.Ledger, error) {
		return state, nil
	}, bus, clock)
	return func() {
		t.Log("Teardown after test")
		repoStub.Reset()
		rulesRepoStub.Reset()
	}
}

func TestServiceImpl_OpenFirst(t *testing.T) {
	t.Run("should open the period containing today and keep the rounding reserve in slush", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		var published []event_bus.PeriodOpened
		event_bus.SubscribeTyped[event_bus.PeriodOpened](bus, event_bus.PeriodOpenedType,
			func(e event_bus.EventT[event_bus.PeriodOpened]) error {
				published = append(published, e.Data)
				return nil
			})

		// when
		opened, err := service.OpenFirst(ctx, ledger.Date{})

		// then
		require.NoError(t, err)
		assert.Equal(t, ledger.NewDate(2025, 3, 15), opened.StartDate)
		assert.Equal(t, ledger.NewDate(2025, 4, 14), opened.EndDate)
		assert.Equal(t, int64(248100), opened.DiscretionaryTotalCents)
		assert.Equal(t, int64(1900), opened.RoundingReserveCents)
		assert.Equal(t, int64(1900), opened.OpeningSlushCents)
		assert.Equal(t, int64(250000), opened.DiscretionaryTotalCents+opened.RoundingReserveCents)

		schedule, err := service.Schedule(ctx, opened.Id)
		require.NoError(t, err)
		assert.Len(t, schedule, 31)
		assert.Equal(t, int64(8000), schedule[0])
		assert.Equal(t, int64(8100), schedule[30])
		assert.Equal(t, opened.DiscretionaryTotalCents, schedule.Total())

		require.Len(t, published, 1)
		assert.Equal(t, opened.Id, published[0].PeriodId)
		assert.Equal(t, int64(1900), published[0].OpeningSlushCents)
	})

	t.Run("should refuse a second first period", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.OpenFirst(ctx, ledger.Date{})
		require.NoError(t, err)
		_, err = service.OpenFirst(ctx, ledger.Date{})

		assert.ErrorIs(t, err, ErrPeriodAlreadyOpened)
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("should require a pay profile", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		noProfile := user.WithUser(context.Background(), user.User{Id: 1, Username: "period_user"})
		_, err := service.OpenFirst(noProfile, ledger.NewDate(2025, 3, 20))

		assert.ErrorIs(t, err, ledger.ErrInsufficientData)
	})
}

func TestServiceImpl_OpenNext(t *testing.T) {
	t.Run("should split positive slush between the next period and savings", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		first, err := service.OpenFirst(ctx, ledger.Date{})
		require.NoError(t, err)
		state = ledger.Ledger{
			LastClosed: first.EndDate,
			Slush:      ledger.SlushState{PeriodId: first.Id, BalanceCents: 12345},
		}

		// when
		next, err := service.OpenNext(ctx, ledger.CarryChoice{Kind: ledger.Split, KeepCents: 5000})

		// then
		require.NoError(t, err)
		assert.Equal(t, ledger.NewDate(2025, 4, 15), next.StartDate)
		assert.Equal(t, ledger.NewDate(2025, 5, 14), next.EndDate)
		assert.Equal(t, int64(249100), next.DiscretionaryTotalCents)
		assert.Equal(t, int64(900), next.RoundingReserveCents)
		assert.Equal(t, int64(5900), next.OpeningSlushCents)
		assert.Equal(t, int64(5000), next.CarriedSlushCents())
		assert.Equal(t, int64(7345), next.SentToSavingsCents)

		latest, err := service.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, next.Id, latest.Id)
	})

	t.Run("should start from zero after a negative period", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		first, err := service.OpenFirst(ctx, ledger.Date{})
		require.NoError(t, err)
		state = ledger.Ledger{
			LastClosed: first.EndDate,
			Slush:      ledger.SlushState{PeriodId: first.Id, BalanceCents: -500},
		}

		// when
		next, err := service.OpenNext(ctx, ledger.CarryChoice{})

		// then
		require.NoError(t, err)
		assert.Equal(t, int64(0), next.CarriedSlushCents())
		assert.Equal(t, int64(-500), next.DiscardedSlushCents)
	})

	t.Run("should refuse while the latest period has open days", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		first, err := service.OpenFirst(ctx, ledger.Date{})
		require.NoError(t, err)
		state = ledger.Ledger{LastClosed: first.EndDate.AddDays(-1)}

		_, err = service.OpenNext(ctx, ledger.CarryChoice{})

		assert.ErrorIs(t, err, ErrPeriodNotClosed)
	})

	t.Run("should return not found without any period", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.OpenNext(ctx, ledger.CarryChoice{})

		assert.ErrorIs(t, err, ErrPeriodNotFound)
	})
}

func TestServiceImpl_Lookup(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	opened, err := service.OpenFirst(ctx, ledger.Date{})
	require.NoError(t, err)

	t.Run("should find the period containing today in the user's timezone", func(t *testing.T) {
		// 23:30 UTC on Apr 14 is already Apr 15 in Warsaw
		clock.SetNow(time.Date(2025, 4, 14, 23, 30, 0, 0, time.UTC))

		_, err := service.Current(ctx)

		assert.ErrorIs(t, err, ErrPeriodNotFound)

		clock.SetNow(time.Date(2025, 4, 14, 21, 30, 0, 0, time.UTC))
		current, err := service.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, opened.Id, current.Id)
	})

	t.Run("should find by date and id", func(t *testing.T) {
		found, err := service.ForDate(ctx, ledger.NewDate(2025, 4, 1))
		require.NoError(t, err)
		assert.Equal(t, opened.Id, found.Id)

		_, err = service.ForDate(ctx, ledger.NewDate(2025, 3, 14))
		assert.ErrorIs(t, err, ErrPeriodNotFound)

		_, err = service.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrPeriodNotFound)
	})
}

func TestServiceImpl_ReviseDiscretionaryTotal(t *testing.T) {
	t.Run("should reallocate once before any close", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		opened, err := service.OpenFirst(ctx, ledger.Date{})
		require.NoError(t, err)

		// when
		revised, err := service.ReviseDiscretionaryTotal(ctx, opened.Id, 310000)

		// then
		require.NoError(t, err)
		assert.True(t, revised.TotalRevised)
		assert.Equal(t, int64(310000), revised.DiscretionaryTotalCents)
		assert.Zero(t, revised.RoundingReserveCents)
		assert.Zero(t, revised.OpeningSlushCents)
		schedule, err := service.Schedule(ctx, opened.Id)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), schedule[0])
		assert.Equal(t, int64(310000), schedule.Total())

		_, err = service.ReviseDiscretionaryTotal(ctx, opened.Id, 300000)
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("should refuse after a day of the period was closed", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		opened, err := service.OpenFirst(ctx, ledger.Date{})
		require.NoError(t, err)
		state = ledger.Ledger{LastClosed: opened.StartDate}

		_, err = service.ReviseDiscretionaryTotal(ctx, opened.Id, 310000)

		assert.ErrorIs(t, err, ledger.ErrValidation)
		stored, err := service.Get(ctx, opened.Id)
		require.NoError(t, err)
		assert.False(t, stored.TotalRevised)
	})
}

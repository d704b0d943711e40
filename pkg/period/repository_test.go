package period

import (
	"context"
	"os"
	"testing"

	"github.com/dailydollars/dailydollars/internal/test_utils"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, Repository, int) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	userId, err := test_utils.InsertUser(ctx, db, "period_repo")
	require.NoError(t, err)
	return ctx, NewRepository(db), userId
}

func biweeklyPeriod() (Period, ledger.DailyAllowanceSchedule) {
	p := Period{
		Period: ledger.Period{
			Id:                      uuid.NewString(),
			Cadence:                 ledger.Biweekly,
			StartDate:               ledger.NewDate(2025, 1, 3),
			EndDate:                 ledger.NewDate(2025, 2, 13),
			PayAnchor:               ledger.NewDate(2025, 1, 3),
			Paydays:                 []ledger.Date{ledger.NewDate(2025, 1, 3), ledger.NewDate(2025, 1, 17), ledger.NewDate(2025, 1, 31)},
			DiscretionaryTotalCents: 420000,
			ExtraPaycheckDetected:   true,
			OpeningSlushCents:       2500,
			SentToSavingsCents:      1000,
		},
	}
	schedule, _ := ledger.Allocate(p.DiscretionaryTotalCents, p.NumDays())
	return p, schedule
}

func TestRepositoryImpl_Store(t *testing.T) {
	t.Run("should store a period with its schedule", func(t *testing.T) {
		// given
		ctx, repo, userId := setupTestRepository(t)
		p, schedule := biweeklyPeriod()

		// when
		err := repo.WithTransaction(ctx, func(repo Repository) error {
			return repo.Store(ctx, userId, p, schedule)
		})

		// then
		require.NoError(t, err)
		fetched, err := repo.Get(ctx, userId, p.Id)
		require.NoError(t, err)
		assert.Equal(t, p, fetched)
		stored, err := repo.Schedule(ctx, p.Id)
		require.NoError(t, err)
		assert.Equal(t, schedule, stored)

		byDate, err := repo.ForDate(ctx, userId, ledger.NewDate(2025, 2, 13))
		require.NoError(t, err)
		assert.Equal(t, p.Id, byDate.Id)
		_, err = repo.ForDate(ctx, userId, ledger.NewDate(2025, 2, 14))
		assert.ErrorIs(t, err, ErrPeriodNotFound)
	})

	t.Run("should replace totals and schedule", func(t *testing.T) {
		// given
		ctx, repo, userId := setupTestRepository(t)
		p, schedule := biweeklyPeriod()
		require.NoError(t, repo.Store(ctx, userId, p, schedule))
		p.DiscretionaryTotalCents = 84000
		p.TotalRevised = true
		revised, err := ledger.Allocate(p.DiscretionaryTotalCents, p.NumDays())
		require.NoError(t, err)

		// when
		err = repo.UpdateTotals(ctx, userId, p, revised)

		// then
		require.NoError(t, err)
		fetched, err := repo.Get(ctx, userId, p.Id)
		require.NoError(t, err)
		assert.True(t, fetched.TotalRevised)
		stored, err := repo.Schedule(ctx, p.Id)
		require.NoError(t, err)
		assert.Equal(t, int64(84000), stored.Total())
	})
}

func TestRepositoryImpl_Latest(t *testing.T) {
	ctx, repo, userId := setupTestRepository(t)

	_, err := repo.Latest(ctx, userId)
	assert.ErrorIs(t, err, ErrPeriodNotFound)

	first, schedule := biweeklyPeriod()
	require.NoError(t, repo.Store(ctx, userId, first, schedule))
	second := first
	second.Id = uuid.NewString()
	second.StartDate = ledger.NewDate(2025, 2, 14)
	second.EndDate = ledger.NewDate(2025, 3, 13)
	require.NoError(t, repo.Store(ctx, userId, second, ledger.DailyAllowanceSchedule{100}))

	latest, err := repo.Latest(ctx, userId)

	require.NoError(t, err)
	assert.Equal(t, second.Id, latest.Id)
}

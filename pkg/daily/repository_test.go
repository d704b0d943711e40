package daily

import (
	"context"
	"os"
	"testing"

	"github.com/dailydollars/dailydollars/internal/test_utils"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/dailydollars/dailydollars/pkg/period"
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

// setupTestRepository returns a repository for a fresh user that already has one stored period.
func setupTestRepository(t *testing.T) (context.Context, Repository, int, string) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	userId, err := test_utils.InsertUser(ctx, db, "daily_repo")
	require.NoError(t, err)

	p := period.Period{Period: ledger.Period{
		Id:                      uuid.NewString(),
		Cadence:                 ledger.Monthly,
		StartDate:               march(1),
		EndDate:                 march(31),
		PayAnchor:               march(1),
		Paydays:                 []ledger.Date{march(1)},
		DiscretionaryTotalCents: 310000,
	}}
	schedule, err := ledger.Allocate(p.DiscretionaryTotalCents, p.NumDays())
	require.NoError(t, err)
	require.NoError(t, period.NewRepository(db).Store(ctx, userId, p, schedule))
	return ctx, NewRepository(db), userId, p.Id
}

func TestRepositoryImpl_State(t *testing.T) {
	t.Run("should return the zero ledger for a new user", func(t *testing.T) {
		ctx, repo, userId, _ := setupTestRepository(t)

		state, err := repo.State(ctx, userId)

		require.NoError(t, err)
		assert.Equal(t, ledger.Ledger{}, state)
	})

	t.Run("should store a close atomically", func(t *testing.T) {
		// given
		ctx, repo, userId, periodId := setupTestRepository(t)
		state := ledger.Ledger{}.EnterPeriod(periodId, 1500)
		record, next, err := state.CloseDay(march(1), 10000, 2500)
		require.NoError(t, err)

		// when
		err = repo.WithTransaction(ctx, func(repo Repository) error {
			locked, err := repo.LockState(ctx, userId)
			if err != nil {
				return err
			}
			assert.Equal(t, ledger.Ledger{}, locked)
			if err := repo.StoreRecord(ctx, userId, record); err != nil {
				return err
			}
			return repo.SaveState(ctx, userId, next)
		})

		// then
		require.NoError(t, err)
		stored, err := repo.State(ctx, userId)
		require.NoError(t, err)
		assert.Equal(t, next, stored)
		fetched, err := repo.Record(ctx, userId, march(1))
		require.NoError(t, err)
		assert.Equal(t, record, fetched)
		records, err := repo.Records(ctx, userId, periodId)
		require.NoError(t, err)
		assert.Equal(t, []ledger.DayRecord{record}, records)
	})

	t.Run("should keep nothing when the close fails", func(t *testing.T) {
		// given
		ctx, repo, userId, periodId := setupTestRepository(t)
		record, next, err := ledger.Ledger{}.EnterPeriod(periodId, 0).CloseDay(march(1), 10000, 0)
		require.NoError(t, err)

		// when
		err = repo.WithTransaction(ctx, func(repo Repository) error {
			if err := repo.SaveState(ctx, userId, next); err != nil {
				return err
			}
			if err := repo.StoreRecord(ctx, userId, record); err != nil {
				return err
			}
			return repo.StoreRecord(ctx, userId, record)
		})

		// then
		require.Error(t, err)
		state, err := repo.State(ctx, userId)
		require.NoError(t, err)
		assert.Equal(t, ledger.Ledger{}, state)
		_, err = repo.Record(ctx, userId, march(1))
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

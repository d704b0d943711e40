package rules

import (
	"context"
	"os"
	"testing"

	"github.com/dailydollars/dailydollars/internal/test_utils"
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
	userId, err := test_utils.InsertUser(ctx, db, "rules_repo")
	require.NoError(t, err)
	return ctx, NewRepository(db), userId
}

func TestRepositoryImpl_CRUD(t *testing.T) {
	t.Run("should store and read back rules", func(t *testing.T) {
		// given
		ctx, repo, userId := setupTestRepository(t)

		// when
		created, err := repo.Create(ctx, userId, Rule{Kind: Bill, Pattern: "netflix", Category: "subscriptions", AmountCents: 1599, Frequency: Monthly})
		require.NoError(t, err)
		_, err = repo.Create(ctx, userId, Rule{Kind: Ignore, Pattern: "transfer", Frequency: Monthly})
		require.NoError(t, err)

		// then
		fetched, err := repo.Get(ctx, userId, created.Id)
		require.NoError(t, err)
		assert.Equal(t, created, fetched)
		all, err := repo.List(ctx, userId)
		require.NoError(t, err)
		assert.Len(t, all, 2)
		assert.Equal(t, created.Id, all[0].Id)
	})

	t.Run("should update and delete", func(t *testing.T) {
		ctx, repo, userId := setupTestRepository(t)
		created, err := repo.Create(ctx, userId, Rule{Kind: Ignore, Pattern: "venmo", Frequency: Monthly})
		require.NoError(t, err)

		created.Pattern = "venmo cashout"
		_, err = repo.Update(ctx, userId, created)
		require.NoError(t, err)
		fetched, err := repo.Get(ctx, userId, created.Id)
		require.NoError(t, err)
		assert.Equal(t, "venmo cashout", fetched.Pattern)

		require.NoError(t, repo.Delete(ctx, userId, created.Id))
		_, err = repo.Get(ctx, userId, created.Id)
		assert.ErrorIs(t, err, ErrRuleNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, userId, created.Id), ErrRuleNotFound)
	})

	t.Run("should scope rules by user", func(t *testing.T) {
		ctx, repo, userId := setupTestRepository(t)
		created, err := repo.Create(ctx, userId, Rule{Kind: Ignore, Pattern: "zelle", Frequency: Monthly})
		require.NoError(t, err)

		_, err = repo.Get(ctx, userId+1000, created.Id)

		assert.ErrorIs(t, err, ErrRuleNotFound)
	})
}

package daily

import (
	"context"
	"errors"
	"fmt"

	"github.com/dailydollars/dailydollars/internal/database"
	"github.com/dailydollars/dailydollars/internal/rest"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrRecordNotFound = fmt.Errorf("day record %w", rest.ErrNotFound)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	// State returns the user's ledger, the zero ledger when nothing was closed yet.
	State(ctx context.Context, userId int) (ledger.Ledger, error)
	// LockState is State that also holds the row until the surrounding transaction ends.
	LockState(ctx context.Context, userId int) (ledger.Ledger, error)
	SaveState(ctx context.Context, userId int, state ledger.Ledger) error
	StoreRecord(ctx context.Context, userId int, record ledger.DayRecord) error
	Record(ctx context.Context, userId int, date ledger.Date) (ledger.DayRecord, error)
	Records(ctx context.Context, userId int, periodId string) ([]ledger.DayRecord, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() interface {
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(&RepositoryImpl{db: r.db, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const selectState = `SELECT last_closed, slush_period_id, slush_balance_cents, blue_count, orange_count 
						FROM ledger_state WHERE user_id = $1`

func (r *RepositoryImpl) State(ctx context.Context, userId int) (ledger.Ledger, error) {
	return r.state(ctx, selectState, userId)
}

func (r *RepositoryImpl) LockState(ctx context.Context, userId int) (ledger.Ledger, error) {
	_, err := r.getQueryer().Exec(ctx,
		`INSERT INTO ledger_state (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userId)
	if err != nil {
		return ledger.Ledger{}, err
	}
	return r.state(ctx, selectState+` FOR UPDATE`, userId)
}

func (r *RepositoryImpl) state(ctx context.Context, query string, userId int) (ledger.Ledger, error) {
	var state ledger.Ledger
	var lastClosed pgtype.Date
	var periodId *string
	err := r.getQueryer().QueryRow(ctx, query, userId).Scan(
		&lastClosed,
		&periodId,
		&state.Slush.BalanceCents,
		&state.Streaks.BlueCurrentCount,
		&state.Streaks.OrangeCurrentCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Ledger{}, nil
	}
	if err != nil {
		log.Errorf("failed to read ledger state of user %d: %v", userId, err)
		return ledger.Ledger{}, err
	}
	state.LastClosed = database.DateFrom(lastClosed)
	if periodId != nil {
		state.Slush.PeriodId = *periodId
	}
	return state, nil
}

func (r *RepositoryImpl) SaveState(ctx context.Context, userId int, state ledger.Ledger) error {
	var periodId *string
	if state.Slush.PeriodId != "" {
		periodId = &state.Slush.PeriodId
	}
	query := `INSERT INTO ledger_state (user_id, last_closed, slush_period_id, slush_balance_cents, blue_count, orange_count)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (user_id) DO UPDATE SET 
					last_closed = EXCLUDED.last_closed,
					slush_period_id = EXCLUDED.slush_period_id,
					slush_balance_cents = EXCLUDED.slush_balance_cents,
					blue_count = EXCLUDED.blue_count,
					orange_count = EXCLUDED.orange_count`
	_, err := r.getQueryer().Exec(ctx, query,
		userId,
		database.DateArg(state.LastClosed),
		periodId,
		state.Slush.BalanceCents,
		state.Streaks.BlueCurrentCount,
		state.Streaks.OrangeCurrentCount,
	)
	return err
}

func (r *RepositoryImpl) StoreRecord(ctx context.Context, userId int, record ledger.DayRecord) error {
	query := `INSERT INTO day_record (user_id, day, period_id, allowance_cents, posted_spend_cents, slush_before_cents, 
                        slush_after_cents, spendable_today_cents, blue_continues, orange_continues, blue_count, 
                        orange_count, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.getQueryer().Exec(ctx, query,
		userId,
		database.DateArg(record.Date),
		record.PeriodId,
		record.AllowanceCents,
		record.PostedSpendCents,
		record.SlushBeforeCents,
		record.SlushAfterCents,
		record.SpendableTodayCents,
		record.BlueStreakContinues,
		record.OrangeStreakContinues,
		record.BlueStreakCount,
		record.OrangeStreakCount,
		record.Status,
	)
	if err != nil {
		log.Errorf("failed to store day record %s for user %d: %v", record.Date, userId, err)
	}
	return err
}

const selectRecord = `SELECT day, period_id, allowance_cents, posted_spend_cents, slush_before_cents, slush_after_cents, 
       spendable_today_cents, blue_continues, orange_continues, blue_count, orange_count, status 
		FROM day_record`

func (r *RepositoryImpl) Record(ctx context.Context, userId int, date ledger.Date) (ledger.DayRecord, error) {
	record, err := scanRecord(r.getQueryer().QueryRow(ctx, selectRecord+` WHERE user_id = $1 AND day = $2`,
		userId, database.DateArg(date)))
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.DayRecord{}, ErrRecordNotFound
	}
	return record, err
}

func (r *RepositoryImpl) Records(ctx context.Context, userId int, periodId string) ([]ledger.DayRecord, error) {
	rows, err := r.getQueryer().Query(ctx, selectRecord+` WHERE user_id = $1 AND period_id = $2 ORDER BY day`,
		userId, periodId)
	if err != nil {
		log.Errorf("failed to list day records: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []ledger.DayRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning day record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (ledger.DayRecord, error) {
	var record ledger.DayRecord
	var day pgtype.Date
	var status string
	err := row.Scan(
		&day,
		&record.PeriodId,
		&record.AllowanceCents,
		&record.PostedSpendCents,
		&record.SlushBeforeCents,
		&record.SlushAfterCents,
		&record.SpendableTodayCents,
		&record.BlueStreakContinues,
		&record.OrangeStreakContinues,
		&record.BlueStreakCount,
		&record.OrangeStreakCount,
		&status,
	)
	if err != nil {
		return ledger.DayRecord{}, err
	}
	record.Date = database.DateFrom(day)
	record.Status = ledger.DayStatus(status)
	return record, nil
}

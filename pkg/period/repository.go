package period

import (
	"context"
	"errors"
	"fmt"

	"github.com/dailydollars/dailydollars/internal/database"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	// Store saves a new period together with its allowance schedule.
	Store(ctx context.Context, userId int, p Period, schedule ledger.DailyAllowanceSchedule) error
	// UpdateTotals rewrites the totals of a stored period and replaces its schedule.
	UpdateTotals(ctx context.Context, userId int, p Period, schedule ledger.DailyAllowanceSchedule) error
	Get(ctx context.Context, userId int, id string) (Period, error)
	// Latest returns the period with the latest start date.
	Latest(ctx context.Context, userId int) (Period, error)
	ForDate(ctx context.Context, userId int, date ledger.Date) (Period, error)
	Schedule(ctx context.Context, periodId string) (ledger.DailyAllowanceSchedule, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

type queryer interface {
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() queryer {
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

func (r *RepositoryImpl) Store(ctx context.Context, userId int, p Period, schedule ledger.DailyAllowanceSchedule) error {
	query := `INSERT INTO period (id, user_id, cadence, start_date, end_date, pay_anchor, paydays, 
                    discretionary_total_cents, rounding_reserve_cents, extra_paycheck_detected, 
                    opening_slush_cents, sent_to_savings_cents, discarded_slush_cents, total_revised)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.getQueryer().Exec(ctx, query,
		p.Id,
		userId,
		p.Cadence,
		database.DateArg(p.StartDate),
		database.DateArg(p.EndDate),
		database.DateArg(p.PayAnchor),
		database.DatesArg(p.Paydays),
		p.DiscretionaryTotalCents,
		p.RoundingReserveCents,
		p.ExtraPaycheckDetected,
		p.OpeningSlushCents,
		p.SentToSavingsCents,
		p.DiscardedSlushCents,
		p.TotalRevised,
	)
	if err != nil {
		log.Errorf("failed to store period %s: %v", p.Id, err)
		return err
	}
	return r.storeSchedule(ctx, p.Id, schedule)
}

func (r *RepositoryImpl) UpdateTotals(ctx context.Context, userId int, p Period, schedule ledger.DailyAllowanceSchedule) error {
	query := `UPDATE period SET discretionary_total_cents = $1, rounding_reserve_cents = $2, 
                  opening_slush_cents = $3, total_revised = $4 
				WHERE user_id = $5 AND id = $6`
	result, err := r.getQueryer().Exec(ctx, query,
		p.DiscretionaryTotalCents,
		p.RoundingReserveCents,
		p.OpeningSlushCents,
		p.TotalRevised,
		userId,
		p.Id,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	if _, err := r.getQueryer().Exec(ctx, `DELETE FROM period_allowance WHERE period_id = $1`, p.Id); err != nil {
		return err
	}
	return r.storeSchedule(ctx, p.Id, schedule)
}

func (r *RepositoryImpl) storeSchedule(ctx context.Context, periodId string, schedule ledger.DailyAllowanceSchedule) error {
	rows := make([][]any, 0, len(schedule))
	for i, allowance := range schedule {
		rows = append(rows, []any{periodId, i, allowance})
	}
	_, err := r.getQueryer().CopyFrom(ctx,
		pgx.Identifier{"period_allowance"},
		[]string{"period_id", "day_index", "allowance_cents"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		log.Errorf("failed to store schedule of period %s: %v", periodId, err)
	}
	return err
}

const selectPeriod = `SELECT id, cadence, start_date, end_date, pay_anchor, paydays, discretionary_total_cents, 
       rounding_reserve_cents, extra_paycheck_detected, opening_slush_cents, sent_to_savings_cents, 
       discarded_slush_cents, total_revised 
		FROM period`

func (r *RepositoryImpl) Get(ctx context.Context, userId int, id string) (Period, error) {
	return r.one(ctx, selectPeriod+` WHERE user_id = $1 AND id = $2`, userId, id)
}

func (r *RepositoryImpl) Latest(ctx context.Context, userId int) (Period, error) {
	return r.one(ctx, selectPeriod+` WHERE user_id = $1 ORDER BY start_date DESC LIMIT 1`, userId)
}

func (r *RepositoryImpl) ForDate(ctx context.Context, userId int, date ledger.Date) (Period, error) {
	return r.one(ctx, selectPeriod+` WHERE user_id = $1 AND start_date <= $2 AND end_date >= $2`,
		userId, database.DateArg(date))
}

func (r *RepositoryImpl) Schedule(ctx context.Context, periodId string) (ledger.DailyAllowanceSchedule, error) {
	rows, err := r.getQueryer().Query(ctx,
		`SELECT allowance_cents FROM period_allowance WHERE period_id = $1 ORDER BY day_index`, periodId)
	if err != nil {
		return nil, err
	}
	schedule, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("error scanning schedule: %w", err)
	}
	if len(schedule) == 0 {
		return nil, ErrPeriodNotFound
	}
	return schedule, nil
}

func (r *RepositoryImpl) one(ctx context.Context, query string, args ...any) (Period, error) {
	var p Period
	var cadence string
	var start, end, anchor pgtype.Date
	var paydays []pgtype.Date
	err := r.getQueryer().QueryRow(ctx, query, args...).Scan(
		&p.Id,
		&cadence,
		&start,
		&end,
		&anchor,
		&paydays,
		&p.DiscretionaryTotalCents,
		&p.RoundingReserveCents,
		&p.ExtraPaycheckDetected,
		&p.OpeningSlushCents,
		&p.SentToSavingsCents,
		&p.DiscardedSlushCents,
		&p.TotalRevised,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrPeriodNotFound
	}
	if err != nil {
		log.Errorf("failed to read period: %v", err)
		return Period{}, err
	}
	p.Cadence = ledger.Cadence(cadence)
	p.StartDate = database.DateFrom(start)
	p.EndDate = database.DateFrom(end)
	p.PayAnchor = database.DateFrom(anchor)
	p.Paydays = database.DatesFrom(paydays)
	return p, nil
}

package transaction

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
	// Upsert inserts tx or updates the row with the same external id. A stored override is kept.
	Upsert(ctx context.Context, userId int, tx Transaction) (Transaction, error)
	Get(ctx context.Context, userId int, id string) (Transaction, error)
	// List returns transactions dated within [from, to], oldest first. A zero bound is open.
	List(ctx context.Context, userId int, from ledger.Date, to ledger.Date) ([]Transaction, error)
	UpdateTag(ctx context.Context, userId int, id string, tag ledger.Tag) error
	SetOverride(ctx context.Context, userId int, id string, tag ledger.Tag) error
}

type repositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *repositoryImpl) getQueryer() interface {
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
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

	if err := fn(&repositoryImpl{db: r.db, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const selectTransaction = `SELECT id, external_id, tx_date, merchant, category, amount_cents, tag, tag_override 
							FROM bank_transaction`

func (r *repositoryImpl) Upsert(ctx context.Context, userId int, tx Transaction) (Transaction, error) {
	query := `INSERT INTO bank_transaction (id, user_id, external_id, tx_date, merchant, category, amount_cents, tag)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (user_id, external_id) DO UPDATE SET 
					tx_date = EXCLUDED.tx_date,
					merchant = EXCLUDED.merchant,
					category = EXCLUDED.category,
					amount_cents = EXCLUDED.amount_cents,
					tag = EXCLUDED.tag
				RETURNING id, tag_override`
	var override *string
	err := r.getQueryer().QueryRow(ctx, query,
		tx.Id,
		userId,
		tx.ExternalId,
		database.DateArg(tx.Date),
		tx.Merchant,
		tx.Category,
		tx.AmountCents,
		tx.Tag,
	).Scan(&tx.Id, &override)
	if err != nil {
		log.Errorf("failed to upsert transaction %s: %v", tx.ExternalId, err)
		return Transaction{}, err
	}
	tx.TagOverride = ""
	if override != nil {
		tx.TagOverride = ledger.Tag(*override)
	}
	return tx, nil
}

func (r *repositoryImpl) Get(ctx context.Context, userId int, id string) (Transaction, error) {
	tx, err := scanTransaction(r.getQueryer().QueryRow(ctx, selectTransaction+` WHERE user_id = $1 AND id = $2`, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	}
	return tx, err
}

func (r *repositoryImpl) List(ctx context.Context, userId int, from ledger.Date, to ledger.Date) ([]Transaction, error) {
	query := selectTransaction + ` WHERE user_id = $1 
				AND ($2::date IS NULL OR tx_date >= $2) 
				AND ($3::date IS NULL OR tx_date <= $3) 
				ORDER BY tx_date, external_id`
	rows, err := r.getQueryer().Query(ctx, query, userId, database.DateArg(from), database.DateArg(to))
	if err != nil {
		log.Errorf("failed to list transactions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var result []Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

func (r *repositoryImpl) UpdateTag(ctx context.Context, userId int, id string, tag ledger.Tag) error {
	result, err := r.getQueryer().Exec(ctx, `UPDATE bank_transaction SET tag = $1 WHERE user_id = $2 AND id = $3`, tag, userId, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *repositoryImpl) SetOverride(ctx context.Context, userId int, id string, tag ledger.Tag) error {
	var override *string
	if tag != "" {
		value := string(tag)
		override = &value
	}
	result, err := r.getQueryer().Exec(ctx,
		`UPDATE bank_transaction SET tag_override = $1 WHERE user_id = $2 AND id = $3`, override, userId, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var tx Transaction
	var date pgtype.Date
	var tag string
	var override *string
	if err := row.Scan(&tx.Id, &tx.ExternalId, &date, &tx.Merchant, &tx.Category, &tx.AmountCents, &tag, &override); err != nil {
		return Transaction{}, err
	}
	tx.Date = database.DateFrom(date)
	tx.Tag = ledger.Tag(tag)
	if override != nil {
		tx.TagOverride = ledger.Tag(*override)
	}
	return tx, nil
}

package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	List(ctx context.Context, userId int) ([]Rule, error)
	Get(ctx context.Context, userId int, id int) (Rule, error)
	Create(ctx context.Context, userId int, rule Rule) (Rule, error)
	Update(ctx context.Context, userId int, rule Rule) (Rule, error)
	Delete(ctx context.Context, userId int, id int) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) List(ctx context.Context, userId int) ([]Rule, error) {
	query := `SELECT id, kind, pattern, category, amount_cents, frequency FROM rule WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		log.Errorf("failed to list rules: %v", err)
		return nil, err
	}
	defer rows.Close()

	var result []Rule
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(&rule.Id, &rule.Kind, &rule.Pattern, &rule.Category, &rule.AmountCents, &rule.Frequency); err != nil {
			return nil, fmt.Errorf("error scanning rule: %w", err)
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, id int) (Rule, error) {
	query := `SELECT id, kind, pattern, category, amount_cents, frequency FROM rule WHERE user_id = $1 AND id = $2`
	var rule Rule
	err := r.db.QueryRow(ctx, query, userId, id).
		Scan(&rule.Id, &rule.Kind, &rule.Pattern, &rule.Category, &rule.AmountCents, &rule.Frequency)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rule{}, ErrRuleNotFound
	}
	if err != nil {
		log.Errorf("failed to get rule %d: %v", id, err)
		return Rule{}, err
	}
	return rule, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, userId int, rule Rule) (Rule, error) {
	query := `INSERT INTO rule (user_id, kind, pattern, category, amount_cents, frequency) 
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRow(ctx, query, userId, rule.Kind, rule.Pattern, rule.Category, rule.AmountCents, rule.Frequency).
		Scan(&rule.Id)
	if err != nil {
		log.Errorf("failed to create rule: %v", err)
		return Rule{}, err
	}
	return rule, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, rule Rule) (Rule, error) {
	query := `UPDATE rule SET kind = $1, pattern = $2, category = $3, amount_cents = $4, frequency = $5 
				WHERE user_id = $6 AND id = $7`
	result, err := r.db.Exec(ctx, query, rule.Kind, rule.Pattern, rule.Category, rule.AmountCents, rule.Frequency, userId, rule.Id)
	if err != nil {
		log.Errorf("failed to update rule %d: %v", rule.Id, err)
		return Rule{}, err
	}
	if result.RowsAffected() == 0 {
		return Rule{}, ErrRuleNotFound
	}
	return rule, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM rule WHERE user_id = $1 AND id = $2`, userId, id)
	if err != nil {
		log.Errorf("failed to delete rule %d: %v", id, err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

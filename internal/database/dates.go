package database

import (
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/jackc/pgx/v5/pgtype"
)

// DateArg converts a ledger date to a DATE query argument, NULL when zero.
func DateArg(d ledger.Date) pgtype.Date {
	if d.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

// DateFrom converts a scanned DATE to a ledger date, zero when NULL.
func DateFrom(d pgtype.Date) ledger.Date {
	if !d.Valid {
		return ledger.Date{}
	}
	return ledger.DateOf(d.Time)
}

func DatesArg(dates []ledger.Date) []pgtype.Date {
	args := make([]pgtype.Date, len(dates))
	for i, d := range dates {
		args[i] = DateArg(d)
	}
	return args
}

func DatesFrom(dates []pgtype.Date) []ledger.Date {
	result := make([]ledger.Date, 0, len(dates))
	for _, d := range dates {
		result = append(result, DateFrom(d))
	}
	return result
}

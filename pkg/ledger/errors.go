package ledger

import "errors"

// All engine failures are local and synchronous. Operations wrap one of these sentinels with the
// failing detail, so callers branch with errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrOutOfOrderClose     = errors.New("day closed out of order")
	ErrDuplicateClose      = errors.New("day already closed")
	ErrInvalidPeriodLength = errors.New("invalid period length")
	ErrInsufficientData    = errors.New("insufficient data")
)

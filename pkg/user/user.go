package user

import (
	"errors"
	// timezone validation must not depend on the host's zoneinfo
	_ "time/tzdata"

	"github.com/dailydollars/dailydollars/pkg/ledger"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserDataInvalid = errors.New("invalid user data")

type User struct {
	Id          int
	Uid         string
	Username    string
	DisplayName string
	Settings    Settings
}

// Settings holds the user's day boundary and pay profile.
type Settings struct {
	// Timezone is an IANA name; a calendar day ends at midnight in this zone.
	Timezone      string
	PayCadence    ledger.Cadence
	PayAnchor     ledger.Date
	PaycheckCents int64
}

// HasPayProfile reports whether periods can be opened for this user.
func (s Settings) HasPayProfile() bool {
	return s.PayCadence.Valid() && !s.PayAnchor.IsZero() && s.PaycheckCents > 0
}

package test_utils

import (
	"context"

	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/dailydollars/dailydollars/pkg/user"
)

// TestUser is a monthly earner paid $3,000 on the 1st, living in Warsaw.
var TestUser = user.User{
	Id:          1,
	Uid:         "test-user-uid",
	Username:    "test_user",
	DisplayName: "Test User",
	Settings: user.Settings{
		Timezone:      "Europe/Warsaw",
		PayCadence:    ledger.Monthly,
		PayAnchor:     ledger.NewDate(2025, 1, 1),
		PaycheckCents: 300000,
	},
}

// UserContext returns a context carrying u as the current user.
func UserContext(u user.User) context.Context {
	return user.WithUser(context.Background(), u)
}

package app

import (
	"net/http"

	"github.com/dailydollars/dailydollars/internal/rest"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/name-availability", deps.UserHandler.IsUsernameAvailable).Methods("GET").Queries("username", "{username}")
	r.HandleFunc("/api/user", deps.UserHandler.GetAvailableUsers).Methods("GET")
	r.HandleFunc("/api/user/{userUid}", deps.UserHandler.DeleteUser).Methods("DELETE")

	// Rules
	r.HandleFunc("/api/rules", deps.RulesHandler.List).Methods("GET")
	r.HandleFunc("/api/rules", deps.RulesHandler.Create).Methods("POST")
	r.HandleFunc("/api/rules/bills/total", deps.RulesHandler.MonthlyBillsTotal).Methods("GET")
	r.HandleFunc("/api/rules/{ruleId}", deps.RulesHandler.Update).Methods("PUT")
	r.HandleFunc("/api/rules/{ruleId}", deps.RulesHandler.Delete).Methods("DELETE")

	// Transactions
	r.HandleFunc("/api/transactions", deps.TransactionHandler.Ingest).Methods("POST")
	r.HandleFunc("/api/transactions", deps.TransactionHandler.List).Methods("GET")
	r.HandleFunc("/api/transactions/reclassify", deps.TransactionHandler.Reclassify).Methods("POST")
	r.HandleFunc("/api/transactions/{transactionId}/tag", deps.TransactionHandler.Retag).Methods("PUT")
	r.HandleFunc("/api/transactions/{transactionId}/tag", deps.TransactionHandler.ClearOverride).Methods("DELETE")

	// Periods
	r.HandleFunc("/api/period/first", deps.PeriodHandler.OpenFirst).Methods("POST")
	r.HandleFunc("/api/period/next", deps.PeriodHandler.OpenNext).Methods("POST")
	r.HandleFunc("/api/period/current", deps.PeriodHandler.Current).Methods("GET")
	r.HandleFunc("/api/period/{periodId}", deps.PeriodHandler.Get).Methods("GET")
	r.HandleFunc("/api/period/{periodId}/schedule", deps.PeriodHandler.Schedule).Methods("GET")
	r.HandleFunc("/api/period/{periodId}/total", deps.PeriodHandler.ReviseTotal).Methods("PUT")
	r.HandleFunc("/api/period/{periodId}/days", deps.DailyHandler.Records).Methods("GET")

	// Ledger
	r.HandleFunc("/api/ledger/close", deps.DailyHandler.CloseDay).Methods("POST")
	r.HandleFunc("/api/ledger/catch-up", deps.DailyHandler.CatchUp).Methods("POST")
	r.HandleFunc("/api/ledger/state", deps.DailyHandler.State).Methods("GET")
	r.HandleFunc("/api/ledger/today", deps.DailyHandler.Today).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
}

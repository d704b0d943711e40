package daily

import (
	"encoding/json"
	"net/http"

	"github.com/dailydollars/dailydollars/internal/rest"
	"github.com/dailydollars/dailydollars/internal/utils"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/dailydollars/dailydollars/pkg/user"
	"github.com/gorilla/mux"
)

type DayRecordDTO struct {
	Date                  string `json:"date"`
	PeriodId              string `json:"periodId"`
	AllowanceCents        int64  `json:"allowanceCents"`
	PostedSpendCents      int64  `json:"postedSpendCents"`
	SlushBeforeCents      int64  `json:"slushBeforeCents"`
	SlushAfterCents       int64  `json:"slushAfterCents"`
	SpendableTodayCents   int64  `json:"spendableTodayCents"`
	BlueStreakContinues   bool   `json:"blueStreakContinues"`
	OrangeStreakContinues bool   `json:"orangeStreakContinues"`
	BlueStreakCount       int    `json:"blueStreakCount"`
	OrangeStreakCount     int    `json:"orangeStreakCount"`
	Status                string `json:"status"`
}

type StateDTO struct {
	LastClosed        string `json:"lastClosed,omitempty"`
	NextDayToClose    string `json:"nextDayToClose,omitempty"`
	SlushPeriodId     string `json:"slushPeriodId,omitempty"`
	SlushBalanceCents int64  `json:"slushBalanceCents"`
	BlueStreakCount   int    `json:"blueStreakCount"`
	OrangeStreakCount int    `json:"orangeStreakCount"`
}

type TodayDTO struct {
	Date                 string `json:"date"`
	PeriodId             string `json:"periodId"`
	Closed               bool   `json:"closed"`
	AllowanceCents       int64  `json:"allowanceCents"`
	PostedSpendCents     int64  `json:"postedSpendCents"`
	SpendableTodayCents  int64  `json:"spendableTodayCents"`
	AvailableCents       int64  `json:"availableCents"`
	SlushCents           int64  `json:"slushCents"`
	BlueStreakCount      int    `json:"blueStreakCount"`
	OrangeStreakCount    int    `json:"orangeStreakCount"`
	RemainingPeriodCents int64  `json:"remainingPeriodCents"`
	DaysLeft             int    `json:"daysLeft"`
}

type DateRequest struct {
	Date string `json:"date"`
}

type Handler struct {
	service Service
	clock   utils.Clock
}

func NewHandler(service Service, clock utils.Clock) *Handler {
	return &Handler{service: service, clock: clock}
}

// CloseDay godoc
// @Summary Close a day
// @Description Applies the day's allowance and posted spend to the ledger. Days close once, in order, without gaps.
// @Tags Ledger
// @Accept json
// @Produce json
// @Param request body DateRequest true "Day to close (YYYY-MM-DD)"
// @Success 200 {object} DayRecordDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date"
// @Failure 409 {object} rest.ErrorResponse "Day already closed or out of order"
// @Failure 422 {object} rest.ErrorResponse "No period contains the day"
// @Router /api/ledger/close [post]
// @Security XUserId
func (h *Handler) CloseDay(w http.ResponseWriter, r *http.Request) {
	var req DateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	record, err := h.service.CloseDay(r.Context(), date)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toRecordDTO(record))
}

// CatchUp godoc
// @Summary Close every open day
// @Description Closes all days up to the given one, yesterday by default, opening next periods as needed.
// @Tags Ledger
// @Accept json
// @Produce json
// @Param request body DateRequest false "Last day to close (YYYY-MM-DD)"
// @Success 200 {array} DayRecordDTO
// @Router /api/ledger/catch-up [post]
// @Security XUserId
func (h *Handler) CatchUp(w http.ResponseWriter, r *http.Request) {
	var req DateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			rest.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body format", "")
			return
		}
	}
	var through ledger.Date
	if req.Date != "" {
		parsed, err := ledger.ParseDate(req.Date)
		if err != nil {
			rest.WriteError(w, err)
			return
		}
		through = parsed
	} else {
		currentUser, err := user.CurrentUser(r.Context())
		if err != nil {
			rest.WriteErrorResponse(w, http.StatusUnauthorized, "User not found", "")
			return
		}
		through = utils.Today(h.clock, currentUser.Settings.Timezone).AddDays(-1)
	}
	records, err := h.service.CatchUp(r.Context(), through)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	dtos := make([]DayRecordDTO, 0, len(records))
	for _, record := range records {
		dtos = append(dtos, toRecordDTO(record))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// State godoc
// @Summary Ledger state
// @Tags Ledger
// @Produce json
// @Success 200 {object} StateDTO
// @Router /api/ledger/state [get]
// @Security XUserId
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.State(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	dto := StateDTO{
		SlushPeriodId:     state.Slush.PeriodId,
		SlushBalanceCents: state.Slush.BalanceCents,
		BlueStreakCount:   state.Streaks.BlueCurrentCount,
		OrangeStreakCount: state.Streaks.OrangeCurrentCount,
	}
	if !state.LastClosed.IsZero() {
		dto.LastClosed = state.LastClosed.String()
		dto.NextDayToClose = state.NextDayToClose().String()
	}
	rest.WriteJSON(w, http.StatusOK, dto)
}

// Today godoc
// @Summary Today's numbers
// @Tags Ledger
// @Produce json
// @Param date query string false "Day instead of today (YYYY-MM-DD)"
// @Success 200 {object} TodayDTO
// @Failure 422 {object} rest.ErrorResponse "No period contains the day"
// @Router /api/ledger/today [get]
// @Security XUserId
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	var date ledger.Date
	if value := r.URL.Query().Get("date"); value != "" {
		parsed, err := ledger.ParseDate(value)
		if err != nil {
			rest.WriteError(w, err)
			return
		}
		date = parsed
	}
	view, err := h.service.Today(r.Context(), date)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, TodayDTO{
		Date:                 view.Date.String(),
		PeriodId:             view.PeriodId,
		Closed:               view.Closed,
		AllowanceCents:       view.AllowanceCents,
		PostedSpendCents:     view.PostedSpendCents,
		SpendableTodayCents:  view.SpendableTodayCents,
		AvailableCents:       view.AvailableCents,
		SlushCents:           view.SlushCents,
		BlueStreakCount:      view.BlueStreakCount,
		OrangeStreakCount:    view.OrangeStreakCount,
		RemainingPeriodCents: view.RemainingPeriodCents,
		DaysLeft:             view.DaysLeft,
	})
}

// Records godoc
// @Summary Closed days of a period
// @Tags Ledger
// @Produce json
// @Param periodId path string true "Period ID"
// @Success 200 {array} DayRecordDTO
// @Failure 404 {object} rest.ErrorResponse "Period not found"
// @Router /api/period/{periodId}/days [get]
// @Security XUserId
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Records(r.Context(), mux.Vars(r)["periodId"])
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	dtos := make([]DayRecordDTO, 0, len(records))
	for _, record := range records {
		dtos = append(dtos, toRecordDTO(record))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func toRecordDTO(record ledger.DayRecord) DayRecordDTO {
	return DayRecordDTO{
		Date:                  record.Date.String(),
		PeriodId:              record.PeriodId,
		AllowanceCents:        record.AllowanceCents,
		PostedSpendCents:      record.PostedSpendCents,
		SlushBeforeCents:      record.SlushBeforeCents,
		SlushAfterCents:       record.SlushAfterCents,
		SpendableTodayCents:   record.SpendableTodayCents,
		BlueStreakContinues:   record.BlueStreakContinues,
		OrangeStreakContinues: record.OrangeStreakContinues,
		BlueStreakCount:       record.BlueStreakCount,
		OrangeStreakCount:     record.OrangeStreakCount,
		Status:                string(record.Status),
	}
}

package period

import (
	"encoding/json"
	"net/http"

	"github.com/dailydollars/dailydollars/internal/rest"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/gorilla/mux"
)

type PeriodDTO struct {
	Id                      string   `json:"id"`
	Cadence                 string   `json:"cadence"`
	StartDate               string   `json:"startDate"`
	EndDate                 string   `json:"endDate"`
	NumDays                 int      `json:"numDays"`
	Paydays                 []string `json:"paydays"`
	DiscretionaryTotalCents int64    `json:"discretionaryTotalCents"`
	RoundingReserveCents    int64    `json:"roundingReserveCents"`
	ExtraPaycheckDetected   bool     `json:"extraPaycheckDetected"`
	OpeningSlushCents       int64    `json:"openingSlushCents"`
	SentToSavingsCents      int64    `json:"sentToSavingsCents"`
	DiscardedSlushCents     int64    `json:"discardedSlushCents"`
	TotalRevised            bool     `json:"totalRevised"`
}

type OpenFirstRequest struct {
	// Date is any day the first period must contain. Empty means today.
	Date string `json:"date,omitempty"`
}

type OpenNextRequest struct {
	Carry     string `json:"carry,omitempty"`
	KeepCents int64  `json:"keepCents,omitempty"`
}

type ReviseTotalRequest struct {
	DiscretionaryTotalCents int64 `json:"discretionaryTotalCents"`
}

type ScheduleDTO struct {
	PeriodId   string  `json:"periodId"`
	Allowances []int64 `json:"allowances"`
	TotalCents int64   `json:"totalCents"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// OpenFirst godoc
// @Summary Open the first period
// @Tags Period
// @Accept json
// @Produce json
// @Param request body OpenFirstRequest false "Day the period must contain"
// @Success 201 {object} PeriodDTO
// @Failure 400 {object} rest.ErrorResponse "A period already exists"
// @Failure 422 {object} rest.ErrorResponse "Pay profile missing"
// @Router /api/period/first [post]
// @Security XUserId
func (h *Handler) OpenFirst(w http.ResponseWriter, r *http.Request) {
	var req OpenFirstRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			rest.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body format", "")
			return
		}
	}
	var on ledger.Date
	if req.Date != "" {
		parsed, err := ledger.ParseDate(req.Date)
		if err != nil {
			rest.WriteError(w, err)
			return
		}
		on = parsed
	}
	opened, err := h.service.OpenFirst(r.Context(), on)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(opened))
}

// OpenNext godoc
// @Summary Open the next period
// @Description Carries the previous period's slush according to the choice: keep (default), savings or split.
// @Tags Period
// @Accept json
// @Produce json
// @Param request body OpenNextRequest false "Carry choice"
// @Success 201 {object} PeriodDTO
// @Failure 400 {object} rest.ErrorResponse "Previous period not closed or invalid choice"
// @Router /api/period/next [post]
// @Security XUserId
func (h *Handler) OpenNext(w http.ResponseWriter, r *http.Request) {
	var req OpenNextRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			rest.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body format", "")
			return
		}
	}
	opened, err := h.service.OpenNext(r.Context(), ledger.CarryChoice{
		Kind:      ledger.CarryKind(req.Carry),
		KeepCents: req.KeepCents,
	})
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(opened))
}

// Current godoc
// @Summary Get the period containing today
// @Tags Period
// @Produce json
// @Param date query string false "Day instead of today (YYYY-MM-DD)"
// @Success 200 {object} PeriodDTO
// @Failure 404 {object} rest.ErrorResponse "No period for the day"
// @Router /api/period/current [get]
// @Security XUserId
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	var p Period
	var err error
	if date := r.URL.Query().Get("date"); date != "" {
		var on ledger.Date
		on, err = ledger.ParseDate(date)
		if err == nil {
			p, err = h.service.ForDate(r.Context(), on)
		}
	} else {
		p, err = h.service.Current(r.Context())
	}
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(p))
}

// Get godoc
// @Summary Get a period
// @Tags Period
// @Produce json
// @Param periodId path string true "Period ID"
// @Success 200 {object} PeriodDTO
// @Failure 404 {object} rest.ErrorResponse "Period not found"
// @Router /api/period/{periodId} [get]
// @Security XUserId
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), mux.Vars(r)["periodId"])
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(p))
}

// Schedule godoc
// @Summary Get the daily allowance schedule of a period
// @Tags Period
// @Produce json
// @Param periodId path string true "Period ID"
// @Success 200 {object} ScheduleDTO
// @Failure 404 {object} rest.ErrorResponse "Period not found"
// @Router /api/period/{periodId}/schedule [get]
// @Security XUserId
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["periodId"]
	schedule, err := h.service.Schedule(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ScheduleDTO{
		PeriodId:   id,
		Allowances: schedule,
		TotalCents: schedule.Total(),
	})
}

// ReviseTotal godoc
// @Summary Revise the discretionary total
// @Description Allowed once per period, before any of its days is closed.
// @Tags Period
// @Accept json
// @Produce json
// @Param periodId path string true "Period ID"
// @Param request body ReviseTotalRequest true "New total"
// @Success 200 {object} PeriodDTO
// @Failure 400 {object} rest.ErrorResponse "Revision not allowed"
// @Failure 404 {object} rest.ErrorResponse "Period not found"
// @Router /api/period/{periodId}/total [put]
// @Security XUserId
func (h *Handler) ReviseTotal(w http.ResponseWriter, r *http.Request) {
	var req ReviseTotalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	revised, err := h.service.ReviseDiscretionaryTotal(r.Context(), mux.Vars(r)["periodId"], req.DiscretionaryTotalCents)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(revised))
}

func toDTO(p Period) PeriodDTO {
	paydays := make([]string, 0, len(p.Paydays))
	for _, d := range p.Paydays {
		paydays = append(paydays, d.String())
	}
	return PeriodDTO{
		Id:                      p.Id,
		Cadence:                 string(p.Cadence),
		StartDate:               p.StartDate.String(),
		EndDate:                 p.EndDate.String(),
		NumDays:                 p.NumDays(),
		Paydays:                 paydays,
		DiscretionaryTotalCents: p.DiscretionaryTotalCents,
		RoundingReserveCents:    p.RoundingReserveCents,
		ExtraPaycheckDetected:   p.ExtraPaycheckDetected,
		OpeningSlushCents:       p.OpeningSlushCents,
		SentToSavingsCents:      p.SentToSavingsCents,
		DiscardedSlushCents:     p.DiscardedSlushCents,
		TotalRevised:            p.TotalRevised,
	}
}

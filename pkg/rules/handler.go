package rules

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dailydollars/dailydollars/internal/rest"
	"github.com/gorilla/mux"
)

type RuleDTO struct {
	Id          int    `json:"id"`
	Kind        string `json:"kind"`
	Pattern     string `json:"pattern"`
	Category    string `json:"category,omitempty"`
	AmountCents int64  `json:"amountCents"`
	Frequency   string `json:"frequency,omitempty"`
	// MonthlyCents is read only.
	MonthlyCents int64 `json:"monthlyCents"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List ignore and bill rules
// @Tags Rules
// @Produce json
// @Success 200 {array} RuleDTO
// @Router /api/rules [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	dtos := make([]RuleDTO, 0, len(all))
	for _, rule := range all {
		dtos = append(dtos, toDTO(rule))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Create godoc
// @Summary Create a rule
// @Tags Rules
// @Accept json
// @Produce json
// @Param rule body RuleDTO true "Rule"
// @Success 201 {object} RuleDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid rule"
// @Router /api/rules [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto RuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	created, err := h.service.Create(r.Context(), fromDTO(dto))
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Update godoc
// @Summary Update a rule
// @Tags Rules
// @Accept json
// @Produce json
// @Param ruleId path int true "Rule ID"
// @Param rule body RuleDTO true "Rule"
// @Success 200 {object} RuleDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid rule"
// @Failure 404 {object} rest.ErrorResponse "Rule not found"
// @Router /api/rules/{ruleId} [put]
// @Security XUserId
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ruleId(w, r)
	if !ok {
		return
	}
	var dto RuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	rule := fromDTO(dto)
	rule.Id = id
	updated, err := h.service.Update(r.Context(), rule)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Delete godoc
// @Summary Delete a rule
// @Tags Rules
// @Param ruleId path int true "Rule ID"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse "Rule not found"
// @Router /api/rules/{ruleId} [delete]
// @Security XUserId
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ruleId(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		rest.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MonthlyBillsTotal godoc
// @Summary Monthly bills total
// @Description Sum of all bill rules normalized to one month
// @Tags Rules
// @Produce json
// @Success 200 {object} object{monthlyBillsCents=int}
// @Router /api/rules/bills/total [get]
// @Security XUserId
func (h *Handler) MonthlyBillsTotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.MonthlyBillsTotal(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]int64{"monthlyBillsCents": total})
}

func ruleId(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["ruleId"])
	if err != nil {
		rest.WriteErrorResponse(w, http.StatusBadRequest, "Invalid ruleId format", "Parameter ruleId must be a number")
		return 0, false
	}
	return id, true
}

func toDTO(rule Rule) RuleDTO {
	return RuleDTO{
		Id:           rule.Id,
		Kind:         string(rule.Kind),
		Pattern:      rule.Pattern,
		Category:     rule.Category,
		AmountCents:  rule.AmountCents,
		Frequency:    string(rule.Frequency),
		MonthlyCents: rule.MonthlyCents(),
	}
}

func fromDTO(dto RuleDTO) Rule {
	return Rule{
		Id:          dto.Id,
		Kind:        Kind(dto.Kind),
		Pattern:     dto.Pattern,
		Category:    dto.Category,
		AmountCents: dto.AmountCents,
		Frequency:   Frequency(dto.Frequency),
	}
}

package transaction

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dailydollars/dailydollars/internal/rest"
	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/gorilla/mux"
)

type TransactionDTO struct {
	Id          string `json:"id,omitempty"`
	ExternalId  string `json:"externalId"`
	Date        string `json:"date"`
	Merchant    string `json:"merchant"`
	Category    string `json:"category,omitempty"`
	AmountCents int64  `json:"amountCents"`
	Tag         string `json:"tag,omitempty"`
	TagOverride string `json:"tagOverride,omitempty"`
}

type TagRequest struct {
	Tag string `json:"tag"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Ingest godoc
// @Summary Ingest transactions
// @Description Stores a batch of bank transactions. Transactions already known by external id are updated.
// @Tags Transactions
// @Accept json
// @Produce json
// @Param transactions body []TransactionDTO true "Transactions"
// @Success 200 {array} TransactionDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid transaction"
// @Router /api/transactions [post]
// @Security XUserId
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var dtos []TransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		rest.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	txs := make([]Transaction, 0, len(dtos))
	for _, dto := range dtos {
		tx, err := fromDTO(dto)
		if err != nil {
			rest.WriteError(w, err)
			return
		}
		txs = append(txs, tx)
	}
	stored, err := h.service.Ingest(r.Context(), txs)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTOs(stored))
}

// List godoc
// @Summary List transactions
// @Tags Transactions
// @Produce json
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {array} TransactionDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date"
// @Router /api/transactions [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	from, err := optionalDate(r.URL.Query().Get("from"))
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	to, err := optionalDate(r.URL.Query().Get("to"))
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	txs, err := h.service.List(r.Context(), from, to)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTOs(txs))
}

// Retag godoc
// @Summary Override a transaction tag
// @Tags Transactions
// @Accept json
// @Produce json
// @Param transactionId path string true "Transaction ID"
// @Param tag body TagRequest true "spend, bill or ignored"
// @Success 200 {object} TransactionDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid tag"
// @Failure 404 {object} rest.ErrorResponse "Transaction not found"
// @Router /api/transactions/{transactionId}/tag [put]
// @Security XUserId
func (h *Handler) Retag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	updated, err := h.service.Retag(r.Context(), mux.Vars(r)["transactionId"], ledger.Tag(req.Tag))
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// ClearOverride godoc
// @Summary Remove a tag override
// @Tags Transactions
// @Produce json
// @Param transactionId path string true "Transaction ID"
// @Success 200 {object} TransactionDTO
// @Failure 404 {object} rest.ErrorResponse "Transaction not found"
// @Router /api/transactions/{transactionId}/tag [delete]
// @Security XUserId
func (h *Handler) ClearOverride(w http.ResponseWriter, r *http.Request) {
	updated, err := h.service.ClearOverride(r.Context(), mux.Vars(r)["transactionId"])
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Reclassify godoc
// @Summary Reclassify open days
// @Description Re-runs the classifier for transactions after the last closed day
// @Tags Transactions
// @Produce json
// @Success 200 {object} object{changed=int}
// @Router /api/transactions/reclassify [post]
// @Security XUserId
func (h *Handler) Reclassify(w http.ResponseWriter, r *http.Request) {
	changed, err := h.service.Reclassify(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]int{"changed": changed})
}

func optionalDate(value string) (ledger.Date, error) {
	if value == "" {
		return ledger.Date{}, nil
	}
	return ledger.ParseDate(value)
}

func fromDTO(dto TransactionDTO) (Transaction, error) {
	date, err := ledger.ParseDate(dto.Date)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: %w", dto.ExternalId, err)
	}
	return Transaction{
		ExternalId:  dto.ExternalId,
		Date:        date,
		Merchant:    dto.Merchant,
		Category:    dto.Category,
		AmountCents: dto.AmountCents,
	}, nil
}

func toDTO(tx Transaction) TransactionDTO {
	return TransactionDTO{
		Id:          tx.Id,
		ExternalId:  tx.ExternalId,
		Date:        tx.Date.String(),
		Merchant:    tx.Merchant,
		Category:    tx.Category,
		AmountCents: tx.AmountCents,
		Tag:         string(tx.EffectiveTag()),
		TagOverride: string(tx.TagOverride),
	}
}

func toDTOs(txs []Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		dtos = append(dtos, toDTO(tx))
	}
	return dtos
}

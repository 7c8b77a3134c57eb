package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/abkawan/retail-ledger/internal/currency"
	"github.com/abkawan/retail-ledger/internal/db"
	"github.com/abkawan/retail-ledger/internal/models"
	"github.com/abkawan/retail-ledger/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// Quoter prices currency conversions
type Quoter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to currency.Code) (decimal.Decimal, error)
	Rates(ctx context.Context) (map[currency.Code]currency.Rate, error)
}

// Handler is for handling read-only audit requests
type Handler struct {
	accountService     *service.AccountService
	transactionService *service.JournalService
	eventService       *service.EventService
	quoter             Quoter
}

func NewHandler(accountService *service.AccountService, transactionService *service.JournalService, eventService *service.EventService, quoter Quoter) *Handler {
	return &Handler{
		accountService:     accountService,
		transactionService: transactionService,
		eventService:       eventService,
		quoter:             quoter,
	}
}

// ConversionResponse is a priced conversion
type ConversionResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	From      currency.Code   `json:"from"`
	To        currency.Code   `json:"to"`
	Converted decimal.Decimal `json:"converted"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// for error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// reads limit/offset query parameters, defaulting to 10 and 0
func pagination(r *http.Request) (limit, offset int) {
	limit, offset = 10, 0

	if parsed, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && parsed > 0 {
		limit = parsed
	}
	if limit > 100 {
		limit = 100
	}
	if parsed, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && parsed >= 0 {
		offset = parsed
	}
	return limit, offset
}

// reads the bank instance and account path parameters
func accountRef(r *http.Request) (bankID string, accountID int64, err error) {
	vars := mux.Vars(r)
	bank, err := uuid.Parse(vars["bankId"])
	if err != nil {
		return "", 0, errors.New("invalid bank id")
	}
	accountID, err = strconv.ParseInt(vars["accountId"], 10, 64)
	if err != nil || accountID <= 0 {
		return "", 0, errors.New("invalid account id")
	}
	return bank.String(), accountID, nil
}

// GetTransaction handles journal record retrieval
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := h.transactionService.GetTransaction(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// GetTransactions handles journal list retrieval for an account
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	bankID, id, err := accountRef(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, offset := pagination(r)

	recs, err := h.transactionService.GetTransactionsByAccountID(r.Context(), bankID, id, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Convert to response objects
	response := make([]*models.TransactionResponse, 0, len(recs))
	for _, rec := range recs {
		response = append(response, models.NewTransactionResponse(rec))
	}

	respondJSON(w, http.StatusOK, response)
}

// GetAccountActivity handles the account activity view
func (h *Handler) GetAccountActivity(w http.ResponseWriter, r *http.Request) {
	bankID, id, err := accountRef(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, offset := pagination(r)

	activity, err := h.accountService.GetActivity(r.Context(), bankID, id, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if activity.LastSnapshot == nil && offset == 0 {
		respondError(w, http.StatusNotFound, "Account not found")
		return
	}

	respondJSON(w, http.StatusOK, activity)
}

// GetEvents handles event log retrieval
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	level := models.EventLevel(r.URL.Query().Get("level"))

	events, err := h.eventService.GetEvents(r.Context(), level, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrUnknownEventLevel) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if events == nil {
		events = []*models.Event{}
	}

	respondJSON(w, http.StatusOK, events)
}

// Convert handles currency conversion quotes
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil || amount.IsNegative() {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	from, to := currency.Code(q.Get("from")), currency.Code(q.Get("to"))

	converted, err := h.quoter.Convert(r.Context(), amount, from, to)
	switch {
	case errors.Is(err, currency.ErrUnsupportedCurrency):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, currency.ErrRateUnavailable):
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, ConversionResponse{Amount: amount, From: from, To: to, Converted: converted})
}

// GetRates handles the current rate table
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.quoter.Rates(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rates)
}

// handles health check
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sets up the API routes
func SetupRoutes(r *mux.Router, h *Handler) {
	// Health check (check if API is working)
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	// Journal routes
	r.HandleFunc("/transactions/{id}", h.GetTransaction).Methods("GET")
	r.HandleFunc("/banks/{bankId}/accounts/{accountId}/transactions", h.GetTransactions).Methods("GET")
	r.HandleFunc("/banks/{bankId}/accounts/{accountId}/activity", h.GetAccountActivity).Methods("GET")

	// Event log
	r.HandleFunc("/events", h.GetEvents).Methods("GET")

	// Currency quotes
	r.HandleFunc("/rates", h.GetRates).Methods("GET")
	r.HandleFunc("/rates/convert", h.Convert).Methods("GET")
}

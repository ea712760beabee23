package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/ledger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/store"

	"github.com/go-chi/chi/v5"
)

type transactionRequest struct {
	Description     string  `json:"description"`
	Amount          string  `json:"amount"`
	Date            string  `json:"date"`
	PaymentDate     *string `json:"payment_date"`
	Type            string  `json:"type"`
	CategoryID      *string `json:"category_id"`
	AccountID       string  `json:"account_id"`
	ToAccountID     *string `json:"to_account_id"`
	Status          string  `json:"status"`
	IsRecurring     bool    `json:"is_recurring"`
	RecurringType   *string `json:"recurring_type"`
	RecurrenceCount int     `json:"recurrence_count"`
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	var paymentDate *time.Time
	if req.PaymentDate != nil && *req.PaymentDate != "" {
		parsed, err := parseDate(*req.PaymentDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_payment_date")
			return
		}
		paymentDate = &parsed
	}
	var recurringType *models.RecurringType
	if req.RecurringType != nil && *req.RecurringType != "" {
		kind := models.RecurringType(*req.RecurringType)
		recurringType = &kind
	}
	status := models.TransactionStatus(req.Status)
	if status == "" {
		status = models.TransactionPending
	}
	anchor, err := h.transactions.Create(r.Context(), ledger.Draft{
		UserID:          userID,
		Description:     req.Description,
		AmountMinor:     amountMinor,
		Date:            date,
		PaymentDate:     paymentDate,
		Type:            models.TransactionType(req.Type),
		CategoryID:      req.CategoryID,
		AccountID:       req.AccountID,
		ToAccountID:     req.ToAccountID,
		Status:          status,
		IsRecurring:     req.IsRecurring,
		RecurringType:   recurringType,
		RecurrenceCount: req.RecurrenceCount,
	})
	if err != nil {
		respondTransactionError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, anchor)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	filter := store.TransactionFilter{
		Type:      models.TransactionType(r.URL.Query().Get("type")),
		AccountID: r.URL.Query().Get("account_id"),
		Limit:     queryInt(r, "limit", 50),
		Offset:    queryInt(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_from")
			return
		}
		filter.From = &parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_to")
			return
		}
		filter.To = &parsed
	}
	records, err := h.transactions.List(r.Context(), userID, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	record, err := h.transactions.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondTransactionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

type transactionUpdateRequest struct {
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	Date        string  `json:"date"`
	PaymentDate *string `json:"payment_date"`
	CategoryID  *string `json:"category_id"`
	Status      string  `json:"status"`
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req transactionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	var paymentDate *time.Time
	if req.PaymentDate != nil && *req.PaymentDate != "" {
		parsed, err := parseDate(*req.PaymentDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_payment_date")
			return
		}
		paymentDate = &parsed
	}
	err = h.transactions.Update(r.Context(), userID, chi.URLParam(r, "id"), services.TransactionPatch{
		Description: req.Description,
		AmountMinor: amountMinor,
		Date:        date,
		PaymentDate: paymentDate,
		CategoryID:  req.CategoryID,
		Status:      models.TransactionStatus(req.Status),
	})
	if err != nil {
		respondTransactionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": chi.URLParam(r, "id")})
}

// DeleteTransaction removes one record, or the whole recurrence group when
// the request carries group=true and the record belongs to one.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	transactionID := chi.URLParam(r, "id")
	if r.URL.Query().Get("group") == "true" {
		record, err := h.transactions.Get(r.Context(), userID, transactionID)
		if err != nil {
			respondTransactionError(w, err)
			return
		}
		if record.GroupID == nil {
			respondError(w, http.StatusBadRequest, "transaction has no group")
			return
		}
		deleted, err := h.transactions.DeleteGroup(r.Context(), userID, *record.GroupID)
		if err != nil {
			respondTransactionError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
		return
	}
	if err := h.transactions.Delete(r.Context(), userID, transactionID); err != nil {
		respondTransactionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": transactionID})
}

func respondTransactionError(w http.ResponseWriter, err error) {
	var partial *services.PartialBatchError
	switch {
	case errors.Is(err, services.ErrTransactionNotFound):
		respondError(w, http.StatusNotFound, "transaction not found")
	case errors.Is(err, services.ErrAccountNotFound):
		respondError(w, http.StatusBadRequest, "account not found")
	case errors.Is(err, services.ErrCategoryNotFound):
		respondError(w, http.StatusBadRequest, "category not found")
	case errors.Is(err, services.ErrCategoryTypeMismatch):
		respondError(w, http.StatusBadRequest, "category type mismatch")
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSameAccountTransfer),
		errors.Is(err, ledger.ErrMissingToAccount),
		errors.Is(err, ledger.ErrUnexpectedToAccount),
		errors.Is(err, ledger.ErrMissingCategory),
		errors.Is(err, ledger.ErrMissingRecurringType),
		errors.Is(err, ledger.ErrInvalidTransactionType):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &partial):
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error":     "partial write",
			"persisted": partial.Succeeded,
		})
	default:
		respondError(w, http.StatusInternalServerError, "transaction operation failed")
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/middleware"
	"fintrack/internal/services"
	"fintrack/internal/subscription"
	"fintrack/internal/websocket"
)

type webhookRequest struct {
	Event         string `json:"event"`
	UserID        string `json:"user_id"`
	TransactionID string `json:"transaction_id"`
	OccurredAt    string `json:"occurred_at"`
}

// PaymentWebhook ingests payment gateway notifications. The gateway
// authenticates with a shared token, not a user JWT; redeliveries of the
// same transaction id are acknowledged with 200 so the gateway stops
// retrying.
func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Gateway-Token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.cfg.GatewayToken)) != 1 {
		respondError(w, http.StatusUnauthorized, "invalid gateway token")
		return
	}
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.UserID == "" || req.TransactionID == "" {
		respondError(w, http.StatusBadRequest, "user_id and transaction_id are required")
		return
	}
	var occurredAt time.Time
	if req.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid occurred_at")
			return
		}
		occurredAt = parsed
	}
	user, invoice, err := h.billing.HandleEvent(r.Context(), req.UserID, subscription.Event{
		Type:          subscription.EventType(req.Event),
		TransactionID: req.TransactionID,
		OccurredAt:    occurredAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, subscription.ErrUnknownEvent):
			respondError(w, http.StatusBadRequest, "unknown event type")
		case errors.Is(err, subscription.ErrUnknownInterval):
			respondError(w, http.StatusUnprocessableEntity, "unknown billing interval")
		default:
			respondError(w, http.StatusInternalServerError, "webhook processing failed")
		}
		return
	}
	response := map[string]any{
		"payment_status":  user.PaymentStatus,
		"expiration_date": user.ExpirationDate.Format("2006-01-02"),
	}
	if invoice != nil {
		response["invoice_id"] = invoice.ID
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *Handler) BillingStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	status, err := h.billing.Status(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load billing status")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":           status.Status,
		"days_overdue":     status.DaysOverdue,
		"expiration_date":  status.ExpirationDate.Format("2006-01-02"),
		"billing_attempts": status.BillingAttempts,
		"price":            formatMinor(status.PriceMinor),
	})
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	invoices, err := h.billing.Invoices(r.Context(), userID, queryInt(r, "limit", 20), queryInt(r, "offset", 0))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load invoices")
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}

func (h *Handler) WSBilling(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}

package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"fintrack/internal/db"
	"fintrack/internal/models"
	"fintrack/internal/store"
	"fintrack/internal/subscription"
	"fintrack/internal/websocket"
)

var ErrUserNotFound = errors.New("user not found")

type UserStore interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.User, error)
	UpdateBilling(ctx context.Context, tx store.Execer, userID string, update store.BillingUpdate) error
}

type InvoiceStore interface {
	Create(ctx context.Context, tx store.Execer, invoice models.Invoice) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Invoice, error)
}

type BillingHub interface {
	BroadcastBilling(userID string, update websocket.BillingUpdate)
}

type BillingService struct {
	txRunner db.TxRunner
	users    UserStore
	invoices InvoiceStore
	audit    AuditStore
	hub      BillingHub
	now      func() time.Time
}

func NewBillingService(txRunner db.TxRunner, users UserStore, invoices InvoiceStore, audit AuditStore, hub BillingHub) *BillingService {
	return &BillingService{
		txRunner: txRunner,
		users:    users,
		invoices: invoices,
		audit:    audit,
		hub:      hub,
		now:      time.Now,
	}
}

// HandleEvent applies one gateway webhook delivery to the subscriber's
// billing state. The user row is locked for the duration of the
// transaction, so redeliveries and concurrent deliveries serialize; the
// idempotency check inside the state machine then makes reprocessing a
// no-op.
func (s *BillingService) HandleEvent(ctx context.Context, userID string, event subscription.Event) (models.User, *models.Invoice, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	var updated models.User
	var invoice *models.Invoice
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		user, err := s.users.GetForUpdate(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
		state := subscription.State{
			ExpirationDate:  user.ExpirationDate,
			PaymentStatus:   user.PaymentStatus,
			BillingAttempts: user.BillingAttempts,
			BillingInterval: user.BillingInterval,
			PriceMinor:      user.PriceMinor,
			LastInvoiceID:   user.LastInvoiceID,
		}
		newState, newInvoice, err := subscription.Apply(event, state)
		if err != nil {
			return err
		}
		if newInvoice != nil {
			newInvoice.UserID = userID
			if err := s.invoices.Create(ctx, tx, *newInvoice); err != nil {
				return err
			}
		}
		if err := s.users.UpdateBilling(ctx, tx, userID, store.BillingUpdate{
			ExpirationDate:  newState.ExpirationDate,
			PaymentStatus:   newState.PaymentStatus,
			BillingAttempts: newState.BillingAttempts,
			LastInvoiceID:   newState.LastInvoiceID,
		}); err != nil {
			return err
		}
		user.ExpirationDate = newState.ExpirationDate
		user.PaymentStatus = newState.PaymentStatus
		user.BillingAttempts = newState.BillingAttempts
		user.LastInvoiceID = newState.LastInvoiceID
		updated = user
		invoice = newInvoice

		data, _ := json.Marshal(map[string]string{
			"event":          string(event.Type),
			"transaction_id": event.TransactionID,
		})
		return s.audit.Log(ctx, tx, userID, "billing_"+string(event.Type), "user", userID, string(data))
	})
	if err != nil {
		return models.User{}, nil, err
	}
	status, daysOverdue := subscription.DetermineStatus(s.now().UTC(), updated.ExpirationDate)
	s.hub.BroadcastBilling(userID, websocket.BillingUpdate{
		PaymentStatus:  string(status),
		ExpirationDate: updated.ExpirationDate.Format("2006-01-02"),
		DaysOverdue:    daysOverdue,
	})
	return updated, invoice, nil
}

type BillingStatus struct {
	Status          models.PaymentStatus `json:"status"`
	DaysOverdue     int                  `json:"days_overdue"`
	ExpirationDate  time.Time            `json:"expiration_date"`
	BillingAttempts int                  `json:"billing_attempts"`
	PriceMinor      int64                `json:"price_minor"`
}

// Status derives the banner payload from the current date. The derived
// status is never written back here: only HandleEvent mutates the
// persisted billing fields.
func (s *BillingService) Status(ctx context.Context, userID string) (BillingStatus, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BillingStatus{}, ErrUserNotFound
		}
		return BillingStatus{}, err
	}
	status, daysOverdue := subscription.DetermineStatus(s.now().UTC(), user.ExpirationDate)
	return BillingStatus{
		Status:          status,
		DaysOverdue:     daysOverdue,
		ExpirationDate:  user.ExpirationDate,
		BillingAttempts: user.BillingAttempts,
		PriceMinor:      user.PriceMinor,
	}, nil
}

func (s *BillingService) Invoices(ctx context.Context, userID string, limit, offset int) ([]models.Invoice, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.invoices.ListByUser(ctx, userID, limit, offset)
}

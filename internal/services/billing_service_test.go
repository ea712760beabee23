package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/store"
	"fintrack/internal/subscription"
)

func billingUser(expiration time.Time) models.User {
	return models.User{
		ID:              "user-1",
		ExpirationDate:  expiration,
		PaymentStatus:   models.PaymentPaid,
		BillingInterval: models.IntervalMonthly,
		PriceMinor:      2990,
	}
}

func fixedNow(service *BillingService, now time.Time) {
	service.now = func() time.Time { return now }
}

func TestHandlePaymentReceived(t *testing.T) {
	expiration := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	var savedInvoice models.Invoice
	var savedBilling store.BillingUpdate
	hub := &stubHub{}
	service := NewBillingService(fakeTxRunner{}, stubUserStore{
		getForUpdateFn: func(_ context.Context, _ store.Getter, userID string) (models.User, error) {
			return billingUser(expiration), nil
		},
		updateBillingFn: func(_ context.Context, _ store.Execer, _ string, update store.BillingUpdate) error {
			savedBilling = update
			return nil
		},
	}, stubInvoiceStore{
		createFn: func(_ context.Context, _ store.Execer, invoice models.Invoice) error {
			savedInvoice = invoice
			return nil
		},
	}, stubAuditStore{}, hub)
	fixedNow(service, time.Date(2024, 1, 14, 12, 0, 0, 0, time.UTC))

	updated, invoice, err := service.HandleEvent(context.Background(), "user-1", subscription.Event{
		Type:          subscription.EventPaymentReceived,
		TransactionID: "gw-1",
		OccurredAt:    time.Date(2024, 1, 14, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	if !updated.ExpirationDate.Equal(want) {
		t.Fatalf("expected expiration %v, got %v", want, updated.ExpirationDate)
	}
	if invoice == nil || invoice.UserID != "user-1" || invoice.AmountMinor != 2990 {
		t.Fatalf("unexpected invoice: %#v", invoice)
	}
	if !savedInvoice.DueDate.Equal(expiration) {
		t.Fatalf("invoice due date must be the pre-payment expiration, got %v", savedInvoice.DueDate)
	}
	if savedBilling.LastInvoiceID == nil || *savedBilling.LastInvoiceID != "gw-1" {
		t.Fatalf("expected gateway transaction id recorded, got %#v", savedBilling.LastInvoiceID)
	}
	if len(hub.calls) != 1 || hub.calls[0].PaymentStatus != string(models.PaymentPaid) {
		t.Fatalf("expected one PAID broadcast, got %#v", hub.calls)
	}
}

func TestHandlePaymentReceivedRedelivery(t *testing.T) {
	expiration := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	invoices := 0
	user := billingUser(expiration)
	user.LastInvoiceID = stringPtr("gw-1")
	service := NewBillingService(fakeTxRunner{}, stubUserStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (models.User, error) {
			return user, nil
		},
	}, stubInvoiceStore{
		createFn: func(context.Context, store.Execer, models.Invoice) error {
			invoices++
			return nil
		},
	}, stubAuditStore{}, &stubHub{})
	fixedNow(service, expiration)

	updated, invoice, err := service.HandleEvent(context.Background(), "user-1", subscription.Event{
		Type:          subscription.EventPaymentReceived,
		TransactionID: "gw-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invoice != nil || invoices != 0 {
		t.Fatalf("redelivery must not emit a second invoice")
	}
	if !updated.ExpirationDate.Equal(expiration) {
		t.Fatalf("redelivery must not advance expiration, got %v", updated.ExpirationDate)
	}
}

func TestHandlePaymentFailed(t *testing.T) {
	var savedBilling store.BillingUpdate
	service := NewBillingService(fakeTxRunner{}, stubUserStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (models.User, error) {
			user := billingUser(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
			user.BillingAttempts = 2
			return user, nil
		},
		updateBillingFn: func(_ context.Context, _ store.Execer, _ string, update store.BillingUpdate) error {
			savedBilling = update
			return nil
		},
	}, stubInvoiceStore{
		createFn: func(context.Context, store.Execer, models.Invoice) error {
			t.Fatal("failure must not create an invoice")
			return nil
		},
	}, stubAuditStore{}, &stubHub{})
	fixedNow(service, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC))

	_, invoice, err := service.HandleEvent(context.Background(), "user-1", subscription.Event{
		Type:          subscription.EventPaymentFailed,
		TransactionID: "gw-2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invoice != nil {
		t.Fatal("failure must not return an invoice")
	}
	if savedBilling.BillingAttempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", savedBilling.BillingAttempts)
	}
	if savedBilling.PaymentStatus != models.PaymentPaid {
		t.Fatalf("failure alone must not change the stored status, got %s", savedBilling.PaymentStatus)
	}
}

func TestHandleEventUserMissing(t *testing.T) {
	service := NewBillingService(fakeTxRunner{}, stubUserStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (models.User, error) {
			return models.User{}, sql.ErrNoRows
		},
	}, stubInvoiceStore{}, stubAuditStore{}, &stubHub{})

	_, _, err := service.HandleEvent(context.Background(), "missing", subscription.Event{
		Type: subscription.EventPaymentReceived, TransactionID: "gw-3",
	})
	if err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestBillingStatusDerived(t *testing.T) {
	expiration := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	service := NewBillingService(fakeTxRunner{}, stubUserStore{
		getByIDFn: func(context.Context, string) (models.User, error) {
			return billingUser(expiration), nil
		},
	}, stubInvoiceStore{}, stubAuditStore{}, &stubHub{})
	fixedNow(service, time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC))

	status, err := service.Status(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Status != models.PaymentOverdue || status.DaysOverdue != 2 {
		t.Fatalf("expected OVERDUE/2, got %s/%d", status.Status, status.DaysOverdue)
	}

	fixedNow(service, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))
	status, err = service.Status(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Status != models.PaymentSuspended {
		t.Fatalf("expected SUSPENDED, got %s", status.Status)
	}
}

func TestInvoicesDefaultLimit(t *testing.T) {
	var gotLimit int
	service := NewBillingService(fakeTxRunner{}, stubUserStore{}, stubInvoiceStore{
		listFn: func(_ context.Context, _ string, limit, _ int) ([]models.Invoice, error) {
			gotLimit = limit
			return nil, nil
		},
	}, stubAuditStore{}, &stubHub{})

	if _, err := service.Invoices(context.Background(), "user-1", 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 20 {
		t.Fatalf("expected default limit 20, got %d", gotLimit)
	}
}

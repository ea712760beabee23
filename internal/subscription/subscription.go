// Package subscription derives a payment status from dates and applies
// payment-gateway events to the subscriber's billing state. Everything here
// is pure: callers decide what to persist.
package subscription

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/models"
)

// OverdueGraceDays is how many days past expiration a subscriber stays
// OVERDUE before being reported SUSPENDED.
const OverdueGraceDays = 3

var (
	ErrUnknownInterval = errors.New("unknown billing interval")
	ErrUnknownEvent    = errors.New("unknown payment event type")
)

// DetermineStatus maps the distance between now and the expiration date to
// a payment status. Deterministic and total: repeated calls with the same
// inputs always agree, and days overdue is never reported negative.
func DetermineStatus(now, expiration time.Time) (models.PaymentStatus, int) {
	daysOverdue := int(math.Ceil(now.Sub(expiration).Hours() / 24))
	switch {
	case daysOverdue <= 0:
		return models.PaymentPaid, 0
	case daysOverdue <= OverdueGraceDays:
		return models.PaymentOverdue, daysOverdue
	default:
		return models.PaymentSuspended, daysOverdue
	}
}

// NextExpiration advances an expiration date by one billing interval. The
// base is the current expiration, not "now", so early or catch-up payments
// never shorten the paid period.
func NextExpiration(current time.Time, interval models.BillingInterval) (time.Time, error) {
	switch interval {
	case models.IntervalMonthly:
		return current.AddDate(0, 1, 0), nil
	case models.IntervalQuarterly:
		return current.AddDate(0, 3, 0), nil
	case models.IntervalSemester:
		return current.AddDate(0, 6, 0), nil
	case models.IntervalAnnual:
		return current.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, ErrUnknownInterval
	}
}

// ValidateDocument strips non-digit characters and checks the digit count:
// 11 for personal documents, 14 for business ones. No checksum is applied.
func ValidateDocument(document string, kind models.DocumentKind) bool {
	digits := 0
	for _, r := range document {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	switch kind {
	case models.DocumentPersonal:
		return digits == 11
	case models.DocumentBusiness:
		return digits == 14
	default:
		return false
	}
}

type EventType string

const (
	EventPaymentReceived EventType = "PAYMENT_RECEIVED"
	EventPaymentFailed   EventType = "PAYMENT_FAILED"
)

// Event is one payment-gateway webhook delivery.
type Event struct {
	Type          EventType
	TransactionID string
	OccurredAt    time.Time
}

// State is the billing slice of a subscriber's record.
type State struct {
	ExpirationDate  time.Time
	PaymentStatus   models.PaymentStatus
	BillingAttempts int
	BillingInterval models.BillingInterval
	PriceMinor      int64
	LastInvoiceID   *string
}

// Apply runs one event against the state machine and returns the new state
// plus the invoice to persist, if the event produced one.
//
// PAYMENT_FAILED only increments the attempt counter: suspension comes from
// DetermineStatus alone, never from failure count. PAYMENT_RECEIVED always
// wins over the current status, even SUSPENDED. A redelivered
// PAYMENT_RECEIVED carrying an already-recorded transaction id is
// acknowledged without changing anything.
func Apply(event Event, state State) (State, *models.Invoice, error) {
	switch event.Type {
	case EventPaymentFailed:
		state.BillingAttempts++
		return state, nil, nil
	case EventPaymentReceived:
		if state.LastInvoiceID != nil && *state.LastInvoiceID == event.TransactionID {
			return state, nil, nil
		}
		dueDate := state.ExpirationDate
		next, err := NextExpiration(dueDate, state.BillingInterval)
		if err != nil {
			return state, nil, err
		}
		paidAt := event.OccurredAt
		state.ExpirationDate = next
		state.PaymentStatus = models.PaymentPaid
		state.BillingAttempts = 0
		state.LastInvoiceID = &event.TransactionID
		invoice := &models.Invoice{
			ID:             uuid.NewString(),
			AmountMinor:    state.PriceMinor,
			Status:         models.InvoicePaid,
			DueDate:        dueDate,
			PaidAt:         &paidAt,
			ReferenceMonth: referenceMonth(event.OccurredAt),
		}
		return state, invoice, nil
	default:
		return state, nil, ErrUnknownEvent
	}
}

func referenceMonth(at time.Time) string {
	return at.Format("January/2006")
}

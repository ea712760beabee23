// Package ledger turns one logical transaction draft into the concrete
// set of records to persist: a single record, N installment records, or
// twelve fixed-recurrence records.
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// FixedOccurrences is how many monthly records a FIXED recurrence produces.
const FixedOccurrences = 12

var (
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrSameAccountTransfer    = errors.New("cannot transfer to same account")
	ErrMissingToAccount       = errors.New("transfer requires destination account")
	ErrUnexpectedToAccount    = errors.New("destination account only valid for transfers")
	ErrMissingCategory        = errors.New("category is required")
	ErrMissingRecurringType   = errors.New("recurring transaction requires recurring type")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
)

// Draft is a user-entered transaction before expansion.
type Draft struct {
	ID              string
	UserID          string
	Description     string
	AmountMinor     int64
	Date            time.Time
	PaymentDate     *time.Time
	Type            models.TransactionType
	CategoryID      *string
	AccountID       string
	ToAccountID     *string
	Status          models.TransactionStatus
	IsRecurring     bool
	RecurringType   *models.RecurringType
	RecurrenceCount int
	GroupID         *string
	ParentID        *string
}

// Validate rejects drafts that must never reach the store.
func Validate(d Draft) error {
	if d.AmountMinor <= 0 {
		return ErrInvalidAmount
	}
	switch d.Type {
	case models.TransactionIncome, models.TransactionExpense:
		if d.ToAccountID != nil {
			return ErrUnexpectedToAccount
		}
		if d.CategoryID == nil || *d.CategoryID == "" {
			return ErrMissingCategory
		}
	case models.TransactionTransfer:
		if d.ToAccountID == nil || *d.ToAccountID == "" {
			return ErrMissingToAccount
		}
		if *d.ToAccountID == d.AccountID {
			return ErrSameAccountTransfer
		}
	default:
		return ErrInvalidTransactionType
	}
	if d.IsRecurring && d.RecurringType == nil {
		return ErrMissingRecurringType
	}
	return nil
}

// Expand produces the record set for a draft. The first returned record is
// the anchor: it keeps the caller-supplied id so UI references stay stable.
// A draft that already carries a group id is never re-expanded, so editing
// one member of an existing group cannot spawn new siblings.
func Expand(d Draft) ([]models.Transaction, error) {
	if err := Validate(d); err != nil {
		return nil, err
	}
	if !d.IsRecurring || d.GroupID != nil {
		return []models.Transaction{record(d, anchorID(d), d.AmountMinor, d.Date, d.GroupID, nil, nil)}, nil
	}
	switch *d.RecurringType {
	case models.RecurringInstallment:
		if d.RecurrenceCount <= 1 {
			return []models.Transaction{record(d, anchorID(d), d.AmountMinor, d.Date, nil, nil, nil)}, nil
		}
		return expandInstallments(d), nil
	case models.RecurringFixed:
		return expandFixed(d), nil
	default:
		return nil, ErrMissingRecurringType
	}
}

func expandInstallments(d Draft) []models.Transaction {
	groupID := uuid.NewString()
	count := d.RecurrenceCount
	unit, first := SplitMinor(d.AmountMinor, count)
	records := make([]models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		amount := unit
		if i == 0 {
			amount = first
		}
		id := uuid.NewString()
		if i == 0 {
			id = anchorID(d)
		}
		current := i + 1
		total := count
		records = append(records, record(d, id, amount, d.Date.AddDate(0, i, 0), &groupID, &current, &total))
	}
	return records
}

func expandFixed(d Draft) []models.Transaction {
	groupID := uuid.NewString()
	records := make([]models.Transaction, 0, FixedOccurrences)
	for i := 0; i < FixedOccurrences; i++ {
		id := uuid.NewString()
		if i == 0 {
			id = anchorID(d)
		}
		records = append(records, record(d, id, d.AmountMinor, d.Date.AddDate(0, i, 0), &groupID, nil, nil))
	}
	return records
}

// SplitMinor divides an amount in minor units across count installments.
// The unit is the banker's-rounded share; the first installment absorbs the
// rounding remainder so the members always sum to the original amount.
func SplitMinor(amountMinor int64, count int) (unit, first int64) {
	unit = decimal.NewFromInt(amountMinor).
		Div(decimal.NewFromInt(int64(count))).
		RoundBank(0).
		IntPart()
	first = unit + (amountMinor - unit*int64(count))
	return unit, first
}

func anchorID(d Draft) string {
	if d.ID != "" {
		return d.ID
	}
	return uuid.NewString()
}

func record(d Draft, id string, amountMinor int64, date time.Time, groupID *string, current, total *int) models.Transaction {
	return models.Transaction{
		ID:                 id,
		UserID:             d.UserID,
		Description:        d.Description,
		AmountMinor:        amountMinor,
		Date:               date,
		PaymentDate:        d.PaymentDate,
		Type:               d.Type,
		CategoryID:         d.CategoryID,
		AccountID:          d.AccountID,
		ToAccountID:        d.ToAccountID,
		Status:             d.Status,
		IsRecurring:        d.IsRecurring,
		RecurringType:      d.RecurringType,
		InstallmentCurrent: current,
		InstallmentTotal:   total,
		GroupID:            groupID,
		ParentID:           d.ParentID,
	}
}

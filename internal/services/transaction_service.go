package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"fintrack/internal/db"
	"fintrack/internal/ledger"
	"fintrack/internal/models"
	"fintrack/internal/store"
)

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryTypeMismatch = errors.New("category type does not match transaction type")
	ErrTransactionNotFound  = errors.New("transaction not found")
)

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, t models.Transaction) error
	CreateBatch(ctx context.Context, tx store.Execer, records []models.Transaction) error
	GetByID(ctx context.Context, userID, transactionID string) (models.Transaction, error)
	ListByUser(ctx context.Context, userID string, filter store.TransactionFilter) ([]models.Transaction, error)
	Update(ctx context.Context, tx store.Execer, userID, transactionID string, patch store.TransactionPatch) (int64, error)
	Delete(ctx context.Context, tx store.Execer, userID, transactionID string) (int64, error)
	DeleteGroup(ctx context.Context, tx store.Execer, userID, groupID string) (int64, error)
}

type AccountStore interface {
	GetByID(ctx context.Context, userID, accountID string) (models.Account, error)
}

type CategoryReader interface {
	GetByID(ctx context.Context, userID, categoryID string) (models.Category, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type TransactionService struct {
	txRunner   db.TxRunner
	txStore    TransactionStore
	accounts   AccountStore
	categories CategoryReader
	audit      AuditStore
}

func NewTransactionService(txRunner db.TxRunner, txStore TransactionStore, accounts AccountStore, categories CategoryReader, audit AuditStore) *TransactionService {
	return &TransactionService{
		txRunner:   txRunner,
		txStore:    txStore,
		accounts:   accounts,
		categories: categories,
		audit:      audit,
	}
}

// Create expands the draft into its record set and persists the whole set
// in one transaction. The anchor record is returned: for a recurrence
// group that is the first member, which keeps the caller-supplied id.
func (s *TransactionService) Create(ctx context.Context, draft ledger.Draft) (models.Transaction, error) {
	records, err := ledger.Expand(draft)
	if err != nil {
		return models.Transaction{}, err
	}
	if err := s.checkReferences(ctx, draft); err != nil {
		return models.Transaction{}, err
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.txStore.CreateBatch(ctx, tx, records); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]any{
			"transaction_id": records[0].ID,
			"records":        len(records),
		})
		return s.audit.Log(ctx, tx, draft.UserID, "transaction_create", "transaction", records[0].ID, string(data))
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return records[0], nil
}

// CreateEach is the degraded path for collaborators without batch
// atomicity: records are written one by one and a failure partway through
// surfaces as a PartialBatchError naming the rows already persisted, so
// the caller can compensate instead of discovering a half-written group
// later.
func (s *TransactionService) CreateEach(ctx context.Context, rows store.Execer, draft ledger.Draft) (models.Transaction, error) {
	records, err := ledger.Expand(draft)
	if err != nil {
		return models.Transaction{}, err
	}
	if err := s.checkReferences(ctx, draft); err != nil {
		return models.Transaction{}, err
	}
	var succeeded []string
	for _, record := range records {
		if err := s.txStore.Create(ctx, rows, record); err != nil {
			if len(succeeded) == 0 {
				return models.Transaction{}, err
			}
			return models.Transaction{}, &PartialBatchError{Succeeded: succeeded, Err: err}
		}
		succeeded = append(succeeded, record.ID)
	}
	return records[0], nil
}

func (s *TransactionService) Get(ctx context.Context, userID, transactionID string) (models.Transaction, error) {
	record, err := s.txStore.GetByID(ctx, userID, transactionID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, ErrTransactionNotFound
	}
	return record, err
}

func (s *TransactionService) List(ctx context.Context, userID string, filter store.TransactionFilter) ([]models.Transaction, error) {
	return s.txStore.ListByUser(ctx, userID, filter)
}

type TransactionPatch struct {
	Description string
	AmountMinor int64
	Date        time.Time
	PaymentDate *time.Time
	CategoryID  *string
	Status      models.TransactionStatus
}

// Update edits exactly one record. Members of a recurrence group are
// edited individually: siblings are never regenerated or rewritten.
func (s *TransactionService) Update(ctx context.Context, userID, transactionID string, patch TransactionPatch) error {
	if patch.AmountMinor <= 0 {
		return ledger.ErrInvalidAmount
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		updated, err := s.txStore.Update(ctx, tx, userID, transactionID, store.TransactionPatch{
			Description: patch.Description,
			AmountMinor: patch.AmountMinor,
			Date:        patch.Date,
			PaymentDate: patch.PaymentDate,
			CategoryID:  patch.CategoryID,
			Status:      patch.Status,
		})
		if err != nil {
			return err
		}
		if updated == 0 {
			return ErrTransactionNotFound
		}
		return s.audit.Log(ctx, tx, userID, "transaction_update", "transaction", transactionID, "{}")
	})
}

// Delete removes one record. Removing a whole recurrence group is a
// separate, explicit call: nothing cascades implicitly.
func (s *TransactionService) Delete(ctx context.Context, userID, transactionID string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		deleted, err := s.txStore.Delete(ctx, tx, userID, transactionID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrTransactionNotFound
		}
		return s.audit.Log(ctx, tx, userID, "transaction_delete", "transaction", transactionID, "{}")
	})
}

func (s *TransactionService) DeleteGroup(ctx context.Context, userID, groupID string) (int64, error) {
	var deleted int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		deleted, err = s.txStore.DeleteGroup(ctx, tx, userID, groupID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrTransactionNotFound
		}
		return s.audit.Log(ctx, tx, userID, "transaction_delete_group", "transaction_group", groupID, "{}")
	})
	return deleted, err
}

func (s *TransactionService) checkReferences(ctx context.Context, draft ledger.Draft) error {
	if _, err := s.accounts.GetByID(ctx, draft.UserID, draft.AccountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}
	if draft.ToAccountID != nil {
		if _, err := s.accounts.GetByID(ctx, draft.UserID, *draft.ToAccountID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAccountNotFound
			}
			return err
		}
	}
	if draft.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, draft.UserID, *draft.CategoryID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCategoryNotFound
			}
			return err
		}
		if string(category.Type) != string(draft.Type) {
			return ErrCategoryTypeMismatch
		}
	}
	return nil
}

package store

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/models"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

const transactionInsert = `
	INSERT INTO transactions (id, user_id, description, amount_minor, date, payment_date, type,
	                          category_id, account_id, to_account_id, status, is_recurring,
	                          recurring_type, installment_current, installment_total, group_id, parent_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
`

func (s *TransactionStore) Create(ctx context.Context, tx Execer, t models.Transaction) error {
	_, err := tx.ExecContext(ctx, transactionInsert, transactionArgs(t)...)
	return err
}

// CreateBatch inserts a whole recurrence group. Callers run it inside a
// transaction so a partial group can never be left behind.
func (s *TransactionStore) CreateBatch(ctx context.Context, tx Execer, records []models.Transaction) error {
	for _, t := range records {
		if _, err := tx.ExecContext(ctx, transactionInsert, transactionArgs(t)...); err != nil {
			return err
		}
	}
	return nil
}

const transactionColumns = `
	id, user_id, description, amount_minor, date, payment_date, type, category_id,
	account_id, to_account_id, status, is_recurring, recurring_type,
	installment_current, installment_total, group_id, parent_id, created_at
`

func (s *TransactionStore) GetByID(ctx context.Context, userID, transactionID string) (models.Transaction, error) {
	var row models.Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = $1 AND user_id = $2
	`, transactionID, userID)
	return row, err
}

type TransactionFilter struct {
	Type      models.TransactionType
	AccountID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += ` AND type = $` + itoa(len(args))
	}
	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		query += ` AND (account_id = $` + itoa(len(args)) + ` OR to_account_id = $` + itoa(len(args)) + `)`
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += ` AND date >= $` + itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += ` AND date <= $` + itoa(len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += ` ORDER BY date DESC, created_at DESC LIMIT $` + itoa(len(args))
	args = append(args, filter.Offset)
	query += ` OFFSET $` + itoa(len(args))

	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

type TransactionPatch struct {
	Description string
	AmountMinor int64
	Date        time.Time
	PaymentDate *time.Time
	CategoryID  *string
	Status      models.TransactionStatus
}

// Update patches one record. Recurrence metadata is immutable here:
// editing a member never regenerates or retags its siblings.
func (s *TransactionStore) Update(ctx context.Context, tx Execer, userID, transactionID string, patch TransactionPatch) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET description = $1, amount_minor = $2, date = $3, payment_date = $4, category_id = $5, status = $6
		WHERE id = $7 AND user_id = $8
	`, patch.Description, patch.AmountMinor, patch.Date, patch.PaymentDate, patch.CategoryID, patch.Status,
		transactionID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TransactionStore) Delete(ctx context.Context, tx Execer, userID, transactionID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM transactions WHERE id = $1 AND user_id = $2
	`, transactionID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TransactionStore) DeleteGroup(ctx context.Context, tx Execer, userID, groupID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM transactions WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TransactionStore) CountByCategory(ctx context.Context, userID, categoryID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM transactions WHERE category_id = $1 AND user_id = $2
	`, categoryID, userID)
	return count, err
}

func itoa(value int) string {
	return fmt.Sprintf("%d", value)
}

func transactionArgs(t models.Transaction) []any {
	return []any{
		t.ID, t.UserID, t.Description, t.AmountMinor, t.Date, t.PaymentDate, t.Type,
		t.CategoryID, t.AccountID, t.ToAccountID, t.Status, t.IsRecurring,
		t.RecurringType, t.InstallmentCurrent, t.InstallmentTotal, t.GroupID, t.ParentID,
	}
}

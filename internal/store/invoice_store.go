package store

import (
	"context"

	"fintrack/internal/models"
)

type InvoiceStore struct {
	db DB
}

func NewInvoiceStore(db DB) *InvoiceStore {
	return &InvoiceStore{db: db}
}

// Create writes an invoice. Invoices are immutable after creation: there is
// deliberately no update method on this store.
func (s *InvoiceStore) Create(ctx context.Context, tx Execer, invoice models.Invoice) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO invoices (id, user_id, amount_minor, status, due_date, paid_at, reference_month, pdf_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, invoice.ID, invoice.UserID, invoice.AmountMinor, invoice.Status,
		invoice.DueDate, invoice.PaidAt, invoice.ReferenceMonth, invoice.PDFURL)
	return err
}

func (s *InvoiceStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Invoice, error) {
	var rows []models.Invoice
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, amount_minor, status, due_date, paid_at, reference_month, pdf_url, created_at
		FROM invoices
		WHERE user_id = $1
		ORDER BY due_date DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return rows, err
}

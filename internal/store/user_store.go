package store

import (
	"context"
	"time"

	"fintrack/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

type UserInput struct {
	ID              string
	Username        string
	Email           string
	PasswordHash    string
	AccountType     models.DocumentKind
	Document        string
	ExpirationDate  time.Time
	BillingInterval models.BillingInterval
	PriceMinor      int64
}

func (s *UserStore) Create(ctx context.Context, tx Execer, input UserInput) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, account_type, document,
		                   expiration_date, payment_status, billing_attempts, billing_interval, price_minor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'PAID', 0, $8, $9)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.Username, input.Email, input.PasswordHash, input.AccountType,
		input.Document, input.ExpirationDate, input.BillingInterval, input.PriceMinor,
	)
	return err
}

const userColumns = `
	id, username, email, password_hash, account_type, document, expiration_date,
	payment_status, billing_attempts, billing_interval, price_minor, last_invoice_id, created_at
`

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return row, err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return row, err
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return row, err
}

// GetForUpdate locks the subscriber's row so concurrent webhook deliveries
// for the same user serialize instead of racing the billing fields.
func (s *UserStore) GetForUpdate(ctx context.Context, tx Getter, userID string) (models.User, error) {
	var row models.User
	err := tx.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID)
	return row, err
}

type BillingUpdate struct {
	ExpirationDate  time.Time
	PaymentStatus   models.PaymentStatus
	BillingAttempts int
	LastInvoiceID   *string
}

func (s *UserStore) UpdateBilling(ctx context.Context, tx Execer, userID string, update BillingUpdate) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users
		SET expiration_date = $1, payment_status = $2, billing_attempts = $3, last_invoice_id = $4
		WHERE id = $5
	`, update.ExpirationDate, update.PaymentStatus, update.BillingAttempts, update.LastInvoiceID, userID)
	return err
}

package store

import (
	"context"

	"fintrack/internal/models"
)

type AccountStore struct {
	db DB
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, account models.Account) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, kind)
		VALUES ($1, $2, $3, $4)
	`, account.ID, account.UserID, account.Name, account.Kind)
	return err
}

func (s *AccountStore) GetByID(ctx context.Context, userID, accountID string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, name, kind, created_at
		FROM accounts
		WHERE id = $1 AND user_id = $2
	`, accountID, userID)
	return row, err
}

func (s *AccountStore) ListByUser(ctx context.Context, userID string) ([]models.Account, error) {
	var rows []models.Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, name, kind, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY name
	`, userID)
	return rows, err
}

func (s *AccountStore) Update(ctx context.Context, tx Execer, userID, accountID, name, kind string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts SET name = $1, kind = $2
		WHERE id = $3 AND user_id = $4
	`, name, kind, accountID, userID)
	return err
}

func (s *AccountStore) Delete(ctx context.Context, tx Execer, userID, accountID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM accounts WHERE id = $1 AND user_id = $2
	`, accountID, userID)
	return err
}

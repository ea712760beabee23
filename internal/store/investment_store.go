package store

import (
	"context"

	"fintrack/internal/models"
)

type InvestmentStore struct {
	db DB
}

func NewInvestmentStore(db DB) *InvestmentStore {
	return &InvestmentStore{db: db}
}

func (s *InvestmentStore) Create(ctx context.Context, tx Execer, t models.InvestmentTransaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO investment_transactions (id, user_id, asset_id, type, quantity, price_minor, fees_minor, total_minor, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.ID, t.UserID, t.AssetID, t.Type, t.Quantity, t.PriceMinor, t.FeesMinor, t.TotalMinor, t.Date)
	return err
}

func (s *InvestmentStore) ListByAsset(ctx context.Context, userID, assetID string) ([]models.InvestmentTransaction, error) {
	var rows []models.InvestmentTransaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, asset_id, type, quantity, price_minor, fees_minor, total_minor, date, created_at
		FROM investment_transactions
		WHERE asset_id = $1 AND user_id = $2
		ORDER BY date DESC, created_at DESC
	`, assetID, userID)
	return rows, err
}

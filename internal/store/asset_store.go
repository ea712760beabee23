package store

import (
	"context"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

type AssetStore struct {
	db DB
}

func NewAssetStore(db DB) *AssetStore {
	return &AssetStore{db: db}
}

func (s *AssetStore) Create(ctx context.Context, tx Execer, asset models.InvestmentAsset) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO investment_assets (id, user_id, ticker, name, type, quantity, average_price_minor, current_price_minor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, asset.ID, asset.UserID, asset.Ticker, asset.Name, asset.Type,
		asset.Quantity, asset.AveragePriceMinor, asset.CurrentPriceMinor)
	return err
}

const assetColumns = `
	id, user_id, ticker, name, type, quantity, average_price_minor, current_price_minor, created_at
`

func (s *AssetStore) GetByID(ctx context.Context, userID, assetID string) (models.InvestmentAsset, error) {
	var row models.InvestmentAsset
	err := s.db.GetContext(ctx, &row, `
		SELECT `+assetColumns+` FROM investment_assets WHERE id = $1 AND user_id = $2
	`, assetID, userID)
	return row, err
}

// GetForUpdate locks the asset row for the duration of the enclosing
// transaction. Every position mutation goes through this lock so two
// concurrent BUY/SELL requests cannot both read the same quantity and
// average price and overwrite each other.
func (s *AssetStore) GetForUpdate(ctx context.Context, tx Getter, userID, assetID string) (models.InvestmentAsset, error) {
	var row models.InvestmentAsset
	err := tx.GetContext(ctx, &row, `
		SELECT `+assetColumns+` FROM investment_assets WHERE id = $1 AND user_id = $2 FOR UPDATE
	`, assetID, userID)
	return row, err
}

func (s *AssetStore) ListByUser(ctx context.Context, userID string) ([]models.InvestmentAsset, error) {
	var rows []models.InvestmentAsset
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+assetColumns+` FROM investment_assets WHERE user_id = $1 ORDER BY ticker
	`, userID)
	return rows, err
}

func (s *AssetStore) UpdatePosition(ctx context.Context, tx Execer, userID, assetID string, quantity decimal.Decimal, averagePriceMinor int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE investment_assets
		SET quantity = $1, average_price_minor = $2
		WHERE id = $3 AND user_id = $4
	`, quantity, averagePriceMinor, assetID, userID)
	return err
}

func (s *AssetStore) UpdateCurrentPrice(ctx context.Context, tx Execer, userID, assetID string, currentPriceMinor int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE investment_assets
		SET current_price_minor = $1
		WHERE id = $2 AND user_id = $3
	`, currentPriceMinor, assetID, userID)
	return err
}

package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"fintrack/internal/db"
	"fintrack/internal/models"
	"fintrack/internal/store"
)

var (
	ErrAssetNotFound         = errors.New("asset not found")
	ErrMissingTicker         = errors.New("ticker is required")
	ErrInvalidAssetType      = errors.New("invalid asset type")
	ErrInvalidInvestmentType = errors.New("invalid investment transaction type")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInvalidPrice          = errors.New("invalid price")
	ErrEarningsWithQuantity  = errors.New("earnings events carry no quantity")
	ErrInsufficientQuantity  = conflict("sell quantity exceeds position")
)

type AssetStore interface {
	Create(ctx context.Context, tx store.Execer, asset models.InvestmentAsset) error
	GetByID(ctx context.Context, userID, assetID string) (models.InvestmentAsset, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID, assetID string) (models.InvestmentAsset, error)
	ListByUser(ctx context.Context, userID string) ([]models.InvestmentAsset, error)
	UpdatePosition(ctx context.Context, tx store.Execer, userID, assetID string, quantity decimal.Decimal, averagePriceMinor int64) error
	UpdateCurrentPrice(ctx context.Context, tx store.Execer, userID, assetID string, currentPriceMinor int64) error
}

type InvestmentStore interface {
	Create(ctx context.Context, tx store.Execer, t models.InvestmentTransaction) error
	ListByAsset(ctx context.Context, userID, assetID string) ([]models.InvestmentTransaction, error)
}

type PortfolioService struct {
	txRunner    db.TxRunner
	assets      AssetStore
	investments InvestmentStore
	audit       AuditStore
}

func NewPortfolioService(txRunner db.TxRunner, assets AssetStore, investments InvestmentStore, audit AuditStore) *PortfolioService {
	return &PortfolioService{
		txRunner:    txRunner,
		assets:      assets,
		investments: investments,
		audit:       audit,
	}
}

type AssetInput struct {
	UserID            string
	Ticker            string
	Name              string
	Type              models.AssetType
	CurrentPriceMinor int64
}

func (s *PortfolioService) CreateAsset(ctx context.Context, input AssetInput) (models.InvestmentAsset, error) {
	if input.Ticker == "" {
		return models.InvestmentAsset{}, ErrMissingTicker
	}
	switch input.Type {
	case models.AssetStock, models.AssetREIT, models.AssetFixedIncome, models.AssetCrypto, models.AssetOther:
	default:
		return models.InvestmentAsset{}, ErrInvalidAssetType
	}
	asset := models.InvestmentAsset{
		ID:                uuid.NewString(),
		UserID:            input.UserID,
		Ticker:            input.Ticker,
		Name:              input.Name,
		Type:              input.Type,
		Quantity:          decimal.Zero,
		CurrentPriceMinor: input.CurrentPriceMinor,
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.assets.Create(ctx, tx, asset)
	})
	if err != nil {
		return models.InvestmentAsset{}, err
	}
	return asset, nil
}

type InvestmentInput struct {
	UserID     string
	AssetID    string
	Type       models.InvestmentType
	Quantity   decimal.Decimal
	PriceMinor int64
	FeesMinor  int64
	Date       time.Time
}

// RecordTransaction applies one BUY/SELL/DIVIDEND/JCP event to an asset.
// The asset row stays locked from read to write, so concurrent events
// against the same asset serialize instead of racing the running average.
// Average price moves only on BUY; SELL and earnings leave it untouched.
func (s *PortfolioService) RecordTransaction(ctx context.Context, input InvestmentInput) (models.InvestmentTransaction, error) {
	if err := validateInvestment(input); err != nil {
		return models.InvestmentTransaction{}, err
	}
	record := models.InvestmentTransaction{
		ID:         uuid.NewString(),
		UserID:     input.UserID,
		AssetID:    input.AssetID,
		Type:       input.Type,
		Quantity:   input.Quantity,
		PriceMinor: input.PriceMinor,
		FeesMinor:  input.FeesMinor,
		Date:       input.Date,
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		asset, err := s.assets.GetForUpdate(ctx, tx, input.UserID, input.AssetID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAssetNotFound
			}
			return err
		}
		switch input.Type {
		case models.InvestmentBuy:
			newQuantity := asset.Quantity.Add(input.Quantity)
			newAverage := recomputeAverage(asset, input)
			record.TotalMinor = buyTotal(input)
			if err := s.assets.UpdatePosition(ctx, tx, input.UserID, input.AssetID, newQuantity, newAverage); err != nil {
				return err
			}
		case models.InvestmentSell:
			if input.Quantity.GreaterThan(asset.Quantity) {
				return ErrInsufficientQuantity
			}
			newQuantity := asset.Quantity.Sub(input.Quantity)
			record.TotalMinor = sellTotal(input)
			if err := s.assets.UpdatePosition(ctx, tx, input.UserID, input.AssetID, newQuantity, asset.AveragePriceMinor); err != nil {
				return err
			}
		case models.InvestmentDividend, models.InvestmentJCP:
			// Earnings never touch the position or the cost basis.
			record.Quantity = decimal.Zero
			record.TotalMinor = input.PriceMinor - input.FeesMinor
		}
		if err := s.investments.Create(ctx, tx, record); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"asset_id": input.AssetID,
			"type":     string(input.Type),
		})
		return s.audit.Log(ctx, tx, input.UserID, "investment_"+string(input.Type), "investment_transaction", record.ID, string(data))
	})
	if err != nil {
		return models.InvestmentTransaction{}, err
	}
	return record, nil
}

func (s *PortfolioService) UpdatePrice(ctx context.Context, userID, assetID string, currentPriceMinor int64) error {
	if currentPriceMinor < 0 {
		return ErrInvalidPrice
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.assets.GetForUpdate(ctx, tx, userID, assetID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAssetNotFound
			}
			return err
		}
		return s.assets.UpdateCurrentPrice(ctx, tx, userID, assetID, currentPriceMinor)
	})
}

type Position struct {
	Asset          models.InvestmentAsset `json:"asset"`
	CostBasisMinor int64                  `json:"cost_basis_minor"`
	MarketMinor    int64                  `json:"market_minor"`
	ResultMinor    int64                  `json:"result_minor"`
}

func (s *PortfolioService) Positions(ctx context.Context, userID string) ([]Position, error) {
	assets, err := s.assets.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	positions := make([]Position, 0, len(assets))
	for _, asset := range assets {
		cost := asset.Quantity.Mul(decimal.NewFromInt(asset.AveragePriceMinor)).RoundBank(0).IntPart()
		market := asset.Quantity.Mul(decimal.NewFromInt(asset.CurrentPriceMinor)).RoundBank(0).IntPart()
		positions = append(positions, Position{
			Asset:          asset,
			CostBasisMinor: cost,
			MarketMinor:    market,
			ResultMinor:    market - cost,
		})
	}
	return positions, nil
}

func (s *PortfolioService) AssetHistory(ctx context.Context, userID, assetID string) ([]models.InvestmentTransaction, error) {
	if _, err := s.assets.GetByID(ctx, userID, assetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return s.investments.ListByAsset(ctx, userID, assetID)
}

func validateInvestment(input InvestmentInput) error {
	switch input.Type {
	case models.InvestmentBuy, models.InvestmentSell:
		if !input.Quantity.IsPositive() {
			return ErrInvalidQuantity
		}
		if input.PriceMinor <= 0 {
			return ErrInvalidPrice
		}
	case models.InvestmentDividend, models.InvestmentJCP:
		if !input.Quantity.IsZero() {
			return ErrEarningsWithQuantity
		}
		if input.PriceMinor <= 0 {
			return ErrInvalidPrice
		}
	default:
		return ErrInvalidInvestmentType
	}
	if input.FeesMinor < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// recomputeAverage folds a buy into the weighted cost basis:
// (held*avg + bought*price + fees) / (held+bought), rounded to the cent.
func recomputeAverage(asset models.InvestmentAsset, input InvestmentInput) int64 {
	held := asset.Quantity.Mul(decimal.NewFromInt(asset.AveragePriceMinor))
	bought := input.Quantity.Mul(decimal.NewFromInt(input.PriceMinor))
	fees := decimal.NewFromInt(input.FeesMinor)
	total := asset.Quantity.Add(input.Quantity)
	return held.Add(bought).Add(fees).Div(total).RoundBank(0).IntPart()
}

func buyTotal(input InvestmentInput) int64 {
	return input.Quantity.Mul(decimal.NewFromInt(input.PriceMinor)).
		RoundBank(0).IntPart() + input.FeesMinor
}

func sellTotal(input InvestmentInput) int64 {
	return input.Quantity.Mul(decimal.NewFromInt(input.PriceMinor)).
		RoundBank(0).IntPart() - input.FeesMinor
}

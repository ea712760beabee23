package services

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/store"
	"fintrack/internal/websocket"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubTransactionStore struct {
	createFn      func(ctx context.Context, tx store.Execer, t models.Transaction) error
	createBatchFn func(ctx context.Context, tx store.Execer, records []models.Transaction) error
	getByIDFn     func(ctx context.Context, userID, transactionID string) (models.Transaction, error)
	listFn        func(ctx context.Context, userID string, filter store.TransactionFilter) ([]models.Transaction, error)
	updateFn      func(ctx context.Context, tx store.Execer, userID, transactionID string, patch store.TransactionPatch) (int64, error)
	deleteFn      func(ctx context.Context, tx store.Execer, userID, transactionID string) (int64, error)
	deleteGroupFn func(ctx context.Context, tx store.Execer, userID, groupID string) (int64, error)
}

func (s stubTransactionStore) Create(ctx context.Context, tx store.Execer, t models.Transaction) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, t)
}

func (s stubTransactionStore) CreateBatch(ctx context.Context, tx store.Execer, records []models.Transaction) error {
	if s.createBatchFn == nil {
		return nil
	}
	return s.createBatchFn(ctx, tx, records)
}

func (s stubTransactionStore) GetByID(ctx context.Context, userID, transactionID string) (models.Transaction, error) {
	return s.getByIDFn(ctx, userID, transactionID)
}

func (s stubTransactionStore) ListByUser(ctx context.Context, userID string, filter store.TransactionFilter) ([]models.Transaction, error) {
	return s.listFn(ctx, userID, filter)
}

func (s stubTransactionStore) Update(ctx context.Context, tx store.Execer, userID, transactionID string, patch store.TransactionPatch) (int64, error) {
	return s.updateFn(ctx, tx, userID, transactionID, patch)
}

func (s stubTransactionStore) Delete(ctx context.Context, tx store.Execer, userID, transactionID string) (int64, error) {
	return s.deleteFn(ctx, tx, userID, transactionID)
}

func (s stubTransactionStore) DeleteGroup(ctx context.Context, tx store.Execer, userID, groupID string) (int64, error) {
	return s.deleteGroupFn(ctx, tx, userID, groupID)
}

type stubAccountStore struct {
	getByIDFn func(ctx context.Context, userID, accountID string) (models.Account, error)
}

func (s stubAccountStore) GetByID(ctx context.Context, userID, accountID string) (models.Account, error) {
	if s.getByIDFn == nil {
		return models.Account{ID: accountID, UserID: userID}, nil
	}
	return s.getByIDFn(ctx, userID, accountID)
}

type stubCategoryStore struct {
	createFn        func(ctx context.Context, tx store.Execer, c models.Category) error
	getByIDFn       func(ctx context.Context, userID, categoryID string) (models.Category, error)
	listFn          func(ctx context.Context, userID string) ([]models.Category, error)
	updateFn        func(ctx context.Context, tx store.Execer, c models.Category) error
	deleteFn        func(ctx context.Context, tx store.Execer, userID, categoryID string) error
	countChildrenFn func(ctx context.Context, userID, categoryID string) (int, error)
}

func (s stubCategoryStore) Create(ctx context.Context, tx store.Execer, c models.Category) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, c)
}

func (s stubCategoryStore) GetByID(ctx context.Context, userID, categoryID string) (models.Category, error) {
	return s.getByIDFn(ctx, userID, categoryID)
}

func (s stubCategoryStore) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	return s.listFn(ctx, userID)
}

func (s stubCategoryStore) Update(ctx context.Context, tx store.Execer, c models.Category) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, c)
}

func (s stubCategoryStore) Delete(ctx context.Context, tx store.Execer, userID, categoryID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, userID, categoryID)
}

func (s stubCategoryStore) CountChildren(ctx context.Context, userID, categoryID string) (int, error) {
	if s.countChildrenFn == nil {
		return 0, nil
	}
	return s.countChildrenFn(ctx, userID, categoryID)
}

type stubUsageCounter struct {
	countFn func(ctx context.Context, userID, categoryID string) (int, error)
}

func (s stubUsageCounter) CountByCategory(ctx context.Context, userID, categoryID string) (int, error) {
	if s.countFn == nil {
		return 0, nil
	}
	return s.countFn(ctx, userID, categoryID)
}

type stubUserStore struct {
	getByIDFn       func(ctx context.Context, userID string) (models.User, error)
	getForUpdateFn  func(ctx context.Context, tx store.Getter, userID string) (models.User, error)
	updateBillingFn func(ctx context.Context, tx store.Execer, userID string, update store.BillingUpdate) error
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.User, error) {
	return s.getForUpdateFn(ctx, tx, userID)
}

func (s stubUserStore) UpdateBilling(ctx context.Context, tx store.Execer, userID string, update store.BillingUpdate) error {
	if s.updateBillingFn == nil {
		return nil
	}
	return s.updateBillingFn(ctx, tx, userID, update)
}

type stubInvoiceStore struct {
	createFn func(ctx context.Context, tx store.Execer, invoice models.Invoice) error
	listFn   func(ctx context.Context, userID string, limit, offset int) ([]models.Invoice, error)
}

func (s stubInvoiceStore) Create(ctx context.Context, tx store.Execer, invoice models.Invoice) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, invoice)
}

func (s stubInvoiceStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Invoice, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID, limit, offset)
}

type stubAssetStore struct {
	createFn             func(ctx context.Context, tx store.Execer, asset models.InvestmentAsset) error
	getByIDFn            func(ctx context.Context, userID, assetID string) (models.InvestmentAsset, error)
	getForUpdateFn       func(ctx context.Context, tx store.Getter, userID, assetID string) (models.InvestmentAsset, error)
	listFn               func(ctx context.Context, userID string) ([]models.InvestmentAsset, error)
	updatePositionFn     func(ctx context.Context, tx store.Execer, userID, assetID string, quantity decimal.Decimal, averagePriceMinor int64) error
	updateCurrentPriceFn func(ctx context.Context, tx store.Execer, userID, assetID string, currentPriceMinor int64) error
}

func (s stubAssetStore) Create(ctx context.Context, tx store.Execer, asset models.InvestmentAsset) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, asset)
}

func (s stubAssetStore) GetByID(ctx context.Context, userID, assetID string) (models.InvestmentAsset, error) {
	return s.getByIDFn(ctx, userID, assetID)
}

func (s stubAssetStore) GetForUpdate(ctx context.Context, tx store.Getter, userID, assetID string) (models.InvestmentAsset, error) {
	return s.getForUpdateFn(ctx, tx, userID, assetID)
}

func (s stubAssetStore) ListByUser(ctx context.Context, userID string) ([]models.InvestmentAsset, error) {
	return s.listFn(ctx, userID)
}

func (s stubAssetStore) UpdatePosition(ctx context.Context, tx store.Execer, userID, assetID string, quantity decimal.Decimal, averagePriceMinor int64) error {
	if s.updatePositionFn == nil {
		return nil
	}
	return s.updatePositionFn(ctx, tx, userID, assetID, quantity, averagePriceMinor)
}

func (s stubAssetStore) UpdateCurrentPrice(ctx context.Context, tx store.Execer, userID, assetID string, currentPriceMinor int64) error {
	if s.updateCurrentPriceFn == nil {
		return nil
	}
	return s.updateCurrentPriceFn(ctx, tx, userID, assetID, currentPriceMinor)
}

type stubInvestmentStore struct {
	createFn func(ctx context.Context, tx store.Execer, t models.InvestmentTransaction) error
	listFn   func(ctx context.Context, userID, assetID string) ([]models.InvestmentTransaction, error)
}

func (s stubInvestmentStore) Create(ctx context.Context, tx store.Execer, t models.InvestmentTransaction) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, t)
}

func (s stubInvestmentStore) ListByAsset(ctx context.Context, userID, assetID string) ([]models.InvestmentTransaction, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID, assetID)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubHub struct {
	calls []websocket.BillingUpdate
}

func (s *stubHub) BroadcastBilling(_ string, update websocket.BillingUpdate) {
	s.calls = append(s.calls, update)
}

func stringPtr(s string) *string { return &s }

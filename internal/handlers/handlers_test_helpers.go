package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/category"
	"fintrack/internal/config"
	"fintrack/internal/ledger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/store"
	"fintrack/internal/subscription"
	"fintrack/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn     func(ctx context.Context, tx store.Execer, input store.UserInput) error
	getByEmailFn func(ctx context.Context, email string) (models.User, error)
	getByIDFn    func(ctx context.Context, userID string) (models.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, input store.UserInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{ID: userID}, nil
	}
	return s.getByIDFn(ctx, userID)
}

type stubAccountStore struct {
	createFn  func(ctx context.Context, tx store.Execer, account models.Account) error
	getByIDFn func(ctx context.Context, userID, accountID string) (models.Account, error)
	listFn    func(ctx context.Context, userID string) ([]models.Account, error)
	updateFn  func(ctx context.Context, tx store.Execer, userID, accountID, name, kind string) error
	deleteFn  func(ctx context.Context, tx store.Execer, userID, accountID string) error
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, account models.Account) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, account)
}

func (s stubAccountStore) GetByID(ctx context.Context, userID, accountID string) (models.Account, error) {
	if s.getByIDFn == nil {
		return models.Account{ID: accountID, UserID: userID}, nil
	}
	return s.getByIDFn(ctx, userID, accountID)
}

func (s stubAccountStore) ListByUser(ctx context.Context, userID string) ([]models.Account, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID)
}

func (s stubAccountStore) Update(ctx context.Context, tx store.Execer, userID, accountID, name, kind string) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, userID, accountID, name, kind)
}

func (s stubAccountStore) Delete(ctx context.Context, tx store.Execer, userID, accountID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, userID, accountID)
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

type stubTransactionService struct {
	createFn      func(ctx context.Context, draft ledger.Draft) (models.Transaction, error)
	getFn         func(ctx context.Context, userID, transactionID string) (models.Transaction, error)
	listFn        func(ctx context.Context, userID string, filter store.TransactionFilter) ([]models.Transaction, error)
	updateFn      func(ctx context.Context, userID, transactionID string, patch services.TransactionPatch) error
	deleteFn      func(ctx context.Context, userID, transactionID string) error
	deleteGroupFn func(ctx context.Context, userID, groupID string) (int64, error)
}

func (s stubTransactionService) Create(ctx context.Context, draft ledger.Draft) (models.Transaction, error) {
	if s.createFn == nil {
		return models.Transaction{}, nil
	}
	return s.createFn(ctx, draft)
}

func (s stubTransactionService) Get(ctx context.Context, userID, transactionID string) (models.Transaction, error) {
	if s.getFn == nil {
		return models.Transaction{ID: transactionID}, nil
	}
	return s.getFn(ctx, userID, transactionID)
}

func (s stubTransactionService) List(ctx context.Context, userID string, filter store.TransactionFilter) ([]models.Transaction, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID, filter)
}

func (s stubTransactionService) Update(ctx context.Context, userID, transactionID string, patch services.TransactionPatch) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, userID, transactionID, patch)
}

func (s stubTransactionService) Delete(ctx context.Context, userID, transactionID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, userID, transactionID)
}

func (s stubTransactionService) DeleteGroup(ctx context.Context, userID, groupID string) (int64, error) {
	if s.deleteGroupFn == nil {
		return 0, nil
	}
	return s.deleteGroupFn(ctx, userID, groupID)
}

type stubCategoryService struct {
	createFn     func(ctx context.Context, input services.CategoryInput) (models.Category, error)
	updateFn     func(ctx context.Context, input services.CategoryInput, categoryID string) (models.Category, error)
	deleteFn     func(ctx context.Context, userID, categoryID string) error
	forestFn     func(ctx context.Context, userID string, kind models.CategoryType) ([]*category.Node, error)
	candidatesFn func(ctx context.Context, userID, categoryID string) ([]models.Category, error)
}

func (s stubCategoryService) Create(ctx context.Context, input services.CategoryInput) (models.Category, error) {
	if s.createFn == nil {
		return models.Category{}, nil
	}
	return s.createFn(ctx, input)
}

func (s stubCategoryService) Update(ctx context.Context, input services.CategoryInput, categoryID string) (models.Category, error) {
	if s.updateFn == nil {
		return models.Category{ID: categoryID}, nil
	}
	return s.updateFn(ctx, input, categoryID)
}

func (s stubCategoryService) Delete(ctx context.Context, userID, categoryID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, userID, categoryID)
}

func (s stubCategoryService) Forest(ctx context.Context, userID string, kind models.CategoryType) ([]*category.Node, error) {
	if s.forestFn == nil {
		return nil, nil
	}
	return s.forestFn(ctx, userID, kind)
}

func (s stubCategoryService) ParentCandidates(ctx context.Context, userID, categoryID string) ([]models.Category, error) {
	if s.candidatesFn == nil {
		return nil, nil
	}
	return s.candidatesFn(ctx, userID, categoryID)
}

type stubBillingService struct {
	handleEventFn func(ctx context.Context, userID string, event subscription.Event) (models.User, *models.Invoice, error)
	statusFn      func(ctx context.Context, userID string) (services.BillingStatus, error)
	invoicesFn    func(ctx context.Context, userID string, limit, offset int) ([]models.Invoice, error)
}

func (s stubBillingService) HandleEvent(ctx context.Context, userID string, event subscription.Event) (models.User, *models.Invoice, error) {
	if s.handleEventFn == nil {
		return models.User{ID: userID}, nil, nil
	}
	return s.handleEventFn(ctx, userID, event)
}

func (s stubBillingService) Status(ctx context.Context, userID string) (services.BillingStatus, error) {
	if s.statusFn == nil {
		return services.BillingStatus{}, nil
	}
	return s.statusFn(ctx, userID)
}

func (s stubBillingService) Invoices(ctx context.Context, userID string, limit, offset int) ([]models.Invoice, error) {
	if s.invoicesFn == nil {
		return nil, nil
	}
	return s.invoicesFn(ctx, userID, limit, offset)
}

type stubPortfolioService struct {
	createAssetFn func(ctx context.Context, input services.AssetInput) (models.InvestmentAsset, error)
	recordFn      func(ctx context.Context, input services.InvestmentInput) (models.InvestmentTransaction, error)
	updatePriceFn func(ctx context.Context, userID, assetID string, currentPriceMinor int64) error
	positionsFn   func(ctx context.Context, userID string) ([]services.Position, error)
	historyFn     func(ctx context.Context, userID, assetID string) ([]models.InvestmentTransaction, error)
}

func (s stubPortfolioService) CreateAsset(ctx context.Context, input services.AssetInput) (models.InvestmentAsset, error) {
	if s.createAssetFn == nil {
		return models.InvestmentAsset{}, nil
	}
	return s.createAssetFn(ctx, input)
}

func (s stubPortfolioService) RecordTransaction(ctx context.Context, input services.InvestmentInput) (models.InvestmentTransaction, error) {
	if s.recordFn == nil {
		return models.InvestmentTransaction{}, nil
	}
	return s.recordFn(ctx, input)
}

func (s stubPortfolioService) UpdatePrice(ctx context.Context, userID, assetID string, currentPriceMinor int64) error {
	if s.updatePriceFn == nil {
		return nil
	}
	return s.updatePriceFn(ctx, userID, assetID, currentPriceMinor)
}

func (s stubPortfolioService) Positions(ctx context.Context, userID string) ([]services.Position, error) {
	if s.positionsFn == nil {
		return nil, nil
	}
	return s.positionsFn(ctx, userID)
}

func (s stubPortfolioService) AssetHistory(ctx context.Context, userID, assetID string) ([]models.InvestmentTransaction, error) {
	if s.historyFn == nil {
		return nil, nil
	}
	return s.historyFn(ctx, userID, assetID)
}

func testConfig() config.Config {
	return config.Config{
		AppEnv:                 "test",
		Port:                   "0",
		JWTSecret:              "secret",
		TokenTTL:               time.Minute,
		AllowedOrigins:         "*",
		GatewayToken:           "gateway-secret",
		WebhookRatePerMinute:   60,
		TrialDays:              7,
		SubscriptionPriceMinor: 4990,
	}
}

func newTestHandler(txRunner fakeTxRunner, users UserStore, accounts AccountStore, audit AuditStore, transactions TransactionService, categories CategoryService, billing BillingService, portfolio PortfolioService) *Handler {
	return New(txRunner, testConfig(), users, accounts, audit, transactions, categories, billing, portfolio, websocket.NewHub())
}

func serveWithAuth(t *testing.T, handler http.HandlerFunc, req *http.Request, userID string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken("secret", userID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	rr := httptest.NewRecorder()
	req.Header.Set("Authorization", "Bearer "+token)
	middleware.Auth("secret")(handler).ServeHTTP(rr, req)
	return rr
}

func stringPtr(value string) *string {
	return &value
}

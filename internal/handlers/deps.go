package handlers

import (
	"context"

	"fintrack/internal/category"
	"fintrack/internal/ledger"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/store"
	"fintrack/internal/subscription"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, input store.UserInput) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, account models.Account) error
	GetByID(ctx context.Context, userID, accountID string) (models.Account, error)
	ListByUser(ctx context.Context, userID string) ([]models.Account, error)
	Update(ctx context.Context, tx store.Execer, userID, accountID, name, kind string) error
	Delete(ctx context.Context, tx store.Execer, userID, accountID string) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type TransactionService interface {
	Create(ctx context.Context, draft ledger.Draft) (models.Transaction, error)
	Get(ctx context.Context, userID, transactionID string) (models.Transaction, error)
	List(ctx context.Context, userID string, filter store.TransactionFilter) ([]models.Transaction, error)
	Update(ctx context.Context, userID, transactionID string, patch services.TransactionPatch) error
	Delete(ctx context.Context, userID, transactionID string) error
	DeleteGroup(ctx context.Context, userID, groupID string) (int64, error)
}

type CategoryService interface {
	Create(ctx context.Context, input services.CategoryInput) (models.Category, error)
	Update(ctx context.Context, input services.CategoryInput, categoryID string) (models.Category, error)
	Delete(ctx context.Context, userID, categoryID string) error
	Forest(ctx context.Context, userID string, kind models.CategoryType) ([]*category.Node, error)
	ParentCandidates(ctx context.Context, userID, categoryID string) ([]models.Category, error)
}

type BillingService interface {
	HandleEvent(ctx context.Context, userID string, event subscription.Event) (models.User, *models.Invoice, error)
	Status(ctx context.Context, userID string) (services.BillingStatus, error)
	Invoices(ctx context.Context, userID string, limit, offset int) ([]models.Invoice, error)
}

type PortfolioService interface {
	CreateAsset(ctx context.Context, input services.AssetInput) (models.InvestmentAsset, error)
	RecordTransaction(ctx context.Context, input services.InvestmentInput) (models.InvestmentTransaction, error)
	UpdatePrice(ctx context.Context, userID, assetID string, currentPriceMinor int64) error
	Positions(ctx context.Context, userID string) ([]services.Position, error)
	AssetHistory(ctx context.Context, userID, assetID string) ([]models.InvestmentTransaction, error)
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	gocache "github.com/patrickmn/go-cache"

	"fintrack/internal/category"
	"fintrack/internal/db"
	"fintrack/internal/models"
	"fintrack/internal/store"
	"fintrack/internal/validator"
)

var (
	ErrInvalidCategoryType = errors.New("invalid category type")
	ErrParentNotFound      = errors.New("parent category not found")
	ErrParentTypeMismatch  = conflict("parent category has a different type")
	ErrCycleDetected       = conflict("category cannot become its own ancestor")
	ErrCategoryHasChildren = conflict("category still has child categories")
	ErrCategoryInUse       = conflict("category is referenced by transactions")
)

const (
	forestCacheTTL     = 5 * time.Minute
	forestCacheCleanup = 10 * time.Minute
)

type CategoryStore interface {
	Create(ctx context.Context, tx store.Execer, c models.Category) error
	GetByID(ctx context.Context, userID, categoryID string) (models.Category, error)
	ListByUser(ctx context.Context, userID string) ([]models.Category, error)
	Update(ctx context.Context, tx store.Execer, c models.Category) error
	Delete(ctx context.Context, tx store.Execer, userID, categoryID string) error
	CountChildren(ctx context.Context, userID, categoryID string) (int, error)
}

type CategoryUsageCounter interface {
	CountByCategory(ctx context.Context, userID, categoryID string) (int, error)
}

type CategoryService struct {
	txRunner   db.TxRunner
	categories CategoryStore
	usage      CategoryUsageCounter
	forests    *gocache.Cache
}

func NewCategoryService(txRunner db.TxRunner, categories CategoryStore, usage CategoryUsageCounter) *CategoryService {
	return &CategoryService{
		txRunner:   txRunner,
		categories: categories,
		usage:      usage,
		forests:    gocache.New(forestCacheTTL, forestCacheCleanup),
	}
}

type CategoryInput struct {
	UserID      string
	Name        string
	Type        models.CategoryType
	Color       string
	ParentID    *string
	DRECategory *string
	BudgetMinor *int64
}

func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (models.Category, error) {
	if err := validator.ValidateName(input.Name); err != nil {
		return models.Category{}, err
	}
	if err := validator.ValidateColor(input.Color); err != nil {
		return models.Category{}, err
	}
	if input.Type != models.CategoryIncome && input.Type != models.CategoryExpense {
		return models.Category{}, ErrInvalidCategoryType
	}
	if input.ParentID != nil {
		parent, err := s.categories.GetByID(ctx, input.UserID, *input.ParentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.Category{}, ErrParentNotFound
			}
			return models.Category{}, err
		}
		// A subtree holds a single type by construction.
		if parent.Type != input.Type {
			return models.Category{}, ErrParentTypeMismatch
		}
	}
	created := models.Category{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		Name:        input.Name,
		Type:        input.Type,
		Color:       input.Color,
		ParentID:    input.ParentID,
		DRECategory: input.DRECategory,
		BudgetMinor: input.BudgetMinor,
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.categories.Create(ctx, tx, created)
	})
	if err != nil {
		return models.Category{}, err
	}
	s.invalidate(input.UserID)
	return created, nil
}

// Update edits a category, including reparenting. The new parent must not
// be the category itself or any of its descendants: that closure check is
// the sole mechanism keeping the tree acyclic.
func (s *CategoryService) Update(ctx context.Context, input CategoryInput, categoryID string) (models.Category, error) {
	if err := validator.ValidateName(input.Name); err != nil {
		return models.Category{}, err
	}
	if err := validator.ValidateColor(input.Color); err != nil {
		return models.Category{}, err
	}
	existing, err := s.categories.GetByID(ctx, input.UserID, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Category{}, ErrCategoryNotFound
		}
		return models.Category{}, err
	}
	if input.ParentID != nil {
		all, err := s.categories.ListByUser(ctx, input.UserID)
		if err != nil {
			return models.Category{}, err
		}
		excluded := category.ExcludedDescendants(all, categoryID)
		for _, id := range excluded {
			if id == *input.ParentID {
				return models.Category{}, ErrCycleDetected
			}
		}
		parent, err := s.categories.GetByID(ctx, input.UserID, *input.ParentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.Category{}, ErrParentNotFound
			}
			return models.Category{}, err
		}
		if parent.Type != existing.Type {
			return models.Category{}, ErrParentTypeMismatch
		}
	}
	updated := existing
	updated.Name = input.Name
	updated.Color = input.Color
	updated.ParentID = input.ParentID
	updated.DRECategory = input.DRECategory
	updated.BudgetMinor = input.BudgetMinor
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.categories.Update(ctx, tx, updated)
	})
	if err != nil {
		return models.Category{}, err
	}
	s.invalidate(input.UserID)
	return updated, nil
}

// Delete refuses to remove a category that still has children or is still
// referenced by transactions. The original behavior silently orphaned
// both; callers that really want the delete must move or delete the
// dependents first.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID string) error {
	if _, err := s.categories.GetByID(ctx, userID, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCategoryNotFound
		}
		return err
	}
	children, err := s.categories.CountChildren(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	if children > 0 {
		return ErrCategoryHasChildren
	}
	referencing, err := s.usage.CountByCategory(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	if referencing > 0 {
		return ErrCategoryInUse
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.categories.Delete(ctx, tx, userID, categoryID)
	})
	if err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

// Forest returns the coded display tree for one transaction type. Codes
// are derived on every rebuild; the cache only short-circuits repeated
// renders between writes.
func (s *CategoryService) Forest(ctx context.Context, userID string, kind models.CategoryType) ([]*category.Node, error) {
	key := forestKey(userID, kind)
	if cached, ok := s.forests.Get(key); ok {
		return cached.([]*category.Node), nil
	}
	all, err := s.categories.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	forest := category.BuildForest(all, kind)
	s.forests.Set(key, forest, gocache.DefaultExpiration)
	return forest, nil
}

// ParentCandidates lists the categories that may become the new parent of
// categoryID: same type, minus the category itself and its descendants.
func (s *CategoryService) ParentCandidates(ctx context.Context, userID, categoryID string) ([]models.Category, error) {
	target, err := s.categories.GetByID(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	all, err := s.categories.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	excluded := make(map[string]bool)
	for _, id := range category.ExcludedDescendants(all, categoryID) {
		excluded[id] = true
	}
	candidates := make([]models.Category, 0, len(all))
	for _, c := range all {
		if c.Type == target.Type && !excluded[c.ID] {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

func (s *CategoryService) invalidate(userID string) {
	s.forests.Delete(forestKey(userID, models.CategoryIncome))
	s.forests.Delete(forestKey(userID, models.CategoryExpense))
}

func forestKey(userID string, kind models.CategoryType) string {
	return userID + ":" + string(kind)
}

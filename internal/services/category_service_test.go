package services

import (
	"context"
	"database/sql"
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/store"
)

func categoryChain() []models.Category {
	// a -> b -> c, plus an unrelated sibling.
	return []models.Category{
		{ID: "a", UserID: "user-1", Name: "Housing", Type: models.CategoryExpense, Color: "#AA0000"},
		{ID: "b", UserID: "user-1", Name: "Rent", Type: models.CategoryExpense, Color: "#AA0000", ParentID: stringPtr("a")},
		{ID: "c", UserID: "user-1", Name: "Utilities", Type: models.CategoryExpense, Color: "#AA0000", ParentID: stringPtr("b")},
		{ID: "z", UserID: "user-1", Name: "Food", Type: models.CategoryExpense, Color: "#00AA00"},
	}
}

func chainStore() stubCategoryStore {
	byID := make(map[string]models.Category)
	for _, c := range categoryChain() {
		byID[c.ID] = c
	}
	return stubCategoryStore{
		getByIDFn: func(_ context.Context, _, categoryID string) (models.Category, error) {
			c, ok := byID[categoryID]
			if !ok {
				return models.Category{}, sql.ErrNoRows
			}
			return c, nil
		},
		listFn: func(context.Context, string) ([]models.Category, error) {
			return categoryChain(), nil
		},
	}
}

func TestCategoryCreateValidation(t *testing.T) {
	service := NewCategoryService(fakeTxRunner{}, chainStore(), stubUsageCounter{})

	_, err := service.Create(context.Background(), CategoryInput{
		UserID: "user-1", Name: "", Type: models.CategoryExpense, Color: "#112233",
	})
	if err == nil {
		t.Fatal("expected name validation error")
	}
	_, err = service.Create(context.Background(), CategoryInput{
		UserID: "user-1", Name: "Pets", Type: models.CategoryExpense, Color: "red",
	})
	if err == nil {
		t.Fatal("expected color validation error")
	}
	_, err = service.Create(context.Background(), CategoryInput{
		UserID: "user-1", Name: "Pets", Type: "SAVINGS", Color: "#112233",
	})
	if err != ErrInvalidCategoryType {
		t.Fatalf("expected ErrInvalidCategoryType, got %v", err)
	}
}

func TestCategoryCreateParentTypeMismatch(t *testing.T) {
	base := chainStore()
	base.getByIDFn = func(_ context.Context, _, categoryID string) (models.Category, error) {
		return models.Category{ID: categoryID, Type: models.CategoryIncome}, nil
	}
	service := NewCategoryService(fakeTxRunner{}, base, stubUsageCounter{})

	_, err := service.Create(context.Background(), CategoryInput{
		UserID: "user-1", Name: "Pets", Type: models.CategoryExpense, Color: "#112233", ParentID: stringPtr("a"),
	})
	if err != ErrParentTypeMismatch {
		t.Fatalf("expected ErrParentTypeMismatch, got %v", err)
	}
	if !IsConflict(err) {
		t.Fatal("parent type mismatch must be a state conflict")
	}
}

func TestCategoryUpdateCycleRejected(t *testing.T) {
	service := NewCategoryService(fakeTxRunner{}, chainStore(), stubUsageCounter{})

	// Reparenting a under its own grandchild c closes a cycle.
	_, err := service.Update(context.Background(), CategoryInput{
		UserID: "user-1", Name: "Housing", Color: "#AA0000", ParentID: stringPtr("c"),
	}, "a")
	if err != ErrCycleDetected {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}

	// Self-parenting is the same defect.
	_, err = service.Update(context.Background(), CategoryInput{
		UserID: "user-1", Name: "Housing", Color: "#AA0000", ParentID: stringPtr("a"),
	}, "a")
	if err != ErrCycleDetected {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}

func TestCategoryUpdateReparentToSibling(t *testing.T) {
	var saved models.Category
	base := chainStore()
	base.updateFn = func(_ context.Context, _ store.Execer, c models.Category) error {
		saved = c
		return nil
	}
	service := NewCategoryService(fakeTxRunner{}, base, stubUsageCounter{})

	updated, err := service.Update(context.Background(), CategoryInput{
		UserID: "user-1", Name: "Rent", Color: "#AA0000", ParentID: stringPtr("z"),
	}, "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ParentID == nil || *saved.ParentID != "z" {
		t.Fatalf("expected parent z, got %#v", saved.ParentID)
	}
	if updated.ID != "b" {
		t.Fatalf("unexpected category: %#v", updated)
	}
}

func TestCategoryDeleteWithChildren(t *testing.T) {
	base := chainStore()
	base.countChildrenFn = func(context.Context, string, string) (int, error) {
		return 1, nil
	}
	service := NewCategoryService(fakeTxRunner{}, base, stubUsageCounter{})

	err := service.Delete(context.Background(), "user-1", "a")
	if err != ErrCategoryHasChildren {
		t.Fatalf("expected ErrCategoryHasChildren, got %v", err)
	}
}

func TestCategoryDeleteInUse(t *testing.T) {
	service := NewCategoryService(fakeTxRunner{}, chainStore(), stubUsageCounter{
		countFn: func(context.Context, string, string) (int, error) {
			return 4, nil
		},
	})

	err := service.Delete(context.Background(), "user-1", "c")
	if err != ErrCategoryInUse {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}
}

func TestCategoryDeleteLeaf(t *testing.T) {
	deleted := false
	base := chainStore()
	base.deleteFn = func(context.Context, store.Execer, string, string) error {
		deleted = true
		return nil
	}
	service := NewCategoryService(fakeTxRunner{}, base, stubUsageCounter{})

	if err := service.Delete(context.Background(), "user-1", "c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Fatal("expected delete to reach the store")
	}
}

func TestForestCachesBetweenWrites(t *testing.T) {
	lists := 0
	base := chainStore()
	base.listFn = func(context.Context, string) ([]models.Category, error) {
		lists++
		return categoryChain(), nil
	}
	service := NewCategoryService(fakeTxRunner{}, base, stubUsageCounter{})

	if _, err := service.Forest(context.Background(), "user-1", models.CategoryExpense); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.Forest(context.Background(), "user-1", models.CategoryExpense); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lists != 1 {
		t.Fatalf("expected one store read, got %d", lists)
	}

	if _, err := service.Create(context.Background(), CategoryInput{
		UserID: "user-1", Name: "Pets", Type: models.CategoryExpense, Color: "#112233",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.Forest(context.Background(), "user-1", models.CategoryExpense); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lists != 2 {
		t.Fatalf("expected cache invalidation after create, got %d reads", lists)
	}
}

func TestParentCandidatesExcludeSubtree(t *testing.T) {
	service := NewCategoryService(fakeTxRunner{}, chainStore(), stubUsageCounter{})

	candidates, err := service.ParentCandidates(context.Background(), "user-1", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := make(map[string]bool)
	for _, c := range candidates {
		ids[c.ID] = true
	}
	if ids["b"] || ids["c"] {
		t.Fatalf("subtree must be excluded, got %#v", ids)
	}
	if !ids["a"] || !ids["z"] {
		t.Fatalf("expected a and z as candidates, got %#v", ids)
	}
}

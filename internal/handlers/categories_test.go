package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/category"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

func TestCreateCategoryConflict(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubAuditStore{}, stubTransactionService{}, stubCategoryService{
		createFn: func(context.Context, services.CategoryInput) (models.Category, error) {
			return models.Category{}, services.ErrParentTypeMismatch
		},
	}, stubBillingService{}, stubPortfolioService{})

	body := `{"name":"Rent","type":"EXPENSE","color":"#112233","parent_id":"cat-1"}`
	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(body))
	rr := serveWithAuth(t, handler.CreateCategory, req, "user-1")

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestUpdateCategoryCycle(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubAuditStore{}, stubTransactionService{}, stubCategoryService{
		updateFn: func(context.Context, services.CategoryInput, string) (models.Category, error) {
			return models.Category{}, services.ErrCycleDetected
		},
	}, stubBillingService{}, stubPortfolioService{})

	body := `{"name":"Housing","color":"#112233","parent_id":"child"}`
	req := httptest.NewRequest(http.MethodPut, "/categories/cat-1", strings.NewReader(body))
	req = withURLParam(req, "id", "cat-1")
	rr := serveWithAuth(t, handler.UpdateCategory, req, "user-1")

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestDeleteCategoryInUse(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubAuditStore{}, stubTransactionService{}, stubCategoryService{
		deleteFn: func(context.Context, string, string) error {
			return services.ErrCategoryInUse
		},
	}, stubBillingService{}, stubPortfolioService{})

	req := httptest.NewRequest(http.MethodDelete, "/categories/cat-1", nil)
	req = withURLParam(req, "id", "cat-1")
	rr := serveWithAuth(t, handler.DeleteCategory, req, "user-1")

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestCategoryTreeBothForests(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubAuditStore{}, stubTransactionService{}, stubCategoryService{
		forestFn: func(_ context.Context, _ string, kind models.CategoryType) ([]*category.Node, error) {
			name := "Salary"
			if kind == models.CategoryExpense {
				name = "Housing"
			}
			return []*category.Node{{
				Category: models.Category{ID: string(kind), Name: name, Type: kind},
				Code:     "1",
				Depth:    0,
			}}, nil
		},
	}, stubBillingService{}, stubPortfolioService{})

	req := httptest.NewRequest(http.MethodGet, "/categories/tree", nil)
	rr := serveWithAuth(t, handler.CategoryTree, req, "user-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Salary") || !strings.Contains(rr.Body.String(), "Housing") {
		t.Fatalf("expected both forests in response: %s", rr.Body.String())
	}
}

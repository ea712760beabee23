package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/validator"

	"github.com/go-chi/chi/v5"
)

type categoryRequest struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Color       string  `json:"color"`
	ParentID    *string `json:"parent_id"`
	DRECategory *string `json:"dre_category"`
	BudgetMinor *int64  `json:"budget_minor"`
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	created, err := h.categories.Create(r.Context(), services.CategoryInput{
		UserID:      userID,
		Name:        req.Name,
		Type:        models.CategoryType(req.Type),
		Color:       req.Color,
		ParentID:    req.ParentID,
		DRECategory: req.DRECategory,
		BudgetMinor: req.BudgetMinor,
	})
	if err != nil {
		respondCategoryError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	updated, err := h.categories.Update(r.Context(), services.CategoryInput{
		UserID:      userID,
		Name:        req.Name,
		Color:       req.Color,
		ParentID:    req.ParentID,
		DRECategory: req.DRECategory,
		BudgetMinor: req.BudgetMinor,
	}, chi.URLParam(r, "id"))
	if err != nil {
		respondCategoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	categoryID := chi.URLParam(r, "id")
	if err := h.categories.Delete(r.Context(), userID, categoryID); err != nil {
		respondCategoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": categoryID})
}

// CategoryTree returns both coded forests so the client renders the full
// income/expense picker in one request.
func (h *Handler) CategoryTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	income, err := h.categories.Forest(r.Context(), userID, models.CategoryIncome)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load categories")
		return
	}
	expense, err := h.categories.Forest(r.Context(), userID, models.CategoryExpense)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load categories")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"income":  income,
		"expense": expense,
	})
}

func (h *Handler) ParentCandidates(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	candidates, err := h.categories.ParentCandidates(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondCategoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, candidates)
}

func respondCategoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCategoryNotFound):
		respondError(w, http.StatusNotFound, "category not found")
	case errors.Is(err, services.ErrParentNotFound):
		respondError(w, http.StatusBadRequest, "parent category not found")
	case errors.Is(err, services.ErrInvalidCategoryType):
		respondError(w, http.StatusBadRequest, "invalid category type")
	case errors.Is(err, validator.ErrEmptyName), errors.Is(err, validator.ErrInvalidColor):
		respondError(w, http.StatusBadRequest, err.Error())
	case services.IsConflict(err):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "category operation failed")
	}
}

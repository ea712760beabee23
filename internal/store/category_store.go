package store

import (
	"context"

	"fintrack/internal/models"
)

type CategoryStore struct {
	db DB
}

func NewCategoryStore(db DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) Create(ctx context.Context, tx Execer, c models.Category) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, type, color, parent_id, dre_category, budget_minor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.UserID, c.Name, c.Type, c.Color, c.ParentID, c.DRECategory, c.BudgetMinor)
	return err
}

func (s *CategoryStore) GetByID(ctx context.Context, userID, categoryID string) (models.Category, error) {
	var row models.Category
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, name, type, color, parent_id, dre_category, budget_minor, created_at
		FROM categories
		WHERE id = $1 AND user_id = $2
	`, categoryID, userID)
	return row, err
}

func (s *CategoryStore) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	var rows []models.Category
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, name, type, color, parent_id, dre_category, budget_minor, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY name
	`, userID)
	return rows, err
}

func (s *CategoryStore) Update(ctx context.Context, tx Execer, c models.Category) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE categories
		SET name = $1, color = $2, parent_id = $3, dre_category = $4, budget_minor = $5
		WHERE id = $6 AND user_id = $7
	`, c.Name, c.Color, c.ParentID, c.DRECategory, c.BudgetMinor, c.ID, c.UserID)
	return err
}

func (s *CategoryStore) Delete(ctx context.Context, tx Execer, userID, categoryID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM categories WHERE id = $1 AND user_id = $2
	`, categoryID, userID)
	return err
}

func (s *CategoryStore) CountChildren(ctx context.Context, userID, categoryID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM categories WHERE parent_id = $1 AND user_id = $2
	`, categoryID, userID)
	return count, err
}

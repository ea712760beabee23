package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/models"
)

func cat(id, name string, kind models.CategoryType, parentID *string) models.Category {
	return models.Category{ID: id, UserID: "user-1", Name: name, Type: kind, ParentID: parentID}
}

func ptr(s string) *string { return &s }

func TestBuildForestAlphabeticalCodes(t *testing.T) {
	forest := BuildForest([]models.Category{
		cat("z", "Zebra", models.CategoryExpense, nil),
		cat("a", "Alpha", models.CategoryExpense, nil),
	}, models.CategoryExpense)

	require.Len(t, forest, 2)
	assert.Equal(t, "Alpha", forest[0].Category.Name)
	assert.Equal(t, "1", forest[0].Code)
	assert.Equal(t, "Zebra", forest[1].Category.Name)
	assert.Equal(t, "2", forest[1].Code)
}

func TestBuildForestNestedCodesAndDepth(t *testing.T) {
	forest := BuildForest([]models.Category{
		cat("housing", "Housing", models.CategoryExpense, nil),
		cat("food", "Food", models.CategoryExpense, nil),
		cat("rent", "Rent", models.CategoryExpense, ptr("housing")),
		cat("repairs", "Repairs", models.CategoryExpense, ptr("housing")),
		cat("plumbing", "Plumbing", models.CategoryExpense, ptr("repairs")),
	}, models.CategoryExpense)

	require.Len(t, forest, 2)
	housing := forest[1]
	assert.Equal(t, "2", housing.Code)
	require.Len(t, housing.Children, 2)
	assert.Equal(t, "Rent", housing.Children[0].Category.Name)
	assert.Equal(t, "2.1", housing.Children[0].Code)
	assert.Equal(t, 1, housing.Children[0].Depth)
	repairs := housing.Children[1]
	assert.Equal(t, "2.2", repairs.Code)
	require.Len(t, repairs.Children, 1)
	assert.Equal(t, "2.2.1", repairs.Children[0].Code)
	assert.Equal(t, 2, repairs.Children[0].Depth)
}

func TestBuildForestFiltersByType(t *testing.T) {
	forest := BuildForest([]models.Category{
		cat("salary", "Salary", models.CategoryIncome, nil),
		cat("food", "Food", models.CategoryExpense, nil),
	}, models.CategoryIncome)

	require.Len(t, forest, 1)
	assert.Equal(t, "Salary", forest[0].Category.Name)
}

func TestBuildForestCaseInsensitiveSort(t *testing.T) {
	forest := BuildForest([]models.Category{
		cat("b", "banana", models.CategoryExpense, nil),
		cat("a", "Apple", models.CategoryExpense, nil),
		cat("c", "cherry", models.CategoryExpense, nil),
	}, models.CategoryExpense)

	require.Len(t, forest, 3)
	assert.Equal(t, "Apple", forest[0].Category.Name)
	assert.Equal(t, "banana", forest[1].Category.Name)
	assert.Equal(t, "cherry", forest[2].Category.Name)
}

func TestBuildForestOrphanedParentRendersAtTopLevel(t *testing.T) {
	forest := BuildForest([]models.Category{
		cat("child", "Child", models.CategoryExpense, ptr("missing")),
	}, models.CategoryExpense)

	require.Len(t, forest, 1)
	assert.Equal(t, "1", forest[0].Code)
}

func TestFlattenDisplayOrder(t *testing.T) {
	forest := BuildForest([]models.Category{
		cat("housing", "Housing", models.CategoryExpense, nil),
		cat("food", "Food", models.CategoryExpense, nil),
		cat("rent", "Rent", models.CategoryExpense, ptr("housing")),
	}, models.CategoryExpense)

	flat := Flatten(forest)
	require.Len(t, flat, 3)
	assert.Equal(t, []string{"Food", "Housing", "Rent"}, []string{
		flat[0].Category.Name, flat[1].Category.Name, flat[2].Category.Name,
	})
	assert.Equal(t, []string{"1", "2", "2.1"}, []string{flat[0].Code, flat[1].Code, flat[2].Code})
}

func TestExcludedDescendantsChain(t *testing.T) {
	categories := []models.Category{
		cat("a", "A", models.CategoryExpense, nil),
		cat("b", "B", models.CategoryExpense, ptr("a")),
		cat("c", "C", models.CategoryExpense, ptr("b")),
		cat("other", "Other", models.CategoryExpense, nil),
	}

	assert.ElementsMatch(t, []string{"a", "b", "c"}, ExcludedDescendants(categories, "a"))

	fromB := ExcludedDescendants(categories, "b")
	assert.ElementsMatch(t, []string{"b", "c"}, fromB)
	assert.NotContains(t, fromB, "a")
}

func TestExcludedDescendantsLeaf(t *testing.T) {
	categories := []models.Category{
		cat("a", "A", models.CategoryExpense, nil),
		cat("b", "B", models.CategoryExpense, ptr("a")),
	}
	assert.Equal(t, []string{"b"}, ExcludedDescendants(categories, "b"))
}

func TestExcludedDescendantsTerminatesOnCorruptCycle(t *testing.T) {
	// A cycle should never be persisted, but the walk must not spin if one is.
	categories := []models.Category{
		cat("a", "A", models.CategoryExpense, ptr("b")),
		cat("b", "B", models.CategoryExpense, ptr("a")),
	}
	assert.ElementsMatch(t, []string{"a", "b"}, ExcludedDescendants(categories, "a"))
}

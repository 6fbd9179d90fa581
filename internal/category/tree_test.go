package category

import (
	"context"
	"testing"

	"github.com/rocjay1/rm-finance/internal/memstore"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []models.Category {
	return []models.Category{
		{ID: "living", Type: models.CategoryExpense},
		{ID: "food", Type: models.CategoryExpense, ParentID: "living"},
		{ID: "groceries", Type: models.CategoryExpense, ParentID: "food"},
		{ID: "dining", Type: models.CategoryExpense, ParentID: "food"},
		{ID: "salary", Type: models.CategoryIncome},
	}
}

func ids(cs []models.Category) []string {
	var out []string
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestTree_Navigation(t *testing.T) {
	tree := NewTree(sample())

	assert.Equal(t, []string{"food", "living"}, ids(tree.Ancestors("groceries")))
	assert.Empty(t, tree.Ancestors("living"))
	assert.Equal(t, []string{"dining", "groceries"}, ids(tree.Children("food")))
	assert.Equal(t, []string{"living", "salary"}, ids(tree.Roots()))

	c, ok := tree.Get("dining")
	assert.True(t, ok)
	assert.Equal(t, "food", c.ParentID)
}

func TestTree_ValidateParent(t *testing.T) {
	tree := NewTree(sample())

	assert.NoError(t, tree.ValidateParent("salary", ""))
	assert.NoError(t, tree.ValidateParent("salary", "living"))
	assert.NoError(t, tree.ValidateParent("new", "groceries"))

	assert.ErrorIs(t, tree.ValidateParent("food", "food"), ErrCycle)
	assert.ErrorIs(t, tree.ValidateParent("living", "groceries"), ErrCycle)
	assert.ErrorIs(t, tree.ValidateParent("food", "dining"), ErrCycle)
	assert.ErrorIs(t, tree.ValidateParent("food", "nowhere"), ErrUnknownParent)
}

func TestTree_AncestorsStopsOnCorruptLoop(t *testing.T) {
	tree := NewTree([]models.Category{
		{ID: "a", ParentID: "b"},
		{ID: "b", ParentID: "a"},
	})
	assert.Equal(t, []string{"b"}, ids(tree.Ancestors("a")))
}

func TestService_Save(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memstore.New())

	root, err := svc.Save(ctx, models.Category{OwnerID: "u", Name: "Living", Type: models.CategoryExpense})
	require.NoError(t, err)
	assert.NotEmpty(t, root.ID)

	child, err := svc.Save(ctx, models.Category{ID: "rent", OwnerID: "u", Type: models.CategoryExpense, ParentID: root.ID})
	require.NoError(t, err)

	root.ParentID = child.ID
	_, err = svc.Save(ctx, root)
	assert.ErrorIs(t, err, ErrCycle)

	_, err = svc.Save(ctx, models.Category{OwnerID: "u", Type: "SAVINGS"})
	assert.ErrorIs(t, err, models.ErrInvalidType)

	tree, err := svc.Tree(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"rent"}, ids(tree.Children(root.ID)))
}

package sqlite

import (
	"context"
	"testing"

	"github.com/macroplate/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FoodStore {
	t.Helper()
	store, err := NewFoodStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleFood(name string) *domain.StoredFood {
	return &domain.StoredFood{
		Name:        name,
		Brand:       "House Brand",
		ServingSize: 100,
		ServingUnit: "g",
		Calories:    200,
		Protein:     10,
		Carbs:       25,
		Fat:         5,
	}
}

func TestFoodStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, sampleFood("Chicken Soup"))
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Chicken Soup", got.Name)
	assert.Equal(t, "House Brand", got.Brand)
	assert.Equal(t, 200.0, got.Calories)
}

func TestFoodStore_GetByID_Missing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetByID(context.Background(), 9999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFoodStore_List_SearchAndPaging(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Chicken Soup", "Chicken Breast", "Tomato Soup", "Banana"} {
		_, err := store.Create(ctx, sampleFood(name))
		require.NoError(t, err)
	}

	t.Run("case-insensitive substring search", func(t *testing.T) {
		foods, err := store.List(ctx, 10, 0, "chicken")
		require.NoError(t, err)
		require.Len(t, foods, 2)
		for _, food := range foods {
			assert.Contains(t, food.Name, "Chicken")
		}
	})

	t.Run("no match", func(t *testing.T) {
		foods, err := store.List(ctx, 10, 0, "pizza")
		require.NoError(t, err)
		assert.Empty(t, foods)
	})

	t.Run("paging", func(t *testing.T) {
		page1, err := store.List(ctx, 3, 0, "")
		require.NoError(t, err)
		assert.Len(t, page1, 3)

		page2, err := store.List(ctx, 3, 3, "")
		require.NoError(t, err)
		assert.Len(t, page2, 1)
	})

	t.Run("newest first", func(t *testing.T) {
		foods, err := store.List(ctx, 10, 0, "")
		require.NoError(t, err)
		require.Len(t, foods, 4)
		assert.Equal(t, "Banana", foods[0].Name)
	})
}

func TestFoodStore_Update(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, sampleFood("Oatmeal"))
	require.NoError(t, err)

	created.Name = "Steel Cut Oatmeal"
	created.Calories = 150

	updated, err := store.Update(ctx, created)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Steel Cut Oatmeal", updated.Name)
	assert.Equal(t, 150.0, updated.Calories)
	assert.True(t, !updated.UpdatedAt.Before(created.CreatedAt))
}

func TestFoodStore_Update_Missing(t *testing.T) {
	store := newTestStore(t)

	missing := sampleFood("Ghost")
	missing.ID = 4242

	updated, err := store.Update(context.Background(), missing)
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestFoodStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, sampleFood("Toast"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))

	got, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an absent row is not an error
	assert.NoError(t, store.Delete(ctx, created.ID))
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoodFromStored(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	stored := StoredFood{
		ID:          7,
		Name:        "Chicken Soup",
		Brand:       "Homemade",
		ServingSize: 250,
		ServingUnit: "g",
		Calories:    120,
		Protein:     8,
		Carbs:       10,
		Fat:         4,
		UserID:      "user-1",
		CreatedAt:   created,
		UpdatedAt:   updated,
	}

	food := FoodFromStored(stored)

	assert.Equal(t, SourceInternal, food.Source)
	assert.Equal(t, int64(7), food.ID)
	assert.Equal(t, "Chicken Soup", food.Name)
	assert.Equal(t, "user-1", food.UserID)
	assert.Empty(t, food.ExternalID)
	require.NotNil(t, food.CreatedAt)
	require.NotNil(t, food.UpdatedAt)
	assert.Equal(t, created, *food.CreatedAt)
	assert.Equal(t, updated, *food.UpdatedAt)
	assert.Equal(t, int64(7), food.ProviderMetadata["internalId"])
}

func TestStoredFromFood_RoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	original := StoredFood{
		ID:          42,
		Name:        "Oatmeal",
		ServingSize: 40,
		ServingUnit: "g",
		Calories:    150,
		Protein:     5,
		Carbs:       27,
		Fat:         3,
		UserID:      "user-2",
		CreatedAt:   created,
		UpdatedAt:   updated,
	}

	back, err := StoredFromFood(FoodFromStored(original))
	require.NoError(t, err)
	assert.Equal(t, original, *back)
}

func TestStoredFromFood_RejectsExternal(t *testing.T) {
	_, err := StoredFromFood(Food{
		Name:       "Granola",
		Source:     SourceFDCUSDA,
		ExternalID: "123",
	})
	require.Error(t, err)
	assert.True(t, IsProviderCode(err, CodeExternalFoodUpdate))
}

func TestIsExternalFood(t *testing.T) {
	assert.False(t, IsExternalFood(Food{Source: SourceInternal}))
	assert.True(t, IsExternalFood(Food{Source: SourceFDCUSDA}))
	assert.True(t, IsExternalFood(Food{Source: SourceAggregated}))
}

func TestSourceDisplayName(t *testing.T) {
	assert.Equal(t, "Personal Database", SourceDisplayName(SourceInternal))
	assert.Equal(t, "USDA Food Data Central", SourceDisplayName(SourceFDCUSDA))
	assert.Equal(t, "Aggregated Results", SourceDisplayName(SourceAggregated))
	assert.Equal(t, "Unknown Source", SourceDisplayName(SourceType("mystery")))
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name           string
		page           int
		pageSize       int
		totalItems     int
		wantTotalPages int
		wantNext       bool
		wantPrev       bool
	}{
		{"first of three", 1, 2, 5, 3, true, false},
		{"middle page", 2, 2, 5, 3, true, true},
		{"last page", 3, 2, 5, 3, false, true},
		{"exact multiple", 2, 5, 10, 2, false, true},
		{"empty set", 1, 10, 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.pageSize, tt.totalItems)

			require.NotNil(t, p.TotalItems)
			require.NotNil(t, p.TotalPages)
			assert.Equal(t, tt.totalItems, *p.TotalItems)
			assert.Equal(t, tt.wantTotalPages, *p.TotalPages)
			assert.Equal(t, tt.wantNext, p.HasNextPage)
			assert.Equal(t, tt.wantPrev, p.HasPreviousPage)
		})
	}
}

func TestEmptyProviderResponse(t *testing.T) {
	resp := EmptyProviderResponse(SourceFDCUSDA, 3, 25)

	assert.NotNil(t, resp.Foods)
	assert.Empty(t, resp.Foods)
	assert.Equal(t, SourceFDCUSDA, resp.Source)
	assert.Equal(t, 3, resp.Pagination.Page)
	assert.False(t, resp.Pagination.HasNextPage)
}

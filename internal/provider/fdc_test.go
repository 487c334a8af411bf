package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/macroplate/backend/internal/domain"
	"github.com/macroplate/backend/internal/infrastructure/cache"
	"github.com/macroplate/backend/internal/infrastructure/fdc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFDCProvider(t *testing.T, handler http.HandlerFunc) (*FDC, *int) {
	t.Helper()

	calls := new(int)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := fdc.NewClient("test-key", fdc.ClientOptions{BaseURL: server.URL})
	require.NoError(t, err)

	return NewFDC(client, cache.NewMemoryCache(), domain.ProviderConfigPatch{}), calls
}

func searchHandler(foods ...domain.FDCFood) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.FDCSearchResponse{
			Foods:       foods,
			TotalHits:   len(foods),
			CurrentPage: 1,
			TotalPages:  1,
		})
	}
}

func TestFDC_SearchFoods(t *testing.T) {
	p, _ := newFDCProvider(t, searchHandler(domain.FDCFood{
		FdcID:       555,
		Description: "CHICKEN SOUP, CANNED",
		DataType:    "Branded",
		FoodNutrients: []domain.FDCNutrient{
			{NutrientID: fdc.NutrientIDEnergy, UnitName: "kcal", Value: 75},
		},
	}))

	resp, err := p.SearchFoods(context.Background(), domain.SearchOptions{
		Query: "chicken soup", Page: 1, PageSize: 10,
	})
	require.NoError(t, err)

	require.Len(t, resp.Foods, 1)
	food := resp.Foods[0]
	assert.Equal(t, "Chicken soup, canned", food.Name)
	assert.Equal(t, domain.SourceFDCUSDA, food.Source)
	assert.Equal(t, "555", food.ExternalID)
	assert.Equal(t, 75.0, food.Calories)

	require.NotNil(t, resp.Pagination.TotalItems)
	assert.Equal(t, 1, *resp.Pagination.TotalItems)
	assert.False(t, resp.Pagination.HasNextPage)
}

func TestFDC_SearchFoods_EmptyQuerySkipsNetwork(t *testing.T) {
	p, calls := newFDCProvider(t, searchHandler())

	resp, err := p.SearchFoods(context.Background(), domain.SearchOptions{
		Query: "   ", Page: 1, PageSize: 10,
	})
	require.NoError(t, err)

	assert.Empty(t, resp.Foods)
	assert.Equal(t, domain.SourceFDCUSDA, resp.Source)
	assert.Equal(t, 0, *calls, "blank query must not reach the API")
}

func TestFDC_SearchFoods_CachesResponses(t *testing.T) {
	p, calls := newFDCProvider(t, searchHandler(domain.FDCFood{FdcID: 1, Description: "Rice"}))
	ctx := context.Background()
	opts := domain.SearchOptions{Query: "rice", Page: 1, PageSize: 10}

	first, err := p.SearchFoods(ctx, opts)
	require.NoError(t, err)
	second, err := p.SearchFoods(ctx, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, *calls, "repeat search must be served from cache")
	assert.Equal(t, first, second)

	// Query case and surrounding whitespace normalize to the same cache key
	_, err = p.SearchFoods(ctx, domain.SearchOptions{Query: "  RICE ", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)

	// A different page is a different key
	_, err = p.SearchFoods(ctx, domain.SearchOptions{Query: "rice", Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestFDC_SearchFoods_Validation(t *testing.T) {
	p, calls := newFDCProvider(t, searchHandler())

	_, err := p.SearchFoods(context.Background(), domain.SearchOptions{Query: "x", PageSize: 999})
	require.Error(t, err)
	assert.True(t, domain.IsProviderCode(err, domain.CodeInvalidPageSize))
	assert.Equal(t, 0, *calls)
}

func TestFDC_GetFoodByID(t *testing.T) {
	p, _ := newFDCProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/food/777" {
			json.NewEncoder(w).Encode(domain.FDCFood{FdcID: 777, Description: "Oats"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	ctx := context.Background()

	food, err := p.GetFoodByID(ctx, "777")
	require.NoError(t, err)
	require.NotNil(t, food)
	assert.Equal(t, "Oats", food.Name)
	assert.Equal(t, "777", food.ExternalID)

	// Upstream 404 and malformed ids both mean not found
	food, err = p.GetFoodByID(ctx, "12345")
	require.NoError(t, err)
	assert.Nil(t, food)

	food, err = p.GetFoodByID(ctx, "not-numeric")
	require.NoError(t, err)
	assert.Nil(t, food)
}

func TestFDC_GetFoodsByIDs(t *testing.T) {
	p, _ := newFDCProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]domain.FDCFood{
			{FdcID: 1, Description: "Apple"},
			{FdcID: 2, Description: "Pear"},
		})
	})

	foods, err := p.GetFoodsByIDs(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, foods, 2)
	assert.Equal(t, "Apple", foods[0].Name)
	assert.Equal(t, domain.SourceFDCUSDA, foods[1].Source)
}

func TestFDC_ValidateAPIKey(t *testing.T) {
	p, _ := newFDCProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	assert.False(t, p.ValidateAPIKey(context.Background()))

	p, _ = newFDCProvider(t, searchHandler())
	assert.True(t, p.ValidateAPIKey(context.Background()))
}

func TestFDC_Defaults(t *testing.T) {
	p, _ := newFDCProvider(t, searchHandler())

	cfg := p.Config()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 5, cfg.Priority)
	require.NotNil(t, cfg.RateLimit)
	assert.Equal(t, 1000, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 10000, cfg.RateLimit.RequestsPerHour)
}

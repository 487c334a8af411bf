package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/macroplate/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory domain.FoodRepository
type fakeRepo struct {
	foods  map[int64]domain.StoredFood
	nextID int64
	err    error

	lastLimit  int
	lastOffset int
	lastSearch string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{foods: make(map[int64]domain.StoredFood), nextID: 1}
}

func (r *fakeRepo) seed(names ...string) {
	for _, name := range names {
		r.foods[r.nextID] = domain.StoredFood{
			ID: r.nextID, Name: name,
			CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		}
		r.nextID++
	}
}

func (r *fakeRepo) List(ctx context.Context, limit, offset int, search string) ([]domain.StoredFood, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.lastLimit, r.lastOffset, r.lastSearch = limit, offset, search

	all := make([]domain.StoredFood, 0, len(r.foods))
	for id := int64(1); id < r.nextID; id++ {
		if food, ok := r.foods[id]; ok {
			all = append(all, food)
		}
	}

	if offset >= len(all) {
		return []domain.StoredFood{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id int64) (*domain.StoredFood, error) {
	if r.err != nil {
		return nil, r.err
	}
	if food, ok := r.foods[id]; ok {
		return &food, nil
	}
	return nil, nil
}

func (r *fakeRepo) Create(ctx context.Context, food *domain.StoredFood) (*domain.StoredFood, error) {
	if r.err != nil {
		return nil, r.err
	}
	created := *food
	created.ID = r.nextID
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt
	r.foods[created.ID] = created
	r.nextID++
	return &created, nil
}

func (r *fakeRepo) Update(ctx context.Context, food *domain.StoredFood) (*domain.StoredFood, error) {
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.foods[food.ID]; !ok {
		return nil, nil
	}
	updated := *food
	updated.UpdatedAt = time.Now().UTC()
	r.foods[food.ID] = updated
	return &updated, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id int64) error {
	if r.err != nil {
		return r.err
	}
	delete(r.foods, id)
	return nil
}

func TestInternal_SearchFoods(t *testing.T) {
	repo := newFakeRepo()
	repo.seed("Chicken Soup", "Chicken Breast", "Banana")
	p := NewInternal(repo, domain.ProviderConfigPatch{})

	resp, err := p.SearchFoods(context.Background(), domain.SearchOptions{
		Query: "chicken", Page: 2, PageSize: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.lastLimit)
	assert.Equal(t, 2, repo.lastOffset, "page 2 with size 2 starts at offset 2")
	assert.Equal(t, "chicken", repo.lastSearch)
	assert.Equal(t, domain.SourceInternal, resp.Source)
	assert.True(t, resp.Pagination.HasPreviousPage)

	for _, food := range resp.Foods {
		assert.Equal(t, domain.SourceInternal, food.Source)
	}
}

func TestInternal_SearchFoods_HasNextPageHeuristic(t *testing.T) {
	repo := newFakeRepo()
	repo.seed("a", "b", "c")
	p := NewInternal(repo, domain.ProviderConfigPatch{})

	// Full page: assume more may follow
	resp, err := p.SearchFoods(context.Background(), domain.SearchOptions{Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.True(t, resp.Pagination.HasNextPage)

	// Short page: definitely the end
	resp, err = p.SearchFoods(context.Background(), domain.SearchOptions{Page: 1, PageSize: 5})
	require.NoError(t, err)
	assert.False(t, resp.Pagination.HasNextPage)
}

func TestInternal_SearchFoods_Validation(t *testing.T) {
	p := NewInternal(newFakeRepo(), domain.ProviderConfigPatch{})

	_, err := p.SearchFoods(context.Background(), domain.SearchOptions{PageSize: 500})
	require.Error(t, err)
	assert.True(t, domain.IsProviderCode(err, domain.CodeInvalidPageSize))

	_, err = p.SearchFoods(context.Background(), domain.SearchOptions{Page: -1})
	require.Error(t, err)
	assert.True(t, domain.IsProviderCode(err, domain.CodeInvalidPageNumber))
}

func TestInternal_SearchFoods_RepoFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("disk on fire")
	p := NewInternal(repo, domain.ProviderConfigPatch{})

	_, err := p.SearchFoods(context.Background(), domain.SearchOptions{Query: "x"})
	require.Error(t, err)

	pe, ok := domain.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, domain.SourceInternal, pe.Provider)
	assert.Equal(t, domain.CodeSearchError, pe.Code)
}

func TestInternal_GetFoodByID(t *testing.T) {
	repo := newFakeRepo()
	repo.seed("Oatmeal")
	p := NewInternal(repo, domain.ProviderConfigPatch{})
	ctx := context.Background()

	food, err := p.GetFoodByID(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, food)
	assert.Equal(t, "Oatmeal", food.Name)
	assert.Equal(t, int64(1), food.ID)

	// Missing and non-numeric ids both resolve to not-found, not errors
	food, err = p.GetFoodByID(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, food)

	food, err = p.GetFoodByID(ctx, "not-a-number")
	require.NoError(t, err)
	assert.Nil(t, food)
}

func TestInternal_CreateFood(t *testing.T) {
	repo := newFakeRepo()
	p := NewInternal(repo, domain.ProviderConfigPatch{})

	created, err := p.CreateFood(context.Background(), domain.Food{
		Name: "Greek Yogurt", Source: domain.SourceInternal,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, domain.SourceInternal, created.Source)
}

func TestInternal_CreateFood_ImportsExternal(t *testing.T) {
	repo := newFakeRepo()
	p := NewInternal(repo, domain.ProviderConfigPatch{})

	// Importing an external food strips its origin and stores a fresh copy
	created, err := p.CreateFood(context.Background(), domain.Food{
		Name:       "Granola",
		Source:     domain.SourceFDCUSDA,
		ExternalID: "12345",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceInternal, created.Source)
	assert.Empty(t, created.ExternalID)
}

func TestInternal_CreateFood_AlreadyInternal(t *testing.T) {
	p := NewInternal(newFakeRepo(), domain.ProviderConfigPatch{})

	_, err := p.CreateFood(context.Background(), domain.Food{
		Name: "Dup", Source: domain.SourceInternal, ID: 7,
	})
	require.Error(t, err)
	assert.True(t, domain.IsProviderCode(err, domain.CodeAlreadyInternal))
}

func TestInternal_UpdateFood(t *testing.T) {
	repo := newFakeRepo()
	repo.seed("Oatmeal")
	p := NewInternal(repo, domain.ProviderConfigPatch{})
	ctx := context.Background()

	updated, err := p.UpdateFood(ctx, domain.Food{
		ID: 1, Name: "Steel Cut Oatmeal", Source: domain.SourceInternal,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Steel Cut Oatmeal", updated.Name)

	t.Run("external food rejected", func(t *testing.T) {
		_, err := p.UpdateFood(ctx, domain.Food{
			ID: 1, Name: "x", Source: domain.SourceFDCUSDA,
		})
		require.Error(t, err)
		assert.True(t, domain.IsProviderCode(err, domain.CodeExternalFoodUpdate))
	})

	t.Run("missing id rejected", func(t *testing.T) {
		_, err := p.UpdateFood(ctx, domain.Food{Name: "x", Source: domain.SourceInternal})
		require.Error(t, err)
		assert.True(t, domain.IsProviderCode(err, domain.CodeInvalidID))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		updated, err := p.UpdateFood(ctx, domain.Food{
			ID: 999, Name: "x", Source: domain.SourceInternal,
		})
		require.NoError(t, err)
		assert.Nil(t, updated)
	})
}

func TestInternal_DeleteFood(t *testing.T) {
	repo := newFakeRepo()
	repo.seed("Toast")
	p := NewInternal(repo, domain.ProviderConfigPatch{})
	ctx := context.Background()

	require.NoError(t, p.DeleteFood(ctx, "1"))

	food, err := p.GetFoodByID(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, food)

	err = p.DeleteFood(ctx, "abc")
	require.Error(t, err)
	assert.True(t, domain.IsProviderCode(err, domain.CodeInvalidID))
}

func TestInternal_ConfigPatch(t *testing.T) {
	priority := 42
	enabled := false
	p := NewInternal(newFakeRepo(), domain.ProviderConfigPatch{
		Priority: &priority,
		Enabled:  &enabled,
	})

	assert.Equal(t, 42, p.Priority())
	assert.False(t, p.IsEnabled())
	assert.Equal(t, domain.SourceInternal, p.SourceType())
}

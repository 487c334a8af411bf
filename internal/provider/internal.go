package provider

import (
	"context"
	"strconv"

	"github.com/macroplate/backend/internal/domain"
)

const defaultInternalPageSize = 10

// Internal adapts the user's own stored foods to the provider contract.
// Beyond the read contract it exposes create/update/delete, restricted to
// internal-sourced records.
type Internal struct {
	base
	repo domain.FoodRepository
}

// NewInternal creates the internal database provider. The zero patch keeps
// the defaults: enabled, priority 10.
func NewInternal(repo domain.FoodRepository, patch domain.ProviderConfigPatch) *Internal {
	defaults := domain.ProviderConfig{
		Enabled:  true,
		Priority: 10, // internal foods outrank external duplicates
	}

	return &Internal{
		base: newBase(domain.SourceInternal, defaults, patch),
		repo: repo,
	}
}

// SearchFoods translates page/pageSize into an offset/limit query against
// the store. The store returns no total count, so hasNextPage is inferred:
// true iff the page came back full. That heuristic over-reports when the
// result count is an exact multiple of the page size.
func (p *Internal) SearchFoods(ctx context.Context, opts domain.SearchOptions) (*domain.ProviderResponse, error) {
	if err := p.validateSearchOptions(opts); err != nil {
		return nil, err
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = defaultInternalPageSize
	}
	offset := (page - 1) * pageSize

	stored, err := p.repo.List(ctx, pageSize, offset, opts.Query)
	if err != nil {
		return nil, p.wrapErr(domain.CodeSearchError, err)
	}

	foods := make([]domain.Food, 0, len(stored))
	for _, record := range stored {
		foods = append(foods, domain.FoodFromStored(record))
	}

	return &domain.ProviderResponse{
		Foods: foods,
		Pagination: domain.PaginationMetadata{
			Page:            page,
			PageSize:        pageSize,
			HasNextPage:     len(stored) == pageSize,
			HasPreviousPage: page > 1,
		},
		Source: p.source,
	}, nil
}

// GetFoodByID returns the stored food with the given id, or (nil, nil) when
// the id is non-numeric or no such row exists.
func (p *Internal) GetFoodByID(ctx context.Context, id string) (*domain.Food, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, nil
	}

	stored, err := p.repo.GetByID(ctx, numericID)
	if err != nil {
		return nil, p.wrapErr(domain.CodeGetByIDError, err)
	}
	if stored == nil {
		return nil, nil
	}

	food := domain.FoodFromStored(*stored)
	return &food, nil
}

// CreateFood persists a food in the internal database. External foods may
// be imported this way; a food that already carries an internal id fails
// with ALREADY_INTERNAL.
func (p *Internal) CreateFood(ctx context.Context, food domain.Food) (*domain.Food, error) {
	if food.Source == domain.SourceInternal && food.ID != 0 {
		return nil, domain.NewProviderError(p.source, domain.CodeAlreadyInternal,
			"food already exists in the internal database")
	}

	stored := &domain.StoredFood{
		Name:        food.Name,
		Brand:       food.Brand,
		ServingSize: food.ServingSize,
		ServingUnit: food.ServingUnit,
		Calories:    food.Calories,
		Protein:     food.Protein,
		Carbs:       food.Carbs,
		Fat:         food.Fat,
		UserID:      food.UserID,
	}

	created, err := p.repo.Create(ctx, stored)
	if err != nil {
		return nil, p.wrapErr(domain.CodeProviderError, err)
	}

	normalized := domain.FoodFromStored(*created)
	return &normalized, nil
}

// UpdateFood rewrites an internal food. Non-internal records fail with
// EXTERNAL_FOOD_UPDATE. Returns (nil, nil) when the id does not exist.
func (p *Internal) UpdateFood(ctx context.Context, food domain.Food) (*domain.Food, error) {
	if food.Source != domain.SourceInternal {
		return nil, domain.NewProviderError(p.source, domain.CodeExternalFoodUpdate,
			"cannot update a food that is not from the internal database")
	}
	if food.ID == 0 {
		return nil, domain.NewProviderError(p.source, domain.CodeInvalidID,
			"food id is required for updates")
	}

	stored, err := domain.StoredFromFood(food)
	if err != nil {
		return nil, err
	}

	updated, err := p.repo.Update(ctx, stored)
	if err != nil {
		return nil, p.wrapErr(domain.CodeProviderError, err)
	}
	if updated == nil {
		return nil, nil
	}

	normalized := domain.FoodFromStored(*updated)
	return &normalized, nil
}

// DeleteFood removes an internal food by id
func (p *Internal) DeleteFood(ctx context.Context, id string) error {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return domain.NewProviderError(p.source, domain.CodeInvalidID,
			"invalid food id format")
	}

	if err := p.repo.Delete(ctx, numericID); err != nil {
		return p.wrapErr(domain.CodeProviderError, err)
	}
	return nil
}

package provider

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/macroplate/backend/internal/domain"
	"github.com/macroplate/backend/internal/infrastructure/fdc"
)

const defaultFDCPageSize = 25

// FDC adapts the USDA FoodData Central API to the provider contract. The
// wrapped client enforces the upstream quota; search responses are cached
// for the configured TTL to spare it.
type FDC struct {
	base
	client *fdc.Client
	cache  domain.CacheRepository
}

// NewFDC creates the external FDC provider. Defaults: enabled, priority 5,
// 1h response cache.
func NewFDC(client *fdc.Client, cache domain.CacheRepository, patch domain.ProviderConfigPatch) *FDC {
	defaults := domain.ProviderConfig{
		Enabled:  true,
		Priority: 5, // below internal foods
		RateLimit: &domain.RateLimitConfig{
			RequestsPerMinute: 1000,
			RequestsPerHour:   10000,
		},
		CacheTTL: time.Hour,
	}

	return &FDC{
		base:   newBase(domain.SourceFDCUSDA, defaults, patch),
		client: client,
		cache:  cache,
	}
}

// SearchFoods queries the FDC API with paging. An empty query short-circuits
// to an empty response without touching the network or the quota.
func (p *FDC) SearchFoods(ctx context.Context, opts domain.SearchOptions) (*domain.ProviderResponse, error) {
	if err := p.validateSearchOptions(opts); err != nil {
		return nil, err
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = defaultFDCPageSize
	}

	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return domain.EmptyProviderResponse(p.source, page, pageSize), nil
	}

	cacheKey := fmt.Sprintf("fdc:search:%s:%d:%d", strings.ToLower(query), page, pageSize)
	if cached, ok := p.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	searchResp, err := p.client.SearchFoods(ctx, fdc.SearchOptions{
		Query:      query,
		PageNumber: page,
		PageSize:   pageSize,
		SortBy:     opts.SortBy,
		SortOrder:  opts.SortOrder,
	})
	if err != nil {
		return nil, p.wrapErr(domain.CodeSearchError, err)
	}

	foods := make([]domain.Food, 0, len(searchResp.Foods))
	for i := range searchResp.Foods {
		foods = append(foods, fdc.MapToFood(&searchResp.Foods[i]))
	}

	totalItems := searchResp.TotalHits
	totalPages := searchResp.TotalPages
	response := &domain.ProviderResponse{
		Foods: foods,
		Pagination: domain.PaginationMetadata{
			Page:            searchResp.CurrentPage,
			PageSize:        pageSize,
			TotalItems:      &totalItems,
			TotalPages:      &totalPages,
			HasNextPage:     searchResp.CurrentPage < searchResp.TotalPages,
			HasPreviousPage: searchResp.CurrentPage > 1,
		},
		Source: p.source,
	}

	p.toCache(ctx, cacheKey, response)

	return response, nil
}

// GetFoodByID fetches a single food by FDC id. Non-numeric ids and upstream
// 404s both yield (nil, nil).
func (p *FDC) GetFoodByID(ctx context.Context, id string) (*domain.Food, error) {
	fdcID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, nil
	}

	fdcFood, err := p.client.GetFoodByID(ctx, fdcID, "full")
	if err != nil {
		return nil, p.wrapErr(domain.CodeGetByIDError, err)
	}
	if fdcFood == nil {
		return nil, nil
	}

	food := fdc.MapToFood(fdcFood)
	return &food, nil
}

// GetFoodsByIDs fetches multiple foods in upstream-capped chunks
func (p *FDC) GetFoodsByIDs(ctx context.Context, ids []int64) ([]domain.Food, error) {
	fdcFoods, err := p.client.GetFoodsByIDs(ctx, ids, "abridged")
	if err != nil {
		return nil, p.wrapErr(domain.CodeGetMultipleError, err)
	}

	foods := make([]domain.Food, 0, len(fdcFoods))
	for i := range fdcFoods {
		foods = append(foods, fdc.MapToFood(&fdcFoods[i]))
	}
	return foods, nil
}

// ValidateAPIKey probes the upstream with a minimal search
func (p *FDC) ValidateAPIKey(ctx context.Context) bool {
	valid, err := p.client.ValidateAPIKey(ctx)
	if err != nil {
		log.Printf("[FDC] API key validation failed: %v", err)
		return false
	}
	return valid
}

func (p *FDC) fromCache(ctx context.Context, key string) (*domain.ProviderResponse, bool) {
	if p.cache == nil {
		return nil, false
	}

	value, err := p.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	response, ok := value.(*domain.ProviderResponse)
	return response, ok
}

func (p *FDC) toCache(ctx context.Context, key string, response *domain.ProviderResponse) {
	if p.cache == nil {
		return
	}

	ttl := p.Config().CacheTTL
	if ttl <= 0 {
		return
	}

	if err := p.cache.Set(ctx, key, response, ttl); err != nil {
		log.Printf("[FDC] failed to cache search response: %v", err)
	}
}

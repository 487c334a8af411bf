package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/macroplate/backend/internal/domain"
)

// MergeStrategy is the rule used to order deduplicated results before
// pagination.
type MergeStrategy string

const (
	// MergeByPriority sorts by descending provider priority only
	MergeByPriority MergeStrategy = "priority"
	// MergeBySourceGroups groups by source lexically, then by priority
	MergeBySourceGroups MergeStrategy = "source_groups"
	// MergeInterleave round-robins across per-source priority-sorted groups
	MergeInterleave MergeStrategy = "interleave"
)

// Valid reports whether s is a known merge strategy
func (s MergeStrategy) Valid() bool {
	switch s {
	case MergeByPriority, MergeBySourceGroups, MergeInterleave:
		return true
	}
	return false
}

// DeduplicationConfig controls near-duplicate elimination across providers
type DeduplicationConfig struct {
	Enabled             bool
	SimilarityThreshold float64 // 0-1, minimum score to treat two foods as the same item
}

// AggregatorConfig holds the aggregator's tunables
type AggregatorConfig struct {
	EnabledProviders []domain.SourceType
	MergeStrategy    MergeStrategy
	Deduplication    DeduplicationConfig
	DefaultPageSizes map[domain.SourceType]int
	MaxResults       int
	ProviderTimeout  time.Duration
}

// DefaultAggregatorConfig mirrors the production defaults
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		EnabledProviders: []domain.SourceType{domain.SourceInternal, domain.SourceFDCUSDA},
		MergeStrategy:    MergeByPriority,
		Deduplication: DeduplicationConfig{
			Enabled:             true,
			SimilarityThreshold: 0.85,
		},
		DefaultPageSizes: map[domain.SourceType]int{
			domain.SourceInternal: 15,
			domain.SourceFDCUSDA:  10,
		},
		MaxResults:      50,
		ProviderTimeout: 5 * time.Second,
	}
}

// AggregatedSearchOptions extend plain search options with aggregation
// controls.
type AggregatedSearchOptions struct {
	domain.SearchOptions

	// Providers limits the search to specific sources; empty means all
	// configured providers.
	Providers []domain.SourceType

	// ProviderPriority overrides configured priorities for this search
	ProviderPriority map[domain.SourceType]int

	// EnableDeduplication overrides the configured dedup switch when set
	EnableDeduplication *bool
}

// Aggregator orchestrates multiple food providers: it fans out searches
// concurrently, absorbs per-provider failures, and merges, deduplicates,
// sorts, and paginates the combined result set. Construct one instance at
// process start and inject it where needed.
type Aggregator struct {
	mu        sync.RWMutex
	config    AggregatorConfig
	providers map[domain.SourceType]domain.FoodProvider
}

// NewAggregator creates an aggregator over the given providers. Each
// provider's enabled flag is synced with config.EnabledProviders.
func NewAggregator(config AggregatorConfig, providers ...domain.FoodProvider) *Aggregator {
	if config.MergeStrategy == "" {
		config.MergeStrategy = MergeByPriority
	}
	if config.ProviderTimeout <= 0 {
		config.ProviderTimeout = 5 * time.Second
	}

	a := &Aggregator{
		config:    config,
		providers: make(map[domain.SourceType]domain.FoodProvider, len(providers)),
	}

	for _, p := range providers {
		a.providers[p.SourceType()] = p
	}
	a.syncEnabledProviders()

	return a
}

// weightedFood pairs a food with its effective provider priority
type weightedFood struct {
	food     domain.Food
	priority int
}

// SearchFoods runs an aggregated search. A single provider's failure is
// logged and replaced with an empty result; the call itself only fails if
// the merge step does.
func (a *Aggregator) SearchFoods(ctx context.Context, opts AggregatedSearchOptions) (*domain.AggregatedResponse, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = 25
	}

	requested := opts.Providers
	if len(requested) == 0 {
		requested = a.enabledConfig()
	}

	active := a.activeProviders(requested)
	if len(active) == 0 {
		return &domain.AggregatedResponse{
			Foods:      []domain.Food{},
			Pagination: domain.NewPagination(page, pageSize, 0),
			Source:     domain.SourceAggregated,
			Stats: domain.SearchStats{
				SourceBreakdown: map[domain.SourceType]int{},
			},
		}, nil
	}

	results := a.fanOut(ctx, active, opts.SearchOptions, page)

	response, err := a.mergeResults(results, opts, page, pageSize)
	if err != nil {
		return nil, err
	}
	return response, nil
}

// GetFoodByID routes a lookup to the provider owning the source type
func (a *Aggregator) GetFoodByID(ctx context.Context, id string, source domain.SourceType) (*domain.Food, error) {
	provider, ok := a.Provider(source)
	if !ok || !provider.IsEnabled() {
		return nil, domain.NewProviderError(source, domain.CodeProviderNotAvailable,
			fmt.Sprintf("provider %s is not available", source))
	}

	return provider.GetFoodByID(ctx, id)
}

// Provider returns the registered provider for a source type. The internal
// provider map is never exposed directly.
func (a *Aggregator) Provider(source domain.SourceType) (domain.FoodProvider, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.providers[source]
	return p, ok
}

// AvailableProviders lists all registered source types, sorted
func (a *Aggregator) AvailableProviders() []domain.SourceType {
	a.mu.RLock()
	defer a.mu.RUnlock()

	sources := make([]domain.SourceType, 0, len(a.providers))
	for source := range a.providers {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	return sources
}

// EnabledProviders lists registered source types that are enabled, sorted
func (a *Aggregator) EnabledProviders() []domain.SourceType {
	a.mu.RLock()
	defer a.mu.RUnlock()

	sources := make([]domain.SourceType, 0, len(a.providers))
	for source, p := range a.providers {
		if p.IsEnabled() {
			sources = append(sources, source)
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	return sources
}

// Config returns a copy of the current aggregator configuration
func (a *Aggregator) Config() AggregatorConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

// UpdateConfig replaces the configuration and re-syncs the providers'
// enabled flags.
func (a *Aggregator) UpdateConfig(config AggregatorConfig) {
	a.mu.Lock()
	a.config = config
	a.mu.Unlock()

	a.syncEnabledProviders()
}

func (a *Aggregator) enabledConfig() []domain.SourceType {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config.EnabledProviders
}

func (a *Aggregator) syncEnabledProviders() {
	a.mu.RLock()
	enabled := make(map[domain.SourceType]bool, len(a.config.EnabledProviders))
	for _, source := range a.config.EnabledProviders {
		enabled[source] = true
	}
	providers := make([]domain.FoodProvider, 0, len(a.providers))
	for _, p := range a.providers {
		providers = append(providers, p)
	}
	a.mu.RUnlock()

	for _, p := range providers {
		on := enabled[p.SourceType()]
		p.UpdateConfig(domain.ProviderConfigPatch{Enabled: &on})
	}
}

// activeProviders intersects the requested source list with registered,
// enabled providers.
func (a *Aggregator) activeProviders(requested []domain.SourceType) []domain.FoodProvider {
	a.mu.RLock()
	defer a.mu.RUnlock()

	active := make([]domain.FoodProvider, 0, len(requested))
	for _, source := range requested {
		if p, ok := a.providers[source]; ok && p.IsEnabled() {
			active = append(active, p)
		}
	}
	return active
}

// fanOut invokes every active provider concurrently, each under its own
// timeout. A failed, timed-out, or panicking provider contributes an empty
// response instead of failing the batch.
func (a *Aggregator) fanOut(ctx context.Context, active []domain.FoodProvider, opts domain.SearchOptions, page int) []*domain.ProviderResponse {
	a.mu.RLock()
	pageSizes := a.config.DefaultPageSizes
	timeout := a.config.ProviderTimeout
	a.mu.RUnlock()

	results := make([]*domain.ProviderResponse, len(active))

	var wg sync.WaitGroup
	for i, p := range active {
		wg.Add(1)
		go func(i int, p domain.FoodProvider) {
			defer wg.Done()

			source := p.SourceType()
			providerOpts := opts
			if size, ok := pageSizes[source]; ok && size > 0 {
				providerOpts.PageSize = size
			} else if providerOpts.PageSize < 1 {
				providerOpts.PageSize = 25
			}

			defer func() {
				if r := recover(); r != nil {
					log.Printf("[AGGREGATOR] provider %s panicked: %v", source, r)
					results[i] = domain.EmptyProviderResponse(source, page, providerOpts.PageSize)
				}
			}()

			providerCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			resp, err := p.SearchFoods(providerCtx, providerOpts)
			if err != nil {
				log.Printf("[AGGREGATOR] search failed for provider %s: %v", source, err)
				resp = domain.EmptyProviderResponse(source, page, providerOpts.PageSize)
			}
			results[i] = resp
		}(i, p)
	}
	wg.Wait()

	return results
}

// mergeResults combines provider responses: tag with priority, dedupe,
// sort by strategy, cap, paginate. A panic here is the one catastrophic
// failure mode and surfaces as AGGREGATION_ERROR.
func (a *Aggregator) mergeResults(results []*domain.ProviderResponse, opts AggregatedSearchOptions, page, pageSize int) (response *domain.AggregatedResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			response = nil
			err = domain.NewProviderError(domain.SourceAggregated, domain.CodeAggregationError,
				fmt.Sprintf("aggregated search failed: %v", r))
		}
	}()

	a.mu.RLock()
	dedup := a.config.Deduplication
	strategy := a.config.MergeStrategy
	maxResults := a.config.MaxResults
	a.mu.RUnlock()

	if opts.EnableDeduplication != nil {
		dedup.Enabled = *opts.EnableDeduplication
	}
	if dedup.SimilarityThreshold <= 0 {
		dedup.SimilarityThreshold = 0.85
	}

	var all []weightedFood
	for _, result := range results {
		priority := a.effectivePriority(result.Source, opts.ProviderPriority)
		for _, food := range result.Foods {
			all = append(all, weightedFood{food: food, priority: priority})
		}
	}

	if dedup.Enabled {
		all = deduplicateFoods(all, dedup.SimilarityThreshold)
	}

	sorted := sortByStrategy(all, strategy)

	if maxResults > 0 && len(sorted) > maxResults {
		sorted = sorted[:maxResults]
	}

	totalItems := len(sorted)
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > totalItems {
		start = totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	foods := make([]domain.Food, 0, end-start)
	breakdown := make(map[domain.SourceType]int)
	for _, item := range sorted {
		breakdown[item.food.Source]++
	}
	for _, item := range sorted[start:end] {
		foods = append(foods, item.food)
	}

	return &domain.AggregatedResponse{
		Foods:      foods,
		Pagination: domain.NewPagination(page, pageSize, totalItems),
		Source:     domain.SourceAggregated,
		Stats: domain.SearchStats{
			TotalResults:    totalItems,
			SourceBreakdown: breakdown,
		},
	}, nil
}

// effectivePriority resolves a provider's priority for one search:
// explicit override, then the provider's configured priority, then 0.
func (a *Aggregator) effectivePriority(source domain.SourceType, overrides map[domain.SourceType]int) int {
	if overrides != nil {
		if priority, ok := overrides[source]; ok {
			return priority
		}
	}
	if p, ok := a.Provider(source); ok {
		return p.Priority()
	}
	return 0
}

// deduplicateFoods removes near-duplicates by name similarity. When a
// candidate matches an accepted food, the one with strictly higher priority
// survives, regardless of input order.
func deduplicateFoods(foods []weightedFood, threshold float64) []weightedFood {
	deduplicated := make([]weightedFood, 0, len(foods))

	for _, candidate := range foods {
		duplicateAt := -1
		for i, existing := range deduplicated {
			if FoodNameSimilarity(candidate.food.Name, existing.food.Name) >= threshold {
				duplicateAt = i
				break
			}
		}

		if duplicateAt == -1 {
			deduplicated = append(deduplicated, candidate)
		} else if candidate.priority > deduplicated[duplicateAt].priority {
			deduplicated[duplicateAt] = candidate
		}
	}

	return deduplicated
}

// sortByStrategy orders foods by the configured merge strategy
func sortByStrategy(foods []weightedFood, strategy MergeStrategy) []weightedFood {
	switch strategy {
	case MergeByPriority:
		sort.SliceStable(foods, func(i, j int) bool {
			return foods[i].priority > foods[j].priority
		})
		return foods

	case MergeBySourceGroups:
		sort.SliceStable(foods, func(i, j int) bool {
			if foods[i].food.Source != foods[j].food.Source {
				return foods[i].food.Source < foods[j].food.Source
			}
			return foods[i].priority > foods[j].priority
		})
		return foods

	case MergeInterleave:
		groups := make(map[domain.SourceType][]weightedFood)
		var sources []domain.SourceType
		for _, item := range foods {
			source := item.food.Source
			if _, ok := groups[source]; !ok {
				sources = append(sources, source)
			}
			groups[source] = append(groups[source], item)
		}

		sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
		maxLen := 0
		for _, group := range groups {
			sort.SliceStable(group, func(i, j int) bool {
				return group[i].priority > group[j].priority
			})
			if len(group) > maxLen {
				maxLen = len(group)
			}
		}

		interleaved := make([]weightedFood, 0, len(foods))
		for i := 0; i < maxLen; i++ {
			for _, source := range sources {
				if group := groups[source]; i < len(group) {
					interleaved = append(interleaved, group[i])
				}
			}
		}
		return interleaved

	default:
		return foods
	}
}

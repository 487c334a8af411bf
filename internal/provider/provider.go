// Package provider contains the food provider implementations: adapters
// that expose heterogeneous food data sources through the uniform
// domain.FoodProvider contract.
package provider

import (
	"fmt"
	"sync"

	"github.com/macroplate/backend/internal/domain"
)

const (
	minPageSize = 1
	maxPageSize = 200
)

// base carries the config handling shared by all providers. Config reads
// and shallow-merge updates are guarded by a mutex so concurrent requests
// can reconfigure a provider safely.
type base struct {
	source domain.SourceType

	mu     sync.RWMutex
	config domain.ProviderConfig
}

func newBase(source domain.SourceType, defaults domain.ProviderConfig, patch domain.ProviderConfigPatch) base {
	b := base{source: source, config: defaults}
	b.applyPatch(patch)
	return b
}

// SourceType identifies this provider's source
func (b *base) SourceType() domain.SourceType {
	return b.source
}

// Config returns a copy of the current configuration
func (b *base) Config() domain.ProviderConfig {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// UpdateConfig applies a shallow merge of the non-nil patch fields
func (b *base) UpdateConfig(patch domain.ProviderConfigPatch) {
	b.applyPatch(patch)
}

func (b *base) applyPatch(patch domain.ProviderConfigPatch) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if patch.Enabled != nil {
		b.config.Enabled = *patch.Enabled
	}
	if patch.Priority != nil {
		b.config.Priority = *patch.Priority
	}
	if patch.RateLimit != nil {
		b.config.RateLimit = patch.RateLimit
	}
	if patch.CacheTTL != nil {
		b.config.CacheTTL = *patch.CacheTTL
	}
}

// IsEnabled reports whether the provider participates in searches
func (b *base) IsEnabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.Enabled
}

// Priority returns the provider's configured priority (higher wins)
func (b *base) Priority() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.Priority
}

// validateSearchOptions enforces the paging constraints of the contract
func (b *base) validateSearchOptions(opts domain.SearchOptions) error {
	if opts.PageSize != 0 && (opts.PageSize < minPageSize || opts.PageSize > maxPageSize) {
		return domain.NewProviderError(b.source, domain.CodeInvalidPageSize,
			fmt.Sprintf("page size must be between %d and %d", minPageSize, maxPageSize))
	}
	if opts.Page != 0 && opts.Page < 1 {
		return domain.NewProviderError(b.source, domain.CodeInvalidPageNumber,
			"page number must be greater than 0")
	}
	return nil
}

// wrapErr translates any failure into a ProviderError at the boundary
func (b *base) wrapErr(code string, err error) error {
	return domain.WrapProviderError(b.source, code, err)
}

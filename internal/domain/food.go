package domain

import "time"

// SourceType identifies which provider a food record came from
type SourceType string

const (
	SourceInternal SourceType = "internal"
	SourceFDCUSDA  SourceType = "fdc_usda"
	// Future providers can be added here (spoonacular, nutritionix, ...)

	// SourceAggregated marks responses assembled from multiple providers
	SourceAggregated SourceType = "aggregated"
)

// Food is the normalized food record shared by all providers.
// Internal database fields (ID, CreatedAt, UpdatedAt, UserID) are only
// populated when Source == SourceInternal; ExternalID is only set for
// non-internal sources.
type Food struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand,omitempty"`
	ServingSize float64 `json:"serving_size"`
	ServingUnit string  `json:"serving_unit"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"` // grams
	Carbs       float64 `json:"carbs"`   // grams
	Fat         float64 `json:"fat"`     // grams

	Source           SourceType             `json:"source"`
	ExternalID       string                 `json:"external_id,omitempty"`
	ProviderMetadata map[string]interface{} `json:"provider_metadata,omitempty"`

	ID        int64      `json:"id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	UserID    string     `json:"user_id,omitempty"`
}

// StoredFood is the shape of a food row in the internal database
type StoredFood struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	ServingSize float64   `json:"serving_size"`
	ServingUnit string    `json:"serving_unit"`
	Calories    float64   `json:"calories"`
	Protein     float64   `json:"protein"`
	Carbs       float64   `json:"carbs"`
	Fat         float64   `json:"fat"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PaginationMetadata describes one page of results. TotalItems/TotalPages
// are nil when the provider cannot report them cheaply.
type PaginationMetadata struct {
	Page            int  `json:"page"`
	PageSize        int  `json:"pageSize"`
	TotalItems      *int `json:"totalItems,omitempty"`
	TotalPages      *int `json:"totalPages,omitempty"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// ProviderResponse is one provider's answer to a single search call
type ProviderResponse struct {
	Foods      []Food             `json:"foods"`
	Pagination PaginationMetadata `json:"pagination"`
	Source     SourceType         `json:"source"`
}

// SearchStats summarizes an aggregated result set
type SearchStats struct {
	TotalResults    int                `json:"totalResults"`
	SourceBreakdown map[SourceType]int `json:"sourceBreakdown"`
}

// AggregatedResponse is the merged result of a multi-provider search
type AggregatedResponse struct {
	Foods      []Food             `json:"foods"`
	Pagination PaginationMetadata `json:"pagination"`
	Source     SourceType         `json:"source"`
	Stats      SearchStats        `json:"stats"`
}

// SearchOptions are the paging and filter parameters passed to a provider
type SearchOptions struct {
	Query     string            `json:"query,omitempty"`
	Page      int               `json:"page,omitempty"`
	PageSize  int               `json:"pageSize,omitempty"`
	Filters   map[string]string `json:"filters,omitempty"`
	SortBy    string            `json:"sortBy,omitempty"`
	SortOrder string            `json:"sortOrder,omitempty"`
}

// RateLimitConfig caps a provider's outbound requests per rolling window
type RateLimitConfig struct {
	RequestsPerMinute int `json:"requestsPerMinute"`
	RequestsPerHour   int `json:"requestsPerHour,omitempty"`
}

// ProviderConfig controls a single provider instance. Never persisted;
// created from defaults merged with caller overrides at construction.
type ProviderConfig struct {
	Enabled   bool             `json:"enabled"`
	Priority  int              `json:"priority"` // higher wins ties and dedup conflicts
	RateLimit *RateLimitConfig `json:"rateLimit,omitempty"`
	CacheTTL  time.Duration    `json:"cacheTTL,omitempty"`
}

// ProviderConfigPatch is a partial config for shallow-merge updates.
// Nil fields leave the current value untouched.
type ProviderConfigPatch struct {
	Enabled   *bool            `json:"enabled,omitempty"`
	Priority  *int             `json:"priority,omitempty"`
	RateLimit *RateLimitConfig `json:"rateLimit,omitempty"`
	CacheTTL  *time.Duration   `json:"cacheTTL,omitempty"`
}

// NewPagination computes exact pagination metadata for a fully known result
// set of totalItems entries.
func NewPagination(page, pageSize, totalItems int) PaginationMetadata {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalItems + pageSize - 1) / pageSize
	}
	return PaginationMetadata{
		Page:            page,
		PageSize:        pageSize,
		TotalItems:      &totalItems,
		TotalPages:      &totalPages,
		HasNextPage:     page*pageSize < totalItems,
		HasPreviousPage: page > 1,
	}
}

// EmptyProviderResponse builds the zero-result response substituted for a
// failed or unavailable provider.
func EmptyProviderResponse(source SourceType, page, pageSize int) *ProviderResponse {
	return &ProviderResponse{
		Foods:      []Food{},
		Pagination: NewPagination(page, pageSize, 0),
		Source:     source,
	}
}

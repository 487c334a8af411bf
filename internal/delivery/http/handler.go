package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/macroplate/backend/internal/domain"
	"github.com/macroplate/backend/internal/provider"
	"github.com/macroplate/backend/internal/usecase"
)

// maxRequestPageSize caps the page size accepted on the search endpoint
const maxRequestPageSize = 100

// searchRetryAttempts bounds retries of transient aggregation failures.
// Typed provider errors are never retried: they indicate non-transient
// conditions like a bad API key or an exhausted quota.
const searchRetryAttempts = 2

// Handler holds dependencies for HTTP handlers
type Handler struct {
	aggregator *usecase.Aggregator
	internal   *provider.Internal
	fdcEnabled bool
}

// NewHandler creates a new HTTP handler. fdcEnabled reports whether the
// external provider was initialized (an API key is configured).
func NewHandler(aggregator *usecase.Aggregator, internal *provider.Internal, fdcEnabled bool) *Handler {
	return &Handler{
		aggregator: aggregator,
		internal:   internal,
		fdcEnabled: fdcEnabled,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "macroplate-backend",
		"version": "1.0.0",
	})
}

// searchRequest is the body of POST /foods/search
type searchRequest struct {
	Query               string   `json:"query"`
	Page                int      `json:"page"`
	PageSize            int      `json:"pageSize"`
	Providers           []string `json:"providers"`
	EnableDeduplication *bool    `json:"enableDeduplication"`
}

// SearchFoods handles aggregated food search requests
func (h *Handler) SearchFoods(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.PageSize > maxRequestPageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Page size cannot exceed 100"})
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 25
	}

	providers := make([]domain.SourceType, 0, len(req.Providers))
	for _, p := range req.Providers {
		providers = append(providers, domain.SourceType(p))
	}

	opts := usecase.AggregatedSearchOptions{
		SearchOptions: domain.SearchOptions{
			Query:    req.Query,
			Page:     req.Page,
			PageSize: req.PageSize,
		},
		Providers:           providers,
		EnableDeduplication: req.EnableDeduplication,
	}

	response, err := h.searchWithRetry(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Food search failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// searchWithRetry retries transient failures; ProviderErrors fail fast
func (h *Handler) searchWithRetry(ctx context.Context, opts usecase.AggregatedSearchOptions) (*domain.AggregatedResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= searchRetryAttempts; attempt++ {
		response, err := h.aggregator.SearchFoods(ctx, opts)
		if err == nil {
			return response, nil
		}
		if _, ok := domain.AsProviderError(err); ok {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// ListProviders reports which provider source types are available/enabled
func (h *Handler) ListProviders(c *gin.Context) {
	available := h.aggregator.AvailableProviders()

	status := gin.H{
		string(domain.SourceInternal): gin.H{
			"available":   true,
			"enabled":     h.isEnabled(domain.SourceInternal),
			"description": domain.SourceDisplayName(domain.SourceInternal),
		},
		string(domain.SourceFDCUSDA): gin.H{
			"available":      h.fdcEnabled,
			"enabled":        h.fdcEnabled && h.isEnabled(domain.SourceFDCUSDA),
			"description":    domain.SourceDisplayName(domain.SourceFDCUSDA),
			"requiresApiKey": true,
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"availableProviders": available,
		"providerStatus":     status,
		"totalProviders":     len(available),
	})
}

func (h *Handler) isEnabled(source domain.SourceType) bool {
	p, ok := h.aggregator.Provider(source)
	return ok && p.IsEnabled()
}

// GetFood looks up a single food from the provider owning its source type
func (h *Handler) GetFood(c *gin.Context) {
	source := domain.SourceType(c.Param("source"))
	id := c.Param("id")

	food, err := h.aggregator.GetFoodByID(c.Request.Context(), id, source)
	if err != nil {
		if domain.IsProviderCode(err, domain.CodeProviderNotAvailable) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Provider not available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Food lookup failed", "details": err.Error()})
		return
	}
	if food == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Food not found"})
		return
	}

	c.JSON(http.StatusOK, food)
}

// CreateFood stores a new food in the internal database
func (h *Handler) CreateFood(c *gin.Context) {
	var food domain.Food
	if err := c.ShouldBindJSON(&food); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	created, err := h.internal.CreateFood(c.Request.Context(), food)
	if err != nil {
		if domain.IsProviderCode(err, domain.CodeAlreadyInternal) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Food creation failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateFood rewrites an existing internal food
func (h *Handler) UpdateFood(c *gin.Context) {
	var food domain.Food
	if err := c.ShouldBindJSON(&food); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	internal, err := h.internal.GetFoodByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Food update failed", "details": err.Error()})
		return
	}
	if internal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Food not found"})
		return
	}

	food.ID = internal.ID
	food.CreatedAt = internal.CreatedAt
	food.UpdatedAt = internal.UpdatedAt
	food.UserID = internal.UserID
	if food.Source == "" {
		food.Source = domain.SourceInternal
	}

	updated, err := h.internal.UpdateFood(c.Request.Context(), food)
	if err != nil {
		if domain.IsProviderCode(err, domain.CodeExternalFoodUpdate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Food update failed", "details": err.Error()})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Food not found"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteFood removes an internal food by id
func (h *Handler) DeleteFood(c *gin.Context) {
	if err := h.internal.DeleteFood(c.Request.Context(), c.Param("id")); err != nil {
		if domain.IsProviderCode(err, domain.CodeInvalidID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Food deletion failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Food deleted"})
}

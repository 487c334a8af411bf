package fdc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/macroplate/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production FoodData Central endpoint
	DefaultBaseURL = "https://api.nal.usda.gov/fdc/v1"

	// maxPageSize is the FDC per-request result cap
	maxPageSize = 200

	// maxIDsPerRequest is the FDC cap on batched food lookups
	maxIDsPerRequest = 20
)

// defaultDataTypes focuses searches on the most relevant FDC data sets
var defaultDataTypes = []string{"Foundation", "SR Legacy", "Branded"}

// Client handles communication with the USDA FoodData Central API.
// Every outbound call checks the sliding-window rate limiter first.
type Client struct {
	httpClient   *http.Client
	apiKey       string
	baseURL      string
	limiter      *rateLimiter
	chunkLimiter *rate.Limiter
	debug        bool
}

// ClientOptions tunes client construction
type ClientOptions struct {
	BaseURL           string
	RequestsPerMinute int
	RequestsPerHour   int
	Timeout           time.Duration
}

// NewClient creates a new FDC API client. A missing API key is an error:
// callers are expected to skip constructing the provider entirely when no
// key is configured.
func NewClient(apiKey string, opts ClientOptions) (*Client, error) {
	if apiKey == "" {
		return nil, domain.NewProviderError(domain.SourceFDCUSDA, domain.CodeMissingAPIKey,
			"FDC API key is required (set MACROPLATE_FDC_API_KEY)")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
		limiter: newRateLimiter(opts.RequestsPerMinute, opts.RequestsPerHour),
		// Paces batched lookups: 2 chunk requests per second, burst of 1
		chunkLimiter: rate.NewLimiter(rate.Limit(2), 1),
	}, nil
}

// SetDebug enables request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SearchOptions are the parameters of a foods/search call
type SearchOptions struct {
	Query      string
	PageNumber int
	PageSize   int
	DataTypes  []string
	SortBy     string
	SortOrder  string
}

type searchRequestBody struct {
	Query      string   `json:"query"`
	DataType   []string `json:"dataType"`
	PageSize   int      `json:"pageSize"`
	PageNumber int      `json:"pageNumber"`
	SortBy     string   `json:"sortBy"`
	SortOrder  string   `json:"sortOrder"`
}

// SearchFoods searches the FDC database with paging
func (c *Client) SearchFoods(ctx context.Context, opts SearchOptions) (*domain.FDCSearchResponse, error) {
	if err := c.limiter.check(); err != nil {
		return nil, err
	}

	pageNumber := opts.PageNumber
	if pageNumber < 1 {
		pageNumber = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = 25
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	dataTypes := opts.DataTypes
	if len(dataTypes) == 0 {
		dataTypes = defaultDataTypes
	}
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "dataType.keyword"
	}
	sortOrder := opts.SortOrder
	if sortOrder == "" {
		sortOrder = "asc"
	}

	body := searchRequestBody{
		Query:      opts.Query,
		DataType:   dataTypes,
		PageSize:   pageSize,
		PageNumber: pageNumber,
		SortBy:     sortBy,
		SortOrder:  sortOrder,
	}

	if c.debug {
		log.Printf("[FDC] SearchFoods query=%q page=%d pageSize=%d", opts.Query, pageNumber, pageSize)
	}

	var searchResp domain.FDCSearchResponse
	if err := c.postJSON(ctx, "/foods/search", body, &searchResp); err != nil {
		return nil, domain.WrapProviderError(domain.SourceFDCUSDA, domain.CodeSearchError, err)
	}

	if searchResp.CurrentPage == 0 {
		searchResp.CurrentPage = pageNumber
	}
	if searchResp.TotalPages == 0 && searchResp.TotalHits > 0 {
		searchResp.TotalPages = (searchResp.TotalHits + pageSize - 1) / pageSize
	}
	if searchResp.Foods == nil {
		searchResp.Foods = []domain.FDCFood{}
	}

	return &searchResp, nil
}

// GetFoodByID retrieves a single food by FDC id. Returns (nil, nil) when the
// upstream responds 404.
func (c *Client) GetFoodByID(ctx context.Context, fdcID int64, format string) (*domain.FDCFood, error) {
	if err := c.limiter.check(); err != nil {
		return nil, err
	}

	if format == "" {
		format = "full"
	}

	params := url.Values{}
	params.Add("format", format)
	params.Add("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s/food/%d?%s", c.baseURL, fdcID, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, domain.WrapProviderError(domain.SourceFDCUSDA, domain.CodeGetByIDError, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapProviderError(domain.SourceFDCUSDA, domain.CodeGetByIDError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var food domain.FDCFood
	if err := json.NewDecoder(resp.Body).Decode(&food); err != nil {
		return nil, domain.WrapProviderError(domain.SourceFDCUSDA, domain.CodeGetByIDError, err)
	}

	return &food, nil
}

type batchRequestBody struct {
	FdcIDs []int64 `json:"fdcIds"`
	Format string  `json:"format"`
}

// GetFoodsByIDs retrieves multiple foods, chunked to the upstream's 20-id
// cap with paced requests between chunks.
func (c *Client) GetFoodsByIDs(ctx context.Context, fdcIDs []int64, format string) ([]domain.FDCFood, error) {
	if len(fdcIDs) == 0 {
		return []domain.FDCFood{}, nil
	}
	if format == "" {
		format = "abridged"
	}

	var results []domain.FDCFood
	for start := 0; start < len(fdcIDs); start += maxIDsPerRequest {
		end := start + maxIDsPerRequest
		if end > len(fdcIDs) {
			end = len(fdcIDs)
		}

		if start > 0 {
			if err := c.chunkLimiter.Wait(ctx); err != nil {
				return nil, domain.WrapProviderError(domain.SourceFDCUSDA, domain.CodeGetMultipleError, err)
			}
		}

		if err := c.limiter.check(); err != nil {
			return nil, err
		}

		var chunk []domain.FDCFood
		body := batchRequestBody{FdcIDs: fdcIDs[start:end], Format: format}
		if err := c.postJSON(ctx, "/foods", body, &chunk); err != nil {
			return nil, domain.WrapProviderError(domain.SourceFDCUSDA, domain.CodeGetMultipleError, err)
		}
		results = append(results, chunk...)
	}

	return results, nil
}

// ValidateAPIKey probes the API with a one-result search. A 401/403 means
// the key is invalid; other errors propagate.
func (c *Client) ValidateAPIKey(ctx context.Context) (bool, error) {
	_, err := c.SearchFoods(ctx, SearchOptions{Query: "apple", PageSize: 1})
	if err == nil {
		return true, nil
	}

	if pe, ok := domain.AsProviderError(err); ok {
		if pe.Code == domain.HTTPStatusCode(http.StatusUnauthorized) ||
			pe.Code == domain.HTTPStatusCode(http.StatusForbidden) {
			return false, nil
		}
	}
	return false, err
}

// postJSON executes a POST with the API key header and decodes the response
func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// statusError translates a non-2xx upstream response into a ProviderError
// carrying the HTTP status as the error code.
func (c *Client) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	if c.debug {
		log.Printf("[FDC] API error - Status: %d, Body: %s", resp.StatusCode, string(body))
	}

	return &domain.ProviderError{
		Message:  fmt.Sprintf("FDC API error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		Provider: domain.SourceFDCUSDA,
		Code:     domain.HTTPStatusCode(resp.StatusCode),
		Details:  string(body),
	}
}

package audiobookshelf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/drallgood/abs-cli/internal/logger"
	"github.com/drallgood/abs-cli/internal/models"
	"github.com/drallgood/abs-cli/internal/util"
)

const (
	apiPath = "/api"

	// maxErrorBody caps how much of an error response is kept in APIError
	maxErrorBody = 2048
)

// APIError is returned for any response outside the 2xx range
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
	// RetryAfter is the server's Retry-After hint, zero when absent
	RetryAfter time.Duration
}

// IsRateLimited reports whether the server asked the client to slow down
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Endpoint, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client is a client for the Audiobookshelf API
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewClient creates a new Audiobookshelf client. baseURL is the server root
// without the /api prefix. An empty token sends no Authorization header.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{},
		logger: logger.Get().WithFields(map[string]interface{}{
			"component": "audiobookshelf_client",
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases idle connections held by the client
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// GetLibraries fetches all libraries visible to the user
func (c *Client) GetLibraries(ctx context.Context) ([]models.Library, error) {
	var result librariesResponse
	if err := c.do(ctx, http.MethodGet, "/libraries", nil, nil, &result); err != nil {
		return nil, err
	}

	libraries := make([]models.Library, 0, len(result.Libraries))
	for _, dto := range result.Libraries {
		lib, err := mapLibrary(dto)
		if err != nil {
			return nil, fmt.Errorf("failed to decode libraries: %w", err)
		}
		libraries = append(libraries, lib)
	}

	c.logger.Debug("Fetched libraries", map[string]interface{}{"count": len(libraries)})
	return libraries, nil
}

// GetLibraryItemsPage fetches one page of a library's items. Pages are zero based.
// A limit of 0 asks the server for every item at once.
func (c *Client) GetLibraryItemsPage(ctx context.Context, libraryID string, limit, page int) (*models.ItemPage, error) {
	if libraryID == "" {
		return nil, fmt.Errorf("library ID is required")
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("page", strconv.Itoa(page))

	var result libraryItemsResponse
	endpoint := "/libraries/" + url.PathEscape(libraryID) + "/items"
	if err := c.do(ctx, http.MethodGet, endpoint, query, nil, &result); err != nil {
		return nil, err
	}

	items, err := mapLibraryItems(result.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to decode items of library %s: %w", libraryID, err)
	}

	return &models.ItemPage{
		Items: items,
		Total: result.Total,
		Limit: result.Limit,
		Page:  result.Page,
	}, nil
}

// GetAllLibraryItems fetches every item of a library in a single request
func (c *Client) GetAllLibraryItems(ctx context.Context, libraryID string) ([]models.LibraryItem, error) {
	page, err := c.GetLibraryItemsPage(ctx, libraryID, 0, 0)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// GetMediaProgress returns the current user's progress on every item they started
func (c *Client) GetMediaProgress(ctx context.Context) ([]models.MediaProgress, error) {
	var me meResponse
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &me); err != nil {
		return nil, err
	}

	progress := make([]models.MediaProgress, 0, len(me.MediaProgress))
	for _, dto := range me.MediaProgress {
		// podcast episodes are tracked per episode and never join a library item
		if dto.LibraryItemID == "" || dto.EpisodeID != "" {
			continue
		}
		progress = append(progress, mapMediaProgress(dto))
	}

	c.logger.Debug("Fetched media progress", map[string]interface{}{
		"user":  me.Username,
		"count": len(progress),
	})
	return progress, nil
}

// UpdateProgress patches the current user's progress on itemID
func (c *Client) UpdateProgress(ctx context.Context, itemID string, update models.ProgressUpdate) error {
	if itemID == "" {
		return fmt.Errorf("item ID is required")
	}
	return c.do(ctx, http.MethodPatch, "/me/progress/"+url.PathEscape(itemID), nil, update, nil)
}

// GetItem fetches the expanded view of one library item
func (c *Client) GetItem(ctx context.Context, itemID string) (*models.ItemDetail, error) {
	if itemID == "" {
		return nil, fmt.Errorf("item ID is required")
	}

	query := url.Values{}
	query.Set("expanded", "1")

	var dto libraryItemDTO
	if err := c.do(ctx, http.MethodGet, "/items/"+url.PathEscape(itemID), query, nil, &dto); err != nil {
		return nil, err
	}
	return mapItemDetail(dto)
}

// DeleteItem removes an item from its library. With hard set the files on disk are deleted too.
func (c *Client) DeleteItem(ctx context.Context, itemID string, hard bool) error {
	if itemID == "" {
		return fmt.Errorf("item ID is required")
	}

	var query url.Values
	if hard {
		query = url.Values{"hard": []string{"1"}}
	}
	return c.do(ctx, http.MethodDelete, "/items/"+url.PathEscape(itemID), query, nil, nil)
}

// MatchItem asks the server to refresh an item's metadata from provider
func (c *Client) MatchItem(ctx context.Context, itemID, provider string) (*models.MatchResult, error) {
	if itemID == "" {
		return nil, fmt.Errorf("item ID is required")
	}

	var result matchResponse
	endpoint := "/items/" + url.PathEscape(itemID) + "/match"
	if err := c.do(ctx, http.MethodPost, endpoint, nil, matchRequest{Provider: provider}, &result); err != nil {
		return nil, err
	}
	return &models.MatchResult{Updated: result.Updated}, nil
}

// ScanLibrary starts a library scan. With force set unchanged files are rescanned as well.
func (c *Client) ScanLibrary(ctx context.Context, libraryID string, force bool) error {
	if libraryID == "" {
		return fmt.Errorf("library ID is required")
	}

	var query url.Values
	if force {
		query = url.Values{"force": []string{"1"}}
	}
	return c.do(ctx, http.MethodPost, "/libraries/"+url.PathEscape(libraryID)+"/scan", query, nil, nil)
}

// GetLibraryStats fetches aggregate numbers for a library
func (c *Client) GetLibraryStats(ctx context.Context, libraryID string) (*models.LibraryStats, error) {
	if libraryID == "" {
		return nil, fmt.Errorf("library ID is required")
	}

	var dto libraryStatsDTO
	if err := c.do(ctx, http.MethodGet, "/libraries/"+url.PathEscape(libraryID)+"/stats", nil, nil, &dto); err != nil {
		return nil, err
	}
	stats := mapLibraryStats(dto)
	return &stats, nil
}

// Search runs a library search for q
func (c *Client) Search(ctx context.Context, libraryID, q string) (*models.SearchResults, error) {
	if libraryID == "" {
		return nil, fmt.Errorf("library ID is required")
	}

	query := url.Values{}
	query.Set("q", q)

	var dto searchResponse
	if err := c.do(ctx, http.MethodGet, "/libraries/"+url.PathEscape(libraryID)+"/search", query, nil, &dto); err != nil {
		return nil, err
	}
	return mapSearch(dto)
}

// do sends one request to endpoint below /api. A non-nil body is sent as JSON,
// a non-nil out receives the decoded response.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, out interface{}) error {
	log := c.logger.WithFields(map[string]interface{}{
		"method":   method,
		"endpoint": endpoint,
	})

	reqURL := c.baseURL + apiPath + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		log.Error("Failed to create request", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug("Sending request")
	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug("Request failed", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("%s %s: request failed: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: failed to read response: %w", method, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(respBody))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		log.Debug("Unexpected status code", map[string]interface{}{
			"status":   resp.StatusCode,
			"response": text,
		})
		return &APIError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       text,
			RetryAfter: util.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		log.Debug("Failed to decode response", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("%s %s: failed to decode response: %w", method, endpoint, err)
	}
	return nil
}

// Package scryfall is a rate-limited client for the Scryfall card catalog.
package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL         = "https://api.scryfall.com"
	DefaultRequestInterval = 100 * time.Millisecond // Scryfall asks for at most 10 req/sec
	DefaultTimeout         = 30 * time.Second
	DefaultMaxRetries      = 3
	DefaultUserAgent       = "mtg-card-generator/1.0"

	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL         string
	RequestInterval time.Duration
	Timeout         time.Duration
	MaxRetries      int
	UserAgent       string
	// InitialBackoff is the first retry delay. It doubles up to 16s.
	InitialBackoff time.Duration
	HTTPClient     *http.Client
	Logger         *slog.Logger
}

// DefaultClientConfig returns the configuration for the public API.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:         DefaultBaseURL,
		RequestInterval: DefaultRequestInterval,
		Timeout:         DefaultTimeout,
		MaxRetries:      DefaultMaxRetries,
		UserAgent:       DefaultUserAgent,
		InitialBackoff:  initialBackoff,
	}
}

// Client is a Scryfall API client with rate limiting and retries.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	userAgent      string
	maxRetries     int
	initialBackoff time.Duration
	logger         *slog.Logger
}

// NewClient creates a client. Zero fields of cfg take their defaults.
func NewClient(cfg ClientConfig) *Client {
	def := DefaultClientConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.RequestInterval <= 0 {
		cfg.RequestInterval = def.RequestInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		httpClient:     cfg.HTTPClient,
		rateLimiter:    rate.NewLimiter(rate.Every(cfg.RequestInterval), 1),
		userAgent:      cfg.UserAgent,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		logger:         cfg.Logger,
	}
}

// GetCard retrieves a card by its Scryfall ID.
func (c *Client) GetCard(ctx context.Context, id string) (*Card, error) {
	u := fmt.Sprintf("%s/cards/%s", c.baseURL, url.PathEscape(id))

	var card Card
	if err := c.doRequest(ctx, u, &card); err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", id, err)
	}
	return &card, nil
}

// SearchCards fetches one page of a card search. Pages start at 1.
func (c *Client) SearchCards(ctx context.Context, query string, page int) (*SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("unique", "cards")
	params.Set("order", "name")
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}
	u := fmt.Sprintf("%s/cards/search?%s", c.baseURL, params.Encode())

	var result SearchResult
	if err := c.doRequest(ctx, u, &result); err != nil {
		return nil, fmt.Errorf("failed to search cards with query '%s': %w", query, err)
	}
	return &result, nil
}

// SearchAll follows a search through every page, calling fn with each page's
// cards. A query that matches nothing is not an error.
func (c *Client) SearchAll(ctx context.Context, query string, fn func(page int, cards []Card) error) (int, error) {
	result, err := c.SearchCards(ctx, query, 1)
	if err != nil {
		if IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}

	total := 0
	for page := 1; ; page++ {
		total += len(result.Data)
		if err := fn(page, result.Data); err != nil {
			return total, err
		}
		c.logger.Debug("Fetched catalog page", "page", page, "cards", len(result.Data), "total", total)

		if !result.HasMore || result.NextPage == "" {
			return total, nil
		}
		next := &SearchResult{}
		if err := c.doRequest(ctx, result.NextPage, next); err != nil {
			return total, fmt.Errorf("failed to fetch page %d: %w", page+1, err)
		}
		result = next
	}
}

// doRequest performs a GET with rate limiting and retries on network errors and 429s.
func (c *Client) doRequest(ctx context.Context, u string, result interface{}) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		retry, err := c.once(ctx, u, result)
		if err == nil {
			return nil
		}
		lastErr = err
		if retry.after < 0 || attempt == c.maxRetries {
			return err
		}

		wait := backoff
		if retry.after > 0 {
			wait = retry.after
		}
		c.logger.Warn("Retrying catalog request", "url", u, "attempt", attempt+1, "wait", wait, "error", err)
		if err := sleep(ctx, wait); err != nil {
			return err
		}
		backoff = min(backoff*2, maxBackoff)
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// retryHint tells doRequest how to continue after a failed attempt: after < 0 means
// do not retry, 0 means use the backoff, anything else is the server's Retry-After.
type retryHint struct {
	after time.Duration
}

var noRetry = retryHint{after: -1}

func (c *Client) once(ctx context.Context, u string, result interface{}) (retryHint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return noRetry, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return noRetry, ctx.Err()
		}
		return retryHint{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return retryHint{}, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.Unmarshal(body, result); err != nil {
			return noRetry, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return noRetry, nil

	case http.StatusTooManyRequests:
		hint := retryHint{}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			hint.after = time.Duration(secs) * time.Second
		}
		return hint, fmt.Errorf("rate limited (HTTP 429)")

	case http.StatusNotFound:
		return noRetry, &NotFoundError{URL: u}

	default:
		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
			if resp.StatusCode >= 500 {
				return retryHint{}, &apiErr
			}
			return noRetry, &apiErr
		}
		if resp.StatusCode >= 500 {
			return retryHint{}, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}
		return noRetry, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

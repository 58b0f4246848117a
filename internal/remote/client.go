// Package remote queries an external search endpoint on behalf of the palette.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"cmdpalette/internal/domain"
	"cmdpalette/internal/fuzzy"
)

const (
	DefaultMinChars       = 3
	DefaultDebounce       = 300 * time.Millisecond
	DefaultRequestTimeout = 10 * time.Second
)

// ErrStatus is matched by errors.Is for non-2xx responses
var ErrStatus = errors.New("unexpected response status")

// StatusError reports a non-2xx response from the endpoint
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// Config describes the external endpoint
type Config struct {
	Endpoint       string
	BaseURL        string // resolves a relative Endpoint
	Types          []string
	MinChars       int
	Debounce       time.Duration
	RequestTimeout time.Duration
}

// Callback receives the outcome of a debounced search
type Callback func(items []domain.Item, err error)

// Client performs at most one request at a time; starting a new one aborts
// the previous. It is safe for use from multiple goroutines.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *log.Logger

	mu       sync.Mutex
	timer    *time.Timer
	gen      uint64 // bumped by every DebouncedSearch and Cancel
	reqID    uint64
	inflight context.CancelFunc
	loading  bool
	lastErr  error
}

// New creates a client. A nil httpClient gets one with cfg.RequestTimeout.
func New(cfg Config, httpClient *http.Client, logger *log.Logger) *Client {
	if cfg.MinChars < 1 {
		cfg.MinChars = DefaultMinChars
	}
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	if logger == nil {
		logger = log.Default()
	}

	logger.Debug("External search initialized", "endpoint", cfg.Endpoint, "types", cfg.Types,
		"minChars", cfg.MinChars, "debounce", cfg.Debounce)

	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// Config returns the effective configuration
func (c *Client) Config() Config {
	return c.cfg
}

// MatchType matches the query against the client's configured types
func (c *Client) MatchType(query string) *domain.TypeMatch {
	return MatchType(query, c.cfg.Types)
}

// ExtractSearchTerms removes the matched type word from query
func (c *Client) ExtractSearchTerms(query, matchedWord string) string {
	return ExtractSearchTerms(query, matchedWord)
}

// MatchType returns the first (word, type) pair where the word equals the
// type or lies within 30% of its length in edit distance. Words are tried
// in order, and for each word the types are tried in order.
func MatchType(query string, types []string) *domain.TypeMatch {
	if len(types) == 0 {
		return nil
	}

	for _, word := range strings.Fields(strings.ToLower(query)) {
		for _, typ := range types {
			lower := strings.ToLower(typ)
			if word == lower {
				return &domain.TypeMatch{Type: typ, MatchedWord: word, Distance: 0}
			}
			if d := fuzzy.Levenshtein(word, lower); d <= typeThreshold(lower) {
				return &domain.TypeMatch{Type: typ, MatchedWord: word, Distance: d}
			}
		}
	}
	return nil
}

// typeThreshold is ceil(0.3 * len(typ)) computed in integers
func typeThreshold(typ string) int {
	n := utf8.RuneCountInString(typ)
	return (3*n + 9) / 10
}

// ExtractSearchTerms drops every word equal to matchedWord (ignoring case)
// and joins the rest with single spaces
func ExtractSearchTerms(query, matchedWord string) string {
	words := strings.Fields(query)
	kept := words[:0:0]
	for _, w := range words {
		if !strings.EqualFold(w, matchedWord) {
			kept = append(kept, w)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// Search queries the endpoint. Queries shorter than MinChars return no
// results without a request. An aborted request returns no results and no error.
func (c *Client) Search(ctx context.Context, query, typ string) ([]domain.Item, error) {
	c.mu.Lock()
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
		c.logger.Debug("Previous search request cancelled")
	}

	if utf8.RuneCountInString(query) < c.cfg.MinChars {
		c.mu.Unlock()
		c.logger.Debug("Query too short", "minChars", c.cfg.MinChars)
		return []domain.Item{}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	c.reqID++
	id := c.reqID
	c.inflight = cancel
	c.loading = true
	c.lastErr = nil
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.reqID == id {
			c.inflight = nil
			c.loading = false
		}
		c.mu.Unlock()
		cancel()
	}()

	items, err := c.fetch(ctx, query, typ)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			c.logger.Debug("Search request aborted", "query", query)
			return []domain.Item{}, nil
		}
		c.logger.Error("External search error", "query", query, "type", typ, "err", err)
		c.mu.Lock()
		if c.reqID == id {
			c.lastErr = err
		}
		c.mu.Unlock()
		return nil, err
	}

	c.logger.Debug("External search results", "count", len(items))
	return items, nil
}

func (c *Client) fetch(ctx context.Context, query, typ string) ([]domain.Item, error) {
	endpoint, err := c.buildURL(query, typ)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetching external results", "url", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return c.decode(body)
}

func (c *Client) buildURL(query, typ string) (string, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	if !u.IsAbs() && c.cfg.BaseURL != "" {
		base, err := url.Parse(c.cfg.BaseURL)
		if err != nil {
			return "", fmt.Errorf("parse base url: %w", err)
		}
		u = base.ResolveReference(u)
	}

	q := u.Query()
	q.Set("query", query)
	if typ != "" {
		q.Set("type", typ)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// decode accepts a JSON array of items; any other JSON value means no results
func (c *Client) decode(body []byte) ([]domain.Item, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if _, ok := raw.([]any); !ok {
		c.logger.Debug("Search response is not an array")
		return []domain.Item{}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	items := make([]domain.Item, 0, len(elems))
	for _, elem := range elems {
		var item domain.Item
		if err := json.Unmarshal(elem, &item); err != nil {
			c.logger.Warn("Skipping malformed search result", "err", err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// DebouncedSearch runs Search once no other call arrived for the debounce
// window. Only the latest call can reach callback; earlier ones, and any call
// cancelled by Cancel, are dropped.
func (c *Client) DebouncedSearch(query, typ string, callback Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen

	c.timer = time.AfterFunc(c.cfg.Debounce, func() {
		items, err := c.Search(context.Background(), query, typ)

		c.mu.Lock()
		current := c.gen == gen
		c.mu.Unlock()
		if !current {
			return
		}

		if err != nil {
			callback(nil, err)
			return
		}
		callback(items, nil)
	})
}

// Cancel clears a pending debounce and aborts the in-flight request.
// Calling it while idle is a no-op.
func (c *Client) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
	c.loading = false
}

// Loading reports whether a request is in flight
func (c *Client) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LastError returns the error of the most recent failed request, if any
func (c *Client) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

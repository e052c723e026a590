// Package client wraps outbound Sportradar calls with per-sport key resolution,
// local rate limiting, retry on upstream 429 and usage accounting.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"gridiron_intel/ingestion/internal/metrics"
	"gridiron_intel/ingestion/internal/models"
	"gridiron_intel/ingestion/internal/ratelimit"
	"gridiron_intel/ingestion/internal/usage"

	"github.com/rs/zerolog/log"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultRetryBackoff = 2 * time.Second
	defaultMaxBackoff   = 30 * time.Second
	maxBodyBytes        = 32 << 20
	userAgent           = "GridIron-Intel/1.0"
)

// KeySource resolves the API key for a sport
type KeySource interface {
	APIKey(sport models.Sport) (string, error)
}

// ResponseCache stores raw response bodies
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURLs     map[models.Sport]string
	HTTPClient   *http.Client
	Timeout      time.Duration
	Limiter      ratelimit.Limiter
	Usage        usage.Logger
	Cache        ResponseCache
	MaxRetries   int
	RetryBackoff time.Duration
	MaxBackoff   time.Duration
	ScheduleTTL  time.Duration
	HierarchyTTL time.Duration
}

// Client is the Sportradar API client
type Client struct {
	keys         KeySource
	baseURLs     map[models.Sport]string
	httpClient   *http.Client
	usage        usage.Logger
	cache        ResponseCache
	maxRetries   int
	retryBackoff time.Duration
	maxBackoff   time.Duration
	scheduleTTL  time.Duration
	hierarchyTTL time.Duration

	mu      sync.Mutex
	limiter ratelimit.Limiter
}

// Meta identifies a logical call for key resolution, usage accounting and caching
type Meta struct {
	Sport    models.Sport
	Endpoint string
	CacheTTL time.Duration
}

// NewClient creates a new Sportradar API client
func NewClient(keys KeySource, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Limiter == nil {
		// Sportradar trial keys allow one call per second
		opts.Limiter = ratelimit.NewTokenBucket(1, time.Second)
	}
	if opts.Usage == nil {
		opts.Usage = usage.NopLogger{}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	baseURLs := make(map[models.Sport]string, len(opts.BaseURLs))
	for sport, base := range opts.BaseURLs {
		baseURLs[sport] = strings.TrimRight(base, "/")
	}

	return &Client{
		keys:         keys,
		baseURLs:     baseURLs,
		httpClient:   httpClient,
		limiter:      opts.Limiter,
		usage:        opts.Usage,
		cache:        opts.Cache,
		maxRetries:   opts.MaxRetries,
		retryBackoff: opts.RetryBackoff,
		maxBackoff:   opts.MaxBackoff,
		scheduleTTL:  opts.ScheduleTTL,
		hierarchyTTL: opts.HierarchyTTL,
	}
}

// ResetRateLimiter returns the local limiter to its fully available state
func (c *Client) ResetRateLimiter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limiter.Reset()
}

// Fetch performs a rate-limited GET of rawURL and decodes the JSON body into T.
// The API key for meta.Sport is added as the api_key query parameter.
func Fetch[T any](ctx context.Context, c *Client, rawURL string, meta Meta) (T, error) {
	var out T
	err := c.get(ctx, rawURL, meta, func(body []byte) error {
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// get runs one logical call: key, cache, limiter, attempts, usage record
func (c *Client) get(ctx context.Context, rawURL string, meta Meta, decode func([]byte) error) error {
	start := time.Now()

	apiKey, err := c.keys.APIKey(meta.Sport)
	if err != nil {
		return err
	}

	var cacheKey string
	if c.cache != nil && meta.CacheTTL > 0 {
		cacheKey = string(meta.Sport) + ":" + rawURL
		if body, ok := c.cached(ctx, cacheKey); ok {
			if err := decode(body); err == nil {
				return nil
			}
			log.Warn().Str("key", cacheKey).Msg("Discarding undecodable cached response")
		}
	}

	reqURL, err := withAPIKey(rawURL, apiKey)
	if err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		if err := c.waitForSlot(ctx, meta); err != nil {
			return err
		}

		log.Debug().
			Str("url", rawURL).
			Str("sport", meta.Sport.String()).
			Str("endpoint", meta.Endpoint).
			Int("attempt", attempt).
			Msg("Making API request")

		resp, err := c.do(ctx, reqURL)
		if err != nil {
			metrics.RecordError("client", "request_failed")
			return fmt.Errorf("%s: API request failed: %w", meta.Endpoint, err)
		}

		switch {
		case resp.status == http.StatusTooManyRequests:
			wait := c.backoff(resp.header, attempt)
			if attempt > c.maxRetries {
				c.finish(ctx, meta, resp.status, attempt, start)
				return &RateLimitError{Endpoint: meta.Endpoint, Attempts: attempt, RetryAfter: wait}
			}

			metrics.RecordAPIRetry(meta.Sport.String(), meta.Endpoint)
			log.Warn().
				Str("url", rawURL).
				Int("attempt", attempt).
				Dur("backoff", wait).
				Msg("Rate limited by upstream, retrying after backoff")

			if err := sleep(ctx, wait); err != nil {
				return err
			}

		case resp.status < 200 || resp.status > 299:
			c.finish(ctx, meta, resp.status, attempt, start)
			return &UpstreamError{
				Endpoint:   meta.Endpoint,
				StatusCode: resp.status,
				StatusText: resp.text,
				Body:       truncate(string(resp.body), 512),
			}

		default:
			if err := decode(resp.body); err != nil {
				c.finish(ctx, meta, resp.status, attempt, start)
				return &ParseError{Endpoint: meta.Endpoint, Err: err}
			}

			c.finish(ctx, meta, resp.status, attempt, start)
			if cacheKey != "" {
				c.store(ctx, cacheKey, resp.body, meta.CacheTTL)
			}

			log.Debug().
				Str("url", rawURL).
				Int("status", resp.status).
				Int("size", len(resp.body)).
				Msg("API request successful")
			return nil
		}
	}
}

// response is what the retry loop needs from one physical attempt
type response struct {
	status int
	text   string
	header http.Header
	body   []byte
}

// do performs a single physical GET and reads the body
func (c *Client) do(ctx context.Context, reqURL string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", redactKey(err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, redactKey(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	text := strings.TrimSpace(strings.TrimPrefix(httpResp.Status, strconv.Itoa(httpResp.StatusCode)))
	if text == "" {
		text = http.StatusText(httpResp.StatusCode)
	}

	return &response{
		status: httpResp.StatusCode,
		text:   text,
		header: httpResp.Header,
		body:   body,
	}, nil
}

func (c *Client) waitForSlot(ctx context.Context, meta Meta) error {
	c.mu.Lock()
	limiter := c.limiter
	c.mu.Unlock()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: waiting for rate limiter: %w", meta.Endpoint, err)
	}
	metrics.RecordRateLimitWait(meta.Sport.String(), time.Since(start).Seconds())
	return nil
}

// backoff honours Retry-After (seconds or HTTP date), else doubles the base per attempt
func (c *Client) backoff(header http.Header, attempt int) time.Duration {
	wait := time.Duration(-1)
	if v := strings.TrimSpace(header.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			wait = time.Duration(secs) * time.Second
		} else if at, err := http.ParseTime(v); err == nil {
			wait = time.Until(at)
		}
	}

	if wait < 0 {
		wait = c.maxBackoff
		// doubling past the cap would overflow time.Duration
		if shift := attempt - 1; shift >= 0 && shift < 62 && c.retryBackoff <= c.maxBackoff>>uint(shift) {
			wait = c.retryBackoff << uint(shift)
		}
	}
	if wait > c.maxBackoff {
		wait = c.maxBackoff
	}
	return wait
}

// finish records metrics and the single usage entry of a logical call
func (c *Client) finish(ctx context.Context, meta Meta, status, attempts int, start time.Time) {
	metrics.RecordAPICall(meta.Sport.String(), meta.Endpoint, strconv.Itoa(status), time.Since(start).Seconds())
	c.usage.Record(ctx, &models.APIUsageRecord{
		Sport:      meta.Sport,
		Endpoint:   meta.Endpoint,
		StatusCode: status,
		Attempts:   attempts,
	})
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed, fetching from API")
		return nil, false
	}
	return body, ok
}

func (c *Client) store(ctx context.Context, key string, body []byte, ttl time.Duration) {
	if err := c.cache.Set(ctx, key, body, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func withAPIKey(rawURL, apiKey string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	q := u.Query()
	q.Set("api_key", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// redactKey strips the request URL (and its api_key) from transport errors
func redactKey(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Package httpget is the authenticated GET client used to call provider APIs
// with a user's access token.
package httpget

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/discordauth/internal/cache"
	"github.com/dropDatabas3/discordauth/internal/metrics"
	"github.com/dropDatabas3/discordauth/internal/observability/logger"
	"github.com/dropDatabas3/discordauth/internal/rate"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "discordauth (https://github.com/dropDatabas3/discordauth, 1.0)"
	maxBodyBytes     = 4 << 20
)

// Config configura el cliente. Todos los campos son opcionales.
type Config struct {
	Timeout   time.Duration
	UserAgent string

	// Transport base; nil usa http.DefaultTransport.
	Transport http.RoundTripper

	// Limiter, si está, se consulta antes de cada request saliente.
	Limiter    rate.Limiter
	LimiterKey string

	// Cache de respuestas 2xx por (url, token). CacheTTL <= 0 lo desactiva.
	Cache    cache.Client
	CacheTTL time.Duration
}

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	URL        string
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.Code, e.Body)
	}
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// Client performs bearer-authenticated GETs.
type Client struct {
	timeout    time.Duration
	userAgent  string
	base       http.RoundTripper
	limiter    rate.Limiter
	limiterKey string
	cache      cache.Client
	cacheTTL   time.Duration

	sf singleflight.Group
}

// New builds a Client with defaults applied.
func New(cfg Config) *Client {
	c := &Client{
		timeout:    cfg.Timeout,
		userAgent:  cfg.UserAgent,
		base:       cfg.Transport,
		limiter:    cfg.Limiter,
		limiterKey: cfg.LimiterKey,
		cache:      cfg.Cache,
		cacheTTL:   cfg.CacheTTL,
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.limiterKey == "" {
		c.limiterKey = "discord:api"
	}
	return c
}

// Get fetches rawURL with accessToken in the Authorization header.
// Concurrent identical calls share one request.
func (c *Client) Get(ctx context.Context, rawURL, accessToken string) ([]byte, error) {
	key := requestKey(rawURL, accessToken)

	if c.cacheEnabled() {
		if v, err := c.cache.Get(ctx, key); err == nil {
			metrics.ObserveUpstream(endpointLabel(rawURL), "cache_hit", 0)
			return []byte(v), nil
		}
	}

	v, err, shared := c.sf.Do(key, func() (any, error) {
		return c.do(ctx, rawURL, accessToken)
	})
	if err != nil {
		return nil, err
	}
	body := v.([]byte)
	if shared {
		// copia para que cada caller sea dueño de su slice
		body = append([]byte(nil), body...)
	}

	if c.cacheEnabled() {
		if err := c.cache.Set(ctx, key, string(body), c.cacheTTL); err != nil {
			logger.From(ctx).Warn("httpget: cache set failed", logger.Err(err))
		}
	}
	return body, nil
}

func (c *Client) cacheEnabled() bool { return c.cache != nil && c.cacheTTL > 0 }

func (c *Client) do(ctx context.Context, rawURL, accessToken string) ([]byte, error) {
	endpoint := endpointLabel(rawURL)
	log := logger.From(ctx).With(logger.Component("httpget"), logger.Endpoint(endpoint))

	if c.limiter != nil {
		if err := rate.Wait(ctx, c.limiter, c.limiterKey); err != nil {
			metrics.ObserveUpstream(endpoint, "rate_limited", 0)
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	hc := &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Base:   c.base,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		metrics.ObserveUpstream(endpoint, "transport_error", time.Since(start))
		log.Warn("httpget: request failed", logger.Err(err))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveUpstream(endpoint, "transport_error", elapsed)
		return nil, err
	}

	if resp.StatusCode/100 != 2 {
		metrics.ObserveUpstream(endpoint, strconv.Itoa(resp.StatusCode), elapsed)
		log.Warn("httpget: non-2xx response", logger.Status(resp.StatusCode), logger.DurationMs(elapsed.Milliseconds()))
		return nil, &StatusError{
			URL:        rawURL,
			Code:       resp.StatusCode,
			Body:       truncate(string(body), 256),
			RetryAfter: parseRetryAfter(resp.Header),
		}
	}

	metrics.ObserveUpstream(endpoint, "ok", elapsed)
	log.Debug("httpget: ok", logger.Status(resp.StatusCode), logger.DurationMs(elapsed.Milliseconds()))
	return body, nil
}

// requestKey never contains the raw token.
func requestKey(rawURL, accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return "httpget:" + hex.EncodeToString(sum[:12]) + ":" + rawURL
}

// endpointLabel keeps metric cardinality bounded: only the path.
func endpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "unknown"
	}
	return u.Path
}

// parseRetryAfter reads Discord's Retry-After (seconds, may be fractional).
func parseRetryAfter(h http.Header) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

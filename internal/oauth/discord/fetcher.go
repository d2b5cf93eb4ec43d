package discord

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/dropDatabas3/discordauth/internal/observability/logger"
)

// Getter performs an authenticated GET. Implementations attach accessToken as
// an Authorization header, fail on non-2xx responses and own request timeouts.
type Getter interface {
	Get(ctx context.Context, url, accessToken string) ([]byte, error)
}

// GetterFunc adapts a function to Getter.
type GetterFunc func(ctx context.Context, url, accessToken string) ([]byte, error)

func (f GetterFunc) Get(ctx context.Context, url, accessToken string) ([]byte, error) {
	return f(ctx, url, accessToken)
}

// Fetcher retrieves /users/@me/{scope} resources for granted scopes.
type Fetcher struct {
	getter     Getter
	granted    ScopeSet
	delay      time.Duration
	usersMeURL string
}

// NewFetcher returns a Fetcher that only calls out for scopes in granted and
// waits delay before every call it makes.
func NewFetcher(getter Getter, usersMeURL string, granted ScopeSet, delay time.Duration) *Fetcher {
	return &Fetcher{
		getter:     getter,
		granted:    granted,
		delay:      delay,
		usersMeURL: strings.TrimRight(usersMeURL, "/"),
	}
}

// Fetch returns the raw JSON for scope. A scope that was not granted yields
// (nil, nil) without touching the network.
func (f *Fetcher) Fetch(ctx context.Context, scope Scope, accessToken string) (json.RawMessage, error) {
	if !f.granted.Has(scope) {
		logger.From(ctx).Debug("scope not granted, skipping fetch", logger.Scope(string(scope)))
		return nil, nil
	}

	if err := sleepCtx(ctx, f.delay); err != nil {
		return nil, &UpstreamError{Message: msgFetchScope(scope), Err: err}
	}

	body, err := f.getter.Get(ctx, f.usersMeURL+"/"+string(scope), accessToken)
	if err != nil {
		return nil, &UpstreamError{Message: msgFetchScope(scope), Err: err}
	}
	if !isTextBody(body) {
		return nil, &ParseError{Message: msgParseScope(scope)}
	}
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ParseError{Message: msgParseScope(scope), Err: err}
	}
	return raw, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

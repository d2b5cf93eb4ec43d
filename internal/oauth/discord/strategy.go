// Package discord implements Discord as an OAuth 2.0 identity provider.
// Discord issues no ID tokens, so the user is resolved from /users/@me and
// optionally enriched with the connections and guilds scopes.
package discord

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/dropDatabas3/discordauth/internal/oauth/httpget"
	"github.com/dropDatabas3/discordauth/internal/observability/logger"
)

// Handshake is the authorization-code half of OAuth2. *oauth2.Config satisfies it.
type Handshake interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// VerifyDone completes a verify callback. It must be called exactly once.
type VerifyDone func(err error, user any)

// VerifyFunc maps a resolved profile to an application user.
type VerifyFunc func(ctx context.Context, accessToken, refreshToken string, profile *Profile, done VerifyDone)

// ProfileDone receives the outcome of UserProfile: an error or a profile, never both.
type ProfileDone func(err error, profile *Profile)

// ScopeDone receives the outcome of FetchScope.
type ScopeDone func(err error, data json.RawMessage)

// authorizationParamKeys are the Discord-specific authorize parameters passed through.
var authorizationParamKeys = []string{
	"permissions",
	"prompt",
	"guild_id",
	"disable_guild_select",
	"integration_type",
}

// Strategy authenticates users against Discord.
type Strategy struct {
	opts      Options
	verify    VerifyFunc
	handshake Handshake
	fetcher   *Fetcher
	resolver  *Resolver
}

// StrategyOption customizes collaborators of a Strategy.
type StrategyOption func(*strategyDeps)

type strategyDeps struct {
	getter     Getter
	handshake  Handshake
	apiBaseURL string
	now        func() time.Time
}

// WithGetter replaces the default HTTP GET client.
func WithGetter(g Getter) StrategyOption {
	return func(d *strategyDeps) { d.getter = g }
}

// WithHandshake replaces the oauth2.Config built from the options.
func WithHandshake(h Handshake) StrategyOption {
	return func(d *strategyDeps) { d.handshake = h }
}

// WithAPIBaseURL points profile and scope fetches at another API root.
func WithAPIBaseURL(u string) StrategyOption {
	return func(d *strategyDeps) { d.apiBaseURL = strings.TrimRight(u, "/") }
}

func withClock(now func() time.Time) StrategyOption {
	return func(d *strategyDeps) { d.now = now }
}

// New validates opts and builds a Strategy. Validation happens before any
// collaborator is created, so a bad configuration never reaches the network.
func New(opts Options, verify VerifyFunc, options ...StrategyOption) (*Strategy, error) {
	if err := opts.validate(verify); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	deps := strategyDeps{apiBaseURL: DefaultAPIBaseURL, now: time.Now}
	for _, o := range options {
		o(&deps)
	}
	if deps.getter == nil {
		deps.getter = httpget.New(httpget.Config{})
	}
	if deps.handshake == nil {
		deps.handshake = oauthConfig(opts)
	}

	usersMe := deps.apiBaseURL + "/users/@me"
	fetcher := NewFetcher(deps.getter, usersMe, NewScopeSet(opts.Scope...), opts.ScopeDelay)
	resolver := NewResolver(deps.getter, usersMe, fetcher, opts.fetchScopeEnabled())
	resolver.now = deps.now

	return &Strategy{
		opts:      opts,
		verify:    verify,
		handshake: deps.handshake,
		fetcher:   fetcher,
		resolver:  resolver,
	}, nil
}

func oauthConfig(opts Options) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		RedirectURL:  opts.CallbackURL,
		Scopes:       ScopeStrings(opts.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:  opts.AuthorizationURL,
			TokenURL: opts.TokenURL,
		},
	}
}

// Name returns the provider name.
func (s *Strategy) Name() string { return ProviderName }

// Options returns a copy of the options the strategy was built with.
func (s *Strategy) Options() Options { return s.opts.withDefaults() }

// Profile resolves the profile for accessToken.
func (s *Strategy) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	return s.resolver.Resolve(ctx, accessToken)
}

// UserProfile is the callback form of Profile. done is called exactly once.
func (s *Strategy) UserProfile(ctx context.Context, accessToken string, done ProfileDone) {
	p, err := s.resolver.Resolve(ctx, accessToken)
	if err != nil {
		done(err, nil)
		return
	}
	done(nil, p)
}

// FetchScope fetches a single scope resource; see Fetcher.Fetch.
func (s *Strategy) FetchScope(ctx context.Context, scope Scope, accessToken string, cb ScopeDone) {
	data, err := s.fetcher.Fetch(ctx, scope, accessToken)
	if err != nil {
		cb(err, nil)
		return
	}
	cb(nil, data)
}

// AuthorizationParams keeps the Discord-specific keys present in options and
// drops everything else. No defaults are added.
func (s *Strategy) AuthorizationParams(options map[string]string) map[string]string {
	params := make(map[string]string)
	for _, k := range authorizationParamKeys {
		if v, ok := options[k]; ok {
			params[k] = v
		}
	}
	return params
}

// AuthCodeURL builds the authorize redirect for state.
func (s *Strategy) AuthCodeURL(state string, options map[string]string) string {
	var opts []oauth2.AuthCodeOption
	if s.opts.ScopeSeparator != DefaultScopeSeparator {
		opts = append(opts, oauth2.SetAuthURLParam("scope", strings.Join(ScopeStrings(s.opts.Scope), s.opts.ScopeSeparator)))
	}
	for k, v := range s.AuthorizationParams(options) {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return s.handshake.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for tokens.
func (s *Strategy) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := s.handshake.Exchange(ctx, code)
	if err != nil {
		return nil, &UpstreamError{Message: msgExchange, Err: err}
	}
	return tok, nil
}

type verifyResult struct {
	user any
	err  error
}

// Authenticate runs the callback leg: exchange code, resolve the profile and
// hand both to verify. It returns whatever verify accepted.
func (s *Strategy) Authenticate(ctx context.Context, code string) (any, error) {
	tok, err := s.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	profile, err := s.Profile(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	ch := make(chan verifyResult, 1)
	var once sync.Once
	s.verify(ctx, tok.AccessToken, tok.RefreshToken, profile, func(err error, user any) {
		once.Do(func() { ch <- verifyResult{user: user, err: err} })
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		if res.user == nil {
			logger.From(ctx).Info("verify rejected user", logger.UserID(profile.ID))
			return nil, ErrUserRejected
		}
		return res.user, nil
	}
}

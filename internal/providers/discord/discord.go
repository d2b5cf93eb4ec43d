// Package discord adapts the Discord OAuth2 strategy to providers.Provider.
package discord

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/discordauth/internal/oauth/discord"
	"github.com/dropDatabas3/discordauth/internal/providers"
)

const ProviderName = discord.ProviderName

// Extra keys understood in ProviderConfig.Extra.
const (
	ExtraScopeDelay     = "scope_delay"
	ExtraFetchScope     = "fetch_scope"
	ExtraScopeSeparator = "scope_separator"
)

// Provider implements Discord OAuth2 authentication.
type Provider struct {
	strategy *discord.Strategy
	opts     []discord.StrategyOption
}

// Factory creates a Discord provider with the default HTTP client.
func Factory(cfg providers.ProviderConfig) (providers.Provider, error) {
	return NewFactory()(cfg)
}

// NewFactory returns a factory whose strategies are built with opts
// (shared getter, test doubles, ...).
func NewFactory(opts ...discord.StrategyOption) providers.ProviderFactory {
	return func(cfg providers.ProviderConfig) (providers.Provider, error) {
		p := &Provider{opts: opts}
		if err := p.Configure(cfg); err != nil {
			return nil, err
		}
		return p, nil
	}
}

func (p *Provider) Name() string                 { return ProviderName }
func (p *Provider) Type() providers.ProviderType { return providers.ProviderTypeOAuth2 }

// Configure rebuilds the underlying strategy from cfg.
func (p *Provider) Configure(cfg providers.ProviderConfig) error {
	opts, err := strategyOptions(cfg)
	if err != nil {
		return err
	}
	s, err := discord.New(opts, acceptProfile, p.opts...)
	if err != nil {
		return err
	}
	p.strategy = s
	return nil
}

func (p *Provider) Validate() error {
	if p.strategy == nil {
		return errors.New("discord: provider not configured")
	}
	return nil
}

// AuthorizeURL keeps only the Discord authorize parameters from params.
func (p *Provider) AuthorizeURL(state string, params map[string]string) string {
	return p.strategy.AuthCodeURL(state, params)
}

func (p *Provider) Exchange(ctx context.Context, code string) (*providers.TokenSet, error) {
	tok, err := p.strategy.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	ts := &providers.TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		ts.ExpiresIn = int(time.Until(tok.Expiry).Seconds())
	}
	return ts, nil
}

func (p *Provider) UserInfo(ctx context.Context, accessToken string) (*providers.UserProfile, error) {
	prof, err := p.strategy.Profile(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return ToUserProfile(prof), nil
}

// Strategy exposes the wrapped strategy.
func (p *Provider) Strategy() *discord.Strategy { return p.strategy }

// ToUserProfile normaliza un perfil de Discord.
// Name: global_name > displayName > username.
func ToUserProfile(p *discord.Profile) *providers.UserProfile {
	name := p.Username
	switch {
	case p.GlobalName != nil && *p.GlobalName != "":
		name = *p.GlobalName
	case p.DisplayName != "":
		name = p.DisplayName
	}
	return &providers.UserProfile{
		Provider:      ProviderName,
		ProviderID:    p.ID,
		Username:      p.Username,
		Email:         p.Email,
		Name:          name,
		Picture:       p.AvatarURL(),
		EmailVerified: p.Verified && p.Email != "",
		Raw:           p.JSON,
	}
}

// acceptProfile is the verify used behind the provider interface: the
// registry consumer decides about users, not the strategy.
func acceptProfile(_ context.Context, _, _ string, profile *discord.Profile, done discord.VerifyDone) {
	done(nil, profile)
}

func strategyOptions(cfg providers.ProviderConfig) (discord.Options, error) {
	opts := discord.Options{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		CallbackURL:  cfg.RedirectURI,
	}
	if len(cfg.Scopes) > 0 {
		scopes, err := discord.ParseScopes(strings.Join(cfg.Scopes, " "))
		if err != nil {
			return opts, err
		}
		opts.Scope = scopes
	}
	if v := cfg.Extra[ExtraScopeDelay]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return opts, errors.New("discord: scope_delay: " + err.Error())
		}
		opts.ScopeDelay = d
	}
	if v := cfg.Extra[ExtraFetchScope]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("discord: fetch_scope: " + err.Error())
		}
		opts.FetchScopeEnabled = discord.Bool(b)
	}
	opts.ScopeSeparator = cfg.Extra[ExtraScopeSeparator]
	return opts, nil
}

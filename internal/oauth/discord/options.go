package discord

import (
	"strings"
	"time"
)

const (
	DefaultAuthorizationURL = "https://discord.com/api/oauth2/authorize"
	DefaultTokenURL         = "https://discord.com/api/oauth2/token"
	DefaultAPIBaseURL       = "https://discord.com/api"
	DefaultScopeSeparator   = " "
)

// Options configures a Strategy. They are copied on New and never mutated.
type Options struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string

	// Scope is the ordered list of scopes requested at authorization time.
	// It is also the granted set used to decide which enrichment fetches run.
	Scope []Scope

	// ScopeDelay is waited before each enrichment fetch, to stay under
	// Discord's per-route rate limits. Zero disables it.
	ScopeDelay time.Duration

	// FetchScopeEnabled gates the enrichment fetches. nil means enabled.
	FetchScopeEnabled *bool

	AuthorizationURL string
	TokenURL         string
	ScopeSeparator   string
}

// Bool is a helper for Options.FetchScopeEnabled.
func Bool(v bool) *bool { return &v }

func (o Options) fetchScopeEnabled() bool {
	return o.FetchScopeEnabled == nil || *o.FetchScopeEnabled
}

// validate collects every invalid field so callers see them all at once.
func (o Options) validate(verify VerifyFunc) error {
	var fields []string
	if strings.TrimSpace(o.ClientID) == "" {
		fields = append(fields, "client_id")
	}
	if strings.TrimSpace(o.ClientSecret) == "" {
		fields = append(fields, "client_secret")
	}
	if strings.TrimSpace(o.CallbackURL) == "" {
		fields = append(fields, "callback_url")
	}
	if len(o.Scope) == 0 {
		fields = append(fields, "scope")
	} else {
		for _, s := range o.Scope {
			if !s.Valid() {
				fields = append(fields, "scope")
				break
			}
		}
	}
	if o.ScopeDelay < 0 {
		fields = append(fields, "scope_delay")
	}
	if verify == nil {
		fields = append(fields, "verify")
	}
	if len(fields) > 0 {
		return &ConfigError{Fields: fields}
	}
	return nil
}

func (o Options) withDefaults() Options {
	out := o
	out.Scope = append([]Scope(nil), o.Scope...)
	if out.FetchScopeEnabled != nil {
		out.FetchScopeEnabled = Bool(*o.FetchScopeEnabled)
	}
	if strings.TrimSpace(out.AuthorizationURL) == "" {
		out.AuthorizationURL = DefaultAuthorizationURL
	}
	if strings.TrimSpace(out.TokenURL) == "" {
		out.TokenURL = DefaultTokenURL
	}
	if out.ScopeSeparator == "" {
		out.ScopeSeparator = DefaultScopeSeparator
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/discordauth/internal/oauth/discord"
)

type Config struct {
	App struct {
		// dev | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr       string `yaml:"addr"`
		PublicURL  string `yaml:"public_url"`  // base para redirects post-login
		SuccessURL string `yaml:"success_url"` // si vacío => /me
	} `yaml:"server"`

	Discord struct {
		ClientID         string   `yaml:"client_id"`
		ClientSecret     string   `yaml:"client_secret"`
		CallbackURL      string   `yaml:"callback_url"` // si vacío => <server.public_url>/auth/discord/callback
		Scopes           []string `yaml:"scopes"`       // default: identify,email
		ScopeDelay       string   `yaml:"scope_delay"`  // "0s" = sin delay
		FetchScope       *bool    `yaml:"fetch_scope"`  // default: true
		AuthorizationURL string   `yaml:"authorization_url"`
		TokenURL         string   `yaml:"token_url"`
		ScopeSeparator   string   `yaml:"scope_separator"`
		APIBaseURL       string   `yaml:"api_base_url"`
	} `yaml:"discord"`

	HTTP struct {
		Timeout   string `yaml:"timeout"`
		UserAgent string `yaml:"user_agent"`
		Rate      struct {
			Enabled bool    `yaml:"enabled"`
			Driver  string  `yaml:"driver"` // local | redis
			PerSec  float64 `yaml:"per_second"`
			Burst   int     `yaml:"burst"`
			Window  string  `yaml:"window"` // redis: ventana fija
			Max     int     `yaml:"max"`    // redis: requests por ventana
		} `yaml:"rate"`
	} `yaml:"http"`

	Cache struct {
		Kind        string `yaml:"kind"` // memory | redis | off
		ResponseTTL string `yaml:"response_ttl"`
		Redis       struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Session struct {
		Secret     string `yaml:"secret"`
		Issuer     string `yaml:"issuer"`
		CookieName string `yaml:"cookie_name"`
		Domain     string `yaml:"domain"`
		SameSite   string `yaml:"samesite"`
		Secure     bool   `yaml:"secure"`
		TTL        string `yaml:"ttl"`
	} `yaml:"session"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

// Load lee el YAML en path, aplica defaults y overrides por env, y valida.
// Si path está vacío o no existe se arranca solo con env + defaults.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// sin archivo: solo env
		default:
			return nil, err
		}
	}

	c.applyEnvOverrides()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.PublicURL == "" {
		c.Server.PublicURL = "http://localhost:8080"
	}
	if c.Server.SuccessURL == "" {
		c.Server.SuccessURL = "/me"
	}

	if len(c.Discord.Scopes) == 0 {
		c.Discord.Scopes = []string{string(discord.ScopeIdentify), string(discord.ScopeEmail)}
	}
	if c.Discord.ScopeDelay == "" {
		c.Discord.ScopeDelay = "0s"
	}
	if c.Discord.FetchScope == nil {
		c.Discord.FetchScope = discord.Bool(true)
	}
	if strings.TrimSpace(c.Discord.CallbackURL) == "" {
		c.Discord.CallbackURL = strings.TrimRight(c.Server.PublicURL, "/") + "/auth/discord/callback"
	}

	if c.HTTP.Timeout == "" {
		c.HTTP.Timeout = "10s"
	}
	if c.HTTP.Rate.Driver == "" {
		c.HTTP.Rate.Driver = "local"
	}
	if c.HTTP.Rate.PerSec == 0 {
		c.HTTP.Rate.PerSec = 5
	}
	if c.HTTP.Rate.Burst == 0 {
		c.HTTP.Rate.Burst = 5
	}
	if c.HTTP.Rate.Window == "" {
		c.HTTP.Rate.Window = "1s"
	}
	if c.HTTP.Rate.Max == 0 {
		c.HTTP.Rate.Max = 5
	}

	if c.Cache.Kind == "" {
		c.Cache.Kind = "off"
	}
	if c.Cache.ResponseTTL == "" {
		c.Cache.ResponseTTL = "30s"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "discordauth"
	}

	if c.Session.CookieName == "" {
		c.Session.CookieName = "discord_session"
	}
	if c.Session.Issuer == "" {
		c.Session.Issuer = "discordauth"
	}
	if c.Session.SameSite == "" {
		c.Session.SameSite = "Lax"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "12h"
	}
}

// Validate chequea formatos. Los campos requeridos de Discord los valida discord.New.
func (c *Config) Validate() error {
	durations := map[string]string{
		"discord.scope_delay": c.Discord.ScopeDelay,
		"http.timeout":        c.HTTP.Timeout,
		"http.rate.window":    c.HTTP.Rate.Window,
		"cache.response_ttl":  c.Cache.ResponseTTL,
		"session.ttl":         c.Session.TTL,
	}
	for name, v := range durations {
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
		if d < 0 {
			return fmt.Errorf("config: %s must not be negative", name)
		}
	}
	for _, s := range c.Discord.Scopes {
		if _, err := discord.ParseScope(s); err != nil {
			return fmt.Errorf("config: discord.scopes: %w", err)
		}
	}
	switch strings.ToLower(c.Cache.Kind) {
	case "off", "memory", "redis":
	default:
		return fmt.Errorf("config: cache.kind %q (memory|redis|off)", c.Cache.Kind)
	}
	switch strings.ToLower(c.HTTP.Rate.Driver) {
	case "local", "redis":
	default:
		return fmt.Errorf("config: http.rate.driver %q (local|redis)", c.HTTP.Rate.Driver)
	}
	if strings.EqualFold(c.App.Env, "prod") && c.Session.Secret != "" && len(c.Session.Secret) < 32 {
		return errors.New("config: session.secret must be at least 32 bytes in prod")
	}
	return nil
}

// DiscordOptions convierte la sección discord en opciones del strategy.
// Los scopes ya fueron validados en Load.
func (c *Config) DiscordOptions() discord.Options {
	scopes := make([]discord.Scope, 0, len(c.Discord.Scopes))
	for _, s := range c.Discord.Scopes {
		scopes = append(scopes, discord.Scope(strings.TrimSpace(s)))
	}
	return discord.Options{
		ClientID:          c.Discord.ClientID,
		ClientSecret:      c.Discord.ClientSecret,
		CallbackURL:       c.Discord.CallbackURL,
		Scope:             scopes,
		ScopeDelay:        mustDuration(c.Discord.ScopeDelay),
		FetchScopeEnabled: c.Discord.FetchScope,
		AuthorizationURL:  c.Discord.AuthorizationURL,
		TokenURL:          c.Discord.TokenURL,
		ScopeSeparator:    c.Discord.ScopeSeparator,
	}
}

// Duration parsea un campo ya validado; vacío => 0.
func Duration(v string) time.Duration { return mustDuration(v) }

func mustDuration(v string) time.Duration {
	if v == "" {
		return 0
	}
	d, _ := time.ParseDuration(v)
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvFloat(key string) (float64, bool) {
	if s, ok := getEnvStr(key); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(s); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

// applyEnvOverrides: pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("PUBLIC_URL"); ok {
		c.Server.PublicURL = v
	}
	if v, ok := getEnvStr("SUCCESS_URL"); ok {
		c.Server.SuccessURL = v
	}

	// DISCORD
	if v, ok := getEnvStr("DISCORD_CLIENT_ID"); ok {
		c.Discord.ClientID = v
	}
	if v, ok := getEnvStr("DISCORD_CLIENT_SECRET"); ok {
		c.Discord.ClientSecret = v
	}
	if v, ok := getEnvStr("DISCORD_CALLBACK_URL"); ok {
		c.Discord.CallbackURL = v
	}
	if v, ok := getEnvCSV("DISCORD_SCOPES"); ok {
		c.Discord.Scopes = v
	}
	if v, ok := getEnvStr("DISCORD_SCOPE_DELAY"); ok {
		c.Discord.ScopeDelay = v
	}
	if v, ok := getEnvBool("DISCORD_FETCH_SCOPE"); ok {
		c.Discord.FetchScope = discord.Bool(v)
	}
	if v, ok := getEnvStr("DISCORD_AUTHORIZATION_URL"); ok {
		c.Discord.AuthorizationURL = v
	}
	if v, ok := getEnvStr("DISCORD_TOKEN_URL"); ok {
		c.Discord.TokenURL = v
	}
	if v, ok := getEnvStr("DISCORD_API_BASE_URL"); ok {
		c.Discord.APIBaseURL = v
	}

	// HTTP
	if v, ok := getEnvStr("HTTP_TIMEOUT"); ok {
		c.HTTP.Timeout = v
	}
	if v, ok := getEnvBool("HTTP_RATE_ENABLED"); ok {
		c.HTTP.Rate.Enabled = v
	}
	if v, ok := getEnvStr("HTTP_RATE_DRIVER"); ok {
		c.HTTP.Rate.Driver = v
	}
	if v, ok := getEnvFloat("HTTP_RATE_PER_SECOND"); ok {
		c.HTTP.Rate.PerSec = v
	}
	if v, ok := getEnvInt("HTTP_RATE_BURST"); ok {
		c.HTTP.Rate.Burst = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("CACHE_RESPONSE_TTL"); ok {
		c.Cache.ResponseTTL = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// SESSION
	if v, ok := getEnvStr("SESSION_SECRET"); ok {
		c.Session.Secret = v
	}
	if v, ok := getEnvStr("SESSION_TTL"); ok {
		c.Session.TTL = v
	}
	if v, ok := getEnvBool("SESSION_SECURE"); ok {
		c.Session.Secure = v
	}
	if v, ok := getEnvStr("SESSION_DOMAIN"); ok {
		c.Session.Domain = v
	}

	// METRICS
	if v, ok := getEnvBool("METRICS_ENABLED"); ok {
		c.Metrics.Enabled = v
	}
}

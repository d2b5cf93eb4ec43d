package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/discordauth/internal/oauth/discord"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	require.Equal(t, "dev", c.App.Env)
	require.Equal(t, "info", c.App.LogLevel)
	require.Equal(t, ":8080", c.Server.Addr)
	require.Equal(t, []string{"identify", "email"}, c.Discord.Scopes)
	require.Equal(t, "http://localhost:8080/auth/discord/callback", c.Discord.CallbackURL)
	require.NotNil(t, c.Discord.FetchScope)
	require.True(t, *c.Discord.FetchScope)
	require.Equal(t, "off", c.Cache.Kind)
	require.Equal(t, "discord_session", c.Session.CookieName)
}

func TestLoad_YAML(t *testing.T) {
	p := writeYAML(t, `
app:
  env: prod
server:
  public_url: https://app.example.com/
discord:
  client_id: abc
  client_secret: shh
  scopes: [identify, guilds, connections]
  scope_delay: 250ms
  fetch_scope: false
  scope_separator: ","
cache:
  kind: memory
  response_ttl: 1m
`)
	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "prod", c.App.Env)
	require.Equal(t, "https://app.example.com/auth/discord/callback", c.Discord.CallbackURL)

	o := c.DiscordOptions()
	require.Equal(t, "abc", o.ClientID)
	require.Equal(t, "shh", o.ClientSecret)
	require.Equal(t, []discord.Scope{discord.ScopeIdentify, discord.ScopeGuilds, discord.ScopeConnections}, o.Scope)
	require.Equal(t, 250*time.Millisecond, o.ScopeDelay)
	require.NotNil(t, o.FetchScopeEnabled)
	require.False(t, *o.FetchScopeEnabled)
	require.Equal(t, ",", o.ScopeSeparator)
	require.Equal(t, time.Minute, Duration(c.Cache.ResponseTTL))
}

func TestLoad_EnvOverrides(t *testing.T) {
	p := writeYAML(t, `
discord:
  client_id: from-yaml
  scopes: [identify]
`)
	t.Setenv("DISCORD_CLIENT_ID", "from-env")
	t.Setenv("DISCORD_SCOPES", "identify,email guilds")
	t.Setenv("DISCORD_SCOPE_DELAY", "1s")
	t.Setenv("DISCORD_FETCH_SCOPE", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CACHE_KIND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("HTTP_RATE_PER_SECOND", "2.5")

	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "from-env", c.Discord.ClientID)
	require.Equal(t, []string{"identify", "email", "guilds"}, c.Discord.Scopes)
	require.Equal(t, "1s", c.Discord.ScopeDelay)
	require.False(t, *c.Discord.FetchScope)
	require.Equal(t, "debug", c.App.LogLevel)
	require.Equal(t, "redis", c.Cache.Kind)
	require.Equal(t, "redis:6379", c.Cache.Redis.Addr)
	require.Equal(t, 2.5, c.HTTP.Rate.PerSec)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":       "discord: [",
		"bad delay":      "discord:\n  scope_delay: soon\n",
		"negative delay": "discord:\n  scope_delay: -1s\n",
		"unknown scope":  "discord:\n  scopes: [identify, everything]\n",
		"cache kind":     "cache:\n  kind: memcached\n",
		"rate driver":    "http:\n  rate:\n    driver: leaky\n",
		"short secret":   "app:\n  env: prod\nsession:\n  secret: short\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeYAML(t, body))
			require.Error(t, err)
		})
	}
}

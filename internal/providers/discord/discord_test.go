package discord

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dropDatabas3/discordauth/internal/oauth/discord"
	"github.com/dropDatabas3/discordauth/internal/providers"
)

const userJSON = `{"id":"896657711104667719","username":"nelly","global_name":"Nelly G","avatar":"abc","email":"nelly@example.com","verified":true}`

type handshake struct{ tok *oauth2.Token }

func (h handshake) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return (&oauth2.Config{ClientID: "id", Endpoint: oauth2.Endpoint{AuthURL: "https://discord.test/authorize"}}).AuthCodeURL(state, opts...)
}

func (h handshake) Exchange(context.Context, string, ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	return h.tok, nil
}

func fakeGetter(calls *[]string) discord.GetterFunc {
	return func(_ context.Context, u, _ string) ([]byte, error) {
		*calls = append(*calls, u)
		if strings.HasSuffix(u, "/users/@me") {
			return []byte(userJSON), nil
		}
		if strings.HasSuffix(u, "/users/@me/guilds") {
			return []byte(`[]`), nil
		}
		return nil, errors.New("unexpected " + u)
	}
}

func baseConfig() providers.ProviderConfig {
	return providers.ProviderConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURI:  "https://app.test/cb",
		Scopes:       []string{"identify", "email", "guilds"},
	}
}

func TestProvider_ThroughRegistry(t *testing.T) {
	var calls []string
	reg := providers.NewRegistry()
	reg.RegisterFactory(ProviderName, NewFactory(
		discord.WithGetter(fakeGetter(&calls)),
		discord.WithAPIBaseURL("https://discord.test/api"),
	))

	p, err := reg.Get(ProviderName, baseConfig())
	require.NoError(t, err)
	require.Equal(t, "discord", p.Name())
	require.Equal(t, providers.ProviderTypeOAuth2, p.Type())

	up, err := p.UserInfo(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "896657711104667719", up.ProviderID)
	require.Equal(t, "nelly", up.Username)
	require.Equal(t, "Nelly G", up.Name)
	require.Equal(t, "nelly@example.com", up.Email)
	require.True(t, up.EmailVerified)
	require.Equal(t, "https://cdn.discordapp.com/avatars/896657711104667719/abc.png", up.Picture)
	require.Equal(t, "nelly", up.Raw["username"])
	require.Equal(t, []string{"https://discord.test/api/users/@me", "https://discord.test/api/users/@me/guilds"}, calls)
}

func TestProvider_ExtraOptions(t *testing.T) {
	var calls []string
	cfg := baseConfig()
	cfg.Extra = map[string]string{ExtraFetchScope: "false", ExtraScopeDelay: "10ms"}

	p, err := NewFactory(discord.WithGetter(fakeGetter(&calls)))(cfg)
	require.NoError(t, err)

	opts := p.(*Provider).Strategy().Options()
	require.False(t, *opts.FetchScopeEnabled)
	require.Equal(t, 10*time.Millisecond, opts.ScopeDelay)

	_, err = p.UserInfo(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, calls, 1)
}

func TestProvider_ConfigErrors(t *testing.T) {
	_, err := Factory(providers.ProviderConfig{})
	require.ErrorIs(t, err, discord.ErrConfig)

	cfg := baseConfig()
	cfg.Scopes = []string{"identify", "everything"}
	_, err = Factory(cfg)
	require.Error(t, err)

	cfg = baseConfig()
	cfg.Extra = map[string]string{ExtraScopeDelay: "later"}
	_, err = Factory(cfg)
	require.ErrorContains(t, err, "scope_delay")

	require.Error(t, (&Provider{}).Validate())
}

func TestProvider_AuthorizeAndExchange(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	p, err := NewFactory(discord.WithHandshake(handshake{tok: &oauth2.Token{
		AccessToken:  "acc",
		RefreshToken: "ref",
		TokenType:    "Bearer",
		Expiry:       exp,
	}}))(baseConfig())
	require.NoError(t, err)

	u, err := url.Parse(p.AuthorizeURL("st", map[string]string{"permissions": "8", "nonce": "x"}))
	require.NoError(t, err)
	require.Equal(t, "st", u.Query().Get("state"))
	require.Equal(t, "8", u.Query().Get("permissions"))
	require.Empty(t, u.Query().Get("nonce"))

	ts, err := p.Exchange(context.Background(), "code")
	require.NoError(t, err)
	require.Equal(t, "acc", ts.AccessToken)
	require.Equal(t, "ref", ts.RefreshToken)
	require.Equal(t, "Bearer", ts.TokenType)
	require.InDelta(t, 3600, ts.ExpiresIn, 5)
}

func TestToUserProfile_NameFallback(t *testing.T) {
	p := &discord.Profile{ID: "1", Username: "user"}
	require.Equal(t, "user", ToUserProfile(p).Name)

	p.DisplayName = "Display"
	require.Equal(t, "Display", ToUserProfile(p).Name)

	empty := ""
	p.GlobalName = &empty
	require.Equal(t, "Display", ToUserProfile(p).Name)

	// verified sin email no cuenta
	p.Verified = true
	require.False(t, ToUserProfile(p).EmailVerified)
}

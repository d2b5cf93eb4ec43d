package discord

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProfile_AvatarURL(t *testing.T) {
	p := &Profile{ID: "896657711104667719", Avatar: "abc"}
	require.Equal(t, "https://cdn.discordapp.com/avatars/896657711104667719/abc.png", p.AvatarURL())

	p.Avatar = "a_abc"
	require.Equal(t, "https://cdn.discordapp.com/avatars/896657711104667719/a_abc.gif", p.AvatarURL())

	// sin avatar, username nuevo: (id >> 22) % 6
	p.Avatar = ""
	p.Discriminator = "0"
	require.Equal(t, "https://cdn.discordapp.com/embed/avatars/0.png", p.AvatarURL())

	// legacy: discriminator % 5
	p.Discriminator = "1337"
	require.Equal(t, "https://cdn.discordapp.com/embed/avatars/2.png", p.AvatarURL())
}

func TestPermissions_JSON(t *testing.T) {
	var g Guild
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","permissions":"1099511627775"}`), &g))
	require.Equal(t, Permissions(1099511627775), g.Permissions)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","permissions":104324673}`), &g))
	require.Equal(t, Permissions(104324673), g.Permissions)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","permissions":null}`), &g))
	require.Zero(t, g.Permissions)

	require.Error(t, json.Unmarshal([]byte(`{"id":"1","permissions":"admin"}`), &g))

	b, err := json.Marshal(Guild{ID: "1", Permissions: 8})
	require.NoError(t, err)
	require.Contains(t, string(b), `"permissions":"8"`)
}

func TestProfile_JSONKeys(t *testing.T) {
	gn := "G"
	b, err := json.Marshal(&Profile{Provider: ProviderName, ID: "1", DisplayName: "D", GlobalName: &gn, Raw: "{}"})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{"provider", "id", "displayName", "global_name", "fetchedAt", "createdAt", "_raw", "_json", "access_token", "mfa_enabled"} {
		require.Contains(t, m, k)
	}
	require.NotContains(t, m, "connections")
	require.NotContains(t, m, "guilds")
}

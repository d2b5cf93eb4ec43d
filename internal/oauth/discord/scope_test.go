package discord

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllScopes_Catalog(t *testing.T) {
	all := AllScopes()
	require.Len(t, all, 28)

	seen := map[Scope]bool{}
	for _, s := range all {
		require.False(t, seen[s], "duplicate %s", s)
		seen[s] = true
		require.True(t, s.Valid(), s)
		require.NotEmpty(t, s.Description(), s)
	}
	for _, s := range []Scope{ScopeIdentify, ScopeEmail, ScopeConnections, ScopeGuilds, ScopeGuildsJoin, ScopeBot} {
		require.True(t, seen[s], s)
	}

	// la copia no comparte backing array
	all[0] = "mutated"
	require.NotEqual(t, Scope("mutated"), AllScopes()[0])
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope(" guilds.members.read ")
	require.NoError(t, err)
	require.Equal(t, ScopeGuildMembersRead, s)

	_, err = ParseScope("guilds.everything")
	require.Error(t, err)
	require.False(t, Scope("").Valid())
}

func TestParseScopes(t *testing.T) {
	got, err := ParseScopes("identify,email guilds\tconnections")
	require.NoError(t, err)
	require.Equal(t, []Scope{ScopeIdentify, ScopeEmail, ScopeGuilds, ScopeConnections}, got)

	got, err = ParseScopes("")
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = ParseScopes("identify,nope")
	require.Error(t, err)
}

func TestScopeSet(t *testing.T) {
	set := NewScopeSet(ScopeIdentify, ScopeGuilds, ScopeGuilds)
	require.Len(t, set, 2)
	require.True(t, set.Has(ScopeGuilds))
	require.False(t, set.Has(ScopeConnections))

	require.Equal(t, []string{"identify", "email"}, ScopeStrings([]Scope{ScopeIdentify, ScopeEmail}))
}

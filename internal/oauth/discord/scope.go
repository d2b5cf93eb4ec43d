package discord

import (
	"fmt"
	"strings"
)

// Scope is a Discord OAuth2 permission scope.
// See https://discord.com/developers/docs/topics/oauth2#shared-resources-oauth2-scopes
type Scope string

const (
	ScopeActivitiesRead                        Scope = "activities.read"
	ScopeActivitiesWrite                       Scope = "activities.write"
	ScopeApplicationBuildsRead                 Scope = "applications.builds.read"
	ScopeApplicationBuildsUpload               Scope = "applications.builds.upload"
	ScopeApplicationsCommands                  Scope = "applications.commands"
	ScopeApplicationsCommandsUpdate            Scope = "applications.commands.update"
	ScopeApplicationsCommandsPermissionsUpdate Scope = "applications.commands.permissions.update"
	ScopeApplicationsEntitlements              Scope = "applications.entitlements"
	ScopeApplicationsStoreUpdate               Scope = "applications.store.update"
	ScopeBot                                   Scope = "bot"
	ScopeConnections                           Scope = "connections"
	ScopeDMRead                                Scope = "dm_channels.read"
	ScopeEmail                                 Scope = "email"
	ScopeGdmJoin                               Scope = "gdm.join"
	ScopeGuilds                                Scope = "guilds"
	ScopeGuildsJoin                            Scope = "guilds.join"
	ScopeGuildMembersRead                      Scope = "guilds.members.read"
	ScopeIdentify                              Scope = "identify"
	ScopeMessagesRead                          Scope = "messages.read"
	ScopeRelationshipsRead                     Scope = "relationships.read"
	ScopeRoleConnectionsWrite                  Scope = "role_connections.write"
	ScopeRPC                                   Scope = "rpc"
	ScopeRPCActivitiesUpdate                   Scope = "rpc.activities.update"
	ScopeRPCNotificationsRead                  Scope = "rpc.notifications.read"
	ScopeRPCVoiceRead                          Scope = "rpc.voice.read"
	ScopeRPCVoiceWrite                         Scope = "rpc.voice.write"
	ScopeVoice                                 Scope = "voice"
	ScopeWebhookIncoming                       Scope = "webhook.incoming"
)

var scopeDescriptions = map[Scope]string{
	ScopeActivitiesRead:                        "read the user's Now Playing/Recently Played list",
	ScopeActivitiesWrite:                       "update the user's activity (requires Discord approval)",
	ScopeApplicationBuildsRead:                 "read build data for the user's applications",
	ScopeApplicationBuildsUpload:               "upload/update builds for the user's applications (requires Discord approval)",
	ScopeApplicationsCommands:                  "use commands in a guild",
	ScopeApplicationsCommandsUpdate:            "update the app's commands with a Bearer token (client credentials only)",
	ScopeApplicationsCommandsPermissionsUpdate: "update command permissions in a guild the user manages",
	ScopeApplicationsEntitlements:              "read entitlements for the user's applications",
	ScopeApplicationsStoreUpdate:               "read and update store data for the user's applications",
	ScopeBot:                                   "put the bot in the user's selected guild",
	ScopeConnections:                           "/users/@me/connections returns linked third-party accounts",
	ScopeDMRead:                                "see the user's DMs and group DMs (requires Discord approval)",
	ScopeEmail:                                 "/users/@me returns an email",
	ScopeGdmJoin:                               "join users to a group dm",
	ScopeGuilds:                                "/users/@me/guilds returns basic information about the user's guilds",
	ScopeGuildsJoin:                            "/guilds/{guild.id}/members/{user.id} can join users to a guild",
	ScopeGuildMembersRead:                      "/users/@me/guilds/{guild.id}/member returns the user's member information",
	ScopeIdentify:                              "/users/@me without email",
	ScopeMessagesRead:                          "read messages from all client channels over local RPC",
	ScopeRelationshipsRead:                     "know the user's friends and implicit relationships (requires Discord approval)",
	ScopeRoleConnectionsWrite:                  "update the user's connection and metadata for the app",
	ScopeRPC:                                   "control the user's local Discord client (requires Discord approval)",
	ScopeRPCActivitiesUpdate:                   "update the user's activity over local RPC (requires Discord approval)",
	ScopeRPCNotificationsRead:                  "receive notifications pushed to the user over local RPC (requires Discord approval)",
	ScopeRPCVoiceRead:                          "read the user's voice settings over local RPC (requires Discord approval)",
	ScopeRPCVoiceWrite:                         "update the user's voice settings over local RPC (requires Discord approval)",
	ScopeVoice:                                 "connect to voice on the user's behalf (requires Discord approval)",
	ScopeWebhookIncoming:                       "generate a webhook returned in the token response",
}

// allScopes keeps catalog order stable for listings.
var allScopes = []Scope{
	ScopeActivitiesRead,
	ScopeActivitiesWrite,
	ScopeApplicationBuildsRead,
	ScopeApplicationBuildsUpload,
	ScopeApplicationsCommands,
	ScopeApplicationsCommandsUpdate,
	ScopeApplicationsCommandsPermissionsUpdate,
	ScopeApplicationsEntitlements,
	ScopeApplicationsStoreUpdate,
	ScopeBot,
	ScopeConnections,
	ScopeDMRead,
	ScopeEmail,
	ScopeGdmJoin,
	ScopeGuilds,
	ScopeGuildsJoin,
	ScopeGuildMembersRead,
	ScopeIdentify,
	ScopeMessagesRead,
	ScopeRelationshipsRead,
	ScopeRoleConnectionsWrite,
	ScopeRPC,
	ScopeRPCActivitiesUpdate,
	ScopeRPCNotificationsRead,
	ScopeRPCVoiceRead,
	ScopeRPCVoiceWrite,
	ScopeVoice,
	ScopeWebhookIncoming,
}

// AllScopes returns every scope in the catalog.
func AllScopes() []Scope {
	out := make([]Scope, len(allScopes))
	copy(out, allScopes)
	return out
}

func (s Scope) String() string { return string(s) }

// Valid reports whether s belongs to the catalog.
func (s Scope) Valid() bool {
	_, ok := scopeDescriptions[s]
	return ok
}

// Description returns a short human-readable summary of what the scope grants.
func (s Scope) Description() string { return scopeDescriptions[s] }

// ParseScope converts a raw scope name into a catalog Scope.
func ParseScope(raw string) (Scope, error) {
	s := Scope(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", fmt.Errorf("discord: unknown scope %q", raw)
	}
	return s, nil
}

// ParseScopes splits a comma or whitespace separated list. Order is kept and
// duplicates are passed through untouched.
func ParseScopes(raw string) ([]Scope, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]Scope, 0, len(fields))
	for _, f := range fields {
		s, err := ParseScope(f)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ScopeStrings converts scopes to their wire form.
func ScopeStrings(scopes []Scope) []string {
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = string(s)
	}
	return out
}

// ScopeSet is the granted-scope membership set of a strategy.
type ScopeSet map[Scope]struct{}

// NewScopeSet builds a set from scopes; duplicates collapse.
func NewScopeSet(scopes ...Scope) ScopeSet {
	set := make(ScopeSet, len(scopes))
	for _, s := range scopes {
		set[s] = struct{}{}
	}
	return set
}

// Has reports whether s was granted.
func (set ScopeSet) Has(s Scope) bool {
	_, ok := set[s]
	return ok
}

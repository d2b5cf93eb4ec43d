package discord

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ProviderName identifies profiles produced by this package.
const ProviderName = "discord"

// RawJSON is the undecoded /users/@me object.
type RawJSON map[string]any

// Profile is a Discord user resolved from an access token.
// Connections and Guilds are nil when the scope was not granted or scope
// fetching is disabled.
type Profile struct {
	Provider      string       `json:"provider"`
	ID            string       `json:"id"`
	Username      string       `json:"username"`
	DisplayName   string       `json:"displayName"`
	Discriminator string       `json:"discriminator"`
	Avatar        string       `json:"avatar"`
	Banner        string       `json:"banner"`
	Email         string       `json:"email"`
	Verified      bool         `json:"verified"`
	MFAEnabled    bool         `json:"mfa_enabled"`
	AccessToken   string       `json:"access_token"`
	PublicFlags   int64        `json:"public_flags"`
	Flags         int64        `json:"flags"`
	Locale        string       `json:"locale"`
	GlobalName    *string      `json:"global_name,omitempty"`
	PremiumType   *int         `json:"premium_type,omitempty"`
	Connections   []Connection `json:"connections,omitempty"`
	Guilds        []Guild      `json:"guilds,omitempty"`
	FetchedAt     time.Time    `json:"fetchedAt"`
	CreatedAt     time.Time    `json:"createdAt"`
	Raw           string       `json:"_raw"`
	JSON          RawJSON      `json:"_json"`
}

// Connection is an account linked to the Discord user (connections scope).
type Connection struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Verified     bool   `json:"verified"`
	ShowActivity bool   `json:"show_activity"`
	Visibility   int    `json:"visibility"`
	FriendSync   bool   `json:"friend_sync"`
	Revoked      bool   `json:"revoked,omitempty"`
	TwoWayLink   bool   `json:"two_way_link"`
}

// Guild is a partial guild as returned by /users/@me/guilds (guilds scope).
type Guild struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Icon        *string     `json:"icon,omitempty"`
	Owner       bool        `json:"owner"`
	Permissions Permissions `json:"permissions"`
	Features    []string    `json:"features,omitempty"`
}

// Permissions is a guild permission bitmask. API v8+ sends it as a string,
// older versions as a number; both decode.
type Permissions uint64

func (p *Permissions) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*p = Permissions(v)
	return nil
}

func (p Permissions) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatUint(uint64(p), 10))), nil
}

// Has reports whether every bit of flag is set.
func (p Permissions) Has(flag uint64) bool { return uint64(p)&flag == flag }

// profileFields mirrors the keys of /users/@me copied into Profile.
type profileFields struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	DisplayName   string  `json:"displayName"`
	Discriminator string  `json:"discriminator"`
	Avatar        *string `json:"avatar"`
	Banner        *string `json:"banner"`
	Email         *string `json:"email"`
	Verified      bool    `json:"verified"`
	MFAEnabled    bool    `json:"mfa_enabled"`
	PublicFlags   int64   `json:"public_flags"`
	Flags         int64   `json:"flags"`
	Locale        string  `json:"locale"`
	GlobalName    *string `json:"global_name"`
	PremiumType   *int    `json:"premium_type"`
}

// isTextBody is the "body is a string" check: something was returned and it is valid UTF-8.
func isTextBody(body []byte) bool {
	return body != nil && utf8.Valid(body)
}

// decodeProfile builds the initial Profile from a /users/@me body.
func decodeProfile(body []byte, accessToken string, fetchedAt time.Time) (*Profile, error) {
	if !isTextBody(body) {
		return nil, &ParseError{Message: msgParseProfile}
	}
	var raw RawJSON
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ParseError{Message: msgParseProfile, Err: err}
	}
	if raw == nil {
		return nil, &ParseError{Message: msgParseProfile}
	}
	var f profileFields
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, &ParseError{Message: msgParseProfile, Err: err}
	}

	createdAt, err := DeriveCreationTime(f.ID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		Provider:      ProviderName,
		ID:            f.ID,
		Username:      f.Username,
		DisplayName:   f.DisplayName,
		Discriminator: f.Discriminator,
		Avatar:        deref(f.Avatar),
		Banner:        deref(f.Banner),
		Email:         deref(f.Email),
		Verified:      f.Verified,
		MFAEnabled:    f.MFAEnabled,
		AccessToken:   accessToken,
		PublicFlags:   f.PublicFlags,
		Flags:         f.Flags,
		Locale:        f.Locale,
		GlobalName:    f.GlobalName,
		PremiumType:   f.PremiumType,
		FetchedAt:     fetchedAt,
		CreatedAt:     createdAt,
		Raw:           string(body),
		JSON:          raw,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// AvatarURL returns the CDN URL of the user's avatar, or the default avatar
// when none is set.
func (p *Profile) AvatarURL() string {
	if p.Avatar != "" {
		ext := "png"
		if strings.HasPrefix(p.Avatar, "a_") {
			ext = "gif"
		}
		return "https://cdn.discordapp.com/avatars/" + p.ID + "/" + p.Avatar + "." + ext
	}
	// new username system: (id >> 22) % 6; legacy: discriminator % 5
	idx := uint64(0)
	if p.Discriminator != "" && p.Discriminator != "0" {
		if d, err := strconv.ParseUint(p.Discriminator, 10, 64); err == nil {
			idx = d % 5
		}
	} else if id, err := strconv.ParseUint(p.ID, 10, 64); err == nil {
		idx = (id >> snowflakeTimestampShift) % 6
	}
	return "https://cdn.discordapp.com/embed/avatars/" + strconv.FormatUint(idx, 10) + ".png"
}

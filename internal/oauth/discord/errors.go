package discord

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrConfig   = errors.New("discord: invalid strategy options")
	ErrUpstream = errors.New("discord: upstream request failed")
	ErrParse    = errors.New("discord: unexpected response body")
	ErrDecode   = errors.New("discord: malformed snowflake")

	// ErrUserRejected is returned by Authenticate when verify completes with neither user nor error.
	ErrUserRejected = errors.New("discord: user rejected by verify callback")
)

const (
	msgFetchProfile = "Failed to fetch the user profile."
	msgParseProfile = "Failed to parse the user profile."
	msgExchange     = "Failed to obtain access token."
)

func msgFetchScope(s Scope) string { return fmt.Sprintf("Failed to fetch the scope: %s", s) }
func msgParseScope(s Scope) string { return fmt.Sprintf("Failed to parse the returned scope data: %s", s) }

// ConfigError lists every option that failed validation in New.
type ConfigError struct {
	Fields []string
}

func (e *ConfigError) Error() string {
	return "discord: invalid strategy options: " + strings.Join(e.Fields, ", ")
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// UpstreamError is a transport failure talking to Discord. Retrying is safe.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error        { return e.Err }
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// ParseError means Discord answered with a body we could not decode.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ParseError) Unwrap() error        { return e.Err }
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// DecodeError is returned for ids that are not snowflakes.
type DecodeError struct {
	ID     string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("discord: cannot decode snowflake %q: %s", e.ID, e.Reason)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

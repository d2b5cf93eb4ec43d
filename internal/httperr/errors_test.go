package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/discordauth/internal/oauth/discord"
	"github.com/dropDatabas3/discordauth/internal/oauth/httpget"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"upstream", &discord.UpstreamError{Message: "x"}, "UPSTREAM_ERROR", http.StatusBadGateway},
		{"parse", &discord.ParseError{Message: "x"}, "UPSTREAM_BAD_RESPONSE", http.StatusBadGateway},
		{"decode", &discord.DecodeError{ID: "x"}, "UPSTREAM_BAD_RESPONSE", http.StatusBadGateway},
		{"config", &discord.ConfigError{Fields: []string{"client_id"}}, "MISCONFIGURED", http.StatusInternalServerError},
		{"rejected", discord.ErrUserRejected, "ACCESS_DENIED", http.StatusForbidden},
		{"wrapped app error", fmt.Errorf("ctx: %w", ErrInvalidState), "INVALID_STATE", http.StatusBadRequest},
		{"unknown", errors.New("boom"), "INTERNAL_SERVER_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromError(tc.err)
			require.Equal(t, tc.code, got.Code)
			require.Equal(t, tc.status, got.HTTPStatus)
		})
	}
}

func TestFromError_RateLimited(t *testing.T) {
	err := &discord.UpstreamError{
		Message: "Failed to fetch the scope: guilds",
		Err:     &httpget.StatusError{Code: http.StatusTooManyRequests, RetryAfter: 2 * time.Second},
	}
	got := FromError(err)
	require.Equal(t, "RATE_LIMITED", got.Code)
	require.Equal(t, http.StatusServiceUnavailable, got.HTTPStatus)
	require.Equal(t, "retry after 2s", got.Detail)
	require.ErrorIs(t, got, discord.ErrUpstream)
}

func TestWithDetailDoesNotMutateBase(t *testing.T) {
	e := ErrBadRequest.WithDetail("missing code")
	require.Equal(t, "missing code", e.Detail)
	require.Empty(t, ErrBadRequest.Detail)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	WriteError(rec, req, &discord.ParseError{Message: "Failed to parse the user profile."})

	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "UPSTREAM_BAD_RESPONSE", body["code"])
	require.NotContains(t, body, "detail")
}

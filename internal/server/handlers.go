package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/discordauth/internal/httperr"
	"github.com/dropDatabas3/discordauth/internal/oauth/discord"
	"github.com/dropDatabas3/discordauth/internal/observability/logger"
	"github.com/dropDatabas3/discordauth/internal/session"
)

const (
	stateCookie = "discord_oauth_state"
	stateTTL    = 10 * time.Minute
)

// VerifyUser acepta solo cuentas con email verificado. El usuario resultante
// es el propio perfil; la sesión lo serializa por id.
func VerifyUser(ctx context.Context, _, _ string, profile *discord.Profile, done discord.VerifyDone) {
	if profile.Email == "" || !profile.Verified {
		logger.From(ctx).Info("rejecting discord account without verified email", logger.UserID(profile.ID), logger.Email(profile.Email))
		done(nil, nil)
		return
	}
	done(nil, profile)
}

type handlers struct {
	strategy   *discord.Strategy
	sessions   *session.Issuer
	cookies    session.CookieConfig
	successURL string
}

// GET /auth/discord
func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, h.cookies.Build(stateCookie, state, stateTTL))

	params := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	http.Redirect(w, r, h.strategy.AuthCodeURL(state, params), http.StatusFound)
}

// GET /auth/discord/callback
func (h *handlers) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		httperr.WriteError(w, r, httperr.ErrAccessDenied.WithDetail(e))
		return
	}

	ck, err := r.Cookie(stateCookie)
	state := q.Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(ck.Value), []byte(state)) != 1 {
		httperr.WriteError(w, r, httperr.ErrInvalidState)
		return
	}
	http.SetCookie(w, h.cookies.Delete(stateCookie))

	code := strings.TrimSpace(q.Get("code"))
	if code == "" {
		httperr.WriteError(w, r, httperr.ErrBadRequest.WithDetail("missing code"))
		return
	}

	user, err := h.strategy.Authenticate(r.Context(), code)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}
	profile, ok := user.(*discord.Profile)
	if !ok {
		httperr.WriteError(w, r, httperr.ErrInternalServerError.WithDetail("unexpected user type"))
		return
	}

	tok, err := h.sessions.Issue(profile)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}
	http.SetCookie(w, h.cookies.Build(h.cookies.Name, tok, h.sessions.TTL()))
	logger.From(r.Context()).Info("discord login", logger.UserID(profile.ID), logger.Email(profile.Email))
	http.Redirect(w, r, h.successURL, http.StatusFound)
}

type meResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GET /me
func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	ck, err := r.Cookie(h.cookies.Name)
	if err != nil || ck.Value == "" {
		httperr.WriteError(w, r, httperr.ErrUnauthorized)
		return
	}
	claims, err := h.sessions.Parse(ck.Value)
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrUnauthorized.WithCause(err))
		return
	}
	resp := meResponse{
		ID:       claims.Subject,
		Username: claims.Username,
		Name:     claims.Name,
		Avatar:   claims.Avatar,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	httperr.WriteJSON(w, http.StatusOK, resp)
}

// POST /auth/logout
func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.cookies.Delete(h.cookies.Name))
	w.WriteHeader(http.StatusNoContent)
}

// GET /healthz
func healthz(w http.ResponseWriter, _ *http.Request) {
	httperr.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

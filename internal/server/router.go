// Package server es la app de ejemplo: login con Discord, sesión en cookie
// y /me. También expone /metrics y /healthz.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/discordauth/internal/oauth/discord"
	"github.com/dropDatabas3/discordauth/internal/session"
)

// Deps del router.
type Deps struct {
	Strategy   *discord.Strategy
	Sessions   *session.Issuer
	Cookies    session.CookieConfig
	SuccessURL string

	// Gatherer para /metrics; nil => sin endpoint.
	Gatherer prometheus.Gatherer
}

// NewRouter arma el handler HTTP.
func NewRouter(d Deps) http.Handler {
	if d.SuccessURL == "" {
		d.SuccessURL = "/me"
	}
	if d.Cookies.Name == "" {
		d.Cookies.Name = "discord_session"
	}
	h := &handlers{
		strategy:   d.Strategy,
		sessions:   d.Sessions,
		cookies:    d.Cookies,
		successURL: d.SuccessURL,
	}

	r := chi.NewRouter()
	r.Use(withRecover, withRequestID, withLogging)

	// infra: sin headers de API
	r.Get("/healthz", healthz)
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(withSecurityHeaders)
		r.Get("/auth/discord", h.login)
		r.Get("/auth/discord/callback", h.callback)
		r.Post("/auth/logout", h.logout)
		r.Get("/me", h.me)
	})
	return r
}

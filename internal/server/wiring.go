package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redis "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/discordauth/internal/cache"
	"github.com/dropDatabas3/discordauth/internal/config"
	"github.com/dropDatabas3/discordauth/internal/metrics"
	"github.com/dropDatabas3/discordauth/internal/oauth/discord"
	"github.com/dropDatabas3/discordauth/internal/oauth/httpget"
	"github.com/dropDatabas3/discordauth/internal/rate"
	"github.com/dropDatabas3/discordauth/internal/session"
)

// NewGetter arma el cliente HTTP hacia Discord según cfg (cache y rate limit
// opcionales). cleanup cierra las conexiones que haya abierto.
func NewGetter(cfg *config.Config) (*httpget.Client, func() error, error) {
	var closers []func() error
	cleanup := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	hc := httpget.Config{
		Timeout:   config.Duration(cfg.HTTP.Timeout),
		UserAgent: cfg.HTTP.UserAgent,
	}

	var redisClient *redis.Client
	switch strings.ToLower(cfg.Cache.Kind) {
	case "memory", "redis":
		c, err := cache.New(cache.Config{
			Driver:   cfg.Cache.Kind,
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, c.Close)
		if rc, ok := c.(interface{ Redis() *redis.Client }); ok {
			redisClient = rc.Redis()
		}
		hc.Cache = c
		hc.CacheTTL = config.Duration(cfg.Cache.ResponseTTL)
	}

	if cfg.HTTP.Rate.Enabled {
		switch strings.ToLower(cfg.HTTP.Rate.Driver) {
		case "redis":
			if redisClient == nil {
				redisClient = redis.NewClient(&redis.Options{
					Addr:     cfg.Cache.Redis.Addr,
					Password: cfg.Cache.Redis.Password,
					DB:       cfg.Cache.Redis.DB,
				})
				closers = append(closers, redisClient.Close)
			}
			hc.Limiter = rate.NewRedisLimiter(redisClient, cfg.Cache.Redis.Prefix+":rl:", cfg.HTTP.Rate.Max, config.Duration(cfg.HTTP.Rate.Window))
		default:
			hc.Limiter = rate.NewLocalLimiter(cfg.HTTP.Rate.PerSec, cfg.HTTP.Rate.Burst)
		}
	}

	return httpget.New(hc), cleanup, nil
}

// NewStrategy construye el strategy de Discord con el getter compartido.
func NewStrategy(cfg *config.Config, verify discord.VerifyFunc, getter discord.Getter) (*discord.Strategy, error) {
	opts := []discord.StrategyOption{discord.WithGetter(getter)}
	if cfg.Discord.APIBaseURL != "" {
		opts = append(opts, discord.WithAPIBaseURL(cfg.Discord.APIBaseURL))
	}
	return discord.New(cfg.DiscordOptions(), verify, opts...)
}

// Build arma el handler completo de la app de ejemplo.
func Build(cfg *config.Config) (http.Handler, func() error, error) {
	getter, cleanup, err := NewGetter(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("http client: %w", err)
	}

	strategy, err := NewStrategy(cfg, VerifyUser, getter)
	if err != nil {
		_ = cleanup()
		return nil, nil, err
	}

	sessions, err := session.NewIssuer(cfg.Session.Secret, cfg.Session.Issuer, config.Duration(cfg.Session.TTL))
	if err != nil {
		_ = cleanup()
		return nil, nil, err
	}

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if err := metrics.Register(reg); err != nil {
			_ = cleanup()
			return nil, nil, err
		}
		gatherer = reg
	}

	h := NewRouter(Deps{
		Strategy: strategy,
		Sessions: sessions,
		Cookies: session.CookieConfig{
			Name:     cfg.Session.CookieName,
			Domain:   cfg.Session.Domain,
			SameSite: cfg.Session.SameSite,
			Secure:   cfg.Session.Secure,
		},
		SuccessURL: cfg.Server.SuccessURL,
		Gatherer:   gatherer,
	})
	return h, cleanup, nil
}

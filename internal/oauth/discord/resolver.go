package discord

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/discordauth/internal/metrics"
	"github.com/dropDatabas3/discordauth/internal/observability/logger"
)

// Resolver turns an access token into a Profile.
type Resolver struct {
	getter      Getter
	profileURL  string
	fetchScopes bool
	stages      pipeline
	now         func() time.Time
}

// NewResolver wires a resolver around fetcher. When fetchScopes is false the
// enrichment pipeline is never run.
func NewResolver(getter Getter, profileURL string, fetcher *Fetcher, fetchScopes bool) *Resolver {
	return &Resolver{
		getter:      getter,
		profileURL:  profileURL,
		fetchScopes: fetchScopes,
		stages:      enrichmentPipeline(fetcher),
		now:         time.Now,
	}
}

// Resolve fetches /users/@me and, if enabled, the granted enrichment scopes.
// On error the returned profile is always nil.
func (r *Resolver) Resolve(ctx context.Context, accessToken string) (*Profile, error) {
	start := time.Now()
	ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.Provider(ProviderName), logger.Op("Resolver.Resolve")))

	p, err := r.resolve(ctx, accessToken)
	outcome := resolutionOutcome(err)
	metrics.ObserveResolution(outcome, time.Since(start))

	log := logger.From(ctx)
	if err != nil {
		log.Warn("profile resolution failed", logger.Outcome(outcome), logger.Err(err))
		return nil, err
	}
	log.Debug("profile resolved",
		logger.UserID(p.ID),
		logger.Count(len(p.Connections)+len(p.Guilds)),
		logger.DurationMs(time.Since(start).Milliseconds()))
	return p, nil
}

func (r *Resolver) resolve(ctx context.Context, accessToken string) (*Profile, error) {
	body, err := r.getter.Get(ctx, r.profileURL, accessToken)
	if err != nil {
		return nil, &UpstreamError{Message: msgFetchProfile, Err: err}
	}

	p, err := decodeProfile(body, accessToken, r.now())
	if err != nil {
		return nil, err
	}
	if !r.fetchScopes {
		return p, nil
	}

	if err := r.stages.run(ctx, accessToken, p); err != nil {
		return nil, err
	}
	p.FetchedAt = r.now()
	return p, nil
}

func resolutionOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	case errors.Is(err, ErrParse):
		return "parse_error"
	case errors.Is(err, ErrDecode):
		return "decode_error"
	default:
		return "error"
	}
}

package discord

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/discordauth/internal/observability/logger"
)

// patch mutates the profile owned by the running Resolve call.
type patch func(p *Profile)

// stage is one named enrichment step. A nil patch with a nil error means
// "nothing to apply".
type stage struct {
	name  string
	fetch func(ctx context.Context, accessToken string) (patch, error)
}

// pipeline runs its stages in order and stops at the first error.
type pipeline []stage

func (pl pipeline) run(ctx context.Context, accessToken string, p *Profile) error {
	log := logger.From(ctx)
	for _, st := range pl {
		start := time.Now()
		apply, err := st.fetch(ctx, accessToken)
		if err != nil {
			log.Warn("enrichment stage failed",
				zap.String("stage", st.name),
				logger.DurationMs(time.Since(start).Milliseconds()),
				logger.Err(err))
			return err
		}
		if apply != nil {
			apply(p)
		}
		log.Debug("enrichment stage done",
			zap.String("stage", st.name),
			zap.Bool("applied", apply != nil),
			logger.DurationMs(time.Since(start).Milliseconds()))
	}
	return nil
}

// scopeStage fetches scope and decodes it as a list of T before handing it to assign.
func scopeStage[T any](f *Fetcher, scope Scope, assign func(p *Profile, items []T)) stage {
	return stage{
		name: string(scope),
		fetch: func(ctx context.Context, accessToken string) (patch, error) {
			raw, err := f.Fetch(ctx, scope, accessToken)
			if err != nil || raw == nil {
				return nil, err
			}
			var items []T
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, &ParseError{Message: msgParseScope(scope), Err: err}
			}
			return func(p *Profile) { assign(p, items) }, nil
		},
	}
}

// enrichmentPipeline is connections then guilds. The order is fixed so the
// scope delay is spent at the same points on every run.
func enrichmentPipeline(f *Fetcher) pipeline {
	return pipeline{
		scopeStage(f, ScopeConnections, func(p *Profile, items []Connection) { p.Connections = items }),
		scopeStage(f, ScopeGuilds, func(p *Profile, items []Guild) { p.Guilds = items }),
	}
}

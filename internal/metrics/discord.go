package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Métricas de las llamadas a la API de Discord y de la resolución de perfiles.

var (
	UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discord_upstream_requests_total",
		Help: "Requests a la API de Discord por endpoint y resultado",
	}, []string{"endpoint", "outcome"})

	UpstreamLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "discord_upstream_request_duration_seconds",
		Help:    "Latencia de los requests a la API de Discord",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	ProfileResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discord_profile_resolutions_total",
		Help: "Resoluciones de perfil por resultado (ok|upstream_error|parse_error|decode_error)",
	}, []string{"outcome"})

	ProfileResolutionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "discord_profile_resolution_duration_seconds",
		Help:    "Duración total de la resolución de un perfil, incluido el scope delay",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
)

// Register registra las métricas en reg (o en el default si es nil).
// Registros duplicados se ignoran.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{UpstreamRequests, UpstreamLatency, ProfileResolutions, ProfileResolutionLatency} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// ObserveUpstream registra un request saliente. d == 0 no alimenta el histograma (cache hits).
func ObserveUpstream(endpoint, outcome string, d time.Duration) {
	UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	if d > 0 {
		UpstreamLatency.WithLabelValues(endpoint).Observe(d.Seconds())
	}
}

// ObserveResolution registra el resultado de una resolución de perfil.
func ObserveResolution(outcome string, d time.Duration) {
	ProfileResolutions.WithLabelValues(outcome).Inc()
	ProfileResolutionLatency.Observe(d.Seconds())
}

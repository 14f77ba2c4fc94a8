package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "offers", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "offers", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "offers", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "offers", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "offers", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	IntentResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "offers", Name: "intent_resolutions_total", Help: "Resolve-intent outcomes."},
		[]string{"status", "reason"},
	)
	OfferResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "offers", Name: "responses_total", Help: "Generate-offers outcomes."},
		[]string{"status", "offers"},
	)
	FallbackActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "offers", Name: "fallback_actions_total", Help: "Fallback actions chosen."},
		[]string{"channel", "action"},
	)
	ProviderDegraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "offers", Name: "provider_degraded_total", Help: "Provider lookups replaced by defaults."},
		[]string{"provider"},
	)
	PipelineLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "offers", Name: "pipeline_duration_seconds",
			Help:    "Generate-offers duration including provider lookups.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Serve exposes reg on addr in the background. Empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		IntentResolutions, OfferResponses, FallbackActions, ProviderDegraded, PipelineLatency,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveIntent(status, reason string) {
	IntentResolutions.WithLabelValues(status, reason).Inc()
}

// ObserveOffers records one generate-offers outcome. Empty action means no
// fallback was needed.
func ObserveOffers(status string, offerCount int, channel, action string, dur time.Duration) {
	OfferResponses.WithLabelValues(status, strconv.Itoa(offerCount)).Inc()
	if action != "" {
		FallbackActions.WithLabelValues(channel, action).Inc()
	}
	PipelineLatency.Observe(dur.Seconds())
}

func ObserveDegraded(provider string) {
	ProviderDegraded.WithLabelValues(provider).Inc()
}

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}

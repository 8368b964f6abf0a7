// Package metrics holds the Prometheus collectors for the settings
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FontFallbackMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rendersettings_font_fallback_messages_total",
		Help: "Messages logged while replacing an unusable font descriptor with the fallback font",
	}, []string{"component", "operation"})

	PreviewsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rendersettings_previews_rendered_total",
		Help: "Label previews rendered, by text background policy",
	}, []string{"background"})

	ProfileApplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rendersettings_profile_applies_total",
		Help: "Profile load and apply attempts, by result",
	}, []string{"source", "result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rendersettings_http_request_duration_seconds",
		Help:    "HTTP request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveProfileApply counts one attempt to apply a profile from source.
func ObserveProfileApply(source string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ProfileApplies.WithLabelValues(source, result).Inc()
}

// MessageLogger is the font failure collaborator of settings.Registry.
type MessageLogger interface {
	LogMessage(component, operation, message string)
}

// CountingLogger counts font fallback messages and forwards them.
type CountingLogger struct {
	Next MessageLogger
}

func (l CountingLogger) LogMessage(component, operation, message string) {
	FontFallbackMessages.WithLabelValues(component, operation).Inc()
	if l.Next != nil {
		l.Next.LogMessage(component, operation, message)
	}
}

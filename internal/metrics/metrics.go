// Package metrics exposes request and token counters in Prometheus form.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts handled /v1/messages requests by mode
	// (buffered/streaming) and outcome (ok/error).
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "claude_adapter",
		Name:      "requests_total",
		Help:      "Handled messages requests by mode and outcome.",
	}, []string{"mode", "outcome"})

	// TokensTotal counts translated tokens by direction (input/output).
	TokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "claude_adapter",
		Name:      "tokens_total",
		Help:      "Tokens reported by the upstream, by direction.",
	}, []string{"direction"})
)

// ObserveRequest records one finished request.
func ObserveRequest(streaming bool, err bool) {
	mode := "buffered"
	if streaming {
		mode = "streaming"
	}
	outcome := "ok"
	if err {
		outcome = "error"
	}
	RequestsTotal.WithLabelValues(mode, outcome).Inc()
}

// ObserveTokens records upstream-reported usage.
func ObserveTokens(inputTokens, outputTokens int) {
	TokensTotal.WithLabelValues("input").Add(float64(inputTokens))
	TokensTotal.WithLabelValues("output").Add(float64(outputTokens))
}

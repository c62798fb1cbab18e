package main

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// compileMetrics collects counters for one lessc process; serveMetrics
// exposes them alongside the default Go runtime collectors.
type compileMetrics struct {
	compiles *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

var (
	metricsOnce    sync.Once
	processMetrics *compileMetrics
)

// registerMetrics registers the counters with the default registry on its
// first call and returns the same instance on every later call.
func registerMetrics() *compileMetrics {
	metricsOnce.Do(func() {
		processMetrics = &compileMetrics{
			compiles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "lessc",
				Name:      "compiles_total",
				Help:      "Stylesheet compiles, by trigger",
			}, []string{"trigger"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "lessc",
				Name:      "compile_errors_total",
				Help:      "Compile failures, by kind",
			}, []string{"kind"}),
		}
		prometheus.MustRegister(processMetrics.compiles, processMetrics.errors)
	})
	return processMetrics
}

func serveMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}

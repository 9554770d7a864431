package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TurbineJesse/go-cfa835/display"
)

// NewRegistry creates a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the HTTP handler that exposes reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Collector records display exchange attempts.
type Collector struct {
	Attempts  *prometheus.CounterVec   // labels: op, outcome
	Exchanges *prometheus.CounterVec   // labels: op, result
	Duration  *prometheus.HistogramVec // labels: op

	mu      sync.Mutex
	pending map[uint64]time.Duration // by Attempt.Exchange
}

// NewCollector creates the exchange metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cfa835_exchange_attempts_total",
			Help: "Exchange attempts by operation and outcome.",
		}, []string{"op", "outcome"}),
		Exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cfa835_exchanges_total",
			Help: "Completed exchanges by operation and result.",
		}, []string{"op", "result"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cfa835_exchange_duration_seconds",
			Help:    "Time spent on an exchange across all of its attempts.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"op"}),
		pending: make(map[uint64]time.Duration),
	}
	reg.MustRegister(c.Attempts, c.Exchanges, c.Duration)
	return c
}

// ObserveAttempt records one attempt. It has the display.AttemptCallback
// signature:
//
//	lcd := display.New(port, display.WithAttemptCallback(collector.ObserveAttempt))
func (c *Collector) ObserveAttempt(a display.Attempt) {
	c.Attempts.WithLabelValues(a.Op, string(a.Outcome)).Inc()

	c.mu.Lock()
	total := c.pending[a.Exchange] + a.Elapsed
	if a.Final {
		delete(c.pending, a.Exchange)
	} else {
		c.pending[a.Exchange] = total
	}
	c.mu.Unlock()

	if a.Final {
		c.Exchanges.WithLabelValues(a.Op, a.Result()).Inc()
		c.Duration.WithLabelValues(a.Op).Observe(total.Seconds())
	}
}

// Package metrics exposes display exchange statistics to Prometheus.
//
//	reg := metrics.NewRegistry()
//	collector := metrics.NewCollector(reg)
//	lcd := display.New(port, display.WithAttemptCallback(collector.ObserveAttempt))
//	http.Handle("/metrics", metrics.Handler(reg))
package metrics

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package metrics exports run statistics in the Prometheus format.
package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"github.com/gogpu/cts/logging"
	"github.com/gogpu/cts/report"
)

// Collector accumulates case metrics on its own registry.
type Collector struct {
	registry     *prometheus.Registry
	casesTotal   *prometheus.CounterVec
	caseDuration *prometheus.HistogramVec
	subcases     prometheus.Counter
	runInfo      *prometheus.GaugeVec
}

// NewCollector returns a Collector with all metrics registered and every
// status label pre-initialized to zero.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		casesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "cts_cases_total", Help: "Top-level cases finished, by status."},
			[]string{"status"},
		),
		caseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cts_case_duration_seconds",
				Help:    "Top-level case duration in seconds, by status.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"status"},
		),
		subcases: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "cts_subcases_total", Help: "Subcase invocations run."},
		),
		runInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "cts_run_info", Help: "Run metadata for traceability."},
			[]string{"run_id", "adapter", "backend"},
		),
	}
	c.registry.MustRegister(c.casesTotal, c.caseDuration, c.subcases, c.runInfo)
	for _, st := range []logging.Status{logging.StatusPass, logging.StatusSkip, logging.StatusWarn, logging.StatusFail} {
		c.casesTotal.WithLabelValues(st.String())
	}
	return c
}

// Observe records one case result. It is safe for concurrent use and can
// be passed directly as a runner sink.
func (c *Collector) Observe(res report.CaseResult) {
	status := res.Status.String()
	c.casesTotal.WithLabelValues(status).Inc()
	d := time.Duration(res.TimeMS * float64(time.Millisecond))
	c.caseDuration.WithLabelValues(status).Observe(d.Seconds())
	c.subcases.Add(float64(res.Subcases))
}

// ObserveRun records run metadata.
func (c *Collector) ObserveRun(run *report.Run) {
	var adapter, backend string
	if run.Adapter != nil {
		adapter, backend = run.Adapter.Name, run.Adapter.Backend
	}
	c.runInfo.WithLabelValues(run.RunID, adapter, backend).Set(1)
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the metrics over HTTP.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Write writes all metrics to a Prometheus text file, suitable for the
// node exporter textfile collector.
func (c *Collector) Write(path string) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, f := range families {
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", f.GetName(), err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("metrics: write: %w", err)
	}
	return nil
}

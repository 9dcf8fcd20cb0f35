/*
Copyright 2025 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics exposes the worker's Prometheus metrics. The metric and
// label names are an external contract consumed by the scrape/dashboard
// layer; do not rename them.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const component = "worker"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: component,
			Name:      "requests_total",
			Help:      "Total number of requests processed, by terminal outcome.",
		},
		[]string{"worker", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Subsystem: component,
			Name:      "request_duration_ms",
			Help:      "Request duration in milliseconds.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"worker"},
	)

	currentLoad = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Subsystem: component,
			Name:      "current_load",
			Help:      "Current number of concurrent requests holding the concurrency gate.",
		},
		[]string{"worker"},
	)
)

var registerMetrics sync.Once

// Register all metrics with the default registerer.
func Register() {
	registerMetrics.Do(func() {
		prometheus.MustRegister(requestsTotal)
		prometheus.MustRegister(requestDuration)
		prometheus.MustRegister(currentLoad)
	})
}

// RecordRequestOutcome counts one request reaching the given terminal
// outcome.
func RecordRequestOutcome(worker, status string) {
	requestsTotal.WithLabelValues(worker, status).Inc()
}

// RecordRequestDuration observes one request's wall-clock processing time.
func RecordRequestDuration(worker string, elapsedMs int64) {
	requestDuration.WithLabelValues(worker).Observe(float64(elapsedMs))
}

// RecordCurrentLoad sets the live concurrency gauge.
func RecordCurrentLoad(worker string, load int64) {
	currentLoad.WithLabelValues(worker).Set(float64(load))
}

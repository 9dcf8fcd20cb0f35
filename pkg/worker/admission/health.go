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

package admission

// HealthStatus is the three-level classification of a worker's load. The
// values are the wire contract of the health endpoint.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Classification thresholds on the load and queue occupancy ratios. Fixed
// constants, not configurable.
const (
	degradedRatio  = 0.7
	unhealthyRatio = 0.9
)

// HealthSnapshot is the health endpoint's response shape, recomputed on
// every query and never cached.
type HealthSnapshot struct {
	Status      HealthStatus `json:"status"`
	CurrentLoad int64        `json:"currentLoad"`
	QueueDepth  int64        `json:"queueDepth"`
}

// classify derives the status from the occupancy ratios of the concurrency
// ceiling and the queue slot pool. Either ratio >= 0.9 is unhealthy, either
// >= 0.7 is degraded, everything else is healthy.
func classify(active, depth int64, cfg Configuration) HealthStatus {
	loadRatio := occupancy(active, cfg.MaxConcurrentRequests)
	queueRatio := occupancy(depth, cfg.QueueSize)

	switch {
	case loadRatio >= unhealthyRatio || queueRatio >= unhealthyRatio:
		return StatusUnhealthy
	case loadRatio >= degradedRatio || queueRatio >= degradedRatio:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}

// occupancy is count/capacity, defined as 0 when the capacity is not
// positive so a degenerate configuration reads as idle rather than dividing
// by zero.
func occupancy(count int64, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return float64(count) / float64(capacity)
}

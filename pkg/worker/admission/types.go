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

// Environment variables carrying the worker's identity.
const (
	EnvWorkerName  = "WORKER_NAME"
	EnvWorkerColor = "WORKER_COLOR"

	// DefaultWorkerName is used when EnvWorkerName is unset.
	DefaultWorkerName = "go-worker-1"
	// DefaultWorkerColor is the display color used when EnvWorkerColor is
	// unset.
	DefaultWorkerColor = "#3B82F6"
)

// Task is a single unit of simulated work submitted by a caller. It is
// ephemeral: nothing about it is retained after the response is written.
type Task struct {
	ID string `json:"id"`
	// Weight scales the simulated work duration. Decoders must pre-fill it
	// with DefaultTaskWeight so an absent field keeps the default while an
	// explicit non-positive value is floored at minTaskWeight.
	Weight float64 `json:"weight"`
}

// TaskOutcome is the terminal state of a successfully processed task,
// echoed back to the caller.
type TaskOutcome struct {
	ID               string `json:"id"`
	Worker           string `json:"worker"`
	Color            string `json:"color"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
	Timestamp        string `json:"timestamp"`
}

// Identity names a worker instance. Both fields are fixed at process start
// and echoed verbatim in every task response so the layer routing traffic
// across workers can attribute results.
type Identity struct {
	Name  string
	Color string
}

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

import (
	"errors"
	"fmt"
)

// --- Admission Rejection Errors ---

var (
	// ErrQueueFull indicates the queue gate could not grant a slot within the
	// admission timeout. The attempt had no side effects and is terminal;
	// retrying is the caller's decision.
	//
	// Callers should use `errors.Is(err, ErrQueueFull)` to check for this
	// class of rejection.
	ErrQueueFull = errors.New("queue full")
)

// --- Capacity Rejection Errors ---

// CapacityError indicates a task was admitted to the queue but found the
// concurrency ceiling already reached. The concurrency counter has been
// rolled back by the time this error is returned; only the queue slot
// remains held (its release is the caller's scoped token).
type CapacityError struct {
	// Current is the concurrency counter as read together with the ceiling,
	// i.e. including this request.
	Current int64
	// Limit is the ceiling in effect at the same instant.
	Limit int64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("max concurrent requests exceeded (%d/%d)", e.Current, e.Limit)
}

// --- Simulated Processing Errors ---

var (
	// ErrSimulatedFailure is the injected per-request failure, drawn after
	// the simulated work completes and both gates are released. To callers
	// it is indistinguishable from a genuine processing fault.
	ErrSimulatedFailure = errors.New("simulated failure")
)

// --- Reconfiguration Errors ---

var (
	// ErrQueueBusy indicates a queue size change was requested while requests
	// were active or queued. The slot pool has a fixed capacity at
	// construction; replacing it is only safe in drain state, so the change
	// is refused. Scalar fields in the same update are already applied and
	// stay applied.
	ErrQueueBusy = errors.New("cannot change queue_size while requests are active")
)

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

import "strconv"

// Outcome is the terminal classification of one task submission. It is
// designed as a low-cardinality metrics label; the error returned alongside
// a non-success outcome carries the fine-grained cause.
type Outcome int

const (
	// OutcomeSuccess indicates the task passed both gates and completed its
	// simulated work without a failure draw.
	OutcomeSuccess Outcome = iota

	// OutcomeFailed indicates the task completed its simulated work but
	// resolved to an injected failure.
	OutcomeFailed

	// OutcomeRejected indicates the queue gate refused the task: no slot
	// freed up within the admission timeout.
	OutcomeRejected

	// OutcomeOverloaded indicates the task was admitted to the queue but the
	// concurrency gate found the ceiling already reached.
	OutcomeOverloaded

	// OutcomeError indicates the submission itself was malformed and never
	// reached simulated work.
	OutcomeError
)

// String returns the metrics label value for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeRejected:
		return "rejected"
	case OutcomeOverloaded:
		return "overloaded"
	case OutcomeError:
		return "error"
	default:
		// Return the integer value for unknown outcomes to aid in debugging.
		return "unknown(" + strconv.Itoa(int(o)) + ")"
	}
}

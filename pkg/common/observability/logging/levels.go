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

package logging

// logr verbosity levels used across the codebase. Higher values are chattier
// and are only emitted when the logger was initialized at least that wide.
const (
	// DEFAULT is the default logging level, used for lifecycle events and
	// anything an operator should see in normal operation.
	DEFAULT = 1

	// VERBOSE is for per-request decisions worth seeing when debugging
	// traffic behavior.
	VERBOSE = 2

	// DEBUG is for detailed internal state transitions.
	DEBUG = 4

	// TRACE is for very high frequency events, e.g. every admission step.
	TRACE = 5
)

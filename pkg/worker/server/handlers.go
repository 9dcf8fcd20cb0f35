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

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	logutil "github.com/Hiroki-org/network-sandbox/pkg/common/observability/logging"
	"github.com/Hiroki-org/network-sandbox/pkg/worker/admission"
	"github.com/Hiroki-org/network-sandbox/pkg/worker/metrics"
)

// Wire messages. Dashboards and the load-balancing layer match on these
// strings, so they are part of the external contract alongside the JSON
// field names.
const (
	msgQueueFull         = "Queue full - service overloaded"
	msgOverloadedFmt     = "Max concurrent requests exceeded (%d/%d)"
	msgSimulatedFailure  = "Simulated failure"
	msgInvalidTaskBody   = "Invalid request body"
	msgInvalidConfigBody = "Invalid config body"
	msgQueueBusy         = "Cannot change queue_size while requests are active"
)

// errorResponse is the JSON error body shared by the task and config
// endpoints.
type errorResponse struct {
	Error  string `json:"error"`
	Worker string `json:"worker"`
}

// handleTask runs one task through the admission controller and maps the
// result onto the wire contract.
func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Pre-fill the weight so an absent field means the default while an
	// explicit non-positive value reaches the controller's floor.
	task := admission.Task{Weight: admission.DefaultTaskWeight}
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		metrics.RecordRequestOutcome(s.workerName, admission.OutcomeError.String())
		s.logger.V(logutil.VERBOSE).Info("Rejected malformed task body", "reason", err.Error())
		s.writeError(w, http.StatusBadRequest, msgInvalidTaskBody)
		return
	}

	outcome, err := s.controller.Process(r.Context(), task)
	if err != nil {
		s.writeTaskError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, outcome)
}

// writeTaskError translates admission errors into status codes and canonical
// messages. Outcome metrics are already recorded by the controller.
func (s *Server) writeTaskError(w http.ResponseWriter, err error) {
	var capacityErr *admission.CapacityError
	switch {
	case errors.Is(err, admission.ErrQueueFull):
		s.writeError(w, http.StatusServiceUnavailable, msgQueueFull)
	case errors.As(err, &capacityErr):
		s.writeError(w, http.StatusServiceUnavailable,
			fmt.Sprintf(msgOverloadedFmt, capacityErr.Current, capacityErr.Limit))
	case errors.Is(err, admission.ErrSimulatedFailure):
		s.writeError(w, http.StatusInternalServerError, msgSimulatedFailure)
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// handleHealth reports the classified health derived from the live counters.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.controller.Health())
}

// handleConfig serves the current configuration and applies runtime updates.
// PUT and POST are equivalent.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.controller.Snapshot())
	case http.MethodPut, http.MethodPost:
		var candidate admission.Configuration
		if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
			s.logger.V(logutil.VERBOSE).Info("Rejected malformed config body", "reason", err.Error())
			s.writeError(w, http.StatusBadRequest, msgInvalidConfigBody)
			return
		}
		cfg, err := s.controller.UpdateConfig(candidate)
		if err != nil {
			// Scalar fields may have applied before the refusal; the refusal
			// only concerns the queue resize.
			s.writeError(w, http.StatusBadRequest, msgQueueBusy)
			return
		}
		s.writeJSON(w, http.StatusOK, cfg)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error(err, "Failed to encode response body")
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, errorResponse{Error: msg, Worker: s.workerName})
}

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

// Package server exposes the worker over HTTP: task submission, health,
// runtime configuration, and Prometheus metrics, plus optional pprof.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Hiroki-org/network-sandbox/internal/runnable"
	"github.com/Hiroki-org/network-sandbox/pkg/common/observability/profiling"
	"github.com/Hiroki-org/network-sandbox/pkg/worker/admission"
)

// loggerName is the name to use for loggers created by this package.
const loggerName = "http-server"

// Server serves the worker's HTTP surface. All admission decisions are
// delegated to the controller; the server only translates between HTTP and
// the controller's types.
type Server struct {
	opts       *Options
	controller *admission.Controller
	workerName string
	logger     logr.Logger
}

// NewServer wires the handlers to the given admission controller.
func NewServer(opts *Options, controller *admission.Controller, logger logr.Logger) *Server {
	return &Server{
		opts:       opts,
		controller: controller,
		workerName: controller.Identity().Name,
		logger:     logger.WithName(loggerName),
	}
}

// Handler builds the full route table with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/task", s.handleTask)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/config", s.handleConfig)
	mux.Handle("/metrics", promhttp.Handler())
	if s.opts.EnablePprof {
		profiling.SetupPprofHandlers(mux)
	}
	return withCORS(mux)
}

// Start serves until ctx is cancelled, then drains in-flight requests within
// the configured graceful shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.opts.Port),
		Handler: s.Handler(),
	}
	return runnable.HTTPServer("worker", srv, s.logger, s.opts.GracefulShutdownTimeout).Start(ctx)
}

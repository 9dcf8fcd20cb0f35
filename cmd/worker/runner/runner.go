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

package runner

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/Hiroki-org/network-sandbox/pkg/common/observability/logging"
	"github.com/Hiroki-org/network-sandbox/pkg/worker/admission"
	"github.com/Hiroki-org/network-sandbox/pkg/worker/metrics"
	"github.com/Hiroki-org/network-sandbox/pkg/worker/server"
	"github.com/Hiroki-org/network-sandbox/version"
)

func NewRunner() *Runner {
	return &Runner{
		executableName: "worker",
		opts:           server.NewOptions(),
	}
}

// Runner wires the worker process together: flags, logging, environment
// configuration, metrics, the admission controller, and the HTTP server.
type Runner struct {
	executableName string
	opts           *server.Options
}

// WithExecutableName sets the name of the executable containing the runner.
// The name is used in the version log upon startup and is otherwise opaque.
func (r *Runner) WithExecutableName(exeName string) *Runner {
	r.executableName = exeName
	return r
}

func (r *Runner) Run(ctx context.Context) error {
	r.opts.AddFlags(pflag.CommandLine)
	pflag.Parse()

	logger := logging.NewLogger(r.opts.LogVerbosity, r.opts.DevelopmentLogging)
	setupLog := logger.WithName("setup")
	setupLog.Info(r.executableName+" build", "commit-sha", version.CommitSHA, "build-ref", version.BuildRef)

	// Print all flag values
	flags := make(map[string]any)
	pflag.VisitAll(func(f *pflag.Flag) {
		flags[f.Name] = f.Value
	})
	setupLog.Info("Flags processed", "flags", flags)

	if err := r.opts.Complete(setupLog); err != nil {
		setupLog.Error(err, "Failed to complete options")
		return err
	}
	if err := r.opts.Validate(); err != nil {
		setupLog.Error(err, "Failed to validate options")
		return err
	}

	cfg := admission.ConfigurationFromEnv(setupLog)
	identity := admission.Identity{Name: r.opts.WorkerName, Color: r.opts.WorkerColor}

	metrics.Register()

	controller, err := admission.NewController(cfg, identity, logger)
	if err != nil {
		setupLog.Error(err, "Failed to create admission controller")
		return err
	}

	setupLog.Info("Worker starting",
		"name", identity.Name,
		"color", identity.Color,
		"port", r.opts.Port,
		"maxConcurrentRequests", cfg.MaxConcurrentRequests,
		"responseDelayMs", cfg.ResponseDelayMs,
		"failureRate", cfg.FailureRate,
		"queueSize", cfg.QueueSize)

	// Serve until a termination signal cancels ctx.
	if err := server.NewServer(r.opts, controller, logger).Start(ctx); err != nil {
		setupLog.Error(err, "Error running HTTP server")
		return err
	}
	setupLog.Info("Worker terminated")
	return nil
}

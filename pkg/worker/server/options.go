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
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"

	"github.com/Hiroki-org/network-sandbox/pkg/common/observability/logging"
	"github.com/Hiroki-org/network-sandbox/pkg/worker/admission"
	envutil "github.com/Hiroki-org/network-sandbox/pkg/worker/util/env"
)

const (
	DefaultPort = 8080

	// EnvPort overrides the serving port when the --port flag is not set.
	EnvPort = "PORT"
)

// Options contains configuration values necessary to create and run the worker.
type Options struct {
	//
	// Serving.
	//
	Port                    int           // HTTP port serving the task, health, config, and metrics endpoints.
	GracefulShutdownTimeout time.Duration // How long in-flight requests may drain after a termination signal.
	//
	// Identity.
	//
	WorkerName  string // Name this worker reports in responses and metrics.
	WorkerColor string // Display color echoed in task responses.
	//
	// Diagnostics.
	//
	LogVerbosity       int  // Number for the log level verbosity.
	DevelopmentLogging bool // Uses the zap development encoder for human-readable logs.
	EnablePprof        bool // Enables pprof handlers.

	// internal
	fs *pflag.FlagSet // FlagSet used in AddFlags() and consulted in Complete()
}

// NewOptions returns a new Options struct initialized with the default values.
func NewOptions() *Options {
	return &Options{
		Port:                    DefaultPort,
		GracefulShutdownTimeout: 30 * time.Second,
		WorkerName:              admission.DefaultWorkerName,
		WorkerColor:             admission.DefaultWorkerColor,
		LogVerbosity:            logging.DEFAULT,
		EnablePprof:             true,
	}
}

func (opts *Options) AddFlags(fs *pflag.FlagSet) {
	if fs == nil {
		fs = pflag.CommandLine
	}
	opts.fs = fs

	fs.IntVar(&opts.Port, "port", opts.Port,
		"HTTP port serving the task, health, config, and metrics endpoints.")
	fs.DurationVar(&opts.GracefulShutdownTimeout, "graceful-shutdown-timeout", opts.GracefulShutdownTimeout,
		"How long in-flight requests may drain after a termination signal.")
	fs.StringVar(&opts.WorkerName, "worker-name", opts.WorkerName,
		"Name this worker reports in responses and metrics.")
	fs.StringVar(&opts.WorkerColor, "worker-color", opts.WorkerColor,
		"Display color echoed in task responses.")
	fs.IntVarP(&opts.LogVerbosity, "v", "v", opts.LogVerbosity, "Number for the log level verbosity.") // allow both --v and -v
	fs.BoolVar(&opts.DevelopmentLogging, "log-development", opts.DevelopmentLogging,
		"Uses the zap development encoder for human-readable logs.")
	fs.BoolVar(&opts.EnablePprof, "enable-pprof", opts.EnablePprof,
		"Enables pprof handlers. Defaults to true. Set to false to disable pprof handlers.")
}

// Complete fills in values not set explicitly on the command line. The
// environment supplies the serving port and worker identity for deployments
// that configure workers through env vars alone.
func (opts *Options) Complete(logger logr.Logger) error {
	if f := opts.fs.Lookup("port"); f != nil && !f.Changed {
		opts.Port = envutil.GetEnvInt(EnvPort, opts.Port, logger)
	}
	if f := opts.fs.Lookup("worker-name"); f != nil && !f.Changed {
		if name := envutil.GetEnvString(admission.EnvWorkerName, opts.WorkerName, logger); name != "" {
			opts.WorkerName = name
		}
	}
	if f := opts.fs.Lookup("worker-color"); f != nil && !f.Changed {
		if color := envutil.GetEnvString(admission.EnvWorkerColor, opts.WorkerColor, logger); color != "" {
			opts.WorkerColor = color
		}
	}
	return nil
}

func (opts *Options) Validate() error {
	if opts.Port < 1 || opts.Port > 65535 {
		return fmt.Errorf("invalid port number %d for %q flag", opts.Port, "port")
	}
	if opts.GracefulShutdownTimeout <= 0 {
		return fmt.Errorf("flag %q must be positive", "graceful-shutdown-timeout")
	}
	if opts.WorkerName == "" {
		return fmt.Errorf("flag %q must not be empty", "worker-name")
	}
	return nil
}

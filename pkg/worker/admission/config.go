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
	"fmt"

	"github.com/go-logr/logr"

	envutil "github.com/Hiroki-org/network-sandbox/pkg/worker/util/env"
)

// Environment variables for the initial Configuration.
const (
	EnvMaxConcurrentRequests = "MAX_CONCURRENT_REQUESTS"
	EnvResponseDelayMs       = "RESPONSE_DELAY_MS"
	EnvFailureRate           = "FAILURE_RATE"
	EnvQueueSize             = "QUEUE_SIZE"
)

// Default configuration values.
const (
	// DefaultMaxConcurrentRequests is the default concurrency ceiling.
	DefaultMaxConcurrentRequests = 10
	// DefaultResponseDelayMs is the default simulated work duration for a
	// weight-1.0 task.
	DefaultResponseDelayMs = 100
	// DefaultFailureRate is the default injected failure probability.
	DefaultFailureRate = 0.0
	// DefaultQueueSize is the default queue slot pool capacity.
	DefaultQueueSize = 50
)

// Configuration holds the worker's capacity and behavior parameters. The
// JSON field names are an external contract consumed by the config
// endpoints; do not rename them.
type Configuration struct {
	// MaxConcurrentRequests is the concurrency gate ceiling. Always > 0.
	MaxConcurrentRequests int `json:"max_concurrent_requests"`
	// ResponseDelayMs is the simulated work duration for a weight-1.0 task,
	// in milliseconds. Always >= 0.
	ResponseDelayMs int `json:"response_delay_ms"`
	// FailureRate is the probability in [0, 1] that an admitted,
	// gate-passing task resolves to an injected failure.
	FailureRate float64 `json:"failure_rate"`
	// QueueSize is the queue slot pool capacity. Always > 0. Changing it at
	// runtime is drain-gated; see Controller.UpdateConfig.
	QueueSize int `json:"queue_size"`
}

// DefaultConfiguration returns the built-in defaults.
func DefaultConfiguration() Configuration {
	return Configuration{
		MaxConcurrentRequests: DefaultMaxConcurrentRequests,
		ResponseDelayMs:       DefaultResponseDelayMs,
		FailureRate:           DefaultFailureRate,
		QueueSize:             DefaultQueueSize,
	}
}

// ConfigurationFromEnv builds the initial Configuration from the
// environment. Unset or unparsable variables keep their defaults, and the
// result is clamped to validity so a hostile environment can never produce
// a Configuration the gates cannot operate on.
func ConfigurationFromEnv(logger logr.Logger) Configuration {
	cfg := Configuration{
		MaxConcurrentRequests: envutil.GetEnvInt(EnvMaxConcurrentRequests, DefaultMaxConcurrentRequests, logger),
		ResponseDelayMs:       envutil.GetEnvInt(EnvResponseDelayMs, DefaultResponseDelayMs, logger),
		FailureRate:           envutil.GetEnvFloat(EnvFailureRate, DefaultFailureRate, logger),
		QueueSize:             envutil.GetEnvInt(EnvQueueSize, DefaultQueueSize, logger),
	}

	if cfg.MaxConcurrentRequests < 1 {
		cfg.MaxConcurrentRequests = 1
	}
	if cfg.ResponseDelayMs < 0 {
		cfg.ResponseDelayMs = 0
	}
	if cfg.FailureRate < 0 {
		cfg.FailureRate = 0
	} else if cfg.FailureRate > 1 {
		cfg.FailureRate = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	return cfg
}

// validate checks the configuration for validity.
func (c Configuration) validate() error {
	if c.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("MaxConcurrentRequests must be positive, but got %d", c.MaxConcurrentRequests)
	}
	if c.ResponseDelayMs < 0 {
		return fmt.Errorf("ResponseDelayMs cannot be negative, but got %d", c.ResponseDelayMs)
	}
	if c.FailureRate < 0 || c.FailureRate > 1 {
		return fmt.Errorf("FailureRate must be within [0, 1], but got %g", c.FailureRate)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("QueueSize must be positive, but got %d", c.QueueSize)
	}
	return nil
}

// configFieldRule is one row of the update decision table: a field name, the
// predicate a candidate value must satisfy, and the effect applying it. An
// update request carrying one invalid field leaves that field unchanged
// while the remaining rows still apply; this partial application is the
// documented contract, not best-effort leniency.
type configFieldRule struct {
	name  string
	valid func(candidate Configuration) bool
	apply func(dst *Configuration, candidate Configuration)
}

// scalarFieldRules covers the three fields that always apply independently.
// queue_size is deliberately absent: its predicate spans the live load
// counters and is evaluated by the Controller inside the same critical
// section that guards them.
var scalarFieldRules = []configFieldRule{
	{
		name:  "max_concurrent_requests",
		valid: func(c Configuration) bool { return c.MaxConcurrentRequests > 0 },
		apply: func(dst *Configuration, c Configuration) { dst.MaxConcurrentRequests = c.MaxConcurrentRequests },
	},
	{
		name:  "response_delay_ms",
		valid: func(c Configuration) bool { return c.ResponseDelayMs >= 0 },
		apply: func(dst *Configuration, c Configuration) { dst.ResponseDelayMs = c.ResponseDelayMs },
	},
	{
		name:  "failure_rate",
		valid: func(c Configuration) bool { return c.FailureRate >= 0 && c.FailureRate <= 1 },
		apply: func(dst *Configuration, c Configuration) { dst.FailureRate = c.FailureRate },
	},
}

// applyScalarFields runs the scalar rows of the decision table against dst
// and reports which fields were applied.
func applyScalarFields(dst *Configuration, candidate Configuration) []string {
	applied := make([]string, 0, len(scalarFieldRules))
	for _, rule := range scalarFieldRules {
		if rule.valid(candidate) {
			rule.apply(dst, candidate)
			applied = append(applied, rule.name)
		}
	}
	return applied
}

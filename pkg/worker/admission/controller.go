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

// Package admission implements the worker's admission-control and
// backpressure core: a bounded queue gate, a concurrency gate re-checked
// after queue admission, a config store supporting safe reconfiguration
// while requests are in flight, and a health classifier over the live
// counters.
//
// Control flow per request: queue gate -> concurrency gate -> simulated
// work -> release both gates -> failure draw -> response. Admission
// rejections are terminal for the attempt; retrying is the caller's
// decision.
package admission

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"k8s.io/utils/clock"

	logutil "github.com/Hiroki-org/network-sandbox/pkg/common/observability/logging"
	"github.com/Hiroki-org/network-sandbox/pkg/worker/metrics"
)

const (
	// queueAdmitTimeout bounds how long an admission attempt may wait for a
	// queue slot. Admission is non-blocking in spirit: the wait absorbs slot
	// churn on the order of milliseconds, it is not a queueing discipline.
	queueAdmitTimeout = 10 * time.Millisecond

	// minTaskWeight floors the task weight so the simulated delay never
	// degenerates to zero or negative.
	minTaskWeight = 0.1

	// DefaultTaskWeight is assumed when a submission carries no weight.
	// Decoders pre-fill it before unmarshalling.
	DefaultTaskWeight = 1.0

	// loggerName is the name to use for loggers created by this package.
	loggerName = "admission-controller"
)

// Controller owns every piece of mutable admission state: the configuration,
// the load counters, and the queue slot pool. All gates operate through its
// methods; nothing else reads or mutates these fields.
type Controller struct {
	logger   logr.Logger
	clock    clock.Clock
	randFn   func() float64
	identity Identity

	// mu guards everything below. The queue-resize drain check is the one
	// operation that must observe (config, activeRequests, queueDepth) as a
	// single consistent snapshot; one mutex over all three keeps that check
	// trivially correct. The simulated delay and the bounded admission wait
	// both happen outside the lock.
	mu             sync.Mutex
	config         Configuration
	slots          chan struct{}
	queueDepth     int64
	activeRequests int64
}

// controllerOption is a function that applies a configuration change to a
// Controller.
// test-only
type controllerOption func(*Controller)

// withClock overrides the wall clock.
func withClock(c clock.Clock) controllerOption {
	return func(ctrl *Controller) {
		ctrl.clock = c
	}
}

// withRandFloat overrides the uniform [0, 1) draw used for failure
// injection.
func withRandFloat(fn func() float64) controllerOption {
	return func(ctrl *Controller) {
		ctrl.randFn = fn
	}
}

// NewController creates a Controller with the given initial configuration
// and identity. The configuration must already be valid; ConfigurationFromEnv
// guarantees that for environment-derived configs.
func NewController(cfg Configuration, identity Identity, logger logr.Logger, opts ...controllerOption) (*Controller, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid initial configuration: %w", err)
	}

	c := &Controller{
		logger:   logger.WithName(loggerName),
		clock:    clock.RealClock{},
		randFn:   rand.Float64,
		identity: identity,
		config:   cfg,
		slots:    make(chan struct{}, cfg.QueueSize),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger.V(logutil.DEFAULT).Info("Admission controller created",
		"worker", identity.Name,
		"maxConcurrentRequests", cfg.MaxConcurrentRequests,
		"responseDelayMs", cfg.ResponseDelayMs,
		"failureRate", cfg.FailureRate,
		"queueSize", cfg.QueueSize)
	return c, nil
}

// Identity returns the worker's fixed name and display color.
func (c *Controller) Identity() Identity {
	return c.identity
}

// queueToken releases the queue slot its request holds. Release is
// idempotent: the happy path releases explicitly before the failure draw and
// a deferred release backstops every other exit, so the slot is returned
// exactly once no matter how the request ends.
type queueToken struct {
	once    sync.Once
	release func()
}

func (t *queueToken) Release() {
	t.once.Do(t.release)
}

// admit implements the queue gate: acquire a slot within queueAdmitTimeout
// or reject with no side effects. The fast path claims a free slot and
// counts it under one lock hold; the slow path waits outside the lock and
// re-validates the pool afterwards, because a fully drained pool may have
// been replaced by a resize while we waited.
func (c *Controller) admit(ctx context.Context) (*queueToken, error) {
	c.mu.Lock()
	slots := c.slots
	select {
	case slots <- struct{}{}:
		c.queueDepth++
		c.mu.Unlock()
		return c.newQueueToken(slots), nil
	default:
	}
	c.mu.Unlock()

	timer := c.clock.NewTimer(queueAdmitTimeout)
	defer timer.Stop()
	select {
	case slots <- struct{}{}:
	case <-timer.C():
		return nil, ErrQueueFull
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrQueueFull, ctx.Err())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slots != slots {
		// The pool drained completely and was resized while we waited; the
		// slot we hold belongs to the retired pool. Trade it for one in the
		// current pool, or reject if that pool is already full.
		c.logger.V(logutil.DEBUG).Info("Trading retired queue slot after a resize")
		<-slots
		select {
		case c.slots <- struct{}{}:
			slots = c.slots
		default:
			return nil, ErrQueueFull
		}
	}
	c.queueDepth++
	return c.newQueueToken(slots), nil
}

func (c *Controller) newQueueToken(slots chan struct{}) *queueToken {
	return &queueToken{release: func() {
		c.mu.Lock()
		<-slots
		if c.queueDepth > 0 {
			c.queueDepth--
		}
		c.mu.Unlock()
	}}
}

// beginWork implements the concurrency gate. The increment, the readback,
// and the configuration snapshot happen under one lock hold so `current` and
// the ceiling are mutually consistent and the delay/failure parameters for
// this request are fixed at admission time. On a ceiling breach the counter
// is rolled back before returning.
func (c *Controller) beginWork() (int64, Configuration, error) {
	c.mu.Lock()
	c.activeRequests++
	current := c.activeRequests
	cfg := c.config
	c.mu.Unlock()
	metrics.RecordCurrentLoad(c.identity.Name, current)

	if current > int64(cfg.MaxConcurrentRequests) {
		c.endWork()
		return current, cfg, &CapacityError{Current: current, Limit: int64(cfg.MaxConcurrentRequests)}
	}
	return current, cfg, nil
}

// endWork releases the concurrency slot and refreshes the load gauge.
func (c *Controller) endWork() {
	c.mu.Lock()
	if c.activeRequests > 0 {
		c.activeRequests--
	}
	load := c.activeRequests
	c.mu.Unlock()
	metrics.RecordCurrentLoad(c.identity.Name, load)
}

// Process runs one task through the full admission flow. On success the
// returned TaskOutcome carries the measured processing time; otherwise the
// error is ErrQueueFull, a *CapacityError, or ErrSimulatedFailure. The
// context only bounds the admission wait: once the concurrency slot is held
// the simulated delay runs to completion.
func (c *Controller) Process(ctx context.Context, task Task) (*TaskOutcome, error) {
	logger := c.logger.WithValues("taskID", task.ID, "admissionID", uuid.NewString())

	token, err := c.admit(ctx)
	if err != nil {
		metrics.RecordRequestOutcome(c.identity.Name, OutcomeRejected.String())
		logger.V(logutil.VERBOSE).Info("Task rejected, queue full")
		return nil, err
	}
	defer token.Release()

	current, cfg, err := c.beginWork()
	if err != nil {
		metrics.RecordRequestOutcome(c.identity.Name, OutcomeOverloaded.String())
		logger.V(logutil.VERBOSE).Info("Task rejected, concurrency ceiling reached",
			"current", current, "ceiling", cfg.MaxConcurrentRequests)
		return nil, err
	}
	logger.V(logutil.TRACE).Info("Task admitted", "current", current, "weight", task.Weight)

	start := c.clock.Now()
	c.suspend(scaledDelay(cfg.ResponseDelayMs, task.Weight))
	elapsedMs := c.clock.Since(start).Milliseconds()
	metrics.RecordRequestDuration(c.identity.Name, elapsedMs)

	// Release both gates before the failure draw: failure determination must
	// not hold capacity.
	c.endWork()
	token.Release()

	if c.randFn() < cfg.FailureRate {
		metrics.RecordRequestOutcome(c.identity.Name, OutcomeFailed.String())
		logger.V(logutil.VERBOSE).Info("Task resolved to injected failure", "processingTimeMs", elapsedMs)
		return nil, ErrSimulatedFailure
	}

	metrics.RecordRequestOutcome(c.identity.Name, OutcomeSuccess.String())
	logger.V(logutil.TRACE).Info("Task completed", "processingTimeMs", elapsedMs)
	return &TaskOutcome{
		ID:               task.ID,
		Worker:           c.identity.Name,
		Color:            c.identity.Color,
		ProcessingTimeMs: elapsedMs,
		Timestamp:        c.clock.Now().UTC().Format(time.RFC3339Nano),
	}, nil
}

// suspend parks the calling goroutine for the simulated work duration. This
// is a cooperative suspension: no lock is held and no OS thread blocks.
func (c *Controller) suspend(d time.Duration) {
	if d <= 0 {
		return
	}
	timer := c.clock.NewTimer(d)
	defer timer.Stop()
	<-timer.C()
}

// scaledDelay computes the simulated work duration. The weight is floored at
// minTaskWeight so a non-positive weight can never produce a zero or
// negative delay when a delay is configured.
func scaledDelay(delayMs int, weight float64) time.Duration {
	return time.Duration(float64(delayMs) * math.Max(weight, minTaskWeight) * float64(time.Millisecond))
}

// Snapshot returns a consistent copy of the current configuration. Two
// reads without an intervening update return identical values.
func (c *Controller) Snapshot() Configuration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// UpdateConfig applies the candidate field-by-field per the decision table:
// the three scalar fields apply independently and silently skip invalid
// values, while queue_size is all-or-nothing gated on drain state. The slot
// pool has a fixed capacity at construction; replacing it while any request
// holds a slot would corrupt the accounting, so a resize is refused with
// ErrQueueBusy unless both counters are zero at the instant of the check.
// The returned Configuration is the post-update snapshot either way; scalar
// fields applied before a refused resize stay applied.
func (c *Controller) UpdateConfig(candidate Configuration) (Configuration, error) {
	c.mu.Lock()
	applied := applyScalarFields(&c.config, candidate)

	var resizeErr error
	if candidate.QueueSize > 0 && candidate.QueueSize != c.config.QueueSize {
		if c.activeRequests != 0 || c.queueDepth != 0 {
			resizeErr = ErrQueueBusy
		} else {
			c.config.QueueSize = candidate.QueueSize
			c.slots = make(chan struct{}, candidate.QueueSize)
			applied = append(applied, "queue_size")
		}
	}
	cfg := c.config
	c.mu.Unlock()

	if resizeErr != nil {
		c.logger.V(logutil.DEFAULT).Info("Refused queue size change while requests in flight",
			"requested", candidate.QueueSize, "applied", applied)
		return cfg, resizeErr
	}
	if len(applied) > 0 {
		c.logger.V(logutil.DEFAULT).Info("Configuration updated", "applied", applied, "config", cfg)
	}
	return cfg, nil
}

// Health derives the worker's health from the live counters and the current
// configuration. It is a read-only snapshot; nothing is cached or mutated.
func (c *Controller) Health() HealthSnapshot {
	c.mu.Lock()
	active := c.activeRequests
	depth := c.queueDepth
	cfg := c.config
	c.mu.Unlock()

	return HealthSnapshot{
		Status:      classify(active, depth, cfg),
		CurrentLoad: active,
		QueueDepth:  depth,
	}
}

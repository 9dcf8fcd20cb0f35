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

package runnable

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"
)

// Runnable is a component that runs until its context is cancelled.
type Runnable interface {
	Start(ctx context.Context) error
}

// Func converts a plain function into a Runnable.
type Func func(ctx context.Context) error

func (f Func) Start(ctx context.Context) error {
	return f(ctx)
}

// HTTPServer converts the given HTTP server into a runnable. The server name
// is just being used for logging. On context cancellation the server drains
// in-flight requests for up to drainTimeout before terminating.
func HTTPServer(name string, srv *http.Server, logger logr.Logger, drainTimeout time.Duration) Runnable {
	return Func(func(ctx context.Context) error {
		log := logger.WithValues("name", name)
		log.Info("HTTP server starting")

		// Start listening.
		lis, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			return fmt.Errorf("HTTP server failed to listen - %w", err)
		}

		log.Info("HTTP server listening", "address", lis.Addr().String())

		// Shutdown on context closed.
		// Make sure the goroutine does not leak.
		doneCh := make(chan struct{})
		shutdownDone := make(chan struct{})
		defer close(doneCh)
		go func() {
			defer close(shutdownDone)
			select {
			case <-ctx.Done():
				log.Info("HTTP server shutting down", "drainTimeout", drainTimeout.String())
				shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.Error(err, "HTTP server failed to drain in-flight requests")
				}
			case <-doneCh:
			}
		}()

		// Keep serving until terminated.
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed - %w", err)
		}
		// Serve returns the moment Shutdown begins; wait for the drain to
		// finish before reporting termination.
		<-shutdownDone
		log.Info("HTTP server terminated")
		return nil
	})
}

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationFromEnv(t *testing.T) {
	testCases := []struct {
		name     string
		env      map[string]string
		expected Configuration
	}{
		{
			name:     "NoEnv_ShouldUseDefaults",
			env:      map[string]string{},
			expected: DefaultConfiguration(),
		},
		{
			name: "AllSet_ShouldUseEnv",
			env: map[string]string{
				EnvMaxConcurrentRequests: "4",
				EnvResponseDelayMs:       "250",
				EnvFailureRate:           "0.25",
				EnvQueueSize:             "8",
			},
			expected: Configuration{
				MaxConcurrentRequests: 4,
				ResponseDelayMs:       250,
				FailureRate:           0.25,
				QueueSize:             8,
			},
		},
		{
			name: "Unparsable_ShouldKeepDefaults",
			env: map[string]string{
				EnvMaxConcurrentRequests: "lots",
				EnvFailureRate:           "sometimes",
			},
			expected: DefaultConfiguration(),
		},
		{
			name: "OutOfRange_ShouldClampToValidity",
			env: map[string]string{
				EnvMaxConcurrentRequests: "0",
				EnvResponseDelayMs:       "-50",
				EnvFailureRate:           "1.7",
				EnvQueueSize:             "-3",
			},
			expected: Configuration{
				MaxConcurrentRequests: 1,
				ResponseDelayMs:       0,
				FailureRate:           1,
				QueueSize:             1,
			},
		},
		{
			name: "NegativeFailureRate_ShouldClampToZero",
			env: map[string]string{
				EnvFailureRate: "-0.5",
			},
			expected: Configuration{
				MaxConcurrentRequests: DefaultMaxConcurrentRequests,
				ResponseDelayMs:       DefaultResponseDelayMs,
				FailureRate:           0,
				QueueSize:             DefaultQueueSize,
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			for key, value := range tc.env {
				t.Setenv(key, value)
			}
			got := ConfigurationFromEnv(testLogger(t))
			assert.Equal(t, tc.expected, got, "environment-derived configuration should match")
			assert.NoError(t, got.validate(), "environment-derived configuration must always be valid")
		})
	}
}

func TestConfigurationValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		cfg       Configuration
		expectErr bool
	}{
		{
			name:      "Defaults_Valid",
			cfg:       DefaultConfiguration(),
			expectErr: false,
		},
		{
			name:      "ZeroDelay_Valid",
			cfg:       Configuration{MaxConcurrentRequests: 1, ResponseDelayMs: 0, FailureRate: 0, QueueSize: 1},
			expectErr: false,
		},
		{
			name:      "FailureRateOne_Valid",
			cfg:       Configuration{MaxConcurrentRequests: 1, ResponseDelayMs: 0, FailureRate: 1, QueueSize: 1},
			expectErr: false,
		},
		{
			name:      "ZeroMaxConcurrent_Invalid",
			cfg:       Configuration{MaxConcurrentRequests: 0, ResponseDelayMs: 0, FailureRate: 0, QueueSize: 1},
			expectErr: true,
		},
		{
			name:      "NegativeDelay_Invalid",
			cfg:       Configuration{MaxConcurrentRequests: 1, ResponseDelayMs: -1, FailureRate: 0, QueueSize: 1},
			expectErr: true,
		},
		{
			name:      "FailureRateAboveOne_Invalid",
			cfg:       Configuration{MaxConcurrentRequests: 1, ResponseDelayMs: 0, FailureRate: 1.01, QueueSize: 1},
			expectErr: true,
		},
		{
			name:      "NegativeFailureRate_Invalid",
			cfg:       Configuration{MaxConcurrentRequests: 1, ResponseDelayMs: 0, FailureRate: -0.01, QueueSize: 1},
			expectErr: true,
		},
		{
			name:      "ZeroQueueSize_Invalid",
			cfg:       Configuration{MaxConcurrentRequests: 1, ResponseDelayMs: 0, FailureRate: 0, QueueSize: 0},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.validate()
			if tc.expectErr {
				require.Error(t, err, "expected an error but got nil")
			} else {
				require.NoError(t, err, "expected no error but got: %v", err)
			}
		})
	}
}

func TestApplyScalarFields(t *testing.T) {
	t.Parallel()

	base := DefaultConfiguration()
	testCases := []struct {
		name            string
		candidate       Configuration
		expected        Configuration
		expectedApplied []string
	}{
		{
			name:            "AllValid_AllApplied",
			candidate:       Configuration{MaxConcurrentRequests: 20, ResponseDelayMs: 5, FailureRate: 0.5},
			expected:        Configuration{MaxConcurrentRequests: 20, ResponseDelayMs: 5, FailureRate: 0.5, QueueSize: base.QueueSize},
			expectedApplied: []string{"max_concurrent_requests", "response_delay_ms", "failure_rate"},
		},
		{
			name:            "InvalidFieldsSkipped_ValidFieldsStillApply",
			candidate:       Configuration{MaxConcurrentRequests: 0, ResponseDelayMs: -5, FailureRate: 0.9},
			expected:        Configuration{MaxConcurrentRequests: base.MaxConcurrentRequests, ResponseDelayMs: base.ResponseDelayMs, FailureRate: 0.9, QueueSize: base.QueueSize},
			expectedApplied: []string{"failure_rate"},
		},
		{
			name:            "ZeroDelayIsValid_Applied",
			candidate:       Configuration{MaxConcurrentRequests: -1, ResponseDelayMs: 0, FailureRate: 1.5},
			expected:        Configuration{MaxConcurrentRequests: base.MaxConcurrentRequests, ResponseDelayMs: 0, FailureRate: base.FailureRate, QueueSize: base.QueueSize},
			expectedApplied: []string{"response_delay_ms"},
		},
		{
			name:            "AllInvalid_NothingApplied",
			candidate:       Configuration{MaxConcurrentRequests: -1, ResponseDelayMs: -1, FailureRate: -1},
			expected:        base,
			expectedApplied: []string{},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dst := base
			applied := applyScalarFields(&dst, tc.candidate)
			assert.Equal(t, tc.expected, dst, "post-update configuration should match")
			assert.Equal(t, tc.expectedApplied, applied, "applied field names should match")
		})
	}
}

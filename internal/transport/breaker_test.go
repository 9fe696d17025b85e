// Copyright 2026 Pontoon Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontoon-io/pontoon/pkg/errors"
)

func TestBreakerOpensAtThreshold(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	for i := 0; i < 2; i++ {
		b.Failure()
		assert.NoError(t, b.Allow())
	}
	b.Failure()

	err := b.Allow()
	require.Error(t, err)
	var open *CircuitOpenError
	assert.ErrorAs(t, err, &open)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerSuccessResetsCount(t *testing.T) {
	b := NewBreaker(3, time.Minute)
	b.Failure()
	b.Failure()
	b.Success()
	b.Failure()
	b.Failure()
	assert.NoError(t, b.Allow())
}

func TestBreakerHalfOpenTrial(t *testing.T) {
	now := time.Now()
	b := NewBreaker(1, 30*time.Second)
	b.now = func() time.Time { return now }

	b.Failure()
	require.Error(t, b.Allow())

	// Cooldown elapsed: exactly one trial call is admitted.
	now = now.Add(31 * time.Second)
	assert.NoError(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
	assert.Error(t, b.Allow())

	b.Success()
	assert.Equal(t, StateClosed, b.State())
	assert.NoError(t, b.Allow())
}

func TestBreakerFailedTrialReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(1, 30*time.Second)
	b.now = func() time.Time { return now }

	b.Failure()
	now = now.Add(31 * time.Second)
	require.NoError(t, b.Allow())

	b.Failure()
	assert.Equal(t, StateOpen, b.State())
	assert.Error(t, b.Allow())

	// A second cooldown admits another trial.
	now = now.Add(31 * time.Second)
	assert.NoError(t, b.Allow())
}

func TestBreakerAbandonedTrialReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(1, 30*time.Second)
	b.now = func() time.Time { return now }

	b.Failure()
	now = now.Add(31 * time.Second)
	require.NoError(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())

	// The admitted trial ends without a verdict: the slot must be
	// released, not held forever.
	b.Abandon()
	assert.Equal(t, StateOpen, b.State())
	assert.Error(t, b.Allow())

	// The cooldown restarted at the abandonment, so a fresh trial is
	// admitted once it elapses again.
	now = now.Add(31 * time.Second)
	assert.NoError(t, b.Allow())
}

func TestBreakerAbandonWhileClosedIsNoop(t *testing.T) {
	b := NewBreaker(3, time.Minute)
	b.Failure()
	b.Abandon()
	assert.Equal(t, StateClosed, b.State())
	assert.NoError(t, b.Allow())
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, errors.IsRetryable(&ConnError{Op: "write", Err: errors.New("reset")}))
	assert.True(t, errors.IsRetryable(&TimeoutError{Adapter: "cache", Method: "get", Budget: time.Second}))
	assert.True(t, errors.IsRetryable(&CircuitOpenError{Cooldown: time.Second}))
	assert.False(t, errors.IsRetryable(&ClosedError{}))
	assert.False(t, errors.IsRetryable(errors.New("plain")))
}

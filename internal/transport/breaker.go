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
	"sync"
	"time"

	"github.com/pontoon-io/pontoon/internal/metrics"
)

// Breaker states.
const (
	StateClosed = iota
	StateOpen
	StateHalfOpen
)

// Breaker defaults.
const (
	DefaultFailureThreshold = 5
	DefaultCooldown         = 30 * time.Second
)

// Breaker trips after a run of consecutive transport-level failures.
// Application errors returned by adapter methods do not count: the wire
// worked, the adapter just said no. After the cooldown exactly one trial
// call is let through; it closes the breaker on success and reopens it on
// failure.
type Breaker struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	state    int
	failures int
	openedAt time.Time
	trial    bool
}

// NewBreaker creates a closed breaker. Zero values fall back to defaults.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a call may proceed. In the open state it starts
// admitting a single trial call once the cooldown has elapsed.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return &CircuitOpenError{Cooldown: b.cooldown}
		}
		b.setState(StateHalfOpen)
		b.trial = true
		return nil
	default: // StateHalfOpen
		if b.trial {
			return &CircuitOpenError{Cooldown: b.cooldown}
		}
		b.trial = true
		return nil
	}
}

// Success records a completed round trip and closes the breaker.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.trial = false
	b.setState(StateClosed)
}

// Abandon releases an admitted call that finished without a verdict on the
// wire, such as a context cancellation. An abandoned half-open trial reopens
// the breaker with a fresh cooldown so a later call gets the trial slot;
// abandoning a closed-state call leaves the failure count alone.
func (b *Breaker) Abandon() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen && b.trial {
		b.trial = false
		b.openedAt = b.now()
		b.setState(StateOpen)
	}
}

// Failure records a transport-level failure. A failed half-open trial
// reopens immediately; in the closed state the breaker opens once the
// consecutive-failure threshold is reached.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.trial = false
		b.openedAt = b.now()
		b.setState(StateOpen)
		return
	}

	b.failures++
	if b.failures >= b.threshold {
		b.openedAt = b.now()
		b.setState(StateOpen)
	}
}

// State returns the current breaker state.
func (b *Breaker) State() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) setState(state int) {
	if b.state != state {
		b.state = state
		metrics.SetBreakerState(state)
	}
}

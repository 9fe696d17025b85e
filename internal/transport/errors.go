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
	"fmt"
	"time"
)

// ConnError is a transport-level failure: the round trip itself broke, as
// opposed to the adapter method returning an error. Retryable.
type ConnError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *ConnError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnError) Unwrap() error {
	return e.Err
}

// Retryable marks connection failures as safe to retry.
func (e *ConnError) Retryable() bool {
	return true
}

// TimeoutError means the call exceeded its budget. The host is not told to
// stop: this is a caller-side give-up, and the eventual response is dropped
// as an orphan. Retryable.
type TimeoutError struct {
	Adapter string
	Method  string
	Budget  time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transport: %s.%s timed out after %s", e.Adapter, e.Method, e.Budget)
}

// Retryable marks timeouts as safe to retry.
func (e *TimeoutError) Retryable() bool {
	return true
}

// CircuitOpenError means the breaker rejected the call without attempting a
// round trip. Retryable after the cooldown.
type CircuitOpenError struct {
	Cooldown time.Duration
}

// Error implements the error interface.
func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("transport: circuit open, retry after %s", e.Cooldown)
}

// Retryable marks breaker rejections as safe to retry.
func (e *CircuitOpenError) Retryable() bool {
	return true
}

// ClosedError means Send was called on a closed transport.
type ClosedError struct{}

// Error implements the error interface.
func (e *ClosedError) Error() string {
	return "transport: closed"
}

// Retryable reports false: a closed transport will not recover.
func (e *ClosedError) Retryable() bool {
	return false
}

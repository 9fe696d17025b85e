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

package rpc

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pontoon-io/pontoon/internal/codec"
)

// Error codes carried in error responses.
const (
	CodeAdapterNotFound = "ERR_ADAPTER_NOT_FOUND"
	CodeMethodNotFound  = "ERR_METHOD_NOT_FOUND"
	CodeInvalidArgs     = "ERR_INVALID_ARGS"
	CodeInternal        = "ERR_INTERNAL"
)

// Method is one dispatchable adapter method: it decodes its arguments,
// invokes the adapter, and returns a codec-encodable result.
type Method func(ctx context.Context, args []codec.Value) (any, error)

// MethodSet maps method names to dispatchable methods for one adapter.
type MethodSet map[string]Method

// DispatchError is a dispatch-level failure (unknown adapter or method)
// returned to the caller as an error response, never a connection fault.
type DispatchError struct {
	ErrorCode string
	Message   string
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return e.Message
}

// Code returns the machine-readable error code.
func (e *DispatchError) Code() string {
	return e.ErrorCode
}

// Dispatcher routes decoded calls through explicit tables: adapter token to
// method name to function. Tables are built once at startup from typed
// capability bindings; there is no runtime reflection.
type Dispatcher struct {
	mu       sync.RWMutex
	adapters map[string]MethodSet
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{adapters: make(map[string]MethodSet)}
}

// Register installs the method table for an adapter token.
func (d *Dispatcher) Register(token string, methods MethodSet) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.adapters[token]; exists {
		return fmt.Errorf("rpc: adapter %q already registered", token)
	}
	d.adapters[token] = methods
	return nil
}

// Tokens returns all registered adapter tokens, sorted.
func (d *Dispatcher) Tokens() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tokens := make([]string, 0, len(d.adapters))
	for token := range d.adapters {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// Dispatch invokes a method on a registered adapter. Unknown adapters and
// methods return typed DispatchErrors carrying their error codes.
func (d *Dispatcher) Dispatch(ctx context.Context, token, method string, args []codec.Value) (any, error) {
	d.mu.RLock()
	methods, ok := d.adapters[token]
	d.mu.RUnlock()
	if !ok {
		return nil, &DispatchError{
			ErrorCode: CodeAdapterNotFound,
			Message:   fmt.Sprintf("unknown adapter %q", token),
		}
	}

	fn, ok := methods[method]
	if !ok {
		return nil, &DispatchError{
			ErrorCode: CodeMethodNotFound,
			Message:   fmt.Sprintf("adapter %q has no method %q", token, method),
		}
	}

	return fn(ctx, args)
}

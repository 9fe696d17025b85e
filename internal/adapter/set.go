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

package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/pontoon-io/pontoon/internal/manifest"
)

// Set is the live adapter instance set produced by a successful load.
// It is built once, sequentially, and read-shared by every concurrent call
// afterwards; no further mutation occurs.
type Set struct {
	order     []string
	instances map[string]Instance
	manifests map[string]*manifest.Manifest
}

// NewSet creates an instance set preserving instantiation order.
func NewSet() *Set {
	return &Set{
		instances: make(map[string]Instance),
		manifests: make(map[string]*manifest.Manifest),
	}
}

// Add stores an instance under its runtime token, in instantiation order.
func (s *Set) Add(token string, m *manifest.Manifest, inst Instance) {
	if _, exists := s.instances[token]; !exists {
		s.order = append(s.order, token)
	}
	s.instances[token] = inst
	s.manifests[token] = m
}

// Get returns the instance for a runtime token.
func (s *Set) Get(token string) (Instance, bool) {
	inst, ok := s.instances[token]
	return inst, ok
}

// Manifest returns the manifest the token's instance was built from.
func (s *Set) Manifest(token string) (*manifest.Manifest, bool) {
	m, ok := s.manifests[token]
	return m, ok
}

// Tokens returns runtime tokens in instantiation order.
func (s *Set) Tokens() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of instances.
func (s *Set) Len() int {
	return len(s.instances)
}

// Close shuts down instances implementing Closer in reverse instantiation
// order, so no adapter outlives a dependency it was built on. All close
// errors are collected; closing continues past failures.
func (s *Set) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.order) - 1; i >= 0; i-- {
		token := s.order[i]
		closer, ok := s.instances[token].(Closer)
		if !ok {
			continue
		}
		if err := closer.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", token, err))
		}
	}
	return errors.Join(errs...)
}

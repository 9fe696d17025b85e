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
	"fmt"
	"sort"
	"sync"

	"github.com/pontoon-io/pontoon/internal/manifest"
)

// Factory constructs one adapter instance from its settings and the
// dependency bundle the loader assembled.
type Factory func(ctx context.Context, settings Settings, deps Deps) (Instance, error)

// Provider pairs a module's manifest with its factory.
type Provider struct {
	Manifest *manifest.Manifest
	New      Factory
}

// Registry maps module references (the `module` field of an adapter config
// entry, e.g. "builtin/cache.memory") to providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider for a module reference. Registering the same
// reference twice is a programming error and fails loudly.
func (r *Registry) Register(module string, p Provider) error {
	if p.Manifest == nil {
		return fmt.Errorf("adapter: module %q registered without manifest", module)
	}
	if p.New == nil {
		return fmt.Errorf("adapter: module %q registered without factory", module)
	}
	if err := p.Manifest.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[module]; exists {
		return fmt.Errorf("adapter: module %q already registered", module)
	}
	r.providers[module] = p
	return nil
}

// Lookup returns the provider for a module reference.
func (r *Registry) Lookup(module string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[module]
	if !ok {
		return Provider{}, fmt.Errorf("adapter: unknown module %q (registered: %v)", module, r.moduleNamesLocked())
	}
	return p, nil
}

// Modules returns all registered module references, sorted.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.moduleNamesLocked()
}

func (r *Registry) moduleNamesLocked() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

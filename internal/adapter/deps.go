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

import "fmt"

// Deps is the dependency bundle assembled for one adapter factory: every
// declared required dependency under its injection alias, plus any declared
// optional dependency that happens to be configured. The bundle is built
// once by the loader and read-only afterwards.
type Deps struct {
	instances map[string]Instance
}

// DepsBuilder assembles a Deps bundle.
type DepsBuilder struct {
	instances map[string]Instance
}

// NewDepsBuilder creates an empty bundle builder.
func NewDepsBuilder() *DepsBuilder {
	return &DepsBuilder{instances: make(map[string]Instance)}
}

// Add binds an instance under an injection alias.
func (b *DepsBuilder) Add(alias string, inst Instance) *DepsBuilder {
	b.instances[alias] = inst
	return b
}

// Build returns the immutable bundle.
func (b *DepsBuilder) Build() Deps {
	return Deps{instances: b.instances}
}

// Get returns the instance bound under alias.
func (d Deps) Get(alias string) (Instance, bool) {
	inst, ok := d.instances[alias]
	return inst, ok
}

// Len returns the number of bound dependencies.
func (d Deps) Len() int {
	return len(d.instances)
}

// Cache returns the dependency under alias as a Cache.
func (d Deps) Cache(alias string) (Cache, error) {
	inst, ok := d.instances[alias]
	if !ok {
		return nil, fmt.Errorf("adapter: no dependency bound as %q", alias)
	}
	c, ok := inst.(Cache)
	if !ok {
		return nil, fmt.Errorf("adapter: dependency %q does not implement Cache", alias)
	}
	return c, nil
}

// DocStore returns the dependency under alias as a DocStore.
func (d Deps) DocStore(alias string) (DocStore, error) {
	inst, ok := d.instances[alias]
	if !ok {
		return nil, fmt.Errorf("adapter: no dependency bound as %q", alias)
	}
	s, ok := inst.(DocStore)
	if !ok {
		return nil, fmt.Errorf("adapter: dependency %q does not implement DocStore", alias)
	}
	return s, nil
}

// LogSink returns the dependency under alias as a LogSink.
func (d Deps) LogSink(alias string) (LogSink, error) {
	inst, ok := d.instances[alias]
	if !ok {
		return nil, fmt.Errorf("adapter: no dependency bound as %q", alias)
	}
	s, ok := inst.(LogSink)
	if !ok {
		return nil, fmt.Errorf("adapter: dependency %q does not implement LogSink", alias)
	}
	return s, nil
}

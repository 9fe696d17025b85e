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

package loader

import (
	"fmt"
	"strings"
)

// MissingDependencyError is a fatal configuration error: an adapter declares
// a required dependency token that is not present in the configuration set.
// It carries enough context to fix the configuration without reading source.
type MissingDependencyError struct {
	// Dependent is the runtime token of the adapter declaring the dependency.
	Dependent string

	// Missing is the dependency token that is not configured.
	Missing string

	// Configured lists every configured runtime token, sorted.
	Configured []string

	// ManifestIDMatch is set when Missing equals the manifest id of a
	// configured adapter; referencing manifest ids instead of runtime
	// tokens is the most common authoring mistake.
	ManifestIDMatch string
}

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "adapter %q requires adapter %q which is not configured (configured adapters: %s)",
		e.Dependent, e.Missing, strings.Join(e.Configured, ", "))
	if e.ManifestIDMatch != "" {
		fmt.Fprintf(&b, "; %q is the manifest id of configured adapter %q: dependencies must reference runtime tokens, not manifest ids",
			e.Missing, e.ManifestIDMatch)
	}
	return b.String()
}

// CycleError is a fatal configuration error: the dependency graph contains
// one or more cycles. Tokens names exactly the unemittable token subset.
type CycleError struct {
	Tokens []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("Circular dependency between adapters: %s", strings.Join(e.Tokens, ", "))
}

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

// Package manifest defines the static metadata that describes an adapter
// implementation: its identity, the interface it implements, its declared
// dependencies, and an optional extension descriptor. Manifests are immutable
// once loaded; the loader consumes them read-only.
package manifest

import (
	"fmt"
	"strings"
)

// ManifestVersion is the manifest schema version this build understands.
const ManifestVersion = 1

// Type classifies an adapter implementation.
type Type string

const (
	// TypeCore is a directly-invoked adapter providing a platform capability.
	TypeCore Type = "core"

	// TypeExtension is a cross-cutting adapter that registers a callback on
	// another adapter's hook rather than being called directly.
	TypeExtension Type = "extension"

	// TypeProxy is a stand-in adapter whose calls are forwarded elsewhere.
	TypeProxy Type = "proxy"
)

// Capability flags understood by the host.
const (
	// CapabilityRPC marks an adapter whose methods are exposed over the
	// host's RPC socket to sandboxed plugin code.
	CapabilityRPC = "rpc"
)

// Dependency is one declared adapter dependency. Token references the
// runtime token of another configured adapter (never a manifest id).
// Alias is the key the dependency is injected under; it defaults to Token.
type Dependency struct {
	Token string `yaml:"token" json:"token"`
	Alias string `yaml:"as,omitempty" json:"as,omitempty"`
}

// UnmarshalYAML accepts either the shorthand string forms "db" and
// "db as database", or the explicit mapping {token: db, as: database}.
func (d *Dependency) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		return d.parse(s)
	}

	var full struct {
		Token string `yaml:"token"`
		Alias string `yaml:"as"`
	}
	if err := unmarshal(&full); err != nil {
		return err
	}
	d.Token = full.Token
	d.Alias = full.Alias
	return nil
}

func (d *Dependency) parse(s string) error {
	parts := strings.Split(s, " as ")
	switch len(parts) {
	case 1:
		d.Token = strings.TrimSpace(parts[0])
	case 2:
		d.Token = strings.TrimSpace(parts[0])
		d.Alias = strings.TrimSpace(parts[1])
	default:
		return fmt.Errorf("manifest: invalid dependency reference %q", s)
	}
	if d.Token == "" {
		return fmt.Errorf("manifest: empty dependency token in %q", s)
	}
	return nil
}

// InjectionAlias returns the alias the dependency instance is bound under
// in the dependent's bundle.
func (d Dependency) InjectionAlias() string {
	if d.Alias != "" {
		return d.Alias
	}
	return d.Token
}

// Requires lists hard dependencies. Every token must be present in the
// adapter configuration or the load fails.
type Requires struct {
	Adapters []Dependency `yaml:"adapters,omitempty" json:"adapters,omitempty"`

	// Platform is the minimum host platform version, informational only.
	Platform string `yaml:"platform,omitempty" json:"platform,omitempty"`
}

// Optional lists soft dependencies. Configured tokens are injected and
// ordered like hard dependencies; unconfigured ones are silently skipped.
type Optional struct {
	Adapters []Dependency `yaml:"adapters,omitempty" json:"adapters,omitempty"`
}

// Extends marks an adapter as a cross-cutting extension of another adapter.
type Extends struct {
	// Adapter is the runtime token of the target adapter.
	Adapter string `yaml:"adapter" json:"adapter"`

	// Hook is the named registration point on the target.
	Hook string `yaml:"hook" json:"hook"`

	// Method is the extension's own method bound and registered on the hook.
	Method string `yaml:"method" json:"method"`

	// Priority orders extensions on the same hook; higher fires first.
	Priority int `yaml:"priority" json:"priority"`
}

// Manifest is the static identity and dependency declaration for one
// adapter implementation.
type Manifest struct {
	ManifestVersion int      `yaml:"manifestVersion" json:"manifestVersion"`
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name,omitempty" json:"name,omitempty"`
	Version         string   `yaml:"version,omitempty" json:"version,omitempty"`
	Type            Type     `yaml:"type" json:"type"`
	Implements      string   `yaml:"implements,omitempty" json:"implements,omitempty"`
	Requires        Requires `yaml:"requires,omitempty" json:"requires,omitempty"`
	Optional        Optional `yaml:"optional,omitempty" json:"optional,omitempty"`
	Extends         *Extends `yaml:"extends,omitempty" json:"extends,omitempty"`
	Capabilities    []string `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`
}

// HasCapability reports whether the manifest declares the given capability flag.
func (m *Manifest) HasCapability(cap string) bool {
	for _, c := range m.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// IsExtension reports whether the manifest declares an extension descriptor.
func (m *Manifest) IsExtension() bool {
	return m.Extends != nil
}

// Validate checks that the manifest is well-formed.
func (m *Manifest) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("manifest: missing id")
	}
	if m.ManifestVersion != 0 && m.ManifestVersion != ManifestVersion {
		return fmt.Errorf("manifest %q: unsupported manifestVersion %d", m.ID, m.ManifestVersion)
	}

	switch m.Type {
	case TypeCore, TypeExtension, TypeProxy:
	case "":
		return fmt.Errorf("manifest %q: missing type", m.ID)
	default:
		return fmt.Errorf("manifest %q: unknown type %q", m.ID, m.Type)
	}

	if m.Type == TypeExtension && m.Extends == nil {
		return fmt.Errorf("manifest %q: type extension requires an extends descriptor", m.ID)
	}

	if m.Extends != nil {
		if m.Extends.Adapter == "" || m.Extends.Hook == "" || m.Extends.Method == "" {
			return fmt.Errorf("manifest %q: extends requires adapter, hook and method", m.ID)
		}
	}

	seen := make(map[string]struct{})
	for _, dep := range m.Requires.Adapters {
		if dep.Token == "" {
			return fmt.Errorf("manifest %q: required dependency with empty token", m.ID)
		}
		if _, dup := seen[dep.Token]; dup {
			return fmt.Errorf("manifest %q: duplicate dependency token %q", m.ID, dep.Token)
		}
		seen[dep.Token] = struct{}{}
	}
	for _, dep := range m.Optional.Adapters {
		if dep.Token == "" {
			return fmt.Errorf("manifest %q: optional dependency with empty token", m.ID)
		}
		if _, dup := seen[dep.Token]; dup {
			return fmt.Errorf("manifest %q: dependency token %q declared both required and optional", m.ID, dep.Token)
		}
		seen[dep.Token] = struct{}{}
	}

	return nil
}

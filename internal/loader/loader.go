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

// Package loader resolves an adapter configuration set into a live instance
// set: it builds the must-load-before dependency graph, topologically sorts
// it, instantiates adapters strictly in that order, and wires extension
// adapters onto their targets' hooks.
//
// Failure semantics: a missing required dependency or a dependency cycle
// aborts the entire load and no partial instance set is returned. Extension
// wiring failures are non-fatal; the affected cross-cutting behavior is
// skipped with a warning.
package loader

import (
	"context"
	"log/slog"
	"sort"

	"github.com/pontoon-io/pontoon/internal/adapter"
	"github.com/pontoon-io/pontoon/pkg/errors"
)

// Loader instantiates adapter configurations against a provider registry.
type Loader struct {
	registry *adapter.Registry
	logger   *slog.Logger
}

// New creates a loader. The logger receives extension-wiring warnings; it
// must not be nil.
func New(registry *adapter.Registry, logger *slog.Logger) *Loader {
	return &Loader{registry: registry, logger: logger}
}

// Load resolves cfg into a live adapter instance set.
func (l *Loader) Load(ctx context.Context, cfg adapter.Config) (*adapter.Set, error) {
	g, err := l.buildGraph(cfg)
	if err != nil {
		return nil, err
	}

	order, err := g.topoSort()
	if err != nil {
		return nil, err
	}

	set, err := l.instantiate(ctx, g, order)
	if err != nil {
		return nil, err
	}

	l.connectExtensions(g, set)

	l.logger.Info("adapters loaded", "count", set.Len(), "order", order)
	return set, nil
}

// buildGraph loads every configured module's manifest, adds a node per
// runtime token, and adds a dependency -> dependent edge per resolvable
// dependency. Required dependencies on unconfigured tokens fail the build;
// optional ones are silently skipped.
func (l *Loader) buildGraph(cfg adapter.Config) (*graph, error) {
	g := newGraph()

	tokens := make([]string, 0, len(cfg))
	for token := range cfg {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	for _, token := range tokens {
		entry := cfg[token]
		provider, err := l.registry.Lookup(entry.Module)
		if err != nil {
			return nil, errors.Wrapf(err, "loading adapter %q", token)
		}
		g.addNode(&node{
			token:    token,
			manifest: provider.Manifest,
			entry:    entry,
		})
	}

	for _, token := range tokens {
		n := g.nodes[token]

		for _, dep := range n.manifest.Requires.Adapters {
			if _, configured := g.nodes[dep.Token]; !configured {
				return nil, l.missingDependency(g, token, dep.Token, tokens)
			}
			n.required = append(n.required, dep)
			g.addEdge(dep.Token, token)
		}

		for _, dep := range n.manifest.Optional.Adapters {
			if _, configured := g.nodes[dep.Token]; !configured {
				continue
			}
			n.optional = append(n.optional, dep)
			g.addEdge(dep.Token, token)
		}
	}

	return g, nil
}

func (l *Loader) missingDependency(g *graph, dependent, missing string, configured []string) error {
	err := &MissingDependencyError{
		Dependent:  dependent,
		Missing:    missing,
		Configured: configured,
	}
	// The usual authoring mistake: referencing a manifest id where a
	// runtime token is expected.
	for _, n := range g.nodes {
		if n.manifest.ID == missing {
			err.ManifestIDMatch = n.token
			break
		}
	}
	return err
}

// instantiate walks the sorted order and calls each adapter's factory with
// its settings and a bundle of already-built dependency instances. The sort
// guarantees every dependency exists before its dependents' factories run.
func (l *Loader) instantiate(ctx context.Context, g *graph, order []string) (*adapter.Set, error) {
	set := adapter.NewSet()

	for _, token := range order {
		n := g.nodes[token]

		bundle := adapter.NewDepsBuilder()
		for _, dep := range n.required {
			inst, _ := set.Get(dep.Token)
			bundle.Add(dep.InjectionAlias(), inst)
		}
		for _, dep := range n.optional {
			inst, _ := set.Get(dep.Token)
			bundle.Add(dep.InjectionAlias(), inst)
		}

		inst, err := l.factoryFor(g, token)(ctx, n.entry.Settings, bundle.Build())
		if err != nil {
			return nil, errors.Wrapf(err, "instantiating adapter %q", token)
		}
		set.Add(token, n.manifest, inst)
	}

	return set, nil
}

func (l *Loader) factoryFor(g *graph, token string) adapter.Factory {
	provider, _ := l.registry.Lookup(g.nodes[token].entry.Module)
	return provider.New
}

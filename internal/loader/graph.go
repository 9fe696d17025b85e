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
	"sort"

	"github.com/pontoon-io/pontoon/internal/adapter"
	"github.com/pontoon-io/pontoon/internal/manifest"
)

// node is one configured adapter in the dependency graph. Nodes exist only
// for the duration of a load; instances, not nodes, survive it.
type node struct {
	token    string
	manifest *manifest.Manifest
	entry    adapter.Entry

	// required and optional hold the dependencies that will be injected:
	// all declared required deps, plus declared optional deps that are
	// actually configured.
	required []manifest.Dependency
	optional []manifest.Dependency

	// indegree counts unsatisfied must-load-before edges.
	indegree int
}

// graph is a flat token-keyed node table with adjacency lists of token
// strings: dependency token -> tokens that depend on it. Representing edges
// as strings rather than pointers keeps cycle reporting a matter of listing
// the unemitted key set.
type graph struct {
	nodes      map[string]*node
	dependents map[string][]string
}

func newGraph() *graph {
	return &graph{
		nodes:      make(map[string]*node),
		dependents: make(map[string][]string),
	}
}

func (g *graph) addNode(n *node) {
	g.nodes[n.token] = n
}

// addEdge records that dependency must be instantiated before dependent.
func (g *graph) addEdge(dependency, dependent string) {
	g.dependents[dependency] = append(g.dependents[dependency], dependent)
	g.nodes[dependent].indegree++
}

// topoSort runs Kahn's algorithm and returns tokens in a safe instantiation
// order. The ready queue is kept sorted so the order is deterministic for a
// given configuration. If a cycle prevents emitting every node, the error
// names exactly the cyclic token subset.
func (g *graph) topoSort() ([]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	var ready []string
	for token, n := range g.nodes {
		indegree[token] = n.indegree
		if n.indegree == 0 {
			ready = append(ready, token)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		token := ready[0]
		ready = ready[1:]
		order = append(order, token)

		var unblocked []string
		for _, dependent := range g.dependents[token] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				unblocked = append(unblocked, dependent)
			}
		}
		if len(unblocked) > 0 {
			ready = append(ready, unblocked...)
			sort.Strings(ready)
		}
	}

	if len(order) < len(g.nodes) {
		var cyclic []string
		emitted := make(map[string]struct{}, len(order))
		for _, token := range order {
			emitted[token] = struct{}{}
		}
		for token := range g.nodes {
			if _, ok := emitted[token]; !ok {
				cyclic = append(cyclic, token)
			}
		}
		sort.Strings(cyclic)
		return nil, &CycleError{Tokens: cyclic}
	}

	return order, nil
}

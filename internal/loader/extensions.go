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
)

// connectExtensions wires every loaded extension adapter onto its target's
// hook. Registration order is priority descending, then token ascending,
// and is fixed for the process lifetime; hookable targets must invoke hooks
// in registration order.
//
// Extension wiring is best-effort: a missing target, hook, or method logs a
// warning and skips that one cross-cutting behavior. It never fails a load.
func (l *Loader) connectExtensions(g *graph, set *adapter.Set) {
	var extensions []*node
	for _, n := range g.nodes {
		if n.manifest.Extends != nil {
			extensions = append(extensions, n)
		}
	}
	sort.Slice(extensions, func(i, j int) bool {
		pi, pj := extensions[i].manifest.Extends.Priority, extensions[j].manifest.Extends.Priority
		if pi != pj {
			return pi > pj
		}
		return extensions[i].token < extensions[j].token
	})

	for _, n := range extensions {
		ext := n.manifest.Extends
		logger := l.logger.With("extension", n.token, "target", ext.Adapter, "hook", ext.Hook)

		targetInst, ok := set.Get(ext.Adapter)
		if !ok {
			logger.Warn("extension target adapter not configured; skipping")
			continue
		}
		target, ok := targetInst.(adapter.Hookable)
		if !ok {
			logger.Warn("extension target does not expose hooks; skipping")
			continue
		}

		extInst, _ := set.Get(n.token)
		source, ok := extInst.(adapter.Extension)
		if !ok {
			logger.Warn("extension adapter exposes no hook methods; skipping")
			continue
		}
		fn, ok := source.HookMethod(ext.Method)
		if !ok {
			logger.Warn("extension method not found; skipping", "extension_method", ext.Method)
			continue
		}

		if err := target.RegisterHook(ext.Hook, fn); err != nil {
			logger.Warn("registering extension hook failed; skipping", "error", err)
			continue
		}
		logger.Debug("extension connected", "priority", ext.Priority)
	}
}

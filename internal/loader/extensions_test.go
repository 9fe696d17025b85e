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
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontoon-io/pontoon/internal/adapter"
	"github.com/pontoon-io/pontoon/internal/manifest"
)

// hookTarget is a minimal hookable adapter: it keeps registered hooks in
// registration order and fires them sequentially.
type hookTarget struct {
	hooks map[string][]adapter.HookFunc
}

func newHookTarget() *hookTarget {
	return &hookTarget{hooks: make(map[string][]adapter.HookFunc)}
}

func (h *hookTarget) RegisterHook(hook string, fn adapter.HookFunc) error {
	if hook != "onEvent" {
		return fmt.Errorf("unknown hook %q", hook)
	}
	h.hooks[hook] = append(h.hooks[hook], fn)
	return nil
}

func (h *hookTarget) fire(ctx context.Context, event map[string]any) error {
	for _, fn := range h.hooks["onEvent"] {
		out, err := fn(ctx, event)
		if err != nil {
			return err
		}
		if out != nil {
			event = out
		}
	}
	return nil
}

// namedExtension appends its name to a shared slice when fired.
type namedExtension struct {
	name  string
	fired *[]string
}

func (e *namedExtension) HookMethod(name string) (adapter.HookFunc, bool) {
	if name != "record" {
		return nil, false
	}
	return func(ctx context.Context, event map[string]any) (map[string]any, error) {
		*e.fired = append(*e.fired, e.name)
		return nil, nil
	}, true
}

func extensionManifest(id, target string, priority int) *manifest.Manifest {
	return &manifest.Manifest{
		ID:   id,
		Type: manifest.TypeExtension,
		Extends: &manifest.Extends{
			Adapter:  target,
			Hook:     "onEvent",
			Method:   "record",
			Priority: priority,
		},
	}
}

func registerStatic(t *testing.T, r *adapter.Registry, module string, m *manifest.Manifest, inst adapter.Instance) {
	t.Helper()
	require.NoError(t, r.Register(module, adapter.Provider{
		Manifest: m,
		New: func(ctx context.Context, settings adapter.Settings, deps adapter.Deps) (adapter.Instance, error) {
			return inst, nil
		},
	}))
}

func TestExtensionsFireInPriorityOrder(t *testing.T) {
	env := newTestEnv(t)
	target := newHookTarget()
	var fired []string

	registerStatic(t, env.registry, "mod/analytics", coreManifest("analytics"), target)
	registerStatic(t, env.registry, "mod/low", extensionManifest("low", "analytics", 10), &namedExtension{"low", &fired})
	registerStatic(t, env.registry, "mod/high", extensionManifest("high", "analytics", 100), &namedExtension{"high", &fired})
	registerStatic(t, env.registry, "mod/mid", extensionManifest("mid", "analytics", 50), &namedExtension{"mid", &fired})

	_, err := env.loader.Load(context.Background(), adapter.Config{
		"analytics": {Module: "mod/analytics"},
		"low":       {Module: "mod/low"},
		"high":      {Module: "mod/high"},
		"mid":       {Module: "mod/mid"},
	})
	require.NoError(t, err)

	require.NoError(t, target.fire(context.Background(), map[string]any{"event": "signup"}))
	assert.Equal(t, []string{"high", "mid", "low"}, fired)
}

func TestExtensionsTieBreakByTokenName(t *testing.T) {
	env := newTestEnv(t)
	target := newHookTarget()
	var fired []string

	registerStatic(t, env.registry, "mod/analytics", coreManifest("analytics"), target)
	registerStatic(t, env.registry, "mod/zeta", extensionManifest("zeta", "analytics", 50), &namedExtension{"zeta", &fired})
	registerStatic(t, env.registry, "mod/alpha", extensionManifest("alpha", "analytics", 50), &namedExtension{"alpha", &fired})

	_, err := env.loader.Load(context.Background(), adapter.Config{
		"analytics": {Module: "mod/analytics"},
		"zeta":      {Module: "mod/zeta"},
		"alpha":     {Module: "mod/alpha"},
	})
	require.NoError(t, err)

	require.NoError(t, target.fire(context.Background(), map[string]any{}))
	assert.Equal(t, []string{"alpha", "zeta"}, fired)
}

func TestExtensionWiringFailuresAreNonFatal(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, env *testEnv)
		wantLog string
	}{
		{
			name: "missing target adapter",
			setup: func(t *testing.T, env *testEnv) {
				var fired []string
				registerStatic(t, env.registry, "mod/ext", extensionManifest("ext", "nonexistent", 10), &namedExtension{"ext", &fired})
			},
			wantLog: "target adapter not configured",
		},
		{
			name: "target without hooks",
			setup: func(t *testing.T, env *testEnv) {
				var fired []string
				registerStatic(t, env.registry, "mod/plain", coreManifest("plain"), "no hooks here")
				registerStatic(t, env.registry, "mod/ext", extensionManifest("ext", "plain", 10), &namedExtension{"ext", &fired})
			},
			wantLog: "does not expose hooks",
		},
		{
			name: "extension without hook methods",
			setup: func(t *testing.T, env *testEnv) {
				registerStatic(t, env.registry, "mod/analytics", coreManifest("analytics"), newHookTarget())
				registerStatic(t, env.registry, "mod/ext", extensionManifest("ext", "analytics", 10), "not an extension")
			},
			wantLog: "exposes no hook methods",
		},
		{
			name: "unknown extension method",
			setup: func(t *testing.T, env *testEnv) {
				var fired []string
				registerStatic(t, env.registry, "mod/analytics", coreManifest("analytics"), newHookTarget())
				m := extensionManifest("ext", "analytics", 10)
				m.Extends.Method = "unknownMethod"
				registerStatic(t, env.registry, "mod/ext", m, &namedExtension{"ext", &fired})
			},
			wantLog: "extension method not found",
		},
		{
			name: "unknown hook on target",
			setup: func(t *testing.T, env *testEnv) {
				var fired []string
				registerStatic(t, env.registry, "mod/analytics", coreManifest("analytics"), newHookTarget())
				m := extensionManifest("ext", "analytics", 10)
				m.Extends.Hook = "onNothing"
				registerStatic(t, env.registry, "mod/ext", m, &namedExtension{"ext", &fired})
			},
			wantLog: "registering extension hook failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.setup(t, env)

			cfg := adapter.Config{"ext": {Module: "mod/ext"}}
			if _, err := env.registry.Lookup("mod/analytics"); err == nil {
				cfg["analytics"] = adapter.Entry{Module: "mod/analytics"}
			}
			if _, err := env.registry.Lookup("mod/plain"); err == nil {
				cfg["plain"] = adapter.Entry{Module: "mod/plain"}
			}

			set, err := env.loader.Load(context.Background(), cfg)
			require.NoError(t, err, "extension wiring failures must not abort the load")
			assert.NotNil(t, set)
			assert.Contains(t, env.logBuf.String(), tt.wantLog)
		})
	}
}

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

package builtin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pontoon-io/pontoon/internal/adapter"
	logpkg "github.com/pontoon-io/pontoon/internal/log"
	"github.com/pontoon-io/pontoon/internal/manifest"
)

// HookOnEvent fires once per tracked event. Extensions registered on it
// receive the event payload and may enrich it; the enriched payload flows
// to the next extension in priority order.
const HookOnEvent = "onEvent"

func analyticsProvider() adapter.Provider {
	return adapter.Provider{
		Manifest: &manifest.Manifest{
			ManifestVersion: manifest.ManifestVersion,
			ID:              "pontoon.analytics.events",
			Name:            "Event Analytics",
			Version:         "1.0.0",
			Type:            manifest.TypeCore,
			Implements:      "analytics",
			Optional: manifest.Optional{
				Adapters: []manifest.Dependency{{Token: "docstore"}},
			},
			Capabilities: []string{manifest.CapabilityRPC},
		},
		New: func(ctx context.Context, settings adapter.Settings, deps adapter.Deps) (adapter.Instance, error) {
			a := NewEventAnalytics(slog.Default())
			if store, err := deps.DocStore("docstore"); err == nil {
				a.store = store
				a.collection = settings.String("collection", "events")
			}
			return a, nil
		},
	}
}

// EventAnalytics counts tracked events in memory and fires the onEvent
// hook for every Track call. With a docstore dependency configured each
// event is also persisted.
type EventAnalytics struct {
	logger     *slog.Logger
	store      adapter.DocStore
	collection string

	mu     sync.Mutex
	counts map[string]int64
	hooks  map[string][]adapter.HookFunc
	seq    int64
}

var (
	_ adapter.Analytics = (*EventAnalytics)(nil)
	_ adapter.Hookable  = (*EventAnalytics)(nil)
)

// NewEventAnalytics creates an empty analytics adapter.
func NewEventAnalytics(logger *slog.Logger) *EventAnalytics {
	return &EventAnalytics{
		logger: logpkg.WithComponent(logger, "analytics"),
		counts: make(map[string]int64),
		hooks:  make(map[string][]adapter.HookFunc),
	}
}

// RegisterHook implements adapter.Hookable. The loader calls it once per
// wired extension, already ordered by priority.
func (a *EventAnalytics) RegisterHook(hook string, fn adapter.HookFunc) error {
	if hook != HookOnEvent {
		return fmt.Errorf("analytics: unknown hook %q", hook)
	}
	a.mu.Lock()
	a.hooks[hook] = append(a.hooks[hook], fn)
	a.mu.Unlock()
	return nil
}

// Track implements adapter.Analytics.
func (a *EventAnalytics) Track(ctx context.Context, event string, props map[string]any) error {
	a.mu.Lock()
	a.counts[event]++
	a.seq++
	seq := a.seq
	hooks := a.hooks[HookOnEvent]
	a.mu.Unlock()

	payload := map[string]any{
		"event":     event,
		"props":     props,
		"trackedAt": time.Now().UTC().Format(time.RFC3339Nano),
		"sequence":  int(seq),
	}

	// A hook or sink failure never escalates into the Track call it is
	// observing.
	for _, fn := range hooks {
		enriched, err := fn(ctx, payload)
		if err != nil {
			a.logger.Warn("event hook failed", "event", event, logpkg.Error(err))
			continue
		}
		if enriched != nil {
			payload = enriched
		}
	}

	if a.store != nil {
		id := fmt.Sprintf("%s-%d", event, seq)
		if err := a.store.Put(ctx, a.collection, id, payload); err != nil {
			a.logger.Warn("persisting event failed", "event", event, logpkg.Error(err))
		}
	}
	return nil
}

// Count implements adapter.Analytics.
func (a *EventAnalytics) Count(_ context.Context, event string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts[event], nil
}

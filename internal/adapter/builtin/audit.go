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

	"github.com/pontoon-io/pontoon/internal/adapter"
	"github.com/pontoon-io/pontoon/internal/manifest"
)

func auditLogProvider() adapter.Provider {
	return adapter.Provider{
		Manifest: &manifest.Manifest{
			ManifestVersion: manifest.ManifestVersion,
			ID:              "pontoon.audit.log",
			Name:            "Audit Trail",
			Version:         "1.0.0",
			Type:            manifest.TypeExtension,
			Requires: manifest.Requires{
				Adapters: []manifest.Dependency{{Token: "logs", Alias: "sink"}},
			},
			// Low priority: the audit record captures the event after
			// every enriching extension has run.
			Extends: &manifest.Extends{
				Adapter:  "analytics",
				Hook:     HookOnEvent,
				Method:   "record",
				Priority: 10,
			},
		},
		New: func(ctx context.Context, settings adapter.Settings, deps adapter.Deps) (adapter.Instance, error) {
			sink, err := deps.LogSink("sink")
			if err != nil {
				return nil, err
			}
			return &AuditLog{sink: sink, level: settings.String("level", "info")}, nil
		},
	}
}

// AuditLog is an extension that writes every tracked event to a log sink.
type AuditLog struct {
	sink  adapter.LogSink
	level string
}

var _ adapter.Extension = (*AuditLog)(nil)

// HookMethod implements adapter.Extension.
func (a *AuditLog) HookMethod(name string) (adapter.HookFunc, bool) {
	if name != "record" {
		return nil, false
	}
	return a.record, true
}

func (a *AuditLog) record(ctx context.Context, event map[string]any) (map[string]any, error) {
	message := "event tracked"
	if name, ok := event["event"].(string); ok {
		message = fmt.Sprintf("event tracked: %s", name)
	}
	if err := a.sink.Write(ctx, a.level, message, event); err != nil {
		return nil, err
	}
	return nil, nil
}

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

// Package builtin ships the adapters bundled with the platform. Each module
// registers under a "builtin/" reference so host configuration can select
// it without a discovery step.
package builtin

import (
	"github.com/pontoon-io/pontoon/internal/adapter"
)

// RegisterAll installs every bundled adapter into the registry.
func RegisterAll(r *adapter.Registry) error {
	providers := map[string]adapter.Provider{
		"builtin/cache.memory":     memoryCacheProvider(),
		"builtin/cache.redis":      redisCacheProvider(),
		"builtin/docstore.sqlite":  sqliteDocStoreProvider(),
		"builtin/analytics.events": analyticsProvider(),
		"builtin/log.sink":         logSinkProvider(),
		"builtin/transform.jq":     jqTransformProvider(),
		"builtin/audit.log":        auditLogProvider(),
	}
	for module, p := range providers {
		if err := r.Register(module, p); err != nil {
			return err
		}
	}
	return nil
}

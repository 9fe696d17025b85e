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

	"github.com/itchyny/gojq"

	"github.com/pontoon-io/pontoon/internal/adapter"
	"github.com/pontoon-io/pontoon/internal/manifest"
	"github.com/pontoon-io/pontoon/pkg/errors"
)

func jqTransformProvider() adapter.Provider {
	return adapter.Provider{
		Manifest: &manifest.Manifest{
			ManifestVersion: manifest.ManifestVersion,
			ID:              "pontoon.transform.jq",
			Name:            "JQ Event Transform",
			Version:         "1.0.0",
			Type:            manifest.TypeExtension,
			Extends: &manifest.Extends{
				Adapter:  "analytics",
				Hook:     HookOnEvent,
				Method:   "apply",
				Priority: 50,
			},
		},
		New: func(ctx context.Context, settings adapter.Settings, _ adapter.Deps) (adapter.Instance, error) {
			expression := settings.String("expression", ".")
			query, err := gojq.Parse(expression)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing jq expression %q", expression)
			}
			code, err := gojq.Compile(query)
			if err != nil {
				return nil, errors.Wrapf(err, "compiling jq expression %q", expression)
			}
			return &JQTransform{code: code, expression: expression}, nil
		},
	}
}

// JQTransform is an extension that rewrites event payloads through a jq
// expression before they reach later hooks and persistence.
type JQTransform struct {
	code       *gojq.Code
	expression string
}

var _ adapter.Extension = (*JQTransform)(nil)

// HookMethod implements adapter.Extension.
func (t *JQTransform) HookMethod(name string) (adapter.HookFunc, bool) {
	if name != "apply" {
		return nil, false
	}
	return t.apply, true
}

func (t *JQTransform) apply(ctx context.Context, event map[string]any) (map[string]any, error) {
	iter := t.code.RunWithContext(ctx, event)
	v, ok := iter.Next()
	if !ok {
		return nil, fmt.Errorf("jq expression %q produced no output", t.expression)
	}
	if err, isErr := v.(error); isErr {
		return nil, errors.Wrapf(err, "jq expression %q", t.expression)
	}
	out, isMap := v.(map[string]any)
	if !isMap {
		return nil, fmt.Errorf("jq expression %q produced %T, want object", t.expression, v)
	}
	return out, nil
}

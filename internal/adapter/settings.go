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

package adapter

import "time"

// Settings is the free-form settings blob configured for one adapter entry.
type Settings map[string]any

// String returns the string value for key, or def when absent or mistyped.
func (s Settings) String(key, def string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return def
}

// Int returns the integer value for key, or def when absent or mistyped.
// YAML and JSON decoders disagree on numeric types, so both int and float64
// are accepted.
func (s Settings) Int(key string, def int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// Bool returns the boolean value for key, or def when absent or mistyped.
func (s Settings) Bool(key string, def bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return def
}

// Duration returns the duration for key, parsed from a Go duration string,
// or def when absent or unparseable.
func (s Settings) Duration(key string, def time.Duration) time.Duration {
	raw, ok := s[key].(string)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

// Entry is one adapter configuration entry: a module reference plus the
// settings blob handed to its factory.
type Entry struct {
	Module   string
	Settings Settings
}

// Config maps runtime tokens (operator-chosen configuration keys,
// independent of manifest ids) to adapter entries. This mapping is the sole
// input to the loader.
type Config map[string]Entry

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

package transport

import "time"

// TimeoutClass groups methods by how long a round trip is allowed to take.
type TimeoutClass int

const (
	// ClassDefault covers ordinary adapter calls.
	ClassDefault TimeoutClass = iota

	// ClassMeta covers cheap metadata reads (ping, version, existence
	// checks) that should fail fast.
	ClassMeta

	// ClassBulk covers operations that move document-sized payloads.
	ClassBulk
)

// Timeouts holds the per-class call budgets.
type Timeouts struct {
	Meta    time.Duration
	Default time.Duration
	Bulk    time.Duration

	// Classes maps a method name to its class. Methods absent from the
	// table get ClassDefault.
	Classes map[string]TimeoutClass
}

// DefaultTimeouts returns the standard budget table.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Meta:    5 * time.Second,
		Default: 10 * time.Second,
		Bulk:    30 * time.Second,
		Classes: map[string]TimeoutClass{
			"ping":         ClassMeta,
			"version":      ClassMeta,
			"listAdapters": ClassMeta,
			"has":          ClassMeta,
			"count":        ClassMeta,
			"put":          ClassBulk,
			"query":        ClassBulk,
		},
	}
}

// For returns the budget for the given method name.
func (t Timeouts) For(method string) time.Duration {
	switch t.Classes[method] {
	case ClassMeta:
		return t.Meta
	case ClassBulk:
		return t.Bulk
	default:
		return t.Default
	}
}

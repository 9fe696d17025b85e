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

// Package adapter defines the runtime contract between the host and its
// pluggable adapters: the capability interfaces adapters implement, the
// settings and dependency bundles their factories receive, and the factory
// registry the loader instantiates from.
package adapter

import (
	"context"
	"time"
)

// Instance is a live adapter held by the host for the process lifetime.
// Instances are shared across concurrent calls; any adapter with mutable
// internal state is responsible for its own concurrency safety.
type Instance any

// Closer is implemented by adapters that hold external resources. The host
// closes instances in reverse instantiation order on shutdown.
type Closer interface {
	Close(ctx context.Context) error
}

// HookFunc is a cross-cutting callback registered by an extension adapter on
// a target adapter's hook. The target passes the event payload through each
// registered hook in registration order; a hook may return a replacement
// payload, or nil to leave it unchanged.
type HookFunc func(ctx context.Context, event map[string]any) (map[string]any, error)

// Hookable is implemented by adapters that expose named hook points.
// Implementations must invoke hooks in registration order.
type Hookable interface {
	RegisterHook(hook string, fn HookFunc) error
}

// Extension is implemented by extension adapters. HookMethod returns the
// named extension method bound to the instance, or false if the adapter has
// no such method.
type Extension interface {
	HookMethod(name string) (HookFunc, bool)
}

// Cache is a key/value cache capability.
type Cache interface {
	Get(ctx context.Context, key string) (any, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
}

// DocStore is a document database capability. Documents are free-form JSON
// objects addressed by collection and id.
type DocStore interface {
	Put(ctx context.Context, collection, id string, doc map[string]any) error
	Get(ctx context.Context, collection, id string) (map[string]any, error)
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, filter map[string]any, limit int) ([]map[string]any, error)
}

// Analytics is an event tracking capability. Implementations expose the
// "onEvent" hook so extensions can observe or rewrite events before they
// are recorded.
type Analytics interface {
	Track(ctx context.Context, event string, props map[string]any) error
	Count(ctx context.Context, event string) (int64, error)
}

// LogSink is a structured log sink capability.
type LogSink interface {
	Write(ctx context.Context, level, message string, fields map[string]any) error
}

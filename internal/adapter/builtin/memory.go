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
	"sync"
	"time"

	"github.com/pontoon-io/pontoon/internal/adapter"
	"github.com/pontoon-io/pontoon/internal/manifest"
)

func memoryCacheProvider() adapter.Provider {
	return adapter.Provider{
		Manifest: &manifest.Manifest{
			ManifestVersion: manifest.ManifestVersion,
			ID:              "pontoon.cache.memory",
			Name:            "In-Memory Cache",
			Version:         "1.0.0",
			Type:            manifest.TypeCore,
			Implements:      "cache",
			Capabilities:    []string{manifest.CapabilityRPC},
		},
		New: func(ctx context.Context, settings adapter.Settings, _ adapter.Deps) (adapter.Instance, error) {
			return NewMemoryCache(settings.Duration("defaultTtl", 0)), nil
		},
	}
}

type memoryEntry struct {
	value     any
	expiresAt time.Time
}

// MemoryCache is a TTL cache held entirely in process memory. Expired
// entries are dropped lazily on access.
type MemoryCache struct {
	defaultTTL time.Duration

	mu      sync.Mutex
	entries map[string]memoryEntry
}

var (
	_ adapter.Cache  = (*MemoryCache)(nil)
	_ adapter.Closer = (*MemoryCache)(nil)
)

// NewMemoryCache creates an empty cache. A zero defaultTTL means entries
// without an explicit TTL never expire.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		defaultTTL: defaultTTL,
		entries:    make(map[string]memoryEntry),
	}
}

// Get implements adapter.Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (any, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set implements adapter.Cache.
func (c *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Delete implements adapter.Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Has implements adapter.Cache.
func (c *MemoryCache) Has(ctx context.Context, key string) (bool, error) {
	_, found, err := c.Get(ctx, key)
	return found, err
}

// Close implements adapter.Closer.
func (c *MemoryCache) Close(context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

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
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/pontoon-io/pontoon/internal/adapter"
	"github.com/pontoon-io/pontoon/internal/manifest"
	"github.com/pontoon-io/pontoon/pkg/errors"
)

func redisCacheProvider() adapter.Provider {
	return adapter.Provider{
		Manifest: &manifest.Manifest{
			ManifestVersion: manifest.ManifestVersion,
			ID:              "pontoon.cache.redis",
			Name:            "Redis Cache",
			Version:         "1.0.0",
			Type:            manifest.TypeCore,
			Implements:      "cache",
			Capabilities:    []string{manifest.CapabilityRPC},
		},
		New: func(ctx context.Context, settings adapter.Settings, _ adapter.Deps) (adapter.Instance, error) {
			client := redis.NewClient(&redis.Options{
				Addr:     settings.String("addr", "localhost:6379"),
				Password: settings.String("password", ""),
				DB:       settings.Int("db", 0),
			})
			if err := client.Ping(ctx).Err(); err != nil {
				client.Close()
				return nil, errors.Wrap(err, "connecting to redis")
			}
			return &RedisCache{
				client: client,
				prefix: settings.String("keyPrefix", "pontoon:"),
			}, nil
		},
	}
}

// RedisCache stores JSON-encoded values in redis, sharing one logical
// keyspace under a configurable prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
}

var (
	_ adapter.Cache  = (*RedisCache)(nil)
	_ adapter.Closer = (*RedisCache)(nil)
)

func (c *RedisCache) key(key string) string {
	return c.prefix + key
}

// Get implements adapter.Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (any, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "redis get %q", key)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false, errors.Wrapf(err, "decoding cached value %q", key)
	}
	return value, true, nil
}

// Set implements adapter.Cache.
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encoding value for %q", key)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %q", key)
	}
	return nil
}

// Delete implements adapter.Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return errors.Wrapf(err, "redis del %q", key)
	}
	return nil
}

// Has implements adapter.Cache.
func (c *RedisCache) Has(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, errors.Wrapf(err, "redis exists %q", key)
	}
	return n > 0, nil
}

// Close implements adapter.Closer.
func (c *RedisCache) Close(context.Context) error {
	return c.client.Close()
}

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

// Package proxy provides subprocess-side stubs that implement the adapter
// capability interfaces over the RPC transport. Plugin code holding a stub
// cannot tell it apart from the in-process adapter: results come back under
// the same types and errors keep their message and code.
package proxy

import (
	"context"
	"time"

	"github.com/pontoon-io/pontoon/internal/adapter"
	"github.com/pontoon-io/pontoon/internal/codec"
	"github.com/pontoon-io/pontoon/internal/transport"
	"github.com/pontoon-io/pontoon/pkg/errors"
)

// Transport is the one operation proxies need from the RPC layer.
type Transport interface {
	Send(ctx context.Context, adapter, method string, args []codec.Value) (codec.Value, error)
}

var _ Transport = (*transport.Transport)(nil)

// Cache is a remote adapter.Cache.
type Cache struct {
	token string
	tr    Transport
}

var _ adapter.Cache = (*Cache)(nil)

// NewCache creates a cache stub bound to the given adapter token.
func NewCache(tr Transport, token string) *Cache {
	return &Cache{token: token, tr: tr}
}

// Get implements adapter.Cache.
func (c *Cache) Get(ctx context.Context, key string) (any, bool, error) {
	result, err := call(ctx, c.tr, c.token, "get", key)
	if err != nil {
		return nil, false, err
	}
	var out struct {
		Value any  `json:"value"`
		Found bool `json:"found"`
	}
	if err := codec.DecodeInto(result, &out); err != nil {
		return nil, false, errors.Wrap(err, "decoding cache.get result")
	}
	return out.Value, out.Found, nil
}

// Set implements adapter.Cache.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	_, err := call(ctx, c.tr, c.token, "set", key, value, ttl.Milliseconds())
	return err
}

// Delete implements adapter.Cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	_, err := call(ctx, c.tr, c.token, "delete", key)
	return err
}

// Has implements adapter.Cache.
func (c *Cache) Has(ctx context.Context, key string) (bool, error) {
	result, err := call(ctx, c.tr, c.token, "has", key)
	if err != nil {
		return false, err
	}
	var has bool
	if err := codec.DecodeInto(result, &has); err != nil {
		return false, errors.Wrap(err, "decoding cache.has result")
	}
	return has, nil
}

// DocStore is a remote adapter.DocStore.
type DocStore struct {
	token string
	tr    Transport
}

var _ adapter.DocStore = (*DocStore)(nil)

// NewDocStore creates a document store stub bound to the given token.
func NewDocStore(tr Transport, token string) *DocStore {
	return &DocStore{token: token, tr: tr}
}

// Put implements adapter.DocStore.
func (s *DocStore) Put(ctx context.Context, collection, id string, doc map[string]any) error {
	_, err := call(ctx, s.tr, s.token, "put", collection, id, doc)
	return err
}

// Get implements adapter.DocStore.
func (s *DocStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	result, err := call(ctx, s.tr, s.token, "get", collection, id)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := codec.DecodeInto(result, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding docstore.get result")
	}
	return doc, nil
}

// Delete implements adapter.DocStore.
func (s *DocStore) Delete(ctx context.Context, collection, id string) error {
	_, err := call(ctx, s.tr, s.token, "delete", collection, id)
	return err
}

// Query implements adapter.DocStore.
func (s *DocStore) Query(ctx context.Context, collection string, filter map[string]any, limit int) ([]map[string]any, error) {
	result, err := call(ctx, s.tr, s.token, "query", collection, filter, limit)
	if err != nil {
		return nil, err
	}
	var docs []map[string]any
	if err := codec.DecodeInto(result, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding docstore.query result")
	}
	return docs, nil
}

// Analytics is a remote adapter.Analytics.
type Analytics struct {
	token string
	tr    Transport
}

var _ adapter.Analytics = (*Analytics)(nil)

// NewAnalytics creates an analytics stub bound to the given token.
func NewAnalytics(tr Transport, token string) *Analytics {
	return &Analytics{token: token, tr: tr}
}

// Track implements adapter.Analytics.
func (a *Analytics) Track(ctx context.Context, event string, props map[string]any) error {
	_, err := call(ctx, a.tr, a.token, "track", event, props)
	return err
}

// Count implements adapter.Analytics.
func (a *Analytics) Count(ctx context.Context, event string) (int64, error) {
	result, err := call(ctx, a.tr, a.token, "count", event)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := codec.DecodeInto(result, &n); err != nil {
		return 0, errors.Wrap(err, "decoding analytics.count result")
	}
	return n, nil
}

// LogSink is a remote adapter.LogSink.
type LogSink struct {
	token string
	tr    Transport
}

var _ adapter.LogSink = (*LogSink)(nil)

// NewLogSink creates a log sink stub bound to the given token.
func NewLogSink(tr Transport, token string) *LogSink {
	return &LogSink{token: token, tr: tr}
}

// Write implements adapter.LogSink.
func (s *LogSink) Write(ctx context.Context, level, message string, fields map[string]any) error {
	_, err := call(ctx, s.tr, s.token, "write", level, message, fields)
	return err
}

func call(ctx context.Context, tr Transport, token, method string, args ...any) (codec.Value, error) {
	encoded, err := codec.EncodeArgs(args...)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s.%s args", token, method)
	}
	return tr.Send(ctx, token, method, encoded)
}

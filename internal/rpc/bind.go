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

package rpc

import (
	"context"
	"time"

	"github.com/pontoon-io/pontoon/internal/adapter"
	"github.com/pontoon-io/pontoon/internal/codec"
)

// The Expose* binders build explicit method tables from typed capability
// interfaces. Proxy stubs on the subprocess side mirror these method names
// and result shapes exactly.

// ExposeCache binds a Cache capability.
func ExposeCache(c adapter.Cache) MethodSet {
	return MethodSet{
		"get": func(ctx context.Context, args []codec.Value) (any, error) {
			key, err := argString(args, 0, "key")
			if err != nil {
				return nil, err
			}
			value, found, err := c.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			return map[string]any{"value": value, "found": found}, nil
		},
		"set": func(ctx context.Context, args []codec.Value) (any, error) {
			key, err := argString(args, 0, "key")
			if err != nil {
				return nil, err
			}
			var value any
			if err := argInto(args, 1, "value", &value); err != nil {
				return nil, err
			}
			ttlMs, err := argInt(args, 2, "ttlMs")
			if err != nil {
				return nil, err
			}
			return nil, c.Set(ctx, key, value, time.Duration(ttlMs)*time.Millisecond)
		},
		"delete": func(ctx context.Context, args []codec.Value) (any, error) {
			key, err := argString(args, 0, "key")
			if err != nil {
				return nil, err
			}
			return nil, c.Delete(ctx, key)
		},
		"has": func(ctx context.Context, args []codec.Value) (any, error) {
			key, err := argString(args, 0, "key")
			if err != nil {
				return nil, err
			}
			return c.Has(ctx, key)
		},
	}
}

// ExposeDocStore binds a DocStore capability.
func ExposeDocStore(s adapter.DocStore) MethodSet {
	return MethodSet{
		"put": func(ctx context.Context, args []codec.Value) (any, error) {
			collection, err := argString(args, 0, "collection")
			if err != nil {
				return nil, err
			}
			id, err := argString(args, 1, "id")
			if err != nil {
				return nil, err
			}
			var doc map[string]any
			if err := argInto(args, 2, "doc", &doc); err != nil {
				return nil, err
			}
			return nil, s.Put(ctx, collection, id, doc)
		},
		"get": func(ctx context.Context, args []codec.Value) (any, error) {
			collection, err := argString(args, 0, "collection")
			if err != nil {
				return nil, err
			}
			id, err := argString(args, 1, "id")
			if err != nil {
				return nil, err
			}
			return s.Get(ctx, collection, id)
		},
		"delete": func(ctx context.Context, args []codec.Value) (any, error) {
			collection, err := argString(args, 0, "collection")
			if err != nil {
				return nil, err
			}
			id, err := argString(args, 1, "id")
			if err != nil {
				return nil, err
			}
			return nil, s.Delete(ctx, collection, id)
		},
		"query": func(ctx context.Context, args []codec.Value) (any, error) {
			collection, err := argString(args, 0, "collection")
			if err != nil {
				return nil, err
			}
			var filter map[string]any
			if err := argInto(args, 1, "filter", &filter); err != nil {
				return nil, err
			}
			limit, err := argInt(args, 2, "limit")
			if err != nil {
				return nil, err
			}
			return s.Query(ctx, collection, filter, int(limit))
		},
	}
}

// ExposeAnalytics binds an Analytics capability.
func ExposeAnalytics(a adapter.Analytics) MethodSet {
	return MethodSet{
		"track": func(ctx context.Context, args []codec.Value) (any, error) {
			event, err := argString(args, 0, "event")
			if err != nil {
				return nil, err
			}
			var props map[string]any
			if err := argInto(args, 1, "props", &props); err != nil {
				return nil, err
			}
			return nil, a.Track(ctx, event, props)
		},
		"count": func(ctx context.Context, args []codec.Value) (any, error) {
			event, err := argString(args, 0, "event")
			if err != nil {
				return nil, err
			}
			return a.Count(ctx, event)
		},
	}
}

// ExposeLogSink binds a LogSink capability.
func ExposeLogSink(s adapter.LogSink) MethodSet {
	return MethodSet{
		"write": func(ctx context.Context, args []codec.Value) (any, error) {
			level, err := argString(args, 0, "level")
			if err != nil {
				return nil, err
			}
			message, err := argString(args, 1, "message")
			if err != nil {
				return nil, err
			}
			var fields map[string]any
			if err := argInto(args, 2, "fields", &fields); err != nil {
				return nil, err
			}
			return nil, s.Write(ctx, level, message, fields)
		},
	}
}

func argString(args []codec.Value, i int, name string) (string, error) {
	var s string
	if err := argInto(args, i, name, &s); err != nil {
		return "", err
	}
	return s, nil
}

func argInt(args []codec.Value, i int, name string) (int64, error) {
	var f float64
	if err := argInto(args, i, name, &f); err != nil {
		return 0, err
	}
	return int64(f), nil
}

func argInto(args []codec.Value, i int, name string, dst any) error {
	if i >= len(args) {
		return &DispatchError{
			ErrorCode: CodeInvalidArgs,
			Message:   "missing argument " + name,
		}
	}
	if len(args[i]) == 0 || string(args[i]) == "null" {
		return nil
	}
	if err := codec.DecodeInto(args[i], dst); err != nil {
		return &DispatchError{
			ErrorCode: CodeInvalidArgs,
			Message:   "invalid argument " + name + ": " + err.Error(),
		}
	}
	return nil
}

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

package host

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontoon-io/pontoon/internal/adapter"
	"github.com/pontoon-io/pontoon/internal/codec"
	"github.com/pontoon-io/pontoon/internal/config"
	"github.com/pontoon-io/pontoon/internal/proxy"
	"github.com/pontoon-io/pontoon/internal/transport"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Parse([]byte(`
server:
  socket_path: ` + filepath.Join(dir, "pontoon.sock") + `
adapters:
  cache:
    module: builtin/cache.memory
  db:
    module: builtin/docstore.sqlite
    settings:
      path: ` + filepath.Join(dir, "pontoon.db") + `
  logs:
    module: builtin/log.sink
  analytics:
    module: builtin/analytics.events
  audit:
    module: builtin/audit.log
`))
	require.NoError(t, err)
	return cfg
}

func startContainer(t *testing.T) *Container {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := New(testConfig(t), logger, Options{Version: "0.3.0"})
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { c.Close(context.Background()) })
	return c
}

func TestContainerEndToEnd(t *testing.T) {
	c := startContainer(t)
	ctx := context.Background()

	tr, err := transport.DialHost(c.cfg.Server.SocketPath)
	require.NoError(t, err)
	defer tr.Close()

	// Capability proxies against the live socket.
	cache := proxy.NewCache(tr, "cache")
	require.NoError(t, cache.Set(ctx, "vessel", "seabird", time.Minute))
	value, found, err := cache.Get(ctx, "vessel")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "seabird", value)

	// A value past the bulk threshold travels through the spool directory
	// in both directions and still arrives intact.
	manifest := strings.Repeat("m", 100_000)
	require.NoError(t, cache.Set(ctx, "manifest", manifest, time.Minute))
	value, found, err = cache.Get(ctx, "manifest")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, manifest, value)

	docs := proxy.NewDocStore(tr, "db")
	require.NoError(t, docs.Put(ctx, "berths", "b-1", map[string]any{"kind": "berth"}))
	doc, err := docs.Get(ctx, "berths", "b-1")
	require.NoError(t, err)
	assert.Equal(t, "berth", doc["kind"])

	analytics := proxy.NewAnalytics(tr, "analytics")
	require.NoError(t, analytics.Track(ctx, "docked", map[string]any{"pier": float64(4)}))
	n, err := analytics.Count(ctx, "docked")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Control adapter.
	hostProxy := proxy.NewHost(tr)
	require.NoError(t, hostProxy.Ping(ctx))
	version, err := hostProxy.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.3.0", version)

	infos, err := hostProxy.ListAdapters(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 5)

	// Unknown token comes back as an error response with code, not a
	// broken connection.
	ghost := proxy.NewCache(tr, "ghost")
	_, _, err = ghost.Get(ctx, "anything")
	require.Error(t, err)
	var remote *codec.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "ERR_ADAPTER_NOT_FOUND", remote.Code())

	require.NoError(t, hostProxy.Ping(ctx))
}

func TestContainerGetAdapter(t *testing.T) {
	c := startContainer(t)

	inst, ok := c.GetAdapter("cache")
	require.True(t, ok)
	_, isCache := inst.(adapter.Cache)
	assert.True(t, isCache)

	_, ok = c.GetAdapter("nope")
	assert.False(t, ok)
}

func TestContainerCloseIdempotent(t *testing.T) {
	c := startContainer(t)
	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))

	_, err := os.Stat(c.cfg.Server.SocketPath)
	assert.True(t, os.IsNotExist(err))
}

func TestContainerStartFailsOnBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Parse([]byte(`
server:
  socket_path: ` + filepath.Join(dir, "pontoon.sock") + `
adapters:
  audit:
    module: builtin/audit.log
`))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := New(cfg, logger, Options{})
	require.NoError(t, err)

	// audit.log requires the "logs" token, which is not configured.
	err = c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logs")
}

func TestWatchConfig(t *testing.T) {
	c := startContainer(t)

	path := filepath.Join(t.TempDir(), "pontoon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("adapters: {}\n"), 0o600))
	require.NoError(t, c.WatchConfig(path))

	require.NoError(t, os.WriteFile(path, []byte("adapters: {}\n# edited\n"), 0o600))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, c.Close(context.Background()))
}

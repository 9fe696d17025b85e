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

package config

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  socket_path: /run/pontoon/pontoon.sock
  metrics_addr: 127.0.0.1:9464
log:
  level: debug
  format: json
adapters:
  cache:
    module: builtin/cache.memory
    settings:
      defaultTtl: 5m
  db:
    module: builtin/docstore.sqlite
    settings:
      path: /var/lib/pontoon/pontoon.db
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "/run/pontoon/pontoon.sock", cfg.Server.SocketPath)
	assert.Equal(t, filepath.Join("/run/pontoon", "bulk"), cfg.Server.BulkDir)
	assert.Equal(t, DefaultBulkThreshold, cfg.Server.BulkThreshold)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	require.Len(t, cfg.Adapters, 2)
	assert.Equal(t, "builtin/cache.memory", cfg.Adapters["cache"].Module)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("adapters: {}\n"))
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Server.SocketPath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestParseEnvExpansion(t *testing.T) {
	t.Setenv("PONTOON_TEST_DB_PATH", "/tmp/expanded.db")

	cfg, err := Parse([]byte(`
adapters:
  db:
    module: builtin/docstore.sqlite
    settings:
      path: ${PONTOON_TEST_DB_PATH}
`))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/expanded.db", cfg.Adapters["db"].Settings["path"])
}

func TestParseUnsetEnvExpandsEmpty(t *testing.T) {
	cfg, err := Parse([]byte(`
adapters:
  db:
    module: builtin/docstore.sqlite
    settings:
      path: "${PONTOON_TEST_DEFINITELY_UNSET}"
`))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Adapters["db"].Settings["path"])
}

func TestParseMissingModule(t *testing.T) {
	_, err := Parse([]byte(`
adapters:
  cache: {}
`))
	assert.Error(t, err)
}

func TestAdapterConfigWhen(t *testing.T) {
	t.Setenv("PONTOON_TEST_REDIS", "1")

	cfg, err := Parse([]byte(`
adapters:
  cache:
    module: builtin/cache.redis
    when: env.PONTOON_TEST_REDIS == "1"
  fallback:
    module: builtin/cache.memory
    when: env.PONTOON_TEST_REDIS != "1"
  always:
    module: builtin/log.sink
`))
	require.NoError(t, err)

	resolved, err := cfg.AdapterConfig()
	require.NoError(t, err)
	assert.Contains(t, resolved, "cache")
	assert.NotContains(t, resolved, "fallback")
	assert.Contains(t, resolved, "always")
}

func TestAdapterConfigWhenPlatform(t *testing.T) {
	cfg, err := Parse([]byte(`
adapters:
  native:
    module: builtin/cache.memory
    when: platform == "` + runtime.GOOS + `"
`))
	require.NoError(t, err)

	resolved, err := cfg.AdapterConfig()
	require.NoError(t, err)
	assert.Contains(t, resolved, "native")
}

func TestAdapterConfigWhenBadExpression(t *testing.T) {
	cfg, err := Parse([]byte(`
adapters:
  cache:
    module: builtin/cache.memory
    when: "1 +"
`))
	require.NoError(t, err)

	_, err = cfg.AdapterConfig()
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

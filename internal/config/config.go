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

// Package config loads the host platform configuration: where the RPC
// socket lives, how the daemon logs, and which adapter modules to run
// under which runtime tokens.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/pontoon-io/pontoon/internal/adapter"
	"github.com/pontoon-io/pontoon/internal/codec"
	"github.com/pontoon-io/pontoon/pkg/errors"
)

// DefaultBulkThreshold mirrors the codec default, in bytes.
const DefaultBulkThreshold = 64 * 1024

// Config is the complete pontoond configuration.
type Config struct {
	Server   ServerConfig            `yaml:"server"`
	Log      LogConfig               `yaml:"log"`
	Adapters map[string]AdapterEntry `yaml:"adapters"`

	// ManifestPaths are doublestar globs for discovering external adapter
	// manifests, consumed by `pontoon validate`.
	ManifestPaths []string `yaml:"manifest_paths,omitempty"`
}

// ServerConfig configures the RPC and metrics listeners.
type ServerConfig struct {
	// SocketPath is the unix socket the adapter RPC server binds.
	// Environment: PONTOON_SOCKET.
	SocketPath string `yaml:"socket_path,omitempty"`

	// BulkDir spools oversized payloads; defaults to a "bulk" directory
	// next to the socket.
	BulkDir string `yaml:"bulk_dir,omitempty"`

	// BulkThreshold is the inline-payload cutoff in bytes.
	BulkThreshold int `yaml:"bulk_threshold,omitempty"`

	// MetricsAddr exposes Prometheus metrics over HTTP when set,
	// e.g. "127.0.0.1:9464".
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// LogConfig configures daemon logging.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// AdapterEntry configures one adapter under its runtime token.
type AdapterEntry struct {
	// Module references a registered provider, e.g. "builtin/cache.memory".
	Module string `yaml:"module"`

	// When is an optional expr condition; the entry is skipped when it
	// evaluates false. The environment exposes `env` (string map) and
	// `platform` (GOOS).
	When string `yaml:"when,omitempty"`

	Settings map[string]any `yaml:"settings,omitempty"`
}

// DefaultSocketPath returns the platform default socket location.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "pontoon", "pontoon.sock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "pontoon", "pontoon.sock")
	}
	return filepath.Join(home, ".pontoon", "pontoon.sock")
}

// Load reads, env-expands and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	return Parse(data)
}

// Parse parses configuration bytes. ${VAR} references are replaced from
// the process environment before unmarshaling.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.SocketPath == "" {
		if env := os.Getenv("PONTOON_SOCKET"); env != "" {
			c.Server.SocketPath = env
		} else {
			c.Server.SocketPath = DefaultSocketPath()
		}
	}
	if c.Server.BulkDir == "" {
		c.Server.BulkDir = codec.DefaultBulkDir(c.Server.SocketPath)
	}
	if c.Server.BulkThreshold <= 0 {
		c.Server.BulkThreshold = DefaultBulkThreshold
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the parsed configuration for authoring mistakes.
func (c *Config) Validate() error {
	for token, entry := range c.Adapters {
		if token == "" {
			return fmt.Errorf("config: adapter entry with empty token")
		}
		if entry.Module == "" {
			return fmt.Errorf("config: adapter %q missing module reference", token)
		}
	}
	return nil
}

// AdapterConfig resolves the configured adapter entries into loader input,
// dropping entries whose `when` condition is false.
func (c *Config) AdapterConfig() (adapter.Config, error) {
	env := whenEnv()
	out := make(adapter.Config, len(c.Adapters))
	for token, entry := range c.Adapters {
		enabled, err := evalWhen(entry.When, env)
		if err != nil {
			return nil, errors.Wrapf(err, "adapter %q", token)
		}
		if !enabled {
			continue
		}
		out[token] = adapter.Entry{
			Module:   entry.Module,
			Settings: adapter.Settings(entry.Settings),
		}
	}
	return out, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		name := ref[2 : len(ref)-1]
		return os.Getenv(name)
	})
}

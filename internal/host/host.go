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

// Package host assembles the platform: it loads the configured adapters
// through the dependency-graph loader, exposes RPC-capable instances on
// the unix socket server, and owns the lifecycle of everything it started.
package host

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pontoon-io/pontoon/internal/adapter"
	"github.com/pontoon-io/pontoon/internal/adapter/builtin"
	"github.com/pontoon-io/pontoon/internal/codec"
	"github.com/pontoon-io/pontoon/internal/config"
	"github.com/pontoon-io/pontoon/internal/loader"
	logpkg "github.com/pontoon-io/pontoon/internal/log"
	"github.com/pontoon-io/pontoon/internal/rpc"
	"github.com/pontoon-io/pontoon/pkg/errors"
)

// Options carries build-time identity.
type Options struct {
	Version string
	Commit  string
}

// Container is the running platform instance.
type Container struct {
	cfg      *config.Config
	opts     Options
	logger   *slog.Logger
	registry *adapter.Registry

	mu         sync.Mutex
	set        *adapter.Set
	server     *rpc.Server
	metricsSrv *http.Server
	watcher    *configWatcher
	started    bool
	closed     bool
}

// New creates a container with the builtin adapters registered. Additional
// providers may be registered on Registry before Start.
func New(cfg *config.Config, logger *slog.Logger, opts Options) (*Container, error) {
	registry := adapter.NewRegistry()
	if err := builtin.RegisterAll(registry); err != nil {
		return nil, err
	}
	return &Container{
		cfg:      cfg,
		opts:     opts,
		logger:   logpkg.WithComponent(logger, "host"),
		registry: registry,
	}, nil
}

// Registry exposes the provider registry for embedding applications.
func (c *Container) Registry() *adapter.Registry {
	return c.registry
}

// Start loads the adapter set and brings up the RPC and metrics listeners.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return errors.New("host: already started")
	}

	adapterCfg, err := c.cfg.AdapterConfig()
	if err != nil {
		return err
	}

	set, err := loader.New(c.registry, c.logger).Load(ctx, adapterCfg)
	if err != nil {
		return err
	}
	c.set = set

	bulk, err := codec.NewBulkStore(c.cfg.Server.BulkDir, c.cfg.Server.BulkThreshold)
	if err != nil {
		set.Close(ctx)
		return err
	}

	dispatcher := rpc.NewDispatcher()
	if err := c.exposeAdapters(dispatcher); err != nil {
		set.Close(ctx)
		return err
	}
	if err := dispatcher.Register("host", c.controlMethods()); err != nil {
		set.Close(ctx)
		return err
	}

	server := rpc.NewServer(rpc.ServerConfig{
		SocketPath: c.cfg.Server.SocketPath,
		Bulk:       bulk,
		Logger:     c.logger,
	}, dispatcher)
	if err := server.Start(); err != nil {
		set.Close(ctx)
		return err
	}
	c.server = server

	if addr := c.cfg.Server.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		c.metricsSrv = &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func(srv *http.Server) {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				c.logger.Error("metrics listener failed", logpkg.Error(err))
			}
		}(c.metricsSrv)
		c.logger.Info("metrics listening", "addr", addr)
	}

	c.started = true
	c.logger.Info("platform started",
		"version", c.opts.Version,
		"adapters", set.Tokens(),
		"socket", c.cfg.Server.SocketPath)
	return nil
}

// GetAdapter returns a loaded adapter instance by runtime token.
func (c *Container) GetAdapter(token string) (adapter.Instance, bool) {
	c.mu.Lock()
	set := c.set
	c.mu.Unlock()
	if set == nil {
		return nil, false
	}
	return set.Get(token)
}

// Close tears the platform down in reverse start order. Safe to call more
// than once.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.started = false
	watcher := c.watcher
	metricsSrv := c.metricsSrv
	server := c.server
	set := c.set
	c.mu.Unlock()

	var errs []error
	if watcher != nil {
		errs = append(errs, watcher.Close())
	}
	if metricsSrv != nil {
		errs = append(errs, metricsSrv.Shutdown(ctx))
	}
	if server != nil {
		errs = append(errs, server.Close())
	}
	if set != nil {
		errs = append(errs, set.Close(ctx))
	}

	c.logger.Info("platform stopped")
	return joinErrs(errs)
}

// exposeAdapters registers a method table for every loaded adapter whose
// manifest declares the rpc capability.
func (c *Container) exposeAdapters(dispatcher *rpc.Dispatcher) error {
	for _, token := range c.set.Tokens() {
		m, _ := c.set.Manifest(token)
		if m == nil || !m.HasCapability("rpc") {
			continue
		}
		inst, _ := c.set.Get(token)

		var methods rpc.MethodSet
		switch typed := inst.(type) {
		case adapter.Cache:
			methods = rpc.ExposeCache(typed)
		case adapter.DocStore:
			methods = rpc.ExposeDocStore(typed)
		case adapter.Analytics:
			methods = rpc.ExposeAnalytics(typed)
		case adapter.LogSink:
			methods = rpc.ExposeLogSink(typed)
		default:
			c.logger.Warn("adapter declares rpc capability but implements no exposable interface",
				logpkg.AdapterKey, token, "module", m.ID)
			continue
		}

		if err := dispatcher.Register(token, methods); err != nil {
			return err
		}
	}
	return nil
}

// controlMethods builds the reserved "host" adapter.
func (c *Container) controlMethods() rpc.MethodSet {
	return rpc.MethodSet{
		"ping": func(context.Context, []codec.Value) (any, error) {
			return "pong", nil
		},
		"version": func(context.Context, []codec.Value) (any, error) {
			return c.opts.Version, nil
		},
		"listAdapters": func(context.Context, []codec.Value) (any, error) {
			c.mu.Lock()
			set := c.set
			c.mu.Unlock()

			infos := make([]map[string]any, 0, set.Len())
			for _, token := range set.Tokens() {
				m, _ := set.Manifest(token)
				info := map[string]any{
					"token": token,
					"id":    m.ID,
					"type":  string(m.Type),
				}
				if m.Implements != "" {
					info["implements"] = []string{m.Implements}
				}
				if len(m.Capabilities) > 0 {
					info["capabilities"] = m.Capabilities
				}
				infos = append(infos, info)
			}
			return infos, nil
		},
	}
}

func joinErrs(errs []error) error {
	var first error
	for _, err := range errs {
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

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

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pontoon-io/pontoon/internal/config"
	"github.com/pontoon-io/pontoon/internal/host"
	"github.com/pontoon-io/pontoon/internal/log"
	"github.com/pontoon-io/pontoon/internal/tracing"
)

// Version information (injected via ldflags at build time)
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to pontoon.yaml")
		socketPath  = flag.String("socket", "", "Unix socket path override")
		metricsAddr = flag.String("metrics", "", "Prometheus metrics listen address override")
		watch       = flag.Bool("watch-config", false, "Log a warning when the config file changes on disk")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("pontoond %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	logger := log.New(log.FromEnv())
	slog.SetDefault(logger)

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.Parse(nil)
	}
	if err != nil {
		logger.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	if *socketPath != "" {
		cfg.Server.SocketPath = *socketPath
	}
	if *metricsAddr != "" {
		cfg.Server.MetricsAddr = *metricsAddr
	}

	tp, err := tracing.Setup("pontoond", version)
	if err != nil {
		logger.Error("Failed to set up tracing", slog.Any("error", err))
		os.Exit(1)
	}
	defer tp.Shutdown(context.Background())

	container, err := host.New(cfg, logger, host.Options{
		Version: version,
		Commit:  commit,
	})
	if err != nil {
		logger.Error("Failed to create platform", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := container.Start(ctx); err != nil {
		logger.Error("Failed to start platform", slog.Any("error", err))
		os.Exit(1)
	}

	if *watch && *configPath != "" {
		if err := container.WatchConfig(*configPath); err != nil {
			logger.Warn("Config watching unavailable", slog.Any("error", err))
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	fmt.Printf("\nReceived signal %v, shutting down...\n", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := container.Close(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", slog.Any("error", err))
		os.Exit(1)
	}
}

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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pontoon-io/pontoon/internal/commands/adapters"
	"github.com/pontoon-io/pontoon/internal/commands/call"
	"github.com/pontoon-io/pontoon/internal/commands/validate"
	versioncmd "github.com/pontoon-io/pontoon/internal/commands/version"
	"github.com/pontoon-io/pontoon/internal/config"
)

// Version information (injected via ldflags at build time)
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var socketPath string

	root := &cobra.Command{
		Use:   "pontoon",
		Short: "Operator CLI for the pontoon adapter platform",
		Long: `pontoon talks to a running pontoond over its unix socket: inspect the
loaded adapters, invoke adapter methods, and validate configuration
before deployment.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&socketPath, "socket",
		envOr("PONTOON_SOCKET", config.DefaultSocketPath()),
		"Path to the pontoond unix socket")

	root.AddCommand(
		validate.NewCommand(),
		adapters.NewCommand(&socketPath),
		call.NewCommand(&socketPath),
		versioncmd.NewCommand(versioncmd.Info{Version: version, Commit: commit}, &socketPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

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

package version

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pontoon-io/pontoon/internal/proxy"
	"github.com/pontoon-io/pontoon/internal/transport"
)

// Info carries build identity injected by the main package.
type Info struct {
	Version string
	Commit  string
}

// NewCommand creates the version command.
func NewCommand(info Info, socketPath *string) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show client and daemon version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("pontoon %s (commit: %s)\n", info.Version, info.Commit)
			if !remote {
				return nil
			}

			tr, err := transport.DialHost(*socketPath)
			if err != nil {
				return fmt.Errorf("connecting to daemon: %w", err)
			}
			defer tr.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			daemonVersion, err := proxy.NewHost(tr).Version(ctx)
			if err != nil {
				return fmt.Errorf("querying daemon version: %w", err)
			}
			fmt.Printf("pontoond %s\n", daemonVersion)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "daemon", false, "Also query the running daemon's version")
	return cmd
}

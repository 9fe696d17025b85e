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

package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pontoon-io/pontoon/internal/proxy"
	"github.com/pontoon-io/pontoon/internal/transport"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tokenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// NewCommand creates the adapters command.
func NewCommand(socketPath *string) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "adapters",
		Short: "List the adapters loaded by the running daemon",
		Example: `  # Human-readable table
  pontoon adapters

  # JSON for scripting
  pontoon adapters --json | jq '.[].token'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := transport.DialHost(*socketPath)
			if err != nil {
				return fmt.Errorf("connecting to daemon at %s: %w", *socketPath, err)
			}
			defer tr.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			infos, err := proxy.NewHost(tr).ListAdapters(ctx)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(infos)
			}
			render(infos)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the adapter list as JSON")
	return cmd
}

func render(infos []proxy.AdapterInfo) {
	if len(infos) == 0 {
		fmt.Println(dimStyle.Render("no adapters loaded"))
		return
	}

	fmt.Printf("%-16s %-28s %-10s %s\n",
		headerStyle.Render("TOKEN"),
		headerStyle.Render("MODULE"),
		headerStyle.Render("TYPE"),
		headerStyle.Render("CAPABILITIES"))

	for _, info := range infos {
		caps := strings.Join(info.Capabilities, ",")
		if caps == "" {
			caps = dimStyle.Render("-")
		}
		fmt.Printf("%-16s %-28s %-10s %s\n",
			tokenStyle.Render(info.Token), info.ID, info.Type, caps)
	}
}

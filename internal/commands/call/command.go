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

package call

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pontoon-io/pontoon/internal/codec"
	"github.com/pontoon-io/pontoon/internal/transport"
)

// NewCommand creates the call command.
func NewCommand(socketPath *string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "call <adapter> <method> [arg...]",
		Short: "Invoke an adapter method over the RPC socket",
		Long: `Call sends one RPC request to the running daemon. Each argument is
parsed as JSON; arguments that are not valid JSON are sent as strings.`,
		Example: `  # Check a cache entry
  pontoon call cache get '"session:42"'

  # Store a document
  pontoon call db put '"manuals"' '"m-1"' '{"title":"mooring lines"}'

  # Ping the control adapter
  pontoon call host ping`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := transport.DialHost(*socketPath)
			if err != nil {
				return fmt.Errorf("connecting to daemon at %s: %w", *socketPath, err)
			}
			defer tr.Close()

			callArgs := make([]codec.Value, 0, len(args)-2)
			for _, raw := range args[2:] {
				callArgs = append(callArgs, parseArg(raw))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			result, err := tr.Send(ctx, args[0], args[1], callArgs)
			if err != nil {
				return err
			}

			if len(result) == 0 {
				fmt.Println("ok")
				return nil
			}

			var pretty any
			if err := json.Unmarshal(result, &pretty); err != nil {
				os.Stdout.Write(result)
				fmt.Println()
				return nil
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(pretty)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall call timeout")
	return cmd
}

// parseArg treats valid JSON as-is and falls back to a JSON string, so
// `pontoon call cache get mykey` works without shell quoting gymnastics.
func parseArg(raw string) codec.Value {
	if json.Valid([]byte(raw)) {
		return codec.Value(raw)
	}
	quoted, _ := json.Marshal(raw)
	return codec.Value(quoted)
}

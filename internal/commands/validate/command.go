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

package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pontoon-io/pontoon/internal/config"
	"github.com/pontoon-io/pontoon/internal/manifest"
)

// NewCommand creates the validate command.
func NewCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a pontoon configuration file",
		Long: `Validate parses the configuration, resolves adapter entries (including
their when: conditions) and checks every discovered adapter manifest. It
does not start the daemon or instantiate any adapter.`,
		Example: `  # Validate the daemon configuration
  pontoon validate /etc/pontoon/pontoon.yaml

  # Machine-readable report
  pontoon validate pontoon.yaml --json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the validation report as JSON")
	return cmd
}

type report struct {
	Config    string   `json:"config"`
	Adapters  []string `json:"adapters"`
	Manifests []string `json:"manifests,omitempty"`
	Valid     bool     `json:"valid"`
}

func runValidate(path string, jsonOut bool) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	resolved, err := cfg.AdapterConfig()
	if err != nil {
		return err
	}

	rep := report{Config: path, Valid: true}
	for token := range resolved {
		rep.Adapters = append(rep.Adapters, token)
	}
	sort.Strings(rep.Adapters)

	if len(cfg.ManifestPaths) > 0 {
		manifests, err := manifest.Discover(cfg.ManifestPaths)
		if err != nil {
			return err
		}
		for _, m := range manifests {
			rep.Manifests = append(rep.Manifests, m.ID)
		}
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(rep)
	}

	fmt.Printf("%s is valid\n", path)
	fmt.Printf("  adapters:  %d configured\n", len(rep.Adapters))
	if len(cfg.ManifestPaths) > 0 {
		fmt.Printf("  manifests: %d discovered\n", len(rep.Manifests))
	}
	return nil
}

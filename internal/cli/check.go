// Copyright 2024 The University of Queensland
// Copyright 2025 Contriboss
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

package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	pubgrub "github.com/contriboss/elm-pubgrub"
	"github.com/contriboss/elm-pubgrub/internal/satcheck"
)

func newCheckCommand(global *globalOptions) *cobra.Command {
	var rootVersion string
	cmd := &cobra.Command{
		Use:   "check <registry>",
		Short: "Compare the solver with the SAT encoding on a registry file",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return errors.Errorf("file (%s) not found", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := global.logger(cmd)
			if err != nil {
				return err
			}
			reg, err := loadRegistry(args[0], rootVersion)
			if err != nil {
				return err
			}

			solver, err := reg.NewSolver(pubgrub.WithLogger(logger))
			if err != nil {
				return err
			}
			status, solveErr := solver.Solve()
			if status == pubgrub.StatusInternalError {
				return errors.Wrap(solveErr, "solver failed")
			}

			problem := satcheck.Problem{
				Provider:     reg.Provider,
				Root:         pubgrub.RootPackage,
				RootVersion:  reg.RootVersion,
				Dependencies: reg.RootDependencies,
			}
			if err := verify(problem, status, solver.Solution()); err != nil {
				return err
			}

			stats := solver.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: solver and SAT encoding agree (decisions=%d conflicts=%d backjumps=%d)\n",
				status, stats.Decisions, stats.Conflicts, stats.Backjumps)
			return nil
		},
	}
	cmd.Flags().StringVar(&rootVersion, "root-version", "", "override the root version from the registry file")
	return cmd
}

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
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	pubgrub "github.com/contriboss/elm-pubgrub"
	"github.com/contriboss/elm-pubgrub/internal/registry"
	"github.com/contriboss/elm-pubgrub/internal/satcheck"
)

// ErrNoSolution is returned by the solve command when resolution fails; the
// explanation has already been printed.
var ErrNoSolution = errors.New("no solution")

type solveOptions struct {
	*globalOptions
	rootVersion string
	strategy    string
	maxSteps    int
	verify      bool
}

func newSolveCommand(global *globalOptions) *cobra.Command {
	opts := &solveOptions{globalOptions: global}
	cmd := &cobra.Command{
		Use:   "solve <registry>",
		Short: "Resolve the root project of a registry file",
		Long: `Resolve the root project described in a YAML or TOML registry file and
print one "name version" line per selected package, or the reason no
selection exists.

With --strategy the root's pins are relaxed step by step (exact, minor,
major, any) starting at the given rung, instead of using its declared
dependencies.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return errors.Errorf("file (%s) not found", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.rootVersion, "root-version", "", "override the root version from the registry file")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "solve pinned dependencies with the ladder starting at this rung (exact, minor, major, any)")
	cmd.Flags().IntVar(&opts.maxSteps, "max-steps", 100000, "solver step limit (0 disables it)")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "check the result against the SAT encoding")
	return cmd
}

func (o *solveOptions) run(cmd *cobra.Command, path string) error {
	logger, err := o.logger(cmd)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(path, o.rootVersion)
	if err != nil {
		return err
	}

	solverOpts := []pubgrub.SolverOption{
		pubgrub.WithLogger(logger),
		pubgrub.WithMaxSteps(o.maxSteps),
	}

	var solver *pubgrub.Solver
	var status pubgrub.Status
	var solveErr error
	dependencies := reg.RootDependencies
	if o.strategy != "" {
		start, err := pubgrub.ParseStrategy(o.strategy)
		if err != nil {
			return err
		}
		ladder := reg.Ladder(pubgrub.DefaultStrategies[start:], solverOpts...)
		ladder.Logger = logger
		result := ladder.Solve()
		solver, status, solveErr = result.Solver, result.Status, result.Err
		dependencies = pinnedDependencies(reg.Pins, result.Strategy)
		fmt.Fprintf(cmd.OutOrStdout(), "strategy: %s\n", result.Strategy)
	} else {
		solver, err = reg.NewSolver(solverOpts...)
		if err != nil {
			return err
		}
		status, solveErr = solver.Solve()
	}

	out := cmd.OutOrStdout()
	switch status {
	case pubgrub.StatusOK:
		printSolution(out, reg, solver.Solution())
	case pubgrub.StatusNoSolution:
		fmt.Fprint(out, solver.ExplainFailure(reg.Names.Resolve))
	default:
		return errors.Wrap(solveErr, "solver failed")
	}

	if o.verify {
		problem := satcheck.Problem{
			Provider:     reg.Provider,
			Root:         pubgrub.RootPackage,
			RootVersion:  reg.RootVersion,
			Dependencies: dependencies,
		}
		if err := verify(problem, status, solver.Solution()); err != nil {
			return err
		}
		fmt.Fprintln(out, "verified")
	}

	if status == pubgrub.StatusNoSolution {
		return ErrNoSolution
	}
	return nil
}

func loadRegistry(path, rootVersion string) (*registry.Registry, error) {
	reg, err := registry.Load(path)
	if err != nil {
		return nil, err
	}
	if rootVersion != "" {
		v, err := registry.ParseVersion(rootVersion)
		if err != nil {
			return nil, errors.Wrap(err, "--root-version")
		}
		reg.RootVersion = v
	}
	return reg, nil
}

func pinnedDependencies(pins []pubgrub.PackageVersion, strategy pubgrub.Strategy) []pubgrub.Dependency {
	deps := make([]pubgrub.Dependency, len(pins))
	for i, pin := range pins {
		deps[i] = pubgrub.Dependency{Package: pin.Package, Range: strategy.Range(pin.Version)}
	}
	return deps
}

func printSolution(out io.Writer, reg *registry.Registry, solution pubgrub.Solution) {
	for _, pv := range solution.Sorted() {
		if pv.Package == pubgrub.RootPackage {
			continue
		}
		fmt.Fprintf(out, "%s %s\n", reg.Names.Resolve(pv.Package), pv.Version)
	}
}

// verify cross-checks a solver outcome against the SAT encoding.
func verify(problem satcheck.Problem, status pubgrub.Status, solution pubgrub.Solution) error {
	ok, _, err := satcheck.Satisfiable(problem)
	if err != nil {
		return errors.Wrap(err, "building SAT encoding")
	}
	switch {
	case status == pubgrub.StatusOK && !ok:
		return errors.New("verification failed: solver found a solution but the SAT encoding is unsatisfiable")
	case status == pubgrub.StatusNoSolution && ok:
		return errors.New("verification failed: solver found no solution but the SAT encoding is satisfiable")
	case status == pubgrub.StatusOK:
		return errors.Wrap(satcheck.Verify(problem, solution), "verification failed")
	}
	return nil
}

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

package pubgrub

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
)

// Strategy turns a pinned version into the range a ladder rung asks for.
type Strategy int

const (
	// StrategyExact keeps every pin as is.
	StrategyExact Strategy = iota
	// StrategyUntilNextMinor allows patch upgrades.
	StrategyUntilNextMinor
	// StrategyUntilNextMajor allows minor and patch upgrades.
	StrategyUntilNextMajor
	// StrategyAny drops the pin.
	StrategyAny
)

// DefaultStrategies is the ladder order from strictest to loosest.
var DefaultStrategies = []Strategy{StrategyExact, StrategyUntilNextMinor, StrategyUntilNextMajor, StrategyAny}

// Range returns the constraint this strategy derives from a pinned version.
func (s Strategy) Range(pinned Version) VersionRange {
	switch s {
	case StrategyExact:
		return ExactRange(pinned)
	case StrategyUntilNextMinor:
		return UntilNextMinor(pinned)
	case StrategyUntilNextMajor:
		return UntilNextMajor(pinned)
	default:
		return AnyRange()
	}
}

func (s Strategy) String() string {
	switch s {
	case StrategyExact:
		return "exact"
	case StrategyUntilNextMinor:
		return "minor"
	case StrategyUntilNextMajor:
		return "major"
	case StrategyAny:
		return "any"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy parses the names produced by Strategy.String.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact":
		return StrategyExact, nil
	case "minor":
		return StrategyUntilNextMinor, nil
	case "major":
		return StrategyUntilNextMajor, nil
	case "any":
		return StrategyAny, nil
	default:
		return 0, errors.Errorf("unknown strategy %q", s)
	}
}

// Ladder solves the same root several times with increasingly relaxed
// constraints on its pinned direct dependencies, keeping the first success.
// Each rung runs on a fresh Solver; rungs run one after another.
type Ladder struct {
	Provider    DependencyProvider
	Root        PackageID
	RootVersion Version
	// Pins are the root's direct dependencies at their previously chosen
	// versions.
	Pins []PackageVersion
	// Strategies defaults to DefaultStrategies.
	Strategies []Strategy
	// Options are passed to every rung's solver.
	Options []SolverOption
	Logger  *slog.Logger
}

// LadderResult is the outcome of Ladder.Solve.
type LadderResult struct {
	// Solver is the successful rung's solver, or the last one tried.
	Solver   *Solver
	Strategy Strategy
	Status   Status
	Err      error
}

// Solve tries each strategy in order. It stops at the first StatusOK and
// also at the first StatusInternalError, since relaxing constraints cannot
// fix a broken provider.
func (l *Ladder) Solve() LadderResult {
	strategies := l.Strategies
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}

	var result LadderResult
	for _, strategy := range strategies {
		solver := NewSolver(l.Provider, l.Root, l.RootVersion, l.Options...)
		for _, pin := range l.Pins {
			solver.AddRootDependency(pin.Package, strategy.Range(pin.Version))
		}

		status, err := solver.Solve()
		result = LadderResult{Solver: solver, Strategy: strategy, Status: status, Err: err}
		l.debug("ladder rung", "strategy", strategy.String(), "status", status.String())
		if status != StatusNoSolution {
			return result
		}
	}
	return result
}

func (l *Ladder) debug(msg string, args ...any) {
	if logger := l.Logger; logger != nil {
		logger.Debug(msg, args...)
	}
}

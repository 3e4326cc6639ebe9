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

import "fmt"

// Status is the outcome of Solver.Solve.
type Status int

const (
	// StatusOK: every required package has a selected version.
	StatusOK Status = iota
	// StatusNoSolution: the constraints cannot be satisfied; ExplainFailure
	// says why.
	StatusNoSolution
	// StatusInternalError: the provider failed, broke its contract, or the
	// solver hit its step limit.
	StatusInternalError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoSolution:
		return "no solution"
	case StatusInternalError:
		return "internal error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Stats counts the work done by one solve. Decisions does not count the
// seeding of the root package.
type Stats struct {
	CacheHits    int
	CacheMisses  int
	Decisions    int
	Propagations int
	Conflicts    int
	Backjumps    int
}

// Solver implements the PubGrub dependency resolution algorithm with CDCL.
//
// A Solver resolves exactly one problem: create it for a root package and
// version, declare the root's direct dependencies, call Solve, then read the
// selected versions or the failure explanation.
//
// Basic usage:
//
//	names := pubgrub.NewNameTable("my/app")
//	provider := pubgrub.NewMemoryProvider()
//	// ... populate provider with packages ...
//
//	solver := pubgrub.NewSolver(provider, pubgrub.RootPackage, pubgrub.NewVersion(1, 0, 0))
//	solver.AddRootDependency(names.Intern("elm/core"), pubgrub.MustParseVersionRange("1.0.0 <= v < 2.0.0"))
//	switch status, _ := solver.Solve(); status {
//	case pubgrub.StatusOK:
//	    fmt.Print(solver.Solution().Format(names.Resolve))
//	case pubgrub.StatusNoSolution:
//	    fmt.Print(solver.ExplainFailure(names.Resolve))
//	}
//
// With options:
//
//	solver := pubgrub.NewSolver(provider, pubgrub.RootPackage, v,
//	    pubgrub.WithMaxSteps(10000),
//	    pubgrub.WithLogger(logger),
//	)
type Solver struct {
	state   *solverState
	options SolverOptions

	solved bool
	status Status
	err    error
}

// NewSolver creates a solver for root at rootVersion, reading package data
// from provider.
func NewSolver(provider DependencyProvider, root PackageID, rootVersion Version, opts ...SolverOption) *Solver {
	options := defaultSolverOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	return &Solver{
		state:   newSolverState(provider, root, rootVersion, options),
		options: options,
	}
}

// AddRootDependency declares that the root requires pkg within r. Adding a
// second range for the same package narrows the requirement to the
// intersection. It returns false, leaving the solver unchanged, when the
// dependency contradicts what was already declared, names the root itself,
// or arrives after Solve.
func (s *Solver) AddRootDependency(pkg PackageID, r VersionRange) bool {
	st := s.state
	r = normalizeRange(r)
	if s.solved || pkg == st.root || pkg < 0 || r.Empty {
		return false
	}

	combined := r
	for _, dep := range st.rootDeps {
		if dep.Package == pkg {
			combined = Intersect(combined, dep.Range)
		}
	}
	if combined.Empty {
		s.debug("root dependency rejected", "package", int(pkg), "range", r.String())
		return false
	}

	st.rootDeps = append(st.rootDeps, Dependency{Package: pkg, Range: r})
	return true
}

func (s *Solver) debug(msg string, args ...any) {
	if logger := s.options.Logger; logger != nil {
		logger.Debug(msg, args...)
	}
}

// Solve runs the solver. Calling it again returns the first outcome.
//
// On StatusNoSolution the error is a *NoSolutionError; on
// StatusInternalError it is the provider, contract or iteration-limit
// error that stopped the solve.
func (s *Solver) Solve() (Status, error) {
	if s.solved {
		return s.status, s.err
	}
	s.solved = true

	s.status, s.err = s.state.solve()
	if s.status == StatusNoSolution && s.err == nil {
		s.err = &NoSolutionError{
			Incompatibility: s.state.arena[s.state.failure],
			arena:           s.state.arena,
			failure:         s.state.failure,
			root:            s.state.root,
		}
	}

	stats := s.Stats()
	s.debug("solver stats",
		"status", s.status.String(),
		"decisions", stats.Decisions,
		"propagations", stats.Propagations,
		"conflicts", stats.Conflicts,
		"backjumps", stats.Backjumps,
		"cache_hits", stats.CacheHits,
		"cache_misses", stats.CacheMisses,
	)
	return s.status, s.err
}

// Err returns the error from the last Solve, or nil.
func (s *Solver) Err() error {
	return s.err
}

// SelectedVersion returns the version chosen for pkg. It only reports
// versions after a successful solve.
func (s *Solver) SelectedVersion(pkg PackageID) (Version, bool) {
	if !s.solved || s.status != StatusOK {
		return Version{}, false
	}
	return s.state.partial.decision(pkg)
}

// Solution returns every selected version in decision order, root first.
func (s *Solver) Solution() Solution {
	if !s.solved || s.status != StatusOK {
		return nil
	}
	return s.state.partial.decisions()
}

// Stats returns the counters of the solve so far.
func (s *Solver) Stats() Stats {
	stats := s.state.stats
	stats.CacheHits = s.state.provider.hits
	stats.CacheMisses = s.state.provider.misses
	return stats
}

// Incompatibilities returns a copy of every incompatibility created during
// the solve, indexed by IncompatibilityID.
func (s *Solver) Incompatibilities() []Incompatibility {
	return append([]Incompatibility(nil), s.state.arena...)
}

// ExplainFailure renders why the solve failed, naming packages with names
// (NumericNames when nil).
func (s *Solver) ExplainFailure(names NameResolver) string {
	if names == nil {
		names = NumericNames
	}
	if !s.solved || s.status != StatusNoSolution || s.state.failure == noCause {
		return noExplanation
	}
	return explain(s.state.arena, s.state.failure, names, s.state.root)
}

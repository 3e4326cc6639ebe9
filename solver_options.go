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

import "log/slog"

// SolverOptions configures the behavior of the dependency solver.
type SolverOptions struct {
	// MaxSteps limits the number of solver iterations.
	// Set to 0 to disable the limit (not recommended for untrusted inputs).
	// Default: 100000
	MaxSteps int

	// ConflictPrecheck skips candidate versions whose selection would
	// immediately satisfy an attached incompatibility. Default: true
	ConflictPrecheck bool

	// Logger enables debug logging of solver operations.
	// When nil, no logging is performed.
	Logger *slog.Logger
}

// SolverOption is a functional option for configuring the solver.
type SolverOption func(*SolverOptions)

const defaultMaxSteps = 100000

func defaultSolverOptions() SolverOptions {
	return SolverOptions{
		MaxSteps:         defaultMaxSteps,
		ConflictPrecheck: true,
	}
}

// WithMaxSteps sets the maximum number of solver iterations.
// Use 0 to disable the limit (allows unbounded execution).
//
// Example:
//
//	solver := pubgrub.NewSolver(provider, pubgrub.RootPackage, v,
//	    pubgrub.WithMaxSteps(10000), // Limit to 10k iterations
//	)
func WithMaxSteps(steps int) SolverOption {
	return func(opts *SolverOptions) {
		if steps <= 0 {
			opts.MaxSteps = 0
		} else {
			opts.MaxSteps = steps
		}
	}
}

// WithConflictPrecheck toggles the candidate pre-filter used when picking a
// version. Disabling it never changes the outcome, only how many conflicts
// the solver has to learn from.
func WithConflictPrecheck(enabled bool) SolverOption {
	return func(opts *SolverOptions) {
		opts.ConflictPrecheck = enabled
	}
}

// WithLogger sets a structured logger for solver diagnostics.
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	solver := pubgrub.NewSolver(provider, pubgrub.RootPackage, v, pubgrub.WithLogger(logger))
func WithLogger(logger *slog.Logger) SolverOption {
	return func(opts *SolverOptions) {
		opts.Logger = logger
	}
}

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

	"github.com/pkg/errors"
)

// NoSolutionError is returned by Solver.Solve when solving fails. Its message
// is the full failure explanation.
type NoSolutionError struct {
	// Incompatibility is the final incompatibility that proved failure.
	Incompatibility Incompatibility
	// Names renders package IDs in the message (defaults to NumericNames).
	Names NameResolver
	// Reporter formats the message (defaults to DefaultReporter).
	Reporter Reporter

	arena   []Incompatibility
	failure IncompatibilityID
	root    PackageID
}

// Error implements the error interface
func (e *NoSolutionError) Error() string {
	if len(e.arena) == 0 {
		return "no solution found"
	}
	names := e.Names
	if names == nil {
		names = NumericNames
	}
	reporter := e.Reporter
	if reporter == nil {
		reporter = DefaultReporter{}
	}
	return reporter.Report(e.arena, e.failure, names, e.root)
}

// WithNames returns a copy of the error that renders package names with names.
func (e *NoSolutionError) WithNames(names NameResolver) *NoSolutionError {
	out := *e
	out.Names = names
	return &out
}

// WithReporter returns a copy of the error formatted by reporter.
func (e *NoSolutionError) WithReporter(reporter Reporter) *NoSolutionError {
	out := *e
	out.Reporter = reporter
	return &out
}

// ProviderError wraps a failure reported by the DependencyProvider.
type ProviderError struct {
	Package PackageID
	// Version is set when the failing call was Dependencies.
	Version *Version
	Err     error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Version != nil {
		return fmt.Sprintf("failed to get dependencies for %s %s: %v", NumericNames(e.Package), *e.Version, e.Err)
	}
	return fmt.Sprintf("failed to get versions for %s: %v", NumericNames(e.Package), e.Err)
}

// Unwrap returns the underlying error
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ContractError reports a provider answer that breaks the DependencyProvider
// contract, such as versions that are not strictly descending.
type ContractError struct {
	Package PackageID
	Message string
}

// Error implements the error interface
func (e *ContractError) Error() string {
	return fmt.Sprintf("provider contract violated for %s: %s", NumericNames(e.Package), e.Message)
}

// PackageNotFoundError indicates that a package is absent from a provider.
// The solver treats it like an empty version list.
type PackageNotFoundError struct {
	Package PackageID
}

// Error implements the error interface.
func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package %s not found", NumericNames(e.Package))
}

// PackageVersionNotFoundError indicates a specific version is unavailable.
type PackageVersionNotFoundError struct {
	Package PackageID
	Version Version
}

// Error implements the error interface.
func (e *PackageVersionNotFoundError) Error() string {
	return fmt.Sprintf("package %s version %s not found", NumericNames(e.Package), e.Version)
}

// ErrIterationLimit is returned when the solver exceeds its maximum iteration count.
// Configure with WithMaxSteps(0) to disable the limit.
//
// Example:
//
//	solver := pubgrub.NewSolver(provider, pubgrub.RootPackage, rootVersion, pubgrub.WithMaxSteps(1000))
//	if status, err := solver.Solve(); status == pubgrub.StatusInternalError {
//	    var limit pubgrub.ErrIterationLimit
//	    if errors.As(err, &limit) {
//	        log.Printf("solver exceeded %d steps", limit.Steps)
//	    }
//	}
type ErrIterationLimit struct {
	Steps int
}

// Error implements the error interface.
func (e ErrIterationLimit) Error() string {
	if e.Steps <= 0 {
		return "solver exceeded iteration limit"
	}
	return fmt.Sprintf("solver exceeded iteration limit after %d steps", e.Steps)
}

// errInvariant marks internal states the algorithm should never reach.
var errInvariant = errors.New("solver invariant violated")

func invariantf(format string, args ...any) error {
	return errors.Wrapf(errInvariant, format, args...)
}

// IsInvariantViolation reports whether err came from a broken internal
// invariant rather than from the provider or the problem itself.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, errInvariant)
}

var (
	_ error = (*NoSolutionError)(nil)
	_ error = (*ProviderError)(nil)
	_ error = (*ContractError)(nil)
	_ error = (*PackageNotFoundError)(nil)
	_ error = (*PackageVersionNotFoundError)(nil)
	_ error = ErrIterationLimit{}
)

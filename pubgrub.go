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
//
// Originally from: github.com/tinyrange/tinyrange/experimental/pubgrub (v0.2.6)
// This is a derivative work based on the tinyrange pubgrub implementation.

// Package pubgrub resolves package dependencies with the PubGrub algorithm
// and explains failures in plain English.
//
// Packages are dense integer IDs (see NameTable) and versions are
// MAJOR.MINOR.PATCH triples. A DependencyProvider answers two questions, the
// versions of a package and the dependencies of one version, and a Solver
// searches for one version per required package using conflict-driven clause
// learning: every dead end becomes a learned Incompatibility, and the solver
// jumps back to the decision that caused it instead of retrying blindly.
//
// When no solution exists, Solver.ExplainFailure walks the derivation graph
// of learned incompatibilities and renders it as numbered sentences:
//
//	Because no versions of author/a v < 1.0.0 or 1.0.0 < v satisfy the constraints and my/app depends on author/a, my/app requires author/a 1.0.0.
//	So, because author/a 1.0.0 depends on author/b 2.0.0 <= v and no versions of author/b 2.0.0 <= v satisfy the constraints, version solving failed.
//
// Ladder retries a solve with progressively looser constraints on pinned
// direct dependencies, the way an application upgrades its lock file.
package pubgrub

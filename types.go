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

// PackageID identifies a package inside one resolution problem.
//
// IDs are small dense integers handed out by an interning table owned by
// whoever builds the dependency graph (see NameTable). The solver never looks
// at package names; it only needs IDs to be stable for the duration of a
// solve. ID 0 is reserved for the synthetic root package.
type PackageID int

// RootPackage is the ID of the synthetic root package: the project being
// resolved.
const RootPackage PackageID = 0

// Dependency is one edge of the dependency graph: the depending version
// requires Package to have a version in Range.
type Dependency struct {
	Package PackageID
	Range   VersionRange
}

// String renders the dependency with numeric package IDs.
func (d Dependency) String() string {
	return fmt.Sprintf("#%d %s", d.Package, d.Range)
}

// DependencyProvider supplies the facts the solver reasons about.
//
// Implementations can be backed by an in-memory table, a local package cache
// or a remote registry; the solver only calls these two methods and memoises
// the answers for the length of one solve.
//
// Example:
//
//	type registryProvider struct {
//	    client *registry.Client
//	}
//
//	func (p *registryProvider) Versions(pkg PackageID) ([]Version, error) {
//	    // fetch and sort newest first ...
//	}
//
//	func (p *registryProvider) Dependencies(pkg PackageID, v Version) ([]Dependency, error) {
//	    // read the manifest of pkg@v ...
//	}
type DependencyProvider interface {
	// Versions returns the known versions of a package, newest first.
	// Unknown packages yield an empty slice (or a *PackageNotFoundError,
	// which the solver treats the same way). The answer must not change
	// during a solve.
	Versions(pkg PackageID) ([]Version, error)

	// Dependencies returns the declared dependencies of pkg at version v.
	Dependencies(pkg PackageID, v Version) ([]Dependency, error)
}

// NameResolver maps package IDs to display names for error messages.
type NameResolver func(PackageID) string

// NumericNames is the NameResolver used when the caller has none: packages
// are shown as "#<id>", the root as "root".
func NumericNames(pkg PackageID) string {
	if pkg == RootPackage {
		return "root"
	}
	return fmt.Sprintf("#%d", pkg)
}

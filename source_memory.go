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

import "slices"

// MemoryProvider is an in-memory DependencyProvider. It stores all package
// versions and dependencies in maps and is useful for tests, fixtures and
// prototyping.
//
// Example:
//
//	provider := pubgrub.NewMemoryProvider()
//	provider.AddPackage(json, pubgrub.NewVersion(1, 1, 3), []pubgrub.Dependency{
//	    {Package: core, Range: pubgrub.MustParseVersionRange("1.0.0 <= v < 2.0.0")},
//	})
//	provider.AddPackage(core, pubgrub.NewVersion(1, 0, 5), nil)
type MemoryProvider struct {
	packages map[PackageID]map[Version][]Dependency
}

// NewMemoryProvider returns an empty provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{packages: make(map[PackageID]map[Version][]Dependency)}
}

// Versions returns the versions of pkg, newest first. Unknown packages
// report a *PackageNotFoundError.
func (p *MemoryProvider) Versions(pkg PackageID) ([]Version, error) {
	versions, ok := p.packages[pkg]
	if !ok {
		return nil, &PackageNotFoundError{Package: pkg}
	}

	result := make([]Version, 0, len(versions))
	for v := range versions {
		result = append(result, v)
	}
	slices.SortFunc(result, func(a, b Version) int {
		return b.Compare(a)
	})
	return result, nil
}

// Dependencies returns the dependencies of pkg at version.
func (p *MemoryProvider) Dependencies(pkg PackageID, version Version) ([]Dependency, error) {
	versions, ok := p.packages[pkg]
	if !ok {
		return nil, &PackageNotFoundError{Package: pkg}
	}
	deps, ok := versions[version]
	if !ok {
		return nil, &PackageVersionNotFoundError{Package: pkg, Version: version}
	}
	return deps, nil
}

// AddPackage adds a package version with its dependencies. Adding the same
// version twice replaces its dependencies.
func (p *MemoryProvider) AddPackage(pkg PackageID, version Version, deps []Dependency) {
	if p.packages == nil {
		p.packages = make(map[PackageID]map[Version][]Dependency)
	}
	if _, ok := p.packages[pkg]; !ok {
		p.packages[pkg] = make(map[Version][]Dependency)
	}
	p.packages[pkg][version] = deps
}

var _ DependencyProvider = (*MemoryProvider)(nil)

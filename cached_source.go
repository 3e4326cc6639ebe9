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

import "github.com/pkg/errors"

// providerCache memoises provider answers for the length of one solve and
// checks them against the DependencyProvider contract on first sight.
//
// The cache assumes that version lists and dependencies do not change while
// the solver runs.
type providerCache struct {
	provider DependencyProvider

	versions map[PackageID][]Version
	deps     map[PackageVersion][]Dependency

	hits   int
	misses int
}

func newProviderCache(provider DependencyProvider) *providerCache {
	return &providerCache{
		provider: provider,
		versions: make(map[PackageID][]Version),
		deps:     make(map[PackageVersion][]Dependency),
	}
}

// Versions returns the versions of pkg, newest first. A
// *PackageNotFoundError from the provider is cached as an empty list.
func (c *providerCache) Versions(pkg PackageID) ([]Version, error) {
	if versions, ok := c.versions[pkg]; ok {
		c.hits++
		return versions, nil
	}
	c.misses++

	versions, err := c.provider.Versions(pkg)
	if err != nil {
		var notFound *PackageNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ProviderError{Package: pkg, Err: err}
		}
		versions = nil
	}

	for i := 1; i < len(versions); i++ {
		if versions[i-1].Compare(versions[i]) <= 0 {
			return nil, &ContractError{
				Package: pkg,
				Message: "versions must be strictly descending, got " + versions[i-1].String() + " before " + versions[i].String(),
			}
		}
	}

	c.versions[pkg] = versions
	return versions, nil
}

// Dependencies returns the dependencies of pkg at version.
func (c *providerCache) Dependencies(pkg PackageID, version Version) ([]Dependency, error) {
	key := PackageVersion{Package: pkg, Version: version}
	if deps, ok := c.deps[key]; ok {
		c.hits++
		return deps, nil
	}
	c.misses++

	deps, err := c.provider.Dependencies(pkg, version)
	if err != nil {
		return nil, &ProviderError{Package: pkg, Version: &version, Err: err}
	}
	for _, dep := range deps {
		if dep.Package < 0 {
			return nil, &ContractError{Package: pkg, Message: "dependency on negative package ID in " + version.String()}
		}
	}

	c.deps[key] = deps
	return deps, nil
}

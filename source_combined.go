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
	"slices"

	"github.com/pkg/errors"
)

// CombinedProvider overlays several providers. Versions are merged and
// de-duplicated; dependencies come from the first provider that knows the
// version, so earlier providers shadow later ones.
//
// Example:
//
//	local := pubgrub.NewMemoryProvider()   // packages in the local cache
//	remote := newRegistryProvider(client)  // the package registry
//	solver := pubgrub.NewSolver(pubgrub.CombinedProvider{local, remote}, pubgrub.RootPackage, v)
type CombinedProvider []DependencyProvider

// Versions queries all providers and returns the union of their versions,
// newest first.
func (c CombinedProvider) Versions(pkg PackageID) ([]Version, error) {
	var ret []Version
	for _, provider := range c {
		versions, err := provider.Versions(pkg)
		if err != nil {
			var notFound *PackageNotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return nil, err
		}
		ret = append(ret, versions...)
	}

	if len(ret) == 0 {
		return nil, &PackageNotFoundError{Package: pkg}
	}

	slices.SortFunc(ret, func(a, b Version) int {
		return b.Compare(a)
	})
	return slices.Compact(ret), nil
}

// Dependencies returns the dependencies from the first provider that has
// pkg at version.
func (c CombinedProvider) Dependencies(pkg PackageID, version Version) ([]Dependency, error) {
	for _, provider := range c {
		deps, err := provider.Dependencies(pkg, version)
		if err == nil {
			return deps, nil
		}

		var notFound *PackageNotFoundError
		var versionNotFound *PackageVersionNotFoundError
		switch {
		case errors.As(err, &notFound), errors.As(err, &versionNotFound):
			continue
		default:
			return nil, err
		}
	}
	return nil, &PackageVersionNotFoundError{Package: pkg, Version: version}
}

var _ DependencyProvider = CombinedProvider{}

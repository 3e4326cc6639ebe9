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
	"iter"
	"sort"
)

// PackageVersion is a package with its selected version.
type PackageVersion struct {
	Package PackageID
	Version Version
}

// String renders the pair with a numeric package ID.
func (pv PackageVersion) String() string {
	return fmt.Sprintf("%s %s", NumericNames(pv.Package), pv.Version)
}

// Solution is the list of selected versions, in the order the solver decided
// them. The root package is always first.
//
// Example:
//
//	if status, _ := solver.Solve(); status == pubgrub.StatusOK {
//	    for pv := range solver.Solution().All() {
//	        fmt.Printf("%s %s\n", names.Resolve(pv.Package), pv.Version)
//	    }
//	}
type Solution []PackageVersion

// Get returns the version selected for pkg.
func (s Solution) Get(pkg PackageID) (Version, bool) {
	for _, pv := range s {
		if pv.Package == pkg {
			return pv.Version, true
		}
	}
	return Version{}, false
}

// All returns an iterator over the selected versions.
func (s Solution) All() iter.Seq[PackageVersion] {
	return func(yield func(PackageVersion) bool) {
		for _, pv := range s {
			if !yield(pv) {
				return
			}
		}
	}
}

// Sorted returns a copy ordered by package ID.
func (s Solution) Sorted() Solution {
	out := append(Solution(nil), s...)
	sort.Slice(out, func(i, j int) bool { return out[i].Package < out[j].Package })
	return out
}

// Format renders one "name version" line per package, using names.
func (s Solution) Format(names NameResolver) string {
	if names == nil {
		names = NumericNames
	}
	var out []byte
	for _, pv := range s {
		out = fmt.Appendf(out, "%s %s\n", names(pv.Package), pv.Version)
	}
	return string(out)
}

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
	"strings"
)

// Reason records where an incompatibility came from.
type Reason int

const (
	// ReasonDependency: a package version depends on another package.
	ReasonDependency Reason = iota
	// ReasonNoVersions: no available version lies in the required set.
	ReasonNoVersions
	// ReasonRoot: the root package must be selected.
	ReasonRoot
	// ReasonDerived: learned during conflict resolution from two causes.
	ReasonDerived
)

func (r Reason) String() string {
	switch r {
	case ReasonDependency:
		return "dependency"
	case ReasonNoVersions:
		return "no-versions"
	case ReasonRoot:
		return "root"
	case ReasonDerived:
		return "derived"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// IncompatibilityID indexes the solver's incompatibility arena.
type IncompatibilityID int

// noCause marks assignments without a causing incompatibility (decisions).
const noCause IncompatibilityID = -1

// Incompatibility is a set of terms that cannot all be true at once.
//
// Incompatibilities are immutable once created and live in the solver's
// arena for the whole solve. Derived incompatibilities name the two
// incompatibilities they were resolved from; a cause always has a smaller ID
// than its effect, so the derivation graph is acyclic.
type Incompatibility struct {
	Terms  []Term
	Reason Reason
	Causes []IncompatibilityID
}

// newRootIncompatibility says the root package must be selected at its
// version: {not root@version}.
func newRootIncompatibility(root PackageID, version Version) Incompatibility {
	return Incompatibility{
		Terms:  []Term{NewNegativeTerm(root, ExactRange(version))},
		Reason: ReasonRoot,
	}
}

// newDependencyIncompatibility encodes "pkg@version depends on dep" as
// {pkg@version, not dep}. A package depending on itself collapses into a
// single term.
func newDependencyIncompatibility(pkg PackageID, version Version, dep Dependency) Incompatibility {
	depender := NewTerm(pkg, ExactRange(version))
	dependee := NewNegativeTerm(dep.Package, dep.Range)
	terms := []Term{depender, dependee}
	if dep.Package == pkg {
		terms = []Term{intersectTerms(depender, dependee)}
	}
	return Incompatibility{Terms: terms, Reason: ReasonDependency}
}

// newNoVersionsIncompatibility records that no version of the term's package
// lies in its set.
func newNoVersionsIncompatibility(term Term) Incompatibility {
	return Incompatibility{Terms: []Term{term}, Reason: ReasonNoVersions}
}

// newDerivedIncompatibility merges terms about the same package and links
// the two causes.
func newDerivedIncompatibility(terms []Term, conflict, cause IncompatibilityID) Incompatibility {
	return Incompatibility{
		Terms:  mergeTermsByPackage(terms),
		Reason: ReasonDerived,
		Causes: []IncompatibilityID{conflict, cause},
	}
}

// mergeTermsByPackage intersects terms that mention the same package,
// keeping the position of each package's first occurrence.
func mergeTermsByPackage(terms []Term) []Term {
	merged := make([]Term, 0, len(terms))
	index := make(map[PackageID]int, len(terms))
	for _, term := range terms {
		if i, ok := index[term.Package]; ok {
			merged[i] = intersectTerms(merged[i], term)
			continue
		}
		index[term.Package] = len(merged)
		merged = append(merged, term)
	}
	return merged
}

// isFailure reports whether the incompatibility proves there is no solution:
// it has no terms, or only says the root package itself is forbidden.
func (inc *Incompatibility) isFailure(root PackageID) bool {
	switch len(inc.Terms) {
	case 0:
		return true
	case 1:
		return inc.Terms[0].Package == root && inc.Terms[0].Positive
	default:
		return false
	}
}

// isExternal reports whether the incompatibility is a leaf of the
// derivation graph.
func (inc *Incompatibility) isExternal() bool {
	return len(inc.Causes) == 0
}

// String renders the incompatibility with numeric package IDs.
func (inc *Incompatibility) String() string {
	return inc.format(NumericNames, RootPackage)
}

// format renders the incompatibility as an English clause.
func (inc *Incompatibility) format(names NameResolver, root PackageID) string {
	if inc.isFailure(root) {
		return "version solving failed"
	}

	switch inc.Reason {
	case ReasonRoot:
		return fmt.Sprintf("%s is required", names(root))
	case ReasonDependency:
		if len(inc.Terms) == 2 {
			return fmt.Sprintf("%s depends on %s",
				inc.Terms[0].terse(names, root), inc.Terms[1].terse(names, root))
		}
	case ReasonNoVersions:
		if len(inc.Terms) == 1 {
			return fmt.Sprintf("no versions of %s satisfy the constraints", inc.Terms[0].terse(names, root))
		}
	}

	if len(inc.Terms) == 1 {
		term := inc.Terms[0]
		if term.Positive {
			return fmt.Sprintf("%s is forbidden", term.terse(names, root))
		}
		return fmt.Sprintf("%s is required", term.terse(names, root))
	}

	if len(inc.Terms) == 2 {
		first, second := inc.Terms[0], inc.Terms[1]
		switch {
		case first.Positive && second.Positive:
			return fmt.Sprintf("%s is incompatible with %s", first.terse(names, root), second.terse(names, root))
		case first.Positive:
			return fmt.Sprintf("%s requires %s", first.terse(names, root), second.terse(names, root))
		case second.Positive:
			return fmt.Sprintf("%s requires %s", second.terse(names, root), first.terse(names, root))
		default:
			return fmt.Sprintf("either %s or %s", first.terse(names, root), second.terse(names, root))
		}
	}

	var positive, negative []string
	for _, term := range inc.Terms {
		if term.Positive {
			positive = append(positive, term.terse(names, root))
		} else {
			negative = append(negative, term.terse(names, root))
		}
	}

	switch {
	case len(positive) == 1 && len(negative) > 0:
		return fmt.Sprintf("%s requires %s", positive[0], strings.Join(negative, " or "))
	case len(positive) > 0 && len(negative) > 0:
		return fmt.Sprintf("if %s then %s", strings.Join(positive, " and "), strings.Join(negative, " or "))
	case len(positive) > 0:
		return fmt.Sprintf("one of %s must be false", strings.Join(positive, " or "))
	default:
		return fmt.Sprintf("one of %s must be true", strings.Join(negative, " or "))
	}
}

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

// Term is a signed statement about one package.
//
// A positive term ("elm/json 1.0.0 <= v < 2.0.0") says the package is
// selected with a version in Set. A negative term ("not elm/json 1.0.0 <= v
// < 2.0.0") says the package is either not selected or selected with a
// version outside Set.
type Term struct {
	Package  PackageID
	Set      VersionSet
	Positive bool
}

// NewTerm creates a positive term over a single range.
func NewTerm(pkg PackageID, r VersionRange) Term {
	return Term{Package: pkg, Set: SetOf(r), Positive: true}
}

// NewNegativeTerm creates a negative term over a single range.
func NewNegativeTerm(pkg PackageID, r VersionRange) Term {
	return Term{Package: pkg, Set: SetOf(r), Positive: false}
}

// Negate returns the logical negation of the term.
func (t Term) Negate() Term {
	return Term{Package: t.Package, Set: t.Set, Positive: !t.Positive}
}

// SatisfiedBy reports whether selecting v for the package satisfies the term.
func (t Term) SatisfiedBy(v Version) bool {
	return t.Set.Contains(v) == t.Positive
}

// intersectTerms returns the conjunction of two terms about the same package,
// as a single term.
func intersectTerms(a, b Term) Term {
	switch {
	case a.Positive && b.Positive:
		return Term{Package: a.Package, Set: a.Set.Intersection(b.Set), Positive: true}
	case !a.Positive && !b.Positive:
		return Term{Package: a.Package, Set: a.Set.Union(b.Set), Positive: false}
	case a.Positive:
		return Term{Package: a.Package, Set: a.Set.Difference(b.Set), Positive: true}
	default:
		return Term{Package: a.Package, Set: b.Set.Difference(a.Set), Positive: true}
	}
}

// difference returns a term satisfied exactly when t holds and other does not.
func (t Term) difference(other Term) Term {
	return intersectTerms(t, other.Negate())
}

// String renders the term with numeric package IDs.
func (t Term) String() string {
	return t.format(NumericNames, RootPackage)
}

func (t Term) format(names NameResolver, root PackageID) string {
	if t.Positive {
		return t.terse(names, root)
	}
	return "not " + t.terse(names, root)
}

// terse renders the package and its versions without the sign. The root
// package is always shown by name alone.
func (t Term) terse(names NameResolver, root PackageID) string {
	name := names(t.Package)
	if t.Package == root || t.Set.IsFull() {
		return name
	}
	return fmt.Sprintf("%s %s", name, t.Set)
}

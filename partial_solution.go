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

// termRelation classifies a term against what the trail currently knows
// about its package.
type termRelation int

const (
	termSatisfied termRelation = iota
	termContradicted
	termInconclusive
)

// packageState summarises every assignment about one package.
//
// positive is the intersection of positive assignment sets (meaningful only
// when hasPositive is set), negative the union of negative ones, and allowed
// is positive minus negative.
type packageState struct {
	used        bool
	hasPositive bool
	positive    VersionSet
	negative    VersionSet
	allowed     VersionSet
	hasDecision bool
	decision    Version
}

func (ps *packageState) apply(a assignment) {
	ps.used = true
	if a.term.Positive {
		if ps.hasPositive {
			ps.positive = ps.positive.Intersection(a.term.Set)
		} else {
			ps.positive = a.term.Set
			ps.hasPositive = true
		}
	} else {
		ps.negative = ps.negative.Union(a.term.Set)
	}

	base := FullSet()
	if ps.hasPositive {
		base = ps.positive
	}
	ps.allowed = base.Difference(ps.negative)

	if a.decided {
		if v, ok := a.term.Set.AsRange(); ok {
			if exact, ok := v.Exact(); ok {
				ps.hasDecision = true
				ps.decision = exact
			}
		}
	}
}

// relation classifies term against this package state.
func (ps *packageState) relation(term Term) termRelation {
	if !ps.used {
		return termInconclusive
	}
	if term.Positive {
		if ps.hasPositive && ps.allowed.IsSubset(term.Set) {
			return termSatisfied
		}
		if ps.allowed.IsDisjoint(term.Set) {
			return termContradicted
		}
		return termInconclusive
	}
	if ps.allowed.IsDisjoint(term.Set) {
		return termSatisfied
	}
	if ps.hasPositive && ps.allowed.IsSubset(term.Set) {
		return termContradicted
	}
	return termInconclusive
}

// partialSolution is the trail of assignments plus a per-package index.
//
// The trail only grows, except on backtrack where it is truncated to a
// decision level and the index is recomputed from what remains.
type partialSolution struct {
	trail    []assignment
	level    int
	packages []packageState
}

func newPartialSolution() *partialSolution {
	return &partialSolution{}
}

// state returns the index entry for pkg, growing the index as needed.
func (ps *partialSolution) state(pkg PackageID) *packageState {
	if int(pkg) >= len(ps.packages) {
		grown := make([]packageState, int(pkg)+1)
		copy(grown, ps.packages)
		ps.packages = grown
	}
	return &ps.packages[pkg]
}

// lookup returns the index entry for pkg without growing the index.
func (ps *partialSolution) lookup(pkg PackageID) *packageState {
	if int(pkg) >= len(ps.packages) {
		return &packageState{}
	}
	return &ps.packages[pkg]
}

func (ps *partialSolution) push(a assignment) assignment {
	ps.trail = append(ps.trail, a)
	ps.state(a.term.Package).apply(a)
	return a
}

// decide opens a new decision level and selects version for pkg.
func (ps *partialSolution) decide(pkg PackageID, version Version) assignment {
	ps.level++
	return ps.push(assignment{
		term:    NewTerm(pkg, ExactRange(version)),
		decided: true,
		level:   ps.level,
		cause:   noCause,
	})
}

// derive records a term forced by the incompatibility cause.
func (ps *partialSolution) derive(term Term, cause IncompatibilityID) assignment {
	return ps.push(assignment{term: term, level: ps.level, cause: cause})
}

// backtrack drops every assignment above level and rebuilds the index.
func (ps *partialSolution) backtrack(level int) {
	keep := len(ps.trail)
	for keep > 0 && ps.trail[keep-1].level > level {
		keep--
	}
	ps.trail = ps.trail[:keep]
	ps.level = level

	clear(ps.packages)
	for _, a := range ps.trail {
		ps.state(a.term.Package).apply(a)
	}
}

func (ps *partialSolution) relation(term Term) termRelation {
	return ps.lookup(term.Package).relation(term)
}

// allowed returns the versions still possible for pkg.
func (ps *partialSolution) allowed(pkg PackageID) VersionSet {
	st := ps.lookup(pkg)
	if !st.used {
		return FullSet()
	}
	return st.allowed
}

// satisfierIndex returns the trail index of the earliest assignment after
// which term is satisfied, or -1 when the trail never satisfies it.
func (ps *partialSolution) satisfierIndex(term Term) int {
	var acc packageState
	for i, a := range ps.trail {
		if a.term.Package != term.Package {
			continue
		}
		acc.apply(a)
		if acc.relation(term) == termSatisfied {
			return i
		}
	}
	return -1
}

// pending returns the used packages that have a positive assignment but no
// decision, in ascending ID order.
func (ps *partialSolution) pending() []PackageID {
	var out []PackageID
	for id := range ps.packages {
		st := &ps.packages[id]
		if st.used && st.hasPositive && !st.hasDecision {
			out = append(out, PackageID(id))
		}
	}
	return out
}

// decision returns the version selected for pkg, if any.
func (ps *partialSolution) decision(pkg PackageID) (Version, bool) {
	st := ps.lookup(pkg)
	return st.decision, st.hasDecision
}

// decisions returns every decision in trail order.
func (ps *partialSolution) decisions() Solution {
	var out Solution
	for _, a := range ps.trail {
		if !a.decided {
			continue
		}
		if v, ok := ps.decision(a.term.Package); ok {
			out = append(out, PackageVersion{Package: a.term.Package, Version: v})
		}
	}
	return out
}

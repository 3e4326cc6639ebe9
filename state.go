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

// solverState holds everything one solve mutates: the trail, the
// incompatibility arena, the per-package attachment lists and the
// propagation queue.
//
// The loop alternates between three phases:
//  1. propagate: derive every term forced by an almost-satisfied incompatibility
//  2. decide: pick a version for the most constrained undecided package
//  3. resolve: on conflict, learn a new incompatibility and backjump
type solverState struct {
	root        PackageID
	rootVersion Version
	rootDeps    []Dependency

	provider *providerCache
	options  SolverOptions
	partial  *partialSolution

	arena    []Incompatibility
	attached []bool
	byPkg    [][]IncompatibilityID

	queue  []PackageID
	queued map[PackageID]bool

	// expanded marks versions whose dependencies are already in the arena.
	expanded map[PackageVersion]bool

	failure IncompatibilityID
	stats   Stats
}

func newSolverState(provider DependencyProvider, root PackageID, rootVersion Version, options SolverOptions) *solverState {
	return &solverState{
		root:        root,
		rootVersion: rootVersion,
		provider:    newProviderCache(provider),
		options:     options,
		partial:     newPartialSolution(),
		queued:      make(map[PackageID]bool),
		expanded:    make(map[PackageVersion]bool),
		failure:     noCause,
	}
}

func (st *solverState) debug(msg string, args ...any) {
	if logger := st.options.Logger; logger != nil {
		logger.Debug(msg, args...)
	}
}

func (st *solverState) traceAssignment(event string, a assignment) {
	if st.options.Logger == nil {
		return
	}
	st.options.Logger.Debug("assignment",
		"event", event,
		"package", int(a.term.Package),
		"detail", a.describe(NumericNames, st.root),
	)
}

func (st *solverState) enqueue(pkg PackageID) {
	if st.queued[pkg] {
		return
	}
	st.queue = append(st.queue, pkg)
	st.queued[pkg] = true
}

func (st *solverState) dequeue() (PackageID, bool) {
	if len(st.queue) == 0 {
		return 0, false
	}
	pkg := st.queue[0]
	st.queue = st.queue[1:]
	delete(st.queued, pkg)
	return pkg, true
}

func (st *solverState) clearQueue() {
	st.queue = st.queue[:0]
	clear(st.queued)
}

// store appends inc to the arena without attaching it.
func (st *solverState) store(inc Incompatibility) IncompatibilityID {
	id := IncompatibilityID(len(st.arena))
	st.arena = append(st.arena, inc)
	st.attached = append(st.attached, false)
	return id
}

// attach registers id with every package it mentions, at most once.
func (st *solverState) attach(id IncompatibilityID) {
	if st.attached[id] {
		return
	}
	st.attached[id] = true
	for _, term := range st.arena[id].Terms {
		if int(term.Package) >= len(st.byPkg) {
			grown := make([][]IncompatibilityID, int(term.Package)+1)
			copy(grown, st.byPkg)
			st.byPkg = grown
		}
		st.byPkg[term.Package] = append(st.byPkg[term.Package], id)
	}
}

// addExternal stores and attaches a non-derived incompatibility.
func (st *solverState) addExternal(inc Incompatibility) IncompatibilityID {
	id := st.store(inc)
	st.attach(id)
	return id
}

func (st *solverState) attachedTo(pkg PackageID) []IncompatibilityID {
	if int(pkg) >= len(st.byPkg) {
		return nil
	}
	return st.byPkg[pkg]
}

func (st *solverState) versionsOf(pkg PackageID) ([]Version, error) {
	if pkg == st.root {
		return []Version{st.rootVersion}, nil
	}
	return st.provider.Versions(pkg)
}

func (st *solverState) dependenciesOf(pkg PackageID, version Version) ([]Dependency, error) {
	if pkg == st.root {
		return st.rootDeps, nil
	}
	return st.provider.Dependencies(pkg, version)
}

// incompatibilityRelation describes an incompatibility against the trail.
type incompatibilityRelation int

const (
	relationSatisfied       incompatibilityRelation = iota // every term holds: conflict
	relationAlmostSatisfied                                // one term undecided, the rest hold
	relationContradicted                                   // some term is false
	relationInconclusive                                   // two or more terms undecided
)

func (st *solverState) evaluate(id IncompatibilityID) (incompatibilityRelation, Term) {
	var unsatisfied Term
	found := false
	for _, term := range st.arena[id].Terms {
		switch st.partial.relation(term) {
		case termContradicted:
			return relationContradicted, Term{}
		case termInconclusive:
			if found {
				return relationInconclusive, Term{}
			}
			unsatisfied, found = term, true
		}
	}
	if !found {
		return relationSatisfied, Term{}
	}
	return relationAlmostSatisfied, unsatisfied
}

// propagate drains the queue of changed packages, deriving the negation of
// the single undecided term of every almost-satisfied incompatibility. It
// stops at the first fully satisfied incompatibility and returns it.
func (st *solverState) propagate() (IncompatibilityID, bool) {
	for {
		pkg, ok := st.dequeue()
		if !ok {
			return noCause, false
		}

		ids := st.attachedTo(pkg)
		for i := len(ids) - 1; i >= 0; i-- {
			id := ids[i]
			relation, unsatisfied := st.evaluate(id)
			switch relation {
			case relationSatisfied:
				st.debug("conflict",
					"package", int(pkg),
					"incompatibility", st.arena[id].format(NumericNames, st.root),
				)
				st.clearQueue()
				return id, true
			case relationAlmostSatisfied:
				a := st.partial.derive(unsatisfied.Negate(), id)
				st.stats.Propagations++
				st.traceAssignment("derivation", a)
				st.enqueue(unsatisfied.Package)
			}
		}
	}
}

// decide picks the next package and version. It reports done when every
// required package has a version, and returns a NoVersions conflict when
// the chosen package has no candidate left.
func (st *solverState) decide() (conflict IncompatibilityID, hasConflict, done bool, err error) {
	pending := st.partial.pending()
	if len(pending) == 0 {
		return noCause, false, true, nil
	}

	best := PackageID(-1)
	var bestCandidates []Version
	for _, pkg := range pending {
		candidates, err := st.candidates(pkg)
		if err != nil {
			return noCause, false, false, err
		}
		if best < 0 || len(candidates) < len(bestCandidates) {
			best, bestCandidates = pkg, candidates
		}
		if len(bestCandidates) == 0 {
			break
		}
	}

	if len(bestCandidates) == 0 {
		term := Term{Package: best, Set: st.partial.allowed(best), Positive: true}
		id := st.addExternal(newNoVersionsIncompatibility(term))
		st.debug("no versions", "package", int(best), "allowed", term.Set.String())
		return id, true, false, nil
	}

	version := bestCandidates[0]
	a := st.partial.decide(best, version)
	if best != st.root {
		st.stats.Decisions++
	}
	st.debug("decision",
		"package", int(best),
		"version", version.String(),
		"level", a.level,
		"candidates", len(bestCandidates),
	)
	st.traceAssignment("decision", a)

	if key := (PackageVersion{Package: best, Version: version}); !st.expanded[key] {
		deps, err := st.dependenciesOf(best, version)
		if err != nil {
			return noCause, false, false, err
		}
		for _, dep := range deps {
			st.addExternal(newDependencyIncompatibility(best, version, dep))
		}
		st.expanded[key] = true
	}
	st.enqueue(best)
	return noCause, false, false, nil
}

// candidates returns the versions of pkg that are still allowed, newest
// first. With the precheck enabled, versions that would immediately satisfy
// an attached incompatibility are dropped unless that leaves nothing.
func (st *solverState) candidates(pkg PackageID) ([]Version, error) {
	versions, err := st.versionsOf(pkg)
	if err != nil {
		return nil, err
	}

	allowed := st.partial.allowed(pkg)
	var out []Version
	for _, v := range versions {
		if allowed.Contains(v) {
			out = append(out, v)
		}
	}
	if !st.options.ConflictPrecheck || len(out) == 0 {
		return out, nil
	}

	var filtered []Version
	for _, v := range out {
		if !st.wouldConflict(pkg, v) {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) == 0 {
		return out, nil
	}
	return filtered, nil
}

// wouldConflict reports whether selecting version for pkg would leave some
// attached incompatibility fully satisfied.
func (st *solverState) wouldConflict(pkg PackageID, version Version) bool {
	for _, id := range st.attachedTo(pkg) {
		satisfied := true
		for _, term := range st.arena[id].Terms {
			if term.Package == pkg {
				satisfied = term.SatisfiedBy(version)
			} else {
				satisfied = st.partial.relation(term) == termSatisfied
			}
			if !satisfied {
				break
			}
		}
		if satisfied {
			return true
		}
	}
	return false
}

// satisfier describes where the trail first satisfies an incompatibility.
type satisfier struct {
	index         int
	term          Term
	previousLevel int
	// difference is set when the satisfying assignment alone does not
	// satisfy term; its negation joins the resolvent.
	difference    Term
	hasDifference bool
}

func (st *solverState) findSatisfier(inc *Incompatibility) (satisfier, error) {
	trail := st.partial.trail
	found := satisfier{index: -1}
	for _, term := range inc.Terms {
		idx := st.partial.satisfierIndex(term)
		if idx < 0 {
			return satisfier{}, invariantf("conflict term %s is not satisfied", term)
		}
		if idx > found.index {
			if found.index >= 0 {
				found.previousLevel = max(found.previousLevel, trail[found.index].level)
			}
			found.index, found.term = idx, term
		} else {
			found.previousLevel = max(found.previousLevel, trail[idx].level)
		}
	}
	if found.index < 0 {
		return satisfier{}, invariantf("conflict without terms")
	}

	assigned := trail[found.index]
	var alone packageState
	alone.apply(assigned)
	if alone.relation(found.term) != termSatisfied {
		found.difference = assigned.term.difference(found.term)
		found.hasDifference = true
		if idx := st.partial.satisfierIndex(found.difference.Negate()); idx >= 0 && idx < found.index {
			found.previousLevel = max(found.previousLevel, trail[idx].level)
		}
	}
	return found, nil
}

// resolveConflict turns the conflicting incompatibility into one that can
// be propagated after a backjump. It reports failed when the learned
// incompatibility proves the root cannot be satisfied.
func (st *solverState) resolveConflict(conflict IncompatibilityID) (learned IncompatibilityID, failed bool, err error) {
	st.stats.Conflicts++
	id := conflict
	for {
		inc := &st.arena[id]
		if inc.isFailure(st.root) {
			st.failure = id
			st.debug("solve failed", "incompatibility", int(id))
			return id, true, nil
		}

		sat, err := st.findSatisfier(inc)
		if err != nil {
			return noCause, false, err
		}
		assigned := st.partial.trail[sat.index]

		if assigned.decided || sat.previousLevel < assigned.level {
			st.backjump(sat.previousLevel)
			if !st.attached[id] {
				st.attach(id)
				st.debug("learned", "incompatibility", inc.format(NumericNames, st.root))
			}
			for _, term := range inc.Terms {
				st.enqueue(term.Package)
			}
			return id, false, nil
		}

		if assigned.cause == noCause {
			return noCause, false, invariantf("derivation of %s has no cause", assigned.term)
		}
		cause := &st.arena[assigned.cause]

		terms := make([]Term, 0, len(inc.Terms)+len(cause.Terms)+1)
		for _, term := range inc.Terms {
			if term.Package != sat.term.Package {
				terms = append(terms, term)
			}
		}
		for _, term := range cause.Terms {
			if term.Package != sat.term.Package {
				terms = append(terms, term)
			}
		}
		if sat.hasDifference {
			terms = append(terms, sat.difference.Negate())
		}

		causeID := assigned.cause
		id = st.store(newDerivedIncompatibility(terms, id, causeID))
		st.debug("resolved",
			"incompatibility", st.arena[id].format(NumericNames, st.root),
			"satisfier", assigned.describe(NumericNames, st.root),
		)
	}
}

func (st *solverState) backjump(level int) {
	from := st.partial.level
	st.partial.backtrack(level)
	st.clearQueue()
	st.stats.Backjumps++
	st.debug("backjump", "from", from, "to", level)
}

// solve runs the loop to completion.
func (st *solverState) solve() (Status, error) {
	st.addExternal(newRootIncompatibility(st.root, st.rootVersion))
	st.enqueue(st.root)
	st.debug("seeded root", "package", int(st.root), "version", st.rootVersion.String(), "dependencies", len(st.rootDeps))

	for steps := 0; ; steps++ {
		if st.options.MaxSteps > 0 && steps >= st.options.MaxSteps {
			return StatusInternalError, ErrIterationLimit{Steps: st.options.MaxSteps}
		}

		conflict, hasConflict := st.propagate()
		if !hasConflict {
			var done bool
			var err error
			conflict, hasConflict, done, err = st.decide()
			if err != nil {
				return StatusInternalError, err
			}
			if done {
				st.debug("solve finished", "steps", steps, "decisions", st.stats.Decisions)
				return StatusOK, nil
			}
			if !hasConflict {
				continue
			}
		}

		_, failed, err := st.resolveConflict(conflict)
		if err != nil {
			return StatusInternalError, err
		}
		if failed {
			return StatusNoSolution, nil
		}
	}
}

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

// Package satcheck cross-checks resolution results against an independent
// SAT encoding of the same problem, solved with gini.
//
// Every reachable (package, version) pair becomes a boolean variable. The
// encoding says the root is selected, at most one version of each package
// is selected, and a selected version implies that each of its dependencies
// has some selected version inside the required range. The formula is
// satisfiable exactly when a valid resolution exists.
package satcheck

import (
	"sort"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"

	pubgrub "github.com/contriboss/elm-pubgrub"
)

const satisfiable = 1

// Problem is a resolution problem: a provider plus the root and its direct
// dependencies.
type Problem struct {
	Provider     pubgrub.DependencyProvider
	Root         pubgrub.PackageID
	RootVersion  pubgrub.Version
	Dependencies []pubgrub.Dependency
}

// encoding maps package versions to gini variables.
type encoding struct {
	problem  Problem
	g        *gini.Gini
	vars     map[pubgrub.PackageVersion]z.Var
	versions map[pubgrub.PackageID][]pubgrub.Version
	order    []pubgrub.PackageVersion
}

func newEncoding(p Problem) *encoding {
	return &encoding{
		problem:  p,
		g:        gini.New(),
		vars:     make(map[pubgrub.PackageVersion]z.Var),
		versions: make(map[pubgrub.PackageID][]pubgrub.Version),
	}
}

func (e *encoding) variable(pv pubgrub.PackageVersion) z.Var {
	if v, ok := e.vars[pv]; ok {
		return v
	}
	v := z.Var(len(e.vars) + 1)
	e.vars[pv] = v
	e.order = append(e.order, pv)
	return v
}

func (e *encoding) clause(lits ...z.Lit) {
	for _, m := range lits {
		e.g.Add(m)
	}
	e.g.Add(z.LitNull)
}

// versionsOf returns the versions of pkg, fetching them once. Unknown
// packages have none.
func (e *encoding) versionsOf(pkg pubgrub.PackageID) ([]pubgrub.Version, bool, error) {
	if versions, ok := e.versions[pkg]; ok {
		return versions, false, nil
	}
	var versions []pubgrub.Version
	if pkg == e.problem.Root {
		versions = []pubgrub.Version{e.problem.RootVersion}
	} else {
		var err error
		versions, err = e.problem.Provider.Versions(pkg)
		var notFound *pubgrub.PackageNotFoundError
		if errors.As(err, &notFound) {
			versions, err = nil, nil
		}
		if err != nil {
			return nil, false, errors.Wrapf(err, "versions of %s", pubgrub.NumericNames(pkg))
		}
	}
	e.versions[pkg] = versions
	return versions, true, nil
}

func (e *encoding) dependenciesOf(pv pubgrub.PackageVersion) ([]pubgrub.Dependency, error) {
	if pv.Package == e.problem.Root {
		return e.problem.Dependencies, nil
	}
	deps, err := e.problem.Provider.Dependencies(pv.Package, pv.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "dependencies of %s", pv)
	}
	return deps, nil
}

// build explores every package reachable from the root and adds its
// clauses.
func (e *encoding) build() error {
	queue := []pubgrub.PackageID{e.problem.Root}
	if _, _, err := e.versionsOf(e.problem.Root); err != nil {
		return err
	}
	root := e.variable(pubgrub.PackageVersion{Package: e.problem.Root, Version: e.problem.RootVersion})
	e.clause(root.Pos())

	for len(queue) > 0 {
		pkg := queue[0]
		queue = queue[1:]

		versions := e.versions[pkg]
		lits := make([]z.Var, len(versions))
		for i, v := range versions {
			lits[i] = e.variable(pubgrub.PackageVersion{Package: pkg, Version: v})
		}
		for i := range lits {
			for j := i + 1; j < len(lits); j++ {
				e.clause(lits[i].Neg(), lits[j].Neg())
			}
		}

		for i, v := range versions {
			deps, err := e.dependenciesOf(pubgrub.PackageVersion{Package: pkg, Version: v})
			if err != nil {
				return err
			}
			for _, dep := range deps {
				depVersions, fresh, err := e.versionsOf(dep.Package)
				if err != nil {
					return err
				}
				if fresh {
					queue = append(queue, dep.Package)
				}
				implied := []z.Lit{lits[i].Neg()}
				for _, dv := range depVersions {
					if dep.Range.Contains(dv) {
						implied = append(implied, e.variable(pubgrub.PackageVersion{Package: dep.Package, Version: dv}).Pos())
					}
				}
				e.clause(implied...)
			}
		}
	}
	return nil
}

// Satisfiable reports whether the problem has a solution. When it does, the
// returned solution is one such model, sorted by package ID.
func Satisfiable(p Problem) (bool, pubgrub.Solution, error) {
	e := newEncoding(p)
	if err := e.build(); err != nil {
		return false, nil, err
	}
	if e.g.Solve() != satisfiable {
		return false, nil, nil
	}

	var solution pubgrub.Solution
	for _, pv := range e.order {
		if e.g.Value(e.vars[pv].Pos()) {
			solution = append(solution, pv)
		}
	}
	sort.Slice(solution, func(i, j int) bool { return solution[i].Package < solution[j].Package })
	return true, solution, nil
}

// Verify checks that solution selects the root at its version, at most one
// version per package, only versions the provider knows, and satisfies
// every dependency of every selected version.
func Verify(p Problem, solution pubgrub.Solution) error {
	selected := make(map[pubgrub.PackageID]pubgrub.Version, len(solution))
	for _, pv := range solution {
		if prev, ok := selected[pv.Package]; ok {
			return errors.Errorf("%s selected twice (%s and %s)", pubgrub.NumericNames(pv.Package), prev, pv.Version)
		}
		selected[pv.Package] = pv.Version
	}

	if v, ok := selected[p.Root]; !ok || v != p.RootVersion {
		return errors.Errorf("root must be selected at %s", p.RootVersion)
	}

	e := newEncoding(p)
	for _, pv := range solution {
		versions, _, err := e.versionsOf(pv.Package)
		if err != nil {
			return err
		}
		known := false
		for _, v := range versions {
			if v == pv.Version {
				known = true
				break
			}
		}
		if !known {
			return errors.Errorf("%s is not a known version", pv)
		}

		deps, err := e.dependenciesOf(pv)
		if err != nil {
			return err
		}
		for _, dep := range deps {
			got, ok := selected[dep.Package]
			if !ok {
				return errors.Errorf("%s requires %s which is not selected", pv, dep)
			}
			if !dep.Range.Contains(got) {
				return errors.Errorf("%s requires %s but %s is selected", pv, dep, got)
			}
		}
	}
	return nil
}

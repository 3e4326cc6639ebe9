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

package satcheck_test

import (
	"fmt"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	pubgrub "github.com/contriboss/elm-pubgrub"
	"github.com/contriboss/elm-pubgrub/internal/satcheck"
)

func v(major, minor, patch int) pubgrub.Version {
	return pubgrub.NewVersion(major, minor, patch)
}

// randomProblem builds a registry of size packages with a few versions each
// and random dependency edges, including ones that no version satisfies.
func randomProblem(seed uint64, size int) satcheck.Problem {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	provider := pubgrub.NewMemoryProvider()

	versionsOf := make(map[pubgrub.PackageID][]pubgrub.Version)
	for id := 1; id <= size; id++ {
		pkg := pubgrub.PackageID(id)
		count := 1 + rng.IntN(4)
		seen := map[pubgrub.Version]bool{}
		for range count {
			ver := v(1+rng.IntN(3), rng.IntN(3), rng.IntN(2))
			if !seen[ver] {
				seen[ver] = true
				versionsOf[pkg] = append(versionsOf[pkg], ver)
			}
		}
	}

	randomRange := func(target pubgrub.PackageID) pubgrub.VersionRange {
		versions := versionsOf[target]
		base := versions[rng.IntN(len(versions))]
		switch rng.IntN(5) {
		case 0:
			return pubgrub.ExactRange(base)
		case 1:
			return pubgrub.UntilNextMinor(base)
		case 2:
			return pubgrub.UntilNextMajor(base)
		case 3:
			return pubgrub.AtLeast(base.NextMajor())
		default:
			return pubgrub.AnyRange()
		}
	}

	for id := 1; id <= size; id++ {
		pkg := pubgrub.PackageID(id)
		for _, ver := range versionsOf[pkg] {
			var deps []pubgrub.Dependency
			used := map[pubgrub.PackageID]bool{}
			for range rng.IntN(3) {
				target := pubgrub.PackageID(1 + rng.IntN(size))
				if target == pkg || used[target] {
					continue
				}
				used[target] = true
				deps = append(deps, pubgrub.Dependency{Package: target, Range: randomRange(target)})
			}
			provider.AddPackage(pkg, ver, deps)
		}
	}

	problem := satcheck.Problem{
		Provider:    provider,
		Root:        pubgrub.RootPackage,
		RootVersion: v(1, 0, 0),
	}
	used := map[pubgrub.PackageID]bool{}
	for range 1 + rng.IntN(3) {
		target := pubgrub.PackageID(1 + rng.IntN(size))
		if used[target] {
			continue
		}
		used[target] = true
		problem.Dependencies = append(problem.Dependencies, pubgrub.Dependency{Package: target, Range: randomRange(target)})
	}
	return problem
}

func solve(problem satcheck.Problem) *pubgrub.Solver {
	solver := pubgrub.NewSolver(problem.Provider, problem.Root, problem.RootVersion)
	for _, dep := range problem.Dependencies {
		solver.AddRootDependency(dep.Package, dep.Range)
	}
	return solver
}

var _ = Describe("Satisfiable", func() {
	It("finds a model for a simple chain", func() {
		provider := pubgrub.NewMemoryProvider()
		provider.AddPackage(1, v(1, 0, 0), []pubgrub.Dependency{{Package: 2, Range: pubgrub.UntilNextMajor(v(1, 0, 0))}})
		provider.AddPackage(2, v(1, 2, 0), nil)
		problem := satcheck.Problem{
			Provider:     provider,
			Root:         pubgrub.RootPackage,
			RootVersion:  v(1, 0, 0),
			Dependencies: []pubgrub.Dependency{{Package: 1, Range: pubgrub.AnyRange()}},
		}

		ok, model, err := satcheck.Satisfiable(problem)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(satcheck.Verify(problem, model)).To(Succeed())
	})

	It("reports an unsatisfiable requirement", func() {
		provider := pubgrub.NewMemoryProvider()
		provider.AddPackage(1, v(1, 0, 0), []pubgrub.Dependency{{Package: 2, Range: pubgrub.AtLeast(v(2, 0, 0))}})
		provider.AddPackage(2, v(1, 0, 0), nil)
		problem := satcheck.Problem{
			Provider:     provider,
			Root:         pubgrub.RootPackage,
			RootVersion:  v(1, 0, 0),
			Dependencies: []pubgrub.Dependency{{Package: 1, Range: pubgrub.AnyRange()}},
		}

		ok, _, err := satcheck.Satisfiable(problem)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("treats unknown packages as having no versions", func() {
		problem := satcheck.Problem{
			Provider:     pubgrub.NewMemoryProvider(),
			Root:         pubgrub.RootPackage,
			RootVersion:  v(1, 0, 0),
			Dependencies: []pubgrub.Dependency{{Package: 7, Range: pubgrub.AnyRange()}},
		}
		ok, _, err := satcheck.Satisfiable(problem)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Verify", func() {
	provider := pubgrub.NewMemoryProvider()
	provider.AddPackage(1, v(1, 0, 0), []pubgrub.Dependency{{Package: 2, Range: pubgrub.UntilNextMinor(v(1, 1, 0))}})
	provider.AddPackage(2, v(1, 1, 4), nil)
	provider.AddPackage(2, v(1, 2, 0), nil)
	problem := satcheck.Problem{
		Provider:     provider,
		Root:         pubgrub.RootPackage,
		RootVersion:  v(1, 0, 0),
		Dependencies: []pubgrub.Dependency{{Package: 1, Range: pubgrub.AnyRange()}},
	}

	It("accepts a valid solution", func() {
		Expect(satcheck.Verify(problem, pubgrub.Solution{
			{Package: pubgrub.RootPackage, Version: v(1, 0, 0)},
			{Package: 1, Version: v(1, 0, 0)},
			{Package: 2, Version: v(1, 1, 4)},
		})).To(Succeed())
	})

	It("rejects a version outside the required range", func() {
		err := satcheck.Verify(problem, pubgrub.Solution{
			{Package: pubgrub.RootPackage, Version: v(1, 0, 0)},
			{Package: 1, Version: v(1, 0, 0)},
			{Package: 2, Version: v(1, 2, 0)},
		})
		Expect(err).To(MatchError(ContainSubstring("but 1.2.0 is selected")))
	})

	It("rejects a missing dependency", func() {
		err := satcheck.Verify(problem, pubgrub.Solution{
			{Package: pubgrub.RootPackage, Version: v(1, 0, 0)},
			{Package: 1, Version: v(1, 0, 0)},
		})
		Expect(err).To(MatchError(ContainSubstring("not selected")))
	})

	It("rejects a solution without the root", func() {
		Expect(satcheck.Verify(problem, pubgrub.Solution{{Package: 1, Version: v(1, 0, 0)}})).ToNot(Succeed())
	})
})

var _ = Describe("Solver agreement", func() {
	for seed := uint64(1); seed <= 60; seed++ {
		It(fmt.Sprintf("agrees with the SAT encoding on generated registry %d", seed), func() {
			problem := randomProblem(seed, 4+int(seed%6))
			solver := solve(problem)
			status, _ := solver.Solve()
			Expect(status).ToNot(Equal(pubgrub.StatusInternalError))

			sat, _, err := satcheck.Satisfiable(problem)
			Expect(err).ToNot(HaveOccurred())

			if sat {
				Expect(status).To(Equal(pubgrub.StatusOK))
				Expect(satcheck.Verify(problem, solver.Solution())).To(Succeed())
			} else {
				Expect(status).To(Equal(pubgrub.StatusNoSolution))
				Expect(solver.ExplainFailure(nil)).To(ContainSubstring("version solving failed"))
			}
		})
	}
})

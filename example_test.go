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

package pubgrub_test

import (
	"fmt"

	pubgrub "github.com/contriboss/elm-pubgrub"
)

// ExampleSolver resolves a small Elm application.
func ExampleSolver() {
	names := pubgrub.NewNameTable("my/app")
	core := names.Intern("elm/core")
	html := names.Intern("elm/html")
	json := names.Intern("elm/json")

	major1 := pubgrub.MustParseVersionRange("1.0.0 <= v < 2.0.0")
	provider := pubgrub.NewMemoryProvider()
	provider.AddPackage(core, pubgrub.NewVersion(1, 0, 4), nil)
	provider.AddPackage(core, pubgrub.NewVersion(1, 0, 5), nil)
	provider.AddPackage(json, pubgrub.NewVersion(1, 1, 3), []pubgrub.Dependency{
		{Package: core, Range: major1},
	})
	provider.AddPackage(html, pubgrub.NewVersion(1, 0, 0), []pubgrub.Dependency{
		{Package: core, Range: major1},
		{Package: json, Range: major1},
	})

	solver := pubgrub.NewSolver(provider, pubgrub.RootPackage, pubgrub.NewVersion(1, 0, 0))
	solver.AddRootDependency(html, major1)

	status, err := solver.Solve()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(status)
	fmt.Print(solver.Solution().Sorted().Format(names.Resolve))

	// Output:
	// ok
	// my/app 1.0.0
	// elm/core 1.0.5
	// elm/html 1.0.0
	// elm/json 1.1.3
}

// ExampleLadder relaxes a lock file pin that no longer resolves.
func ExampleLadder() {
	names := pubgrub.NewNameTable("my/app")
	core := names.Intern("elm/core")
	json := names.Intern("elm/json")

	provider := pubgrub.NewMemoryProvider()
	provider.AddPackage(core, pubgrub.NewVersion(1, 0, 5), nil)
	provider.AddPackage(json, pubgrub.NewVersion(1, 1, 3), []pubgrub.Dependency{
		{Package: core, Range: pubgrub.MustParseVersionRange("1.0.0 <= v < 2.0.0")},
	})

	ladder := &pubgrub.Ladder{
		Provider:    provider,
		Root:        pubgrub.RootPackage,
		RootVersion: pubgrub.NewVersion(1, 0, 0),
		Pins: []pubgrub.PackageVersion{
			{Package: core, Version: pubgrub.NewVersion(1, 0, 3)}, // no longer published
			{Package: json, Version: pubgrub.NewVersion(1, 1, 3)},
		},
	}

	result := ladder.Solve()
	fmt.Println(result.Strategy, result.Status)
	fmt.Print(result.Solver.Solution().Sorted().Format(names.Resolve))

	// Output:
	// minor ok
	// my/app 1.0.0
	// elm/core 1.0.5
	// elm/json 1.1.3
}

// ExampleVersionSet shows the set algebra terms are built on.
func ExampleVersionSet() {
	major1 := pubgrub.SetOf(pubgrub.MustParseVersionRange("1.0.0 <= v < 2.0.0"))
	broken := pubgrub.SingletonSet(pubgrub.NewVersion(1, 3, 0))

	usable := major1.Difference(broken)
	fmt.Println(usable)
	fmt.Println(usable.Contains(pubgrub.NewVersion(1, 3, 0)))
	fmt.Println(usable.Complement())
	fmt.Println(usable.Union(broken).Equal(major1))

	// Output:
	// 1.0.0 <= v < 1.3.0 or 1.3.0 < v < 2.0.0
	// false
	// v < 1.0.0 or 1.3.0 or 2.0.0 <= v
	// true
}

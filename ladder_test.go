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
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyRange(t *testing.T) {
	t.Parallel()

	pinned := v(1, 2, 3)
	tests := []struct {
		strategy Strategy
		name     string
		want     string
	}{
		{StrategyExact, "exact", "1.2.3"},
		{StrategyUntilNextMinor, "minor", "1.2.3 <= v < 1.3.0"},
		{StrategyUntilNextMajor, "major", "1.2.3 <= v < 2.0.0"},
		{StrategyAny, "any", "any version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.strategy.Range(pinned).String())
			assert.Equal(t, tt.name, tt.strategy.String())

			parsed, err := ParseStrategy(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, parsed)
		})
	}

	_, err := ParseStrategy("loose")
	assert.Error(t, err)
	assert.Equal(t, "strategy(9)", Strategy(9).String())
}

func elmPins(t *testing.T, names *NameTable, pins map[string]Version) []PackageVersion {
	t.Helper()
	var out []PackageVersion
	for _, name := range []string{"elm/browser", "elm/core", "elm/html", "elm/json"} {
		ver, ok := pins[name]
		if !ok {
			continue
		}
		out = append(out, PackageVersion{Package: names.Intern(name), Version: ver})
	}
	return out
}

func TestLadderExactPinsHold(t *testing.T) {
	t.Parallel()

	names, provider := elmWorld()
	handler := &recordingHandler{}
	ladder := &Ladder{
		Provider:    provider,
		Root:        RootPackage,
		RootVersion: v(1, 0, 0),
		Pins: elmPins(t, names, map[string]Version{
			"elm/browser": v(1, 0, 1),
			"elm/core":    v(1, 0, 4),
			"elm/json":    v(1, 1, 2),
		}),
		Logger: slog.New(handler),
	}

	result := ladder.Solve()
	require.NoError(t, result.Err)
	require.Equal(t, StatusOK, result.Status)
	assert.Equal(t, StrategyExact, result.Strategy)
	assert.Len(t, handler.events("ladder rung"), 1)

	assert.Equal(t, "my/app 1.0.0\n"+
		"elm/browser 1.0.1\n"+
		"elm/core 1.0.4\n"+
		"elm/html 1.0.0\n"+
		"elm/json 1.1.2\n"+
		"elm/virtual-dom 1.0.3\n", result.Solver.Solution().Sorted().Format(names.Resolve))
}

func TestLadderRelaxesUntilSolvable(t *testing.T) {
	t.Parallel()

	names, provider := elmWorld()
	handler := &recordingHandler{}
	ladder := &Ladder{
		Provider:    provider,
		Root:        RootPackage,
		RootVersion: v(1, 0, 0),
		Pins: elmPins(t, names, map[string]Version{
			"elm/core": v(1, 0, 9), // newer than anything published
			"elm/json": v(1, 1, 2),
		}),
		Logger: slog.New(handler),
	}

	result := ladder.Solve()
	require.NoError(t, result.Err)
	require.Equal(t, StatusOK, result.Status)
	assert.Equal(t, StrategyAny, result.Strategy)

	rungs := handler.events("ladder rung")
	require.Len(t, rungs, 4)
	for i, want := range []string{"exact", "minor", "major", "any"} {
		assert.Equal(t, want, rungs[i]["strategy"].String())
	}

	core, _ := names.Lookup("elm/core")
	got, _ := result.Solver.SelectedVersion(core)
	assert.Equal(t, v(1, 0, 5), got)
}

func TestLadderCustomStrategies(t *testing.T) {
	t.Parallel()

	names, provider := elmWorld()
	ladder := &Ladder{
		Provider:    provider,
		Root:        RootPackage,
		RootVersion: v(1, 0, 0),
		Pins:        elmPins(t, names, map[string]Version{"elm/core": v(1, 0, 9)}),
		Strategies:  []Strategy{StrategyExact, StrategyUntilNextMajor},
	}

	result := ladder.Solve()
	assert.Equal(t, StatusNoSolution, result.Status)
	assert.Equal(t, StrategyUntilNextMajor, result.Strategy, "the last rung tried is reported")

	var noSolution *NoSolutionError
	require.ErrorAs(t, result.Err, &noSolution)
	assert.Contains(t, noSolution.WithNames(names.Resolve).Error(), "elm/core")
}

func TestLadderStopsOnProviderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("registry unavailable")
	ladder := &Ladder{
		Provider:    &scriptedProvider{versionsErr: boom},
		Root:        RootPackage,
		RootVersion: v(1, 0, 0),
		Pins:        []PackageVersion{{Package: 1, Version: v(1, 0, 0)}},
	}

	result := ladder.Solve()
	assert.Equal(t, StatusInternalError, result.Status)
	assert.Equal(t, StrategyExact, result.Strategy)
	assert.ErrorIs(t, result.Err, boom)
}

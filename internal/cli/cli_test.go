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

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSolvePrintsSelection(t *testing.T) {
	out, err := run(t, "solve", "../registry/testdata/app.yaml", "--verify")
	require.NoError(t, err)
	assert.Equal(t, "elm/browser 1.0.2\nelm/core 1.0.5\nelm/html 1.0.0\nelm/json 1.1.3\nelm/virtual-dom 1.0.3\nverified\n", out)
}

func TestSolveWithStrategy(t *testing.T) {
	out, err := run(t, "solve", "../registry/testdata/app.yaml", "--strategy", "exact")
	require.NoError(t, err)
	assert.Contains(t, out, "strategy: exact\n")
	assert.Contains(t, out, "elm/browser 1.0.1\n")
	assert.Contains(t, out, "elm/json 1.1.2\n")
}

func TestSolveExplainsFailure(t *testing.T) {
	out, err := run(t, "solve", "../registry/testdata/conflict.toml", "--verify")
	require.ErrorIs(t, err, ErrNoSolution)
	assert.Contains(t, out, "author/a 1.0.0 depends on author/b 2.0.0 <= v")
	assert.Contains(t, out, "version solving failed")
	assert.Contains(t, out, "verified\n")
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", "../registry/testdata/app.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "ok: solver and SAT encoding agree")
}

func TestBadInput(t *testing.T) {
	_, err := run(t, "solve", "testdata/missing.yaml")
	assert.ErrorContains(t, err, "not found")

	_, err = run(t, "solve", "../registry/testdata/app.yaml", "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid --log-level")

	_, err = run(t, "solve", "../registry/testdata/app.yaml", "--strategy", "newest")
	assert.ErrorContains(t, err, "unknown strategy")

	_, err = run(t, "solve", "../registry/testdata/app.yaml", "--root-version", "2")
	assert.ErrorContains(t, err, "--root-version")
}

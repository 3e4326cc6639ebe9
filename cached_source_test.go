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
	"testing"
)

// mockCountingSource tracks how many times Versions and Dependencies are called
type mockCountingSource struct {
	source        DependencyProvider
	versionsCalls int
	depsCalls     int
}

func (m *mockCountingSource) Versions(pkg PackageID) ([]Version, error) {
	m.versionsCalls++
	return m.source.Versions(pkg)
}

func (m *mockCountingSource) Dependencies(pkg PackageID, version Version) ([]Dependency, error) {
	m.depsCalls++
	return m.source.Dependencies(pkg, version)
}

// scriptedProvider returns fixed answers, including ones that break the
// provider contract.
type scriptedProvider struct {
	versions    map[PackageID][]Version
	deps        map[PackageVersion][]Dependency
	versionsErr error
	depsErr     error
}

func (p *scriptedProvider) Versions(pkg PackageID) ([]Version, error) {
	if p.versionsErr != nil {
		return nil, p.versionsErr
	}
	return p.versions[pkg], nil
}

func (p *scriptedProvider) Dependencies(pkg PackageID, version Version) ([]Dependency, error) {
	if p.depsErr != nil {
		return nil, p.depsErr
	}
	return p.deps[PackageVersion{Package: pkg, Version: version}], nil
}

func TestProviderCache_Versions(t *testing.T) {
	inner := NewMemoryProvider()
	inner.AddPackage(1, v(1, 0, 0), nil)
	inner.AddPackage(1, v(2, 0, 0), nil)

	mock := &mockCountingSource{source: inner}
	cache := newProviderCache(mock)

	versions1, err := cache.Versions(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(versions1) != 2 || versions1[0] != v(2, 0, 0) {
		t.Fatalf("expected [2.0.0 1.0.0], got %v", versions1)
	}
	if mock.versionsCalls != 1 {
		t.Fatalf("expected 1 call to underlying source, got %d", mock.versionsCalls)
	}

	// Second call should hit the cache
	versions2, err := cache.Versions(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(versions2) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions2))
	}
	if mock.versionsCalls != 1 {
		t.Fatalf("expected still 1 call to underlying source, got %d", mock.versionsCalls)
	}
	if cache.hits != 1 || cache.misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d and %d", cache.hits, cache.misses)
	}
}

func TestProviderCache_Dependencies(t *testing.T) {
	inner := NewMemoryProvider()
	deps := []Dependency{{Package: 2, Range: ExactRange(v(1, 0, 0))}}
	inner.AddPackage(1, v(1, 0, 0), deps)
	inner.AddPackage(1, v(1, 1, 0), nil)

	mock := &mockCountingSource{source: inner}
	cache := newProviderCache(mock)

	for range 3 {
		got, err := cache.Dependencies(1, v(1, 0, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0] != deps[0] {
			t.Fatalf("expected %v, got %v", deps, got)
		}
	}
	if mock.depsCalls != 1 {
		t.Fatalf("expected 1 call to underlying source, got %d", mock.depsCalls)
	}

	// A different version is a different key.
	if _, err := cache.Dependencies(1, v(1, 1, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.depsCalls != 2 {
		t.Fatalf("expected 2 calls to underlying source, got %d", mock.depsCalls)
	}
	if cache.hits != 2 || cache.misses != 2 {
		t.Errorf("expected 2 hits and 2 misses, got %d and %d", cache.hits, cache.misses)
	}
}

func TestProviderCache_UnknownPackageIsEmpty(t *testing.T) {
	mock := &mockCountingSource{source: NewMemoryProvider()}
	cache := newProviderCache(mock)

	for range 2 {
		versions, err := cache.Versions(7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(versions) != 0 {
			t.Fatalf("expected no versions, got %v", versions)
		}
	}
	if mock.versionsCalls != 1 {
		t.Fatalf("expected the empty answer to be cached, got %d calls", mock.versionsCalls)
	}
}

func TestProviderCache_ProviderErrors(t *testing.T) {
	boom := errors.New("registry unavailable")
	cache := newProviderCache(&scriptedProvider{versionsErr: boom, depsErr: boom})

	_, err := cache.Versions(3)
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *ProviderError, got %T", err)
	}
	if provErr.Package != 3 || provErr.Version != nil {
		t.Fatalf("unexpected error fields: %+v", provErr)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if got, want := err.Error(), "failed to get versions for #3: registry unavailable"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}

	_, err = cache.Dependencies(3, v(1, 2, 3))
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *ProviderError, got %T", err)
	}
	if provErr.Version == nil || *provErr.Version != v(1, 2, 3) {
		t.Fatalf("expected version 1.2.3 on error, got %+v", provErr.Version)
	}
	if got, want := err.Error(), "failed to get dependencies for #3 1.2.3: registry unavailable"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestProviderCache_ContractViolations(t *testing.T) {
	tests := []struct {
		name     string
		versions []Version
	}{
		{"ascending", []Version{v(1, 0, 0), v(2, 0, 0)}},
		{"duplicate", []Version{v(2, 0, 0), v(2, 0, 0)}},
		{"unsorted tail", []Version{v(3, 0, 0), v(1, 0, 0), v(2, 0, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newProviderCache(&scriptedProvider{
				versions: map[PackageID][]Version{1: tt.versions},
			})
			_, err := cache.Versions(1)
			var contract *ContractError
			if !errors.As(err, &contract) {
				t.Fatalf("expected *ContractError, got %v", err)
			}
			if contract.Package != 1 {
				t.Fatalf("expected package 1, got %d", contract.Package)
			}
		})
	}

	cache := newProviderCache(&scriptedProvider{
		deps: map[PackageVersion][]Dependency{
			{Package: 1, Version: v(1, 0, 0)}: {{Package: -4, Range: AnyRange()}},
		},
	})
	_, err := cache.Dependencies(1, v(1, 0, 0))
	var contract *ContractError
	if !errors.As(err, &contract) {
		t.Fatalf("expected *ContractError for negative package ID, got %v", err)
	}
}

func TestCombinedProvider(t *testing.T) {
	local := NewMemoryProvider()
	local.AddPackage(1, v(1, 0, 0), []Dependency{{Package: 2, Range: AnyRange()}})
	remote := NewMemoryProvider()
	remote.AddPackage(1, v(1, 0, 0), nil)
	remote.AddPackage(1, v(2, 0, 0), nil)
	remote.AddPackage(2, v(0, 1, 0), nil)

	combined := CombinedProvider{local, remote}

	versions, err := combined.Versions(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(versions) != 2 || versions[0] != v(2, 0, 0) || versions[1] != v(1, 0, 0) {
		t.Fatalf("expected merged [2.0.0 1.0.0], got %v", versions)
	}

	deps, err := combined.Dependencies(1, v(1, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) != 1 {
		t.Fatalf("expected the first provider's dependencies, got %v", deps)
	}

	if _, err := combined.Dependencies(2, v(0, 1, 0)); err != nil {
		t.Fatalf("expected fallthrough to remote, got %v", err)
	}

	_, err = combined.Versions(9)
	var notFound *PackageNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *PackageNotFoundError, got %v", err)
	}

	_, err = combined.Dependencies(1, v(9, 9, 9))
	var versionNotFound *PackageVersionNotFoundError
	if !errors.As(err, &versionNotFound) {
		t.Fatalf("expected *PackageVersionNotFoundError, got %v", err)
	}
}

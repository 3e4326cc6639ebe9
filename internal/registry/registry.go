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

// Package registry loads package registries from YAML or TOML files into a
// name table and an in-memory dependency provider.
//
// A registry file describes the root project and every package version the
// solver may choose from:
//
//	root:
//	  name: my/app
//	  version: 1.0.0
//	  dependencies:
//	    elm/json: "1.0.0 <= v < 2.0.0"
//	  pins:
//	    elm/json: 1.1.2
//	packages:
//	  elm/json:
//	    1.1.3:
//	      elm/core: "1.0.0 <= v < 2.0.0"
//	  elm/core:
//	    1.0.5: {}
package registry

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	pubgrub "github.com/contriboss/elm-pubgrub"
)

// Format is the encoding of a registry file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.Errorf("unsupported registry file %q: expected .yaml, .yml or .toml", path)
	}
}

// document is the on-disk shape shared by both formats.
type document struct {
	Root     rootDocument                            `yaml:"root" toml:"root"`
	Packages map[string]map[string]map[string]string `yaml:"packages" toml:"packages"`
}

type rootDocument struct {
	Name         string            `yaml:"name" toml:"name"`
	Version      string            `yaml:"version" toml:"version"`
	Dependencies map[string]string `yaml:"dependencies" toml:"dependencies"`
	Pins         map[string]string `yaml:"pins" toml:"pins"`
}

// Registry is a loaded registry file.
type Registry struct {
	Names       *pubgrub.NameTable
	Provider    *pubgrub.MemoryProvider
	RootVersion pubgrub.Version
	// RootDependencies are the root's declared constraints, sorted by name.
	RootDependencies []pubgrub.Dependency
	// Pins are previously chosen versions of direct dependencies, used by
	// the strategy ladder.
	Pins []pubgrub.PackageVersion
}

// Load reads and parses the registry file at path.
func Load(path string) (*Registry, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading registry %s", path)
	}
	reg, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "loading registry %s", path)
	}
	return reg, nil
}

// Parse decodes a registry document.
func Parse(data []byte, format Format) (*Registry, error) {
	var doc document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding yaml")
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding toml")
		}
	default:
		return nil, errors.Errorf("unknown registry format %q", format)
	}
	return build(&doc)
}

func build(doc *document) (*Registry, error) {
	if doc.Root.Name == "" {
		return nil, errors.New("root.name is required")
	}
	rootVersion, err := ParseVersion(doc.Root.Version)
	if err != nil {
		return nil, errors.Wrap(err, "root.version")
	}

	reg := &Registry{
		Names:       pubgrub.NewNameTable(doc.Root.Name),
		Provider:    pubgrub.NewMemoryProvider(),
		RootVersion: rootVersion,
	}

	// Intern in sorted order so IDs do not depend on map iteration.
	for _, name := range sortedKeys(doc.Packages) {
		reg.Names.Intern(name)
	}

	for _, name := range sortedKeys(doc.Root.Dependencies) {
		r, err := pubgrub.ParseVersionRange(doc.Root.Dependencies[name])
		if err != nil {
			return nil, errors.Wrapf(err, "root dependency %s", name)
		}
		reg.RootDependencies = append(reg.RootDependencies, pubgrub.Dependency{Package: reg.Names.Intern(name), Range: r})
	}

	for _, name := range sortedKeys(doc.Root.Pins) {
		v, err := ParseVersion(doc.Root.Pins[name])
		if err != nil {
			return nil, errors.Wrapf(err, "pin %s", name)
		}
		reg.Pins = append(reg.Pins, pubgrub.PackageVersion{Package: reg.Names.Intern(name), Version: v})
	}

	for _, name := range sortedKeys(doc.Packages) {
		pkg := reg.Names.Intern(name)
		for _, raw := range sortedKeys(doc.Packages[name]) {
			v, err := ParseVersion(raw)
			if err != nil {
				return nil, errors.Wrapf(err, "package %s", name)
			}
			edges := doc.Packages[name][raw]
			deps := make([]pubgrub.Dependency, 0, len(edges))
			for _, depName := range sortedKeys(edges) {
				r, err := pubgrub.ParseVersionRange(edges[depName])
				if err != nil {
					return nil, errors.Wrapf(err, "package %s %s dependency %s", name, raw, depName)
				}
				deps = append(deps, pubgrub.Dependency{Package: reg.Names.Intern(depName), Range: r})
			}
			reg.Provider.AddPackage(pkg, v, deps)
		}
	}
	return reg, nil
}

// ParseVersion parses a strict MAJOR.MINOR.PATCH version. Pre-release and
// build metadata are rejected because the solver orders plain triples only.
func ParseVersion(s string) (pubgrub.Version, error) {
	sv, err := semver.StrictNewVersion(strings.TrimSpace(s))
	if err != nil {
		return pubgrub.Version{}, errors.Wrapf(err, "invalid version %q", s)
	}
	if sv.Prerelease() != "" || sv.Metadata() != "" {
		return pubgrub.Version{}, errors.Errorf("invalid version %q: pre-release and build metadata are not supported", s)
	}
	return pubgrub.NewVersion(int(sv.Major()), int(sv.Minor()), int(sv.Patch())), nil
}

// NewSolver creates a solver for the registry's root with its declared
// dependencies added. A dependency the solver rejects, such as one on the
// root itself or one with an empty range, is an error.
func (r *Registry) NewSolver(opts ...pubgrub.SolverOption) (*pubgrub.Solver, error) {
	solver := pubgrub.NewSolver(r.Provider, pubgrub.RootPackage, r.RootVersion, opts...)
	for _, dep := range r.RootDependencies {
		if !solver.AddRootDependency(dep.Package, dep.Range) {
			return nil, errors.Errorf("root dependency %s %s rejected", r.Names.Resolve(dep.Package), dep.Range)
		}
	}
	return solver, nil
}

// Ladder returns a strategy ladder over the registry's pins.
func (r *Registry) Ladder(strategies []pubgrub.Strategy, opts ...pubgrub.SolverOption) *pubgrub.Ladder {
	return &pubgrub.Ladder{
		Provider:    r.Provider,
		Root:        pubgrub.RootPackage,
		RootVersion: r.RootVersion,
		Pins:        r.Pins,
		Strategies:  strategies,
		Options:     opts,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

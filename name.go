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

import "unique"

// Name is an interned package name. Equal names share one handle, so they
// compare as cheaply as the PackageIDs they map to.
type Name = unique.Handle[string]

// MakeName creates an interned Name from a string.
func MakeName(s string) Name {
	return unique.Make(s)
}

// NameTable assigns dense PackageIDs to package names.
//
// The root package always gets RootPackage (0). The table is the interning
// table the solver expects its caller to own: build it while reading
// manifests or registry data, hand IDs to the solver, and pass Resolve as the
// NameResolver when rendering explanations.
//
// A NameTable is not safe for concurrent mutation.
type NameTable struct {
	ids   map[Name]PackageID
	names []Name
}

// NewNameTable creates a table whose root package is called rootName.
func NewNameTable(rootName string) *NameTable {
	root := MakeName(rootName)
	return &NameTable{
		ids:   map[Name]PackageID{root: RootPackage},
		names: []Name{root},
	}
}

// Intern returns the ID for name, assigning the next free one if needed.
func (t *NameTable) Intern(name string) PackageID {
	handle := MakeName(name)
	if id, ok := t.ids[handle]; ok {
		return id
	}
	id := PackageID(len(t.names))
	t.ids[handle] = id
	t.names = append(t.names, handle)
	return id
}

// Lookup returns the ID of a name that was already interned.
func (t *NameTable) Lookup(name string) (PackageID, bool) {
	id, ok := t.ids[MakeName(name)]
	return id, ok
}

// Resolve returns the name of pkg, or the numeric form for unknown IDs.
// Its signature matches NameResolver.
func (t *NameTable) Resolve(pkg PackageID) string {
	if pkg < 0 || int(pkg) >= len(t.names) {
		return NumericNames(pkg)
	}
	return t.names[pkg].Value()
}

// Len returns the number of interned packages, root included.
func (t *NameTable) Len() int {
	return len(t.names)
}

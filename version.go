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
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Version is a three-component package version (major.minor.patch).
//
// Versions are plain values: they are compared with Compare and copied freely.
// Registry packages never carry pre-release or build metadata, so the
// ordering is purely lexicographic over the three components.
type Version struct {
	Major int
	Minor int
	Patch int
}

// NewVersion returns the version major.minor.patch.
func NewVersion(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// ParseVersion parses a version of the form "1.2.3".
//
// All three components are required and must be non-negative integers.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Version{}, errors.Errorf("invalid version %q: expected MAJOR.MINOR.PATCH", s)
	}

	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, errors.Errorf("invalid version %q: bad component %q", s, part)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParseVersion is like ParseVersion but panics on malformed input.
// Intended for tests and static tables.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the dotted form of the version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or +1 depending on whether v is lower than, equal to,
// or higher than other.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return compareInts(v.Major, other.Major)
	case v.Minor != other.Minor:
		return compareInts(v.Minor, other.Minor)
	default:
		return compareInts(v.Patch, other.Patch)
	}
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// NextMinor returns major.(minor+1).0.
func (v Version) NextMinor() Version {
	return Version{Major: v.Major, Minor: v.Minor + 1}
}

// NextMajor returns (major+1).0.0.
func (v Version) NextMajor() Version {
	return Version{Major: v.Major + 1}
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

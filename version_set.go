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
	"iter"
	"slices"
	"strings"
)

// VersionSet is a union of disjoint VersionRanges.
//
// Dependency constraints are always single ranges, but the solver has to
// reason about their negations and differences ("not 1.0.0 <= v < 2.0.0"),
// which are not contiguous. Ranges are kept sorted, non-empty and merged
// whenever they touch, so two sets holding the same versions compare equal
// range by range.
//
// The zero value is the empty set.
type VersionSet struct {
	ranges []VersionRange
}

// EmptySet returns the set holding no version.
func EmptySet() VersionSet {
	return VersionSet{}
}

// FullSet returns the set holding every version.
func FullSet() VersionSet {
	return VersionSet{ranges: []VersionRange{AnyRange()}}
}

// SetOf returns the set holding exactly the versions of r.
func SetOf(r VersionRange) VersionSet {
	if r = normalizeRange(r); r.Empty {
		return VersionSet{}
	}
	return VersionSet{ranges: []VersionRange{r}}
}

// SingletonSet returns the set holding only v.
func SingletonSet(v Version) VersionSet {
	return SetOf(ExactRange(v))
}

func newVersionSet(ranges []VersionRange) VersionSet {
	return VersionSet{ranges: normalizeRanges(ranges)}
}

// normalizeRanges drops empty ranges, sorts by lower bound and merges ranges
// that overlap or touch.
func normalizeRanges(ranges []VersionRange) []VersionRange {
	filtered := make([]VersionRange, 0, len(ranges))
	for _, r := range ranges {
		if !r.Empty {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	slices.SortFunc(filtered, func(a, b VersionRange) int {
		return compareLower(a.Lower, b.Lower)
	})

	merged := filtered[:1]
	for _, current := range filtered[1:] {
		last := &merged[len(merged)-1]
		if gapBetween(last.Upper, current.Lower) {
			merged = append(merged, current)
			continue
		}
		if compareUpper(current.Upper, last.Upper) > 0 {
			last.Upper = current.Upper
		}
	}
	return merged
}

// IsEmpty reports whether the set holds no version.
func (s VersionSet) IsEmpty() bool {
	return len(s.ranges) == 0
}

// IsFull reports whether the set holds every version.
func (s VersionSet) IsFull() bool {
	return len(s.ranges) == 1 && s.ranges[0].IsAny()
}

// Ranges iterates over the disjoint ranges of the set in ascending order.
func (s VersionSet) Ranges() iter.Seq[VersionRange] {
	return slices.Values(s.ranges)
}

// AsRange returns the set as a single range when it is contiguous.
func (s VersionSet) AsRange() (VersionRange, bool) {
	switch len(s.ranges) {
	case 0:
		return EmptyRange(), true
	case 1:
		return s.ranges[0], true
	default:
		return VersionRange{}, false
	}
}

// Contains reports whether v is in the set.
func (s VersionSet) Contains(v Version) bool {
	for _, r := range s.ranges {
		if r.Contains(v) {
			return true
		}
	}
	return false
}

// Union returns the versions in either set.
func (s VersionSet) Union(other VersionSet) VersionSet {
	all := make([]VersionRange, 0, len(s.ranges)+len(other.ranges))
	all = append(all, s.ranges...)
	all = append(all, other.ranges...)
	return newVersionSet(all)
}

// Intersection returns the versions in both sets.
func (s VersionSet) Intersection(other VersionSet) VersionSet {
	if s.IsEmpty() || other.IsEmpty() {
		return VersionSet{}
	}

	result := make([]VersionRange, 0, len(s.ranges))
	i, j := 0, 0
	for i < len(s.ranges) && j < len(other.ranges) {
		if r := Intersect(s.ranges[i], other.ranges[j]); !r.Empty {
			result = append(result, r)
		}
		if compareUpper(s.ranges[i].Upper, other.ranges[j].Upper) < 0 {
			i++
		} else {
			j++
		}
	}
	return newVersionSet(result)
}

// Complement returns every version not in the set.
func (s VersionSet) Complement() VersionSet {
	if s.IsEmpty() {
		return FullSet()
	}

	gaps := make([]VersionRange, 0, len(s.ranges)+1)
	lower := Unbounded()
	for _, r := range s.ranges {
		if !r.Lower.Unbounded {
			gaps = append(gaps, NewRange(lower, r.Lower.flip()))
		}
		if r.Upper.Unbounded {
			return newVersionSet(gaps)
		}
		lower = r.Upper.flip()
	}
	gaps = append(gaps, NewRange(lower, Unbounded()))
	return newVersionSet(gaps)
}

// Difference returns the versions in s but not in other.
func (s VersionSet) Difference(other VersionSet) VersionSet {
	return s.Intersection(other.Complement())
}

// IsSubset reports whether every version of s is in other.
func (s VersionSet) IsSubset(other VersionSet) bool {
	return s.Difference(other).IsEmpty()
}

// IsDisjoint reports whether s and other share no version.
func (s VersionSet) IsDisjoint(other VersionSet) bool {
	return s.Intersection(other).IsEmpty()
}

// Equal reports whether both sets hold the same versions.
func (s VersionSet) Equal(other VersionSet) bool {
	return slices.EqualFunc(s.ranges, other.ranges, VersionRange.Equal)
}

// String joins the ranges with " or ".
func (s VersionSet) String() string {
	if s.IsEmpty() {
		return "no version"
	}
	parts := make([]string, len(s.ranges))
	for i, r := range s.ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, " or ")
}

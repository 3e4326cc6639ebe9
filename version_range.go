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

import "fmt"

// VersionRange is a contiguous set of versions between two bounds.
//
// Examples:
//   - AnyRange()                     every version
//   - ExactRange(1.2.3)              1.2.3 only
//   - UntilNextMinor(1.2.3)          1.2.3 <= v < 1.3.0
//   - UntilNextMajor(1.2.3)          1.2.3 <= v < 2.0.0
//
// The zero value is not a valid range; use the constructors. A range whose
// bounds cross (or meet with an exclusive side) is normalised to Empty.
type VersionRange struct {
	Lower Bound
	Upper Bound
	Empty bool
}

// NewRange builds the range between lower and upper, marking it empty when
// the bounds cross.
func NewRange(lower, upper Bound) VersionRange {
	if crossed(lower, upper) {
		return EmptyRange()
	}
	return VersionRange{Lower: lower, Upper: upper}
}

// normalizeRange turns a literal range whose bounds cross into EmptyRange.
func normalizeRange(r VersionRange) VersionRange {
	if r.Empty {
		return EmptyRange()
	}
	return NewRange(r.Lower, r.Upper)
}

// AnyRange returns the range holding every version.
func AnyRange() VersionRange {
	return VersionRange{Lower: Unbounded(), Upper: Unbounded()}
}

// EmptyRange returns the range holding no version.
func EmptyRange() VersionRange {
	return VersionRange{Lower: Unbounded(), Upper: Unbounded(), Empty: true}
}

// ExactRange returns the range holding only v.
func ExactRange(v Version) VersionRange {
	return VersionRange{Lower: Inclusive(v), Upper: Inclusive(v)}
}

// UntilNextMinor returns v <= x < major.(minor+1).0.
func UntilNextMinor(v Version) VersionRange {
	return VersionRange{Lower: Inclusive(v), Upper: Exclusive(v.NextMinor())}
}

// UntilNextMajor returns v <= x < (major+1).0.0.
func UntilNextMajor(v Version) VersionRange {
	return VersionRange{Lower: Inclusive(v), Upper: Exclusive(v.NextMajor())}
}

// AtLeast returns v <= x.
func AtLeast(v Version) VersionRange {
	return VersionRange{Lower: Inclusive(v), Upper: Unbounded()}
}

// Between returns lower <= x < upper, the shape of every Elm constraint.
func Between(lower, upper Version) VersionRange {
	return NewRange(Inclusive(lower), Exclusive(upper))
}

// IsAny reports whether r holds every version.
func (r VersionRange) IsAny() bool {
	return !r.Empty && r.Lower.Unbounded && r.Upper.Unbounded
}

// Exact returns the single version r holds, if it holds exactly one.
func (r VersionRange) Exact() (Version, bool) {
	if r.Empty || r.Lower.Unbounded || r.Upper.Unbounded {
		return Version{}, false
	}
	if !r.Lower.Inclusive || !r.Upper.Inclusive || r.Lower.Version != r.Upper.Version {
		return Version{}, false
	}
	return r.Lower.Version, true
}

// Contains reports whether v lies in r. Every other membership test in the
// package is built on this one.
func (r VersionRange) Contains(v Version) bool {
	if r.Empty {
		return false
	}
	return r.Lower.admitsAbove(v) && r.Upper.admitsBelow(v)
}

// Intersect returns the versions held by both a and b. It is associative
// and commutative, and empty whenever either side is.
func Intersect(a, b VersionRange) VersionRange {
	if a.Empty || b.Empty {
		return EmptyRange()
	}
	lower := a.Lower
	if compareLower(b.Lower, lower) > 0 {
		lower = b.Lower
	}
	upper := a.Upper
	if compareUpper(b.Upper, upper) < 0 {
		upper = b.Upper
	}
	return NewRange(lower, upper)
}

// Intersect is the method form of the package-level Intersect.
func (r VersionRange) Intersect(other VersionRange) VersionRange {
	return Intersect(r, other)
}

// IsSubsetOf reports whether every version in r is also in other.
func (r VersionRange) IsSubsetOf(other VersionRange) bool {
	if r.Empty {
		return true
	}
	if other.Empty {
		return false
	}
	return compareLower(other.Lower, r.Lower) <= 0 && compareUpper(r.Upper, other.Upper) <= 0
}

// Overlaps reports whether r and other share at least one version.
func (r VersionRange) Overlaps(other VersionRange) bool {
	return !Intersect(r, other).Empty
}

// Equal reports whether both ranges hold the same versions.
func (r VersionRange) Equal(other VersionRange) bool {
	if r.Empty || other.Empty {
		return r.Empty == other.Empty
	}
	return compareLower(r.Lower, other.Lower) == 0 && compareUpper(r.Upper, other.Upper) == 0
}

// String renders the range in the registry's constraint notation,
// e.g. "1.0.0 <= v < 2.0.0".
func (r VersionRange) String() string {
	if r.Empty {
		return "no version"
	}
	if r.IsAny() {
		return "any version"
	}
	if v, ok := r.Exact(); ok {
		return v.String()
	}

	lowerOp, upperOp := "<", "<"
	if r.Lower.Inclusive {
		lowerOp = "<="
	}
	if r.Upper.Inclusive {
		upperOp = "<="
	}

	switch {
	case r.Lower.Unbounded:
		return fmt.Sprintf("v %s %s", upperOp, r.Upper.Version)
	case r.Upper.Unbounded:
		return fmt.Sprintf("%s %s v", r.Lower.Version, lowerOp)
	default:
		return fmt.Sprintf("%s %s v %s %s", r.Lower.Version, lowerOp, upperOp, r.Upper.Version)
	}
}

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

// Bound is one end of a VersionRange.
//
// An unbounded lower bound stands for -∞ and an unbounded upper bound for +∞;
// Version and Inclusive are ignored when Unbounded is set. Whether a bound is
// a lower or an upper one is decided by the field of VersionRange that holds
// it, so the comparison helpers come in pairs.
type Bound struct {
	Version   Version
	Inclusive bool
	Unbounded bool
}

// Inclusive returns a finite bound that includes v.
func Inclusive(v Version) Bound {
	return Bound{Version: v, Inclusive: true}
}

// Exclusive returns a finite bound that excludes v.
func Exclusive(v Version) Bound {
	return Bound{Version: v}
}

// Unbounded returns an infinite bound.
func Unbounded() Bound {
	return Bound{Unbounded: true, Inclusive: true}
}

// admitsAbove reports whether a lower bound lets v through.
func (b Bound) admitsAbove(v Version) bool {
	if b.Unbounded {
		return true
	}
	cmp := v.Compare(b.Version)
	return cmp > 0 || (cmp == 0 && b.Inclusive)
}

// admitsBelow reports whether an upper bound lets v through.
func (b Bound) admitsBelow(v Version) bool {
	if b.Unbounded {
		return true
	}
	cmp := v.Compare(b.Version)
	return cmp < 0 || (cmp == 0 && b.Inclusive)
}

// compareLower orders two lower bounds. -∞ sorts first and, for equal
// versions, an inclusive bound admits more and therefore sorts first.
func compareLower(a, b Bound) int {
	switch {
	case a.Unbounded && b.Unbounded:
		return 0
	case a.Unbounded:
		return -1
	case b.Unbounded:
		return 1
	}
	if cmp := a.Version.Compare(b.Version); cmp != 0 {
		return cmp
	}
	switch {
	case a.Inclusive == b.Inclusive:
		return 0
	case a.Inclusive:
		return -1
	default:
		return 1
	}
}

// compareUpper orders two upper bounds. +∞ sorts last and, for equal
// versions, an inclusive bound admits more and therefore sorts last.
func compareUpper(a, b Bound) int {
	switch {
	case a.Unbounded && b.Unbounded:
		return 0
	case a.Unbounded:
		return 1
	case b.Unbounded:
		return -1
	}
	if cmp := a.Version.Compare(b.Version); cmp != 0 {
		return cmp
	}
	switch {
	case a.Inclusive == b.Inclusive:
		return 0
	case a.Inclusive:
		return 1
	default:
		return -1
	}
}

// crossed reports whether an upper bound lies strictly below a lower bound,
// i.e. the range [lower, upper] holds no version at all.
func crossed(lower, upper Bound) bool {
	if lower.Unbounded || upper.Unbounded {
		return false
	}
	cmp := upper.Version.Compare(lower.Version)
	if cmp != 0 {
		return cmp < 0
	}
	return !upper.Inclusive || !lower.Inclusive
}

// gapBetween reports whether there is room for versions strictly between an
// upper bound and a following lower bound. Used to decide if two adjacent
// ranges can be merged into one.
func gapBetween(upper, lower Bound) bool {
	if upper.Unbounded || lower.Unbounded {
		return false
	}
	cmp := upper.Version.Compare(lower.Version)
	if cmp != 0 {
		return cmp < 0
	}
	return !upper.Inclusive && !lower.Inclusive
}

// flip turns the upper bound of one range into the lower bound of the range
// right above it, or vice versa.
func (b Bound) flip() Bound {
	if b.Unbounded {
		return b
	}
	return Bound{Version: b.Version, Inclusive: !b.Inclusive}
}

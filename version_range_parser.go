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
	"strings"

	"github.com/pkg/errors"
)

// ParseVersionRange parses a version constraint into a VersionRange.
//
// Supported syntax:
//   - Elm constraints: "1.0.0 <= v < 2.0.0" (either side may use < or <=)
//   - Comparison lists (AND): ">=1.0.0, <2.0.0", "==1.2.3", "=1.2.3"
//   - Caret and tilde: "^1.2.3" (until next major), "~1.2.3" (until next minor).
//     Caret follows semver for 0.x: "^0.2.3" stops before 0.3.0 and "^0.0.3"
//     matches 0.0.3 only.
//   - A bare version "1.2.3" for an exact match
//   - "*", "any" or "" for every version
//
// Disjunctions are not supported because a dependency edge always carries a
// single contiguous range.
func ParseVersionRange(s string) (VersionRange, error) {
	s = strings.TrimSpace(s)

	switch s {
	case "", "*", "any":
		return AnyRange(), nil
	}

	if strings.Contains(s, "||") {
		return VersionRange{}, errors.Errorf("invalid range %q: disjunctions are not supported", s)
	}

	if strings.Contains(s, "v") {
		return parseElmConstraint(s)
	}

	switch s[0] {
	case '^':
		v, err := ParseVersion(s[1:])
		if err != nil {
			return VersionRange{}, errors.Wrapf(err, "invalid range %q", s)
		}
		return caretRange(v), nil
	case '~':
		v, err := ParseVersion(s[1:])
		if err != nil {
			return VersionRange{}, errors.Wrapf(err, "invalid range %q", s)
		}
		return UntilNextMinor(v), nil
	}

	current := AnyRange()
	for _, part := range strings.Split(s, ",") {
		token := strings.TrimSpace(part)
		if token == "" {
			return VersionRange{}, errors.Errorf("invalid range %q: empty constraint", s)
		}
		r, err := parseRangeExpression(token)
		if err != nil {
			return VersionRange{}, errors.Wrapf(err, "invalid range %q", s)
		}
		current = Intersect(current, r)
	}
	return current, nil
}

// MustParseVersionRange is like ParseVersionRange but panics on malformed input.
func MustParseVersionRange(s string) VersionRange {
	r, err := ParseVersionRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// caretRange keeps the leftmost non-zero component fixed.
func caretRange(v Version) VersionRange {
	switch {
	case v.Major > 0:
		return UntilNextMajor(v)
	case v.Minor > 0:
		return UntilNextMinor(v)
	default:
		return ExactRange(v)
	}
}

// parseElmConstraint handles "LOW OP v OP HIGH".
func parseElmConstraint(s string) (VersionRange, error) {
	fields := strings.Fields(s)
	if len(fields) != 5 || fields[2] != "v" {
		return VersionRange{}, errors.Errorf("invalid constraint %q: expected \"LOW <= v < HIGH\"", s)
	}

	low, err := ParseVersion(fields[0])
	if err != nil {
		return VersionRange{}, errors.Wrapf(err, "invalid constraint %q", s)
	}
	high, err := ParseVersion(fields[4])
	if err != nil {
		return VersionRange{}, errors.Wrapf(err, "invalid constraint %q", s)
	}

	lowInclusive, err := parseComparison(fields[1])
	if err != nil {
		return VersionRange{}, errors.Wrapf(err, "invalid constraint %q", s)
	}
	highInclusive, err := parseComparison(fields[3])
	if err != nil {
		return VersionRange{}, errors.Wrapf(err, "invalid constraint %q", s)
	}

	return NewRange(
		Bound{Version: low, Inclusive: lowInclusive},
		Bound{Version: high, Inclusive: highInclusive},
	), nil
}

func parseComparison(op string) (inclusive bool, err error) {
	switch op {
	case "<":
		return false, nil
	case "<=":
		return true, nil
	default:
		return false, errors.Errorf("unknown operator %q", op)
	}
}

// parseRangeExpression parses a single comparison like ">=1.0.0".
func parseRangeExpression(expr string) (VersionRange, error) {
	operators := []struct {
		prefix  string
		builder func(Version) VersionRange
	}{
		{">=", func(v Version) VersionRange { return NewRange(Inclusive(v), Unbounded()) }},
		{">", func(v Version) VersionRange { return NewRange(Exclusive(v), Unbounded()) }},
		{"<=", func(v Version) VersionRange { return NewRange(Unbounded(), Inclusive(v)) }},
		{"<", func(v Version) VersionRange { return NewRange(Unbounded(), Exclusive(v)) }},
		{"==", ExactRange},
		{"=", ExactRange},
	}

	for _, op := range operators {
		if !strings.HasPrefix(expr, op.prefix) {
			continue
		}
		v, err := ParseVersion(strings.TrimSpace(expr[len(op.prefix):]))
		if err != nil {
			return VersionRange{}, err
		}
		return op.builder(v), nil
	}

	if strings.HasPrefix(expr, "!=") {
		return VersionRange{}, errors.Errorf("%q: exclusions are not supported", expr)
	}

	v, err := ParseVersion(expr)
	if err != nil {
		return VersionRange{}, err
	}
	return ExactRange(v), nil
}

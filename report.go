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
	"strings"
)

const noExplanation = "no error information available"

// Reporter renders the derivation graph below a failure as text. arena is
// indexed by IncompatibilityID and failure is the incompatibility that
// proved there is no solution.
type Reporter interface {
	Report(arena []Incompatibility, failure IncompatibilityID, names NameResolver, root PackageID) string
}

// DefaultReporter writes one sentence per derived incompatibility, folding
// simple chains and numbering sub-proofs that are used more than once.
type DefaultReporter struct{}

// Report implements Reporter.
func (DefaultReporter) Report(arena []Incompatibility, failure IncompatibilityID, names NameResolver, root PackageID) string {
	if names == nil {
		names = NumericNames
	}
	return explain(arena, failure, names, root)
}

// reportLine is one sentence of an explanation. number is zero for lines
// that are never referenced again.
type reportLine struct {
	message string
	number  int
}

// failureReport walks the derivation graph below a failure and writes one
// sentence per derived incompatibility.
//
// Derived incompatibilities reached more than once are numbered the first
// time they are written and referred to as "(n)" afterwards, so shared
// sub-proofs are explained once.
type failureReport struct {
	arena []Incompatibility
	names NameResolver
	root  PackageID

	derivations map[IncompatibilityID]int
	lineNumbers map[IncompatibilityID]int
	lines       []reportLine
}

// explain renders the derivation of failure as numbered English sentences.
func explain(arena []Incompatibility, failure IncompatibilityID, names NameResolver, root PackageID) string {
	if failure < 0 || int(failure) >= len(arena) {
		return noExplanation
	}

	r := &failureReport{
		arena:       arena,
		names:       names,
		root:        root,
		derivations: make(map[IncompatibilityID]int),
		lineNumbers: make(map[IncompatibilityID]int),
	}

	if !r.isDerived(failure) {
		r.write(failure, fmt.Sprintf("Because %s, version solving failed.", r.describe(failure)), false)
	} else {
		r.countDerivations(failure)
		r.visit(failure, false)
	}
	return r.render()
}

func (r *failureReport) render() string {
	padding := 0
	if len(r.lineNumbers) > 0 {
		padding = len(fmt.Sprintf("(%d) ", len(r.lineNumbers)))
	}

	var b strings.Builder
	lastWasEmpty := false
	for _, line := range r.lines {
		message := line.message
		if message == "" {
			if lastWasEmpty {
				continue
			}
			b.WriteString("\n")
			lastWasEmpty = true
			continue
		}
		lastWasEmpty = false
		prefix := strings.Repeat(" ", padding)
		if line.number > 0 {
			prefix = fmt.Sprintf("%-*s", padding, fmt.Sprintf("(%d)", line.number))
		}
		b.WriteString(prefix)
		b.WriteString(message)
		b.WriteString("\n")
	}
	return b.String()
}

func (r *failureReport) write(id IncompatibilityID, message string, numbered bool) {
	if !numbered {
		r.lines = append(r.lines, reportLine{message: message})
		return
	}
	number := len(r.lineNumbers) + 1
	r.lineNumbers[id] = number
	r.lines = append(r.lines, reportLine{message: message, number: number})
}

// causes returns the valid causes of id. A cause must point at an earlier
// arena entry; anything else is dropped.
func (r *failureReport) causes(id IncompatibilityID) []IncompatibilityID {
	var out []IncompatibilityID
	for _, cause := range r.arena[id].Causes {
		if cause >= 0 && cause < id {
			out = append(out, cause)
		}
	}
	return out
}

func (r *failureReport) malformed(id IncompatibilityID) bool {
	return len(r.causes(id)) != len(r.arena[id].Causes)
}

func (r *failureReport) isDerived(id IncompatibilityID) bool {
	return !r.arena[id].isExternal()
}

func (r *failureReport) describe(id IncompatibilityID) string {
	return r.arena[id].format(r.names, r.root)
}

func (r *failureReport) countDerivations(id IncompatibilityID) {
	if _, seen := r.derivations[id]; seen {
		r.derivations[id]++
		return
	}
	r.derivations[id] = 1
	for _, cause := range r.causes(id) {
		if r.isDerived(cause) {
			r.countDerivations(cause)
		}
	}
}

// and joins two clauses, appending line references where given.
func (r *failureReport) and(first, second IncompatibilityID) string {
	return fmt.Sprintf("%s%s and %s%s", r.describe(first), r.lineRef(first), r.describe(second), r.lineRef(second))
}

func (r *failureReport) lineRef(id IncompatibilityID) string {
	if line, ok := r.lineNumbers[id]; ok {
		return fmt.Sprintf(" (%d)", line)
	}
	return ""
}

func (r *failureReport) isSingleLine(id IncompatibilityID) bool {
	for _, cause := range r.causes(id) {
		if r.isDerived(cause) {
			return false
		}
	}
	return true
}

// isCollapsible reports whether a derived cause can be folded into its
// consumer's sentence: it is used once, has exactly one derived cause, and
// that cause has not been numbered yet.
func (r *failureReport) isCollapsible(id IncompatibilityID) bool {
	if r.derivations[id] > 1 {
		return false
	}
	causes := r.causes(id)
	if len(causes) != 2 {
		return false
	}
	first, second := causes[0], causes[1]
	if r.isDerived(first) == r.isDerived(second) {
		return false
	}
	complex := first
	if !r.isDerived(first) {
		complex = second
	}
	_, numbered := r.lineNumbers[complex]
	return !numbered
}

func (r *failureReport) visit(id IncompatibilityID, conclusion bool) {
	numbered := conclusion || r.derivations[id] > 1
	conjunction := "And"
	if conclusion || r.arena[id].isFailure(r.root) {
		conjunction = "So,"
	}
	text := r.describe(id)

	causes := r.causes(id)
	if r.malformed(id) || len(causes) == 0 || len(causes) > 2 {
		r.write(id, fmt.Sprintf("%s (derivation unavailable).", r.opening(id, text)), numbered)
		return
	}

	if len(causes) == 1 {
		cause := causes[0]
		if r.isDerived(cause) {
			if _, ok := r.lineNumbers[cause]; !ok {
				r.visit(cause, false)
			}
		}
		r.write(id, fmt.Sprintf("Because %s%s, %s.", r.describe(cause), r.lineRef(cause), text), numbered)
		return
	}

	first, second := causes[0], causes[1]
	switch {
	case r.isDerived(first) && r.isDerived(second):
		r.visitTwoDerived(id, first, second, conjunction, text, numbered)
	case r.isDerived(first) || r.isDerived(second):
		derived, external := first, second
		if !r.isDerived(first) {
			derived, external = second, first
		}
		r.visitExternalAndDerived(id, derived, external, conjunction, text, numbered)
	default:
		r.write(id, fmt.Sprintf("Because %s, %s.", r.and(first, second), text), numbered)
	}
}

func (r *failureReport) visitTwoDerived(id, first, second IncompatibilityID, conjunction, text string, numbered bool) {
	firstLine, firstNumbered := r.lineNumbers[first]
	secondLine, secondNumbered := r.lineNumbers[second]

	switch {
	case firstNumbered && secondNumbered:
		r.write(id, fmt.Sprintf("Because %s, %s.", r.and(first, second), text), numbered)

	case firstNumbered || secondNumbered:
		withLine, withoutLine, line := first, second, firstLine
		if secondNumbered {
			withLine, withoutLine, line = second, first, secondLine
		}
		r.visit(withoutLine, false)
		r.write(id, fmt.Sprintf("%s because %s (%d), %s.", conjunction, r.describe(withLine), line, text), numbered)

	default:
		singleFirst, singleSecond := r.isSingleLine(first), r.isSingleLine(second)
		if singleFirst || singleSecond {
			// Expand the multi-line branch first so the single-line one
			// reads as its continuation.
			a, b := first, second
			if singleFirst {
				a, b = second, first
			}
			r.visit(a, false)
			r.visit(b, false)
			r.write(id, fmt.Sprintf("Thus, %s.", text), numbered)
			return
		}

		r.visit(first, true)
		r.lines = append(r.lines, reportLine{})
		r.visit(second, false)
		r.write(id, fmt.Sprintf("%s because %s%s, %s.", conjunction, r.describe(first), r.lineRef(first), text), numbered)
	}
}

func (r *failureReport) visitExternalAndDerived(id, derived, external IncompatibilityID, conjunction, text string, numbered bool) {
	if _, ok := r.lineNumbers[derived]; ok {
		r.write(id, fmt.Sprintf("Because %s and %s%s, %s.",
			r.describe(external), r.describe(derived), r.lineRef(derived), text), numbered)
		return
	}

	if r.isCollapsible(derived) {
		inner := r.causes(derived)
		collapsedDerived, collapsedExternal := inner[0], inner[1]
		if !r.isDerived(collapsedDerived) {
			collapsedDerived, collapsedExternal = inner[1], inner[0]
		}
		r.visit(collapsedDerived, false)
		r.write(id, fmt.Sprintf("%s because %s, %s.", conjunction, r.and(collapsedExternal, external), text), numbered)
		return
	}

	r.visit(derived, false)
	r.write(id, fmt.Sprintf("%s because %s, %s.", conjunction, r.describe(external), text), numbered)
}

// opening prepares text to start a sentence. Package names keep their case.
func (r *failureReport) opening(id IncompatibilityID, text string) string {
	if strings.HasPrefix(text, r.names(r.root)) {
		return text
	}
	for _, term := range r.arena[id].Terms {
		if strings.HasPrefix(text, r.names(term.Package)) {
			return text
		}
	}
	return capitalize(text)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

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

// assignment is one entry of the trail: a term that is now known to hold,
// either chosen by the solver (a decision) or forced by an incompatibility
// (a derivation).
type assignment struct {
	term    Term
	decided bool
	level   int
	// cause is the incompatibility that forced a derivation; noCause for
	// decisions.
	cause IncompatibilityID
}

func (a assignment) describe(names NameResolver, root PackageID) string {
	if a.decided {
		return fmt.Sprintf("decision %s @%d", a.term.format(names, root), a.level)
	}
	return fmt.Sprintf("derivation %s @%d <- #%d", a.term.format(names, root), a.level, a.cause)
}

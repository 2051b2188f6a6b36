// Package predicate implements the id->bool filter the flat search
// engine's search_patch kernel consults before scoring a candidate, with
// a concrete roaring-bitmap-backed implementation alongside the bare
// function form.
package predicate

import "github.com/hupe1980/svscore/core"

// Predicate reports whether a dataset index should be considered during
// search. The zero value is not usable; use AlwaysTrue for the default.
type Predicate func(id core.LocalID) bool

// AlwaysTrue is the default predicate: every index is a candidate.
func AlwaysTrue(core.LocalID) bool { return true }

// Not negates p.
func Not(p Predicate) Predicate {
	return func(id core.LocalID) bool { return !p(id) }
}

// And is the conjunction of ps; an empty list is AlwaysTrue.
func And(ps ...Predicate) Predicate {
	return func(id core.LocalID) bool {
		for _, p := range ps {
			if !p(id) {
				return false
			}
		}
		return true
	}
}

// Or is the disjunction of ps; an empty list rejects every id.
func Or(ps ...Predicate) Predicate {
	return func(id core.LocalID) bool {
		for _, p := range ps {
			if p(id) {
				return true
			}
		}
		return false
	}
}

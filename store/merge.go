// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package store

import "errors"

var (
	errNilParents   = errors.New("merge: parent variables must not be nil")
	errNilOverrides = errors.New("merge: override variables must not be nil")
)

// Merge folds one level's own variables (overrides) into the set inherited
// from its ancestors (parents) and returns the combined view.
//
// With overwriteParent true, an override wins a name collision and the
// result keeps insertion order: parent entries first, overridden names
// updated in place, new override names appended. With overwriteParent
// false the parent value wins instead, and the result is sorted by name.
//
// Both inputs must be non-nil; a nil slice is a contract violation, not an
// empty set. Empty slices are fine and degrade to returning the other set.
// Duplicate names inside a single input resolve last-write-wins while the
// name keeps its first position. The inputs are never modified.
func Merge(parents, overrides []Variable, overwriteParent bool) ([]Variable, error) {
	if parents == nil {
		return nil, errNilParents
	}
	if overrides == nil {
		return nil, errNilOverrides
	}

	if overwriteParent {
		merged := newVariableSet(parents)
		merged.apply(overrides)
		return merged.slice(), nil
	}

	merged := newVariableSet(overrides)
	merged.apply(parents)
	return sortVariables(merged.slice()), nil
}

// variableSet is a name-keyed collection that remembers first-insertion
// order, mirroring how the merge treats each input as an ordered mapping.
type variableSet struct {
	order []string
	value map[string]string
}

func newVariableSet(vars []Variable) *variableSet {
	s := &variableSet{value: make(map[string]string, len(vars))}
	s.apply(vars)
	return s
}

// apply upserts every variable: a known name keeps its position and takes
// the new value, an unknown name is appended.
func (s *variableSet) apply(vars []Variable) {
	for _, v := range vars {
		if _, ok := s.value[v.Name]; !ok {
			s.order = append(s.order, v.Name)
		}
		s.value[v.Name] = v.Value
	}
}

func (s *variableSet) slice() []Variable {
	out := make([]Variable, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, Variable{Name: name, Value: s.value[name]})
	}
	return out
}

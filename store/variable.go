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

import (
	"fmt"
	"sort"
)

// Variable is one named value stored at a single hierarchy level. Names
// are unique within a level; the same name may exist independently at any
// other level. Values are opaque text.
type Variable struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// DeleteResult partitions the names passed to a batch delete. Every input
// name lands in exactly one of the two lists.
type DeleteResult struct {
	Deleted  []string `json:"deleted" yaml:"deleted"`
	NotFound []string `json:"not_found" yaml:"not_found"`
}

// partitionDeleted splits the requested names into deleted and
// not-found in request order, consuming the removed set. A name
// requested twice counts as deleted once; the repeat reports not found.
func partitionDeleted(names []string, removed map[string]bool) DeleteResult {
	result := DeleteResult{Deleted: []string{}, NotFound: []string{}}
	for _, name := range names {
		if removed[name] {
			result.Deleted = append(result.Deleted, name)
			removed[name] = false
		} else {
			result.NotFound = append(result.NotFound, name)
		}
	}
	return result
}

// ToMap reshapes variables into a name-to-value map. Duplicate names are
// an error: a single level never holds two variables with the same name.
func ToMap(vars []Variable) (map[string]string, error) {
	m := make(map[string]string, len(vars))
	for _, v := range vars {
		if _, ok := m[v.Name]; ok {
			return nil, fmt.Errorf("duplicate variable name %q", v.Name)
		}
		m[v.Name] = v.Value
	}
	return m, nil
}

// FromMap converts a name-to-value map into variables sorted by name, so
// callers handing us maps get deterministic batch order.
func FromMap(m map[string]string) []Variable {
	vars := make([]Variable, 0, len(m))
	for name, value := range m {
		vars = append(vars, Variable{Name: name, Value: value})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}

// sortVariables orders vars by name in place and returns it.
func sortVariables(vars []Variable) []Variable {
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}

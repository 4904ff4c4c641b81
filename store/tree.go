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
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cardinalhq/envstore/hierarchy"
)

// A ConflictError reports an operation that would store one kind of tree
// value where the other kind already lives, such as writing a variable
// whose name is already a child level.
type ConflictError struct {
	Path     string
	Existing string // "variable" or "node"
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict at %q: a %s with that name already exists", e.Path, e.Existing)
}

// node is one level of the hierarchy document. A key holding a string is
// a variable, a key holding an object is a child level. The two share a
// namespace, which is what makes the document unambiguous.
type node struct {
	vars     map[string]string
	children map[string]*node
}

func newNode() *node {
	return &node{
		vars:     map[string]string{},
		children: map[string]*node{},
	}
}

func (n *node) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.vars)+len(n.children))
	for k, v := range n.vars {
		m[k] = v
	}
	for k, child := range n.children {
		m[k] = child
	}
	return json.Marshal(m)
}

func (n *node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.vars = make(map[string]string, len(raw))
	n.children = map[string]*node{}
	for key, val := range raw {
		switch jsonKind(val) {
		case '"':
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				return err
			}
			n.vars[key] = s
		case '{':
			child := newNode()
			if err := json.Unmarshal(val, child); err != nil {
				return err
			}
			n.children[key] = child
		default:
			return fmt.Errorf("key %q must hold a string or an object", key)
		}
	}
	return nil
}

// jsonKind returns the first significant byte of a JSON value, which is
// enough to tell a string from an object.
func jsonKind(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}

// tree is a whole hierarchy document rooted at the implicit root level.
type tree struct {
	root *node
}

func newTree() *tree {
	return &tree{root: newNode()}
}

// parseTree decodes a serialized document. Empty input yields an empty
// tree rather than an error so that a fresh store needs no priming.
func parseTree(data []byte) (*tree, error) {
	t := newTree()
	if len(bytes.TrimSpace(data)) == 0 {
		return t, nil
	}
	if err := json.Unmarshal(data, t.root); err != nil {
		return nil, fmt.Errorf("parse hierarchy document: %w", err)
	}
	return t, nil
}

func (t *tree) encode() ([]byte, error) {
	return json.MarshalIndent(t.root, "", "  ")
}

// nodeAt walks to the node addressed by c without creating anything.
func (t *tree) nodeAt(c hierarchy.Coordinates) (*node, bool) {
	n := t.root
	for _, seg := range c.Segments() {
		child, ok := n.children[seg]
		if !ok {
			return nil, false
		}
		n = child
	}
	return n, true
}

// ensureNode walks to the node addressed by c, creating missing levels
// along the way. It fails if a path segment is already a variable.
func (t *tree) ensureNode(c hierarchy.Coordinates) (*node, error) {
	n := t.root
	segs := c.Segments()
	for i, seg := range segs {
		if _, isVar := n.vars[seg]; isVar {
			return nil, &ConflictError{Path: strings.Join(segs[:i+1], "/"), Existing: "variable"}
		}
		child, ok := n.children[seg]
		if !ok {
			child = newNode()
			n.children[seg] = child
		}
		n = child
	}
	return n, nil
}

func (t *tree) setVariable(c hierarchy.Coordinates, name, value string) error {
	n, err := t.ensureNode(c)
	if err != nil {
		return err
	}
	if _, isChild := n.children[name]; isChild {
		return &ConflictError{Path: variablePath(c, name), Existing: "node"}
	}
	n.vars[name] = value
	return nil
}

func (t *tree) setVariables(c hierarchy.Coordinates, vars []Variable) error {
	for _, v := range vars {
		if err := t.setVariable(c, v.Name, v.Value); err != nil {
			return err
		}
	}
	return nil
}

func (t *tree) variable(c hierarchy.Coordinates, name string) (string, bool) {
	n, ok := t.nodeAt(c)
	if !ok {
		return "", false
	}
	value, ok := n.vars[name]
	return value, ok
}

func (t *tree) variables(c hierarchy.Coordinates) []Variable {
	n, ok := t.nodeAt(c)
	if !ok {
		return []Variable{}
	}
	return FromMap(n.vars)
}

// deleteVariables removes each named variable and reports, in input
// order, which names were removed and which were not present. Levels
// left empty by a delete are kept, not pruned.
func (t *tree) deleteVariables(c hierarchy.Coordinates, names []string) DeleteResult {
	result := DeleteResult{Deleted: []string{}, NotFound: []string{}}
	n, ok := t.nodeAt(c)
	for _, name := range names {
		if ok {
			if _, present := n.vars[name]; present {
				delete(n.vars, name)
				result.Deleted = append(result.Deleted, name)
				continue
			}
		}
		result.NotFound = append(result.NotFound, name)
	}
	return result
}

func (t *tree) childNames(c hierarchy.Coordinates) []string {
	n, ok := t.nodeAt(c)
	if !ok {
		return []string{}
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func variablePath(c hierarchy.Coordinates, name string) string {
	return strings.Join(append(c.Segments(), name), "/")
}

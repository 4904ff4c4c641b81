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
	"context"
	"sync"

	"github.com/cardinalhq/envstore/hierarchy"
)

// memoryAdapter keeps the hierarchy in process memory. It is the
// backend for tests and ephemeral runs; nothing survives the process.
type memoryAdapter struct {
	mu   sync.Mutex
	tree *tree
}

var _ Adapter = (*memoryAdapter)(nil)

// NewMemoryAdapter returns an empty in-memory adapter.
func NewMemoryAdapter() Adapter {
	return &memoryAdapter{tree: newTree()}
}

// SetVariables applies the whole batch under one lock, so a conflicting
// item aborts the call with earlier items already applied. Callers that
// need all-or-nothing semantics should validate names up front.
func (a *memoryAdapter) SetVariables(ctx context.Context, c hierarchy.Coordinates, vars []Variable) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tree.setVariables(c, vars)
}

func (a *memoryAdapter) SetVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tree.setVariable(c, name, value)
}

func (a *memoryAdapter) GetVariable(ctx context.Context, c hierarchy.Coordinates, name string) (string, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	value, ok := a.tree.variable(c, name)
	return value, ok, nil
}

func (a *memoryAdapter) GetVariables(ctx context.Context, c hierarchy.Coordinates) ([]Variable, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tree.variables(c), nil
}

func (a *memoryAdapter) DeleteVariable(ctx context.Context, c hierarchy.Coordinates, name string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := a.tree.deleteVariables(c, []string{name})
	return len(result.Deleted) > 0, nil
}

func (a *memoryAdapter) DeleteVariables(ctx context.Context, c hierarchy.Coordinates, names []string) (DeleteResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tree.deleteVariables(c, names), nil
}

func (a *memoryAdapter) ListOrganisations(ctx context.Context) ([]string, error) {
	return a.childNames(hierarchy.Coordinates{})
}

func (a *memoryAdapter) ListProjects(ctx context.Context, organisation string) ([]string, error) {
	return a.childNames(hierarchy.Coordinates{Organisation: organisation})
}

func (a *memoryAdapter) ListEnvironments(ctx context.Context, organisation, project string) ([]string, error) {
	return a.childNames(hierarchy.Coordinates{Organisation: organisation, Project: project})
}

func (a *memoryAdapter) ListServices(ctx context.Context, organisation, project, environment string) ([]string, error) {
	return a.childNames(hierarchy.Coordinates{Organisation: organisation, Project: project, Environment: environment})
}

func (a *memoryAdapter) childNames(c hierarchy.Coordinates) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tree.childNames(c), nil
}

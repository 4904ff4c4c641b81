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
	"errors"

	"github.com/cardinalhq/envstore/hierarchy"
)

var (
	// ErrVariableExists is returned by create-only backends when the
	// variable is already present at the addressed level.
	ErrVariableExists = errors.New("variable already exists")

	// ErrVariableNotFound is returned by update-only backends when the
	// variable is absent at the addressed level.
	ErrVariableNotFound = errors.New("variable not found")
)

// Adapter is the backend contract. Every operation addresses the exact
// level named by its coordinates and never consults ancestors; the
// inheritance rules live above this interface, in the Manager.
//
// Callers are expected to pass validated coordinates. Adapters may
// assume hierarchy containment holds and do not re-check it.
type Adapter interface {
	// SetVariable upserts one variable, creating intermediate hierarchy
	// levels as needed.
	SetVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error

	// SetVariables upserts a batch. An empty batch is a no-op. Whether a
	// partial failure aborts or continues is backend-defined; each
	// implementation documents its choice.
	SetVariables(ctx context.Context, c hierarchy.Coordinates, vars []Variable) error

	// GetVariable reads one variable. Absence is reported through the
	// boolean, not an error.
	GetVariable(ctx context.Context, c hierarchy.Coordinates, name string) (string, bool, error)

	// GetVariables lists every variable stored directly at the level,
	// sorted by name. A level with none yields an empty slice.
	GetVariables(ctx context.Context, c hierarchy.Coordinates) ([]Variable, error)

	// DeleteVariable removes one variable and reports whether it was
	// present. Deleting an absent variable is not an error.
	DeleteVariable(ctx context.Context, c hierarchy.Coordinates, name string) (bool, error)

	// DeleteVariables removes a batch and partitions the input names into
	// deleted and not-found. Every input name lands in exactly one list.
	DeleteVariables(ctx context.Context, c hierarchy.Coordinates, names []string) (DeleteResult, error)

	// ListOrganisations, ListProjects, ListEnvironments and ListServices
	// enumerate child levels that exist because they hold variables or
	// non-empty descendants. Unknown parents yield an empty slice.
	ListOrganisations(ctx context.Context) ([]string, error)
	ListProjects(ctx context.Context, organisation string) ([]string, error)
	ListEnvironments(ctx context.Context, organisation, project string) ([]string, error)
	ListServices(ctx context.Context, organisation, project, environment string) ([]string, error)
}

// CreateOnlyAdapter is implemented by backends with a native
// fail-if-exists write, such as a parameter store put without overwrite.
type CreateOnlyAdapter interface {
	// CreateVariable writes a variable that must not already exist and
	// returns ErrVariableExists (possibly wrapped) when it does.
	CreateVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error
}

// UpdateOnlyAdapter is implemented by backends that can refuse to write
// a variable which does not already exist.
type UpdateOnlyAdapter interface {
	// UpdateVariable overwrites an existing variable and returns
	// ErrVariableNotFound (possibly wrapped) when it is absent.
	UpdateVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error
}

// ExistenceChecker is implemented by backends with a cheaper existence
// probe than a full read.
type ExistenceChecker interface {
	VariableExists(ctx context.Context, c hierarchy.Coordinates, name string) (bool, error)
}

// CreateVariable writes through the backend's native create-only
// operation when it has one and otherwise degrades to a plain upsert.
func CreateVariable(ctx context.Context, a Adapter, c hierarchy.Coordinates, name, value string) error {
	if creator, ok := a.(CreateOnlyAdapter); ok {
		return creator.CreateVariable(ctx, c, name, value)
	}
	return a.SetVariable(ctx, c, name, value)
}

// UpdateVariable writes through the backend's native update-only
// operation when it has one and otherwise degrades to a plain upsert.
func UpdateVariable(ctx context.Context, a Adapter, c hierarchy.Coordinates, name, value string) error {
	if updater, ok := a.(UpdateOnlyAdapter); ok {
		return updater.UpdateVariable(ctx, c, name, value)
	}
	return a.SetVariable(ctx, c, name, value)
}

// VariableExists probes through the backend's native existence check
// when it has one and otherwise reads the variable and discards it.
func VariableExists(ctx context.Context, a Adapter, c hierarchy.Coordinates, name string) (bool, error) {
	if checker, ok := a.(ExistenceChecker); ok {
		return checker.VariableExists(ctx, c, name)
	}
	_, ok, err := a.GetVariable(ctx, c, name)
	return ok, err
}

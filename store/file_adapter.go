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
	"fmt"
	"io/fs"
	"os"

	"github.com/cardinalhq/envstore/hierarchy"
)

// fileAdapter persists the whole hierarchy as one JSON document. Every
// operation reloads the document from disk and every mutation rewrites
// it in full, so concurrent writers race with last-write-wins semantics.
// There is no locking; callers needing stronger guarantees must
// serialize access themselves.
type fileAdapter struct {
	path string
}

var _ Adapter = (*fileAdapter)(nil)

// NewFileAdapter returns an adapter backed by the JSON document at
// path. The file does not need to exist; a missing or empty file reads
// as an empty hierarchy and is created on first write.
func NewFileAdapter(path string) (Adapter, error) {
	if path == "" {
		return nil, errors.New("file adapter requires a path")
	}
	return &fileAdapter{path: path}, nil
}

func (a *fileAdapter) load() (*tree, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newTree(), nil
		}
		return nil, fmt.Errorf("failed to read hierarchy file %s: %w", a.path, err)
	}
	t, err := parseTree(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hierarchy file %s: %w", a.path, err)
	}
	return t, nil
}

func (a *fileAdapter) flush(t *tree) error {
	data, err := t.encode()
	if err != nil {
		return fmt.Errorf("failed to encode hierarchy file %s: %w", a.path, err)
	}
	if err := os.WriteFile(a.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write hierarchy file %s: %w", a.path, err)
	}
	return nil
}

func (a *fileAdapter) SetVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error {
	t, err := a.load()
	if err != nil {
		return err
	}
	if err := t.setVariable(c, name, value); err != nil {
		return err
	}
	return a.flush(t)
}

// SetVariables applies the whole batch before rewriting the document,
// so a conflicting item aborts the call without persisting anything.
func (a *fileAdapter) SetVariables(ctx context.Context, c hierarchy.Coordinates, vars []Variable) error {
	if len(vars) == 0 {
		return nil
	}
	t, err := a.load()
	if err != nil {
		return err
	}
	if err := t.setVariables(c, vars); err != nil {
		return err
	}
	return a.flush(t)
}

func (a *fileAdapter) GetVariable(ctx context.Context, c hierarchy.Coordinates, name string) (string, bool, error) {
	t, err := a.load()
	if err != nil {
		return "", false, err
	}
	value, ok := t.variable(c, name)
	return value, ok, nil
}

func (a *fileAdapter) GetVariables(ctx context.Context, c hierarchy.Coordinates) ([]Variable, error) {
	t, err := a.load()
	if err != nil {
		return nil, err
	}
	return t.variables(c), nil
}

func (a *fileAdapter) DeleteVariable(ctx context.Context, c hierarchy.Coordinates, name string) (bool, error) {
	t, err := a.load()
	if err != nil {
		return false, err
	}
	result := t.deleteVariables(c, []string{name})
	if len(result.Deleted) == 0 {
		return false, nil
	}
	return true, a.flush(t)
}

func (a *fileAdapter) DeleteVariables(ctx context.Context, c hierarchy.Coordinates, names []string) (DeleteResult, error) {
	t, err := a.load()
	if err != nil {
		return DeleteResult{}, err
	}
	result := t.deleteVariables(c, names)
	if len(result.Deleted) == 0 {
		return result, nil
	}
	return result, a.flush(t)
}

func (a *fileAdapter) ListOrganisations(ctx context.Context) ([]string, error) {
	return a.childNames(hierarchy.Coordinates{})
}

func (a *fileAdapter) ListProjects(ctx context.Context, organisation string) ([]string, error) {
	return a.childNames(hierarchy.Coordinates{Organisation: organisation})
}

func (a *fileAdapter) ListEnvironments(ctx context.Context, organisation, project string) ([]string, error) {
	return a.childNames(hierarchy.Coordinates{Organisation: organisation, Project: project})
}

func (a *fileAdapter) ListServices(ctx context.Context, organisation, project, environment string) ([]string, error) {
	return a.childNames(hierarchy.Coordinates{Organisation: organisation, Project: project, Environment: environment})
}

func (a *fileAdapter) childNames(c hierarchy.Coordinates) ([]string, error) {
	t, err := a.load()
	if err != nil {
		return nil, err
	}
	return t.childNames(c), nil
}

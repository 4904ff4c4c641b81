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
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/cardinalhq/envstore/hierarchy"
	"github.com/cardinalhq/envstore/internal/ssmstore"
)

// ssmAdapter keeps each variable as an SSM parameter named
// /<prefix>/<organisation>/<project>/<environment>/<service>/<NAME>,
// with absent trailing levels omitted. Hierarchy structure is encoded
// entirely in parameter names, so a level exists exactly while some
// parameter lives beneath it and variable names must not contain the
// path separator.
type ssmAdapter struct {
	store  *ssmstore.Store
	prefix string
}

var (
	_ Adapter           = (*ssmAdapter)(nil)
	_ CreateOnlyAdapter = (*ssmAdapter)(nil)
	_ UpdateOnlyAdapter = (*ssmAdapter)(nil)
)

// NewSSMAdapter returns an Adapter backed by AWS SSM Parameter Store.
// All parameters live under the given path prefix, which keeps separate
// stores from clobbering each other within one AWS account.
func NewSSMAdapter(s *ssmstore.Store, prefix string) (Adapter, error) {
	if s == nil {
		return nil, errors.New("ssm adapter requires a parameter store")
	}
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return nil, errors.New("ssm adapter requires a path prefix")
	}
	if err := ssmstore.ValidateName("/" + prefix); err != nil {
		return nil, err
	}
	return &ssmAdapter{store: s, prefix: prefix}, nil
}

func (a *ssmAdapter) basePath(c hierarchy.Coordinates) string {
	return "/" + strings.Join(append([]string{a.prefix}, c.Segments()...), "/")
}

func (a *ssmAdapter) variablePath(c hierarchy.Coordinates, name string) (string, error) {
	if name == "" {
		return "", ErrNameRequired
	}
	if strings.Contains(name, "/") {
		return "", fmt.Errorf("variable name %q must not contain a path separator", name)
	}
	return a.basePath(c) + "/" + name, nil
}

func (a *ssmAdapter) SetVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error {
	path, err := a.variablePath(c, name)
	if err != nil {
		return err
	}
	return a.store.Upsert(ctx, path, value)
}

// SetVariables applies the batch best effort: every entry is attempted
// and the failures are reported together.
func (a *ssmAdapter) SetVariables(ctx context.Context, c hierarchy.Coordinates, vars []Variable) error {
	var errs *multierror.Error
	for _, v := range vars {
		if err := a.SetVariable(ctx, c, v.Name, v.Value); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func (a *ssmAdapter) GetVariable(ctx context.Context, c hierarchy.Coordinates, name string) (string, bool, error) {
	path, err := a.variablePath(c, name)
	if err != nil {
		return "", false, err
	}
	return a.store.GetValue(ctx, path)
}

func (a *ssmAdapter) GetVariables(ctx context.Context, c hierarchy.Coordinates) ([]Variable, error) {
	base := a.basePath(c)
	params, err := a.store.ListByPath(ctx, base, false)
	if err != nil {
		return nil, err
	}
	vars := make(map[string]string, len(params))
	for fullName, value := range params {
		vars[strings.TrimPrefix(fullName, base+"/")] = value
	}
	return FromMap(vars), nil
}

func (a *ssmAdapter) DeleteVariable(ctx context.Context, c hierarchy.Coordinates, name string) (bool, error) {
	path, err := a.variablePath(c, name)
	if err != nil {
		return false, err
	}
	err = a.store.Delete(ctx, path)
	if errors.Is(err, ssmstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a *ssmAdapter) DeleteVariables(ctx context.Context, c hierarchy.Coordinates, names []string) (DeleteResult, error) {
	base := a.basePath(c)
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path, err := a.variablePath(c, name)
		if err != nil {
			return DeleteResult{}, err
		}
		paths = append(paths, path)
	}
	deleted, _, err := a.store.DeleteMany(ctx, paths)
	if err != nil {
		return DeleteResult{}, err
	}
	removed := make(map[string]bool, len(deleted))
	for _, path := range deleted {
		removed[strings.TrimPrefix(path, base+"/")] = true
	}
	return partitionDeleted(names, removed), nil
}

// childLevels lists the distinct next-level names under the given
// coordinates. A parameter only proves a child level when it sits at
// least two segments below the level; one segment below is a variable
// stored at the level itself.
func (a *ssmAdapter) childLevels(ctx context.Context, c hierarchy.Coordinates) ([]string, error) {
	base := a.basePath(c)
	params, err := a.store.ListByPath(ctx, base, true)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for fullName := range params {
		rest := strings.TrimPrefix(fullName, base+"/")
		if segments := strings.Split(rest, "/"); len(segments) >= 2 {
			seen[segments[0]] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (a *ssmAdapter) ListOrganisations(ctx context.Context) ([]string, error) {
	return a.childLevels(ctx, hierarchy.Coordinates{})
}

func (a *ssmAdapter) ListProjects(ctx context.Context, organisation string) ([]string, error) {
	return a.childLevels(ctx, hierarchy.Coordinates{Organisation: organisation})
}

func (a *ssmAdapter) ListEnvironments(ctx context.Context, organisation, project string) ([]string, error) {
	return a.childLevels(ctx, hierarchy.Coordinates{Organisation: organisation, Project: project})
}

func (a *ssmAdapter) ListServices(ctx context.Context, organisation, project, environment string) ([]string, error) {
	return a.childLevels(ctx, hierarchy.Coordinates{
		Organisation: organisation,
		Project:      project,
		Environment:  environment,
	})
}

// CreateVariable uses the parameter store's no-overwrite put, so the
// existence check and the write are one call.
func (a *ssmAdapter) CreateVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error {
	path, err := a.variablePath(c, name)
	if err != nil {
		return err
	}
	err = a.store.Create(ctx, path, value)
	if errors.Is(err, ssmstore.ErrAlreadyExists) {
		return fmt.Errorf("variable %q at %s: %w", name, c, ErrVariableExists)
	}
	return err
}

func (a *ssmAdapter) UpdateVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error {
	path, err := a.variablePath(c, name)
	if err != nil {
		return err
	}
	err = a.store.Update(ctx, path, value)
	if errors.Is(err, ssmstore.ErrNotFound) {
		return fmt.Errorf("variable %q at %s: %w", name, c, ErrVariableNotFound)
	}
	return err
}

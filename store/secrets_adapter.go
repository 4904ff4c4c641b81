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
	"github.com/cardinalhq/envstore/internal/secretstore"
)

// secretsAdapter keeps each variable as a Secrets Manager secret using
// the same /<prefix>/<levels>/<NAME> naming as the SSM adapter. Secrets
// Manager has no path queries, so level and child listings fetch every
// secret under the prefix and split names client side.
type secretsAdapter struct {
	store  *secretstore.Store
	prefix string
}

var (
	_ Adapter           = (*secretsAdapter)(nil)
	_ CreateOnlyAdapter = (*secretsAdapter)(nil)
	_ UpdateOnlyAdapter = (*secretsAdapter)(nil)
)

// NewSecretsManagerAdapter returns an Adapter backed by AWS Secrets
// Manager, for installations that want variable values encrypted and
// rotatable without running Parameter Store alongside it.
func NewSecretsManagerAdapter(s *secretstore.Store, prefix string) (Adapter, error) {
	if s == nil {
		return nil, errors.New("secrets manager adapter requires a secret store")
	}
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return nil, errors.New("secrets manager adapter requires a path prefix")
	}
	if err := secretstore.ValidateName("/" + prefix); err != nil {
		return nil, err
	}
	return &secretsAdapter{store: s, prefix: prefix}, nil
}

func (a *secretsAdapter) basePath(c hierarchy.Coordinates) string {
	return "/" + strings.Join(append([]string{a.prefix}, c.Segments()...), "/")
}

func (a *secretsAdapter) variablePath(c hierarchy.Coordinates, name string) (string, error) {
	if name == "" {
		return "", ErrNameRequired
	}
	if strings.Contains(name, "/") {
		return "", fmt.Errorf("variable name %q must not contain a path separator", name)
	}
	return a.basePath(c) + "/" + name, nil
}

// listBelow returns the secrets strictly below the level, keyed by
// their name relative to it. The server-side name filter is a plain
// prefix match, so sibling levels sharing a prefix are filtered here.
func (a *secretsAdapter) listBelow(ctx context.Context, c hierarchy.Coordinates) (map[string]string, error) {
	base := a.basePath(c)
	secrets, err := a.store.ListByPrefix(ctx, base)
	if err != nil {
		return nil, err
	}
	below := make(map[string]string, len(secrets))
	for fullName, value := range secrets {
		if !strings.HasPrefix(fullName, base+"/") {
			continue
		}
		below[strings.TrimPrefix(fullName, base+"/")] = value
	}
	return below, nil
}

func (a *secretsAdapter) SetVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error {
	path, err := a.variablePath(c, name)
	if err != nil {
		return err
	}
	return a.store.Upsert(ctx, path, value)
}

// SetVariables applies the batch best effort: every entry is attempted
// and the failures are reported together.
func (a *secretsAdapter) SetVariables(ctx context.Context, c hierarchy.Coordinates, vars []Variable) error {
	var errs *multierror.Error
	for _, v := range vars {
		if err := a.SetVariable(ctx, c, v.Name, v.Value); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func (a *secretsAdapter) GetVariable(ctx context.Context, c hierarchy.Coordinates, name string) (string, bool, error) {
	path, err := a.variablePath(c, name)
	if err != nil {
		return "", false, err
	}
	return a.store.GetValue(ctx, path)
}

func (a *secretsAdapter) GetVariables(ctx context.Context, c hierarchy.Coordinates) ([]Variable, error) {
	below, err := a.listBelow(ctx, c)
	if err != nil {
		return nil, err
	}
	vars := make(map[string]string, len(below))
	for rest, value := range below {
		if !strings.Contains(rest, "/") {
			vars[rest] = value
		}
	}
	return FromMap(vars), nil
}

func (a *secretsAdapter) DeleteVariable(ctx context.Context, c hierarchy.Coordinates, name string) (bool, error) {
	path, err := a.variablePath(c, name)
	if err != nil {
		return false, err
	}
	err = a.store.Delete(ctx, path)
	if errors.Is(err, secretstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a *secretsAdapter) DeleteVariables(ctx context.Context, c hierarchy.Coordinates, names []string) (DeleteResult, error) {
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

func (a *secretsAdapter) childLevels(ctx context.Context, c hierarchy.Coordinates) ([]string, error) {
	below, err := a.listBelow(ctx, c)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for rest := range below {
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

func (a *secretsAdapter) ListOrganisations(ctx context.Context) ([]string, error) {
	return a.childLevels(ctx, hierarchy.Coordinates{})
}

func (a *secretsAdapter) ListProjects(ctx context.Context, organisation string) ([]string, error) {
	return a.childLevels(ctx, hierarchy.Coordinates{Organisation: organisation})
}

func (a *secretsAdapter) ListEnvironments(ctx context.Context, organisation, project string) ([]string, error) {
	return a.childLevels(ctx, hierarchy.Coordinates{Organisation: organisation, Project: project})
}

func (a *secretsAdapter) ListServices(ctx context.Context, organisation, project, environment string) ([]string, error) {
	return a.childLevels(ctx, hierarchy.Coordinates{
		Organisation: organisation,
		Project:      project,
		Environment:  environment,
	})
}

func (a *secretsAdapter) CreateVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error {
	path, err := a.variablePath(c, name)
	if err != nil {
		return err
	}
	err = a.store.Create(ctx, path, value)
	if errors.Is(err, secretstore.ErrAlreadyExists) {
		return fmt.Errorf("variable %q at %s: %w", name, c, ErrVariableExists)
	}
	return err
}

func (a *secretsAdapter) UpdateVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error {
	path, err := a.variablePath(c, name)
	if err != nil {
		return err
	}
	err = a.store.Update(ctx, path, value)
	if errors.Is(err, secretstore.ErrNotFound) {
		return fmt.Errorf("variable %q at %s: %w", name, c, ErrVariableNotFound)
	}
	return err
}

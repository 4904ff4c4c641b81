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

// Package store manages named string variables arranged in a four level
// hierarchy, organisation > project > environment > service, with an
// implicit root level above organisations. Exact-level reads and writes
// go through a pluggable Adapter; effective views merge a level's own
// variables with values inherited from every ancestor level.
package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cardinalhq/envstore/hierarchy"
	"github.com/cardinalhq/envstore/internal/logctx"
)

// ErrNameRequired rejects operations addressing a single variable with
// an empty name.
var ErrNameRequired = errors.New("variable name must be specified")

// Manager validates every hierarchy address before touching the backend
// and implements inheritance on top of the adapter's exact-level
// operations. It adds no translation to adapter errors.
type Manager struct {
	adapter Adapter
}

// NewManager returns a Manager over the given backend.
func NewManager(adapter Adapter) *Manager {
	return &Manager{adapter: adapter}
}

// ResolveOption adjusts how effective variables are computed.
type ResolveOption func(*resolveOptions)

type resolveOptions struct {
	includeParents  bool
	overwriteParent bool
}

func defaultResolveOptions() resolveOptions {
	return resolveOptions{includeParents: true, overwriteParent: true}
}

// WithoutParents limits resolution to the addressed level's own
// variables, skipping ancestor lookups entirely.
func WithoutParents() ResolveOption {
	return func(o *resolveOptions) { o.includeParents = false }
}

// WithParentPrecedence makes inherited values win name collisions
// instead of the level's own values, and sorts the result by name.
func WithParentPrecedence() ResolveOption {
	return func(o *resolveOptions) { o.overwriteParent = false }
}

func (m *Manager) SetVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error {
	if err := validateAddress(c, name); err != nil {
		return err
	}
	ctx, logger := logctx.WithAttrs(ctx,
		slog.String("operation", "set_variable"),
		slog.String("hierarchy", c.String()))
	if err := m.adapter.SetVariable(ctx, c, name, value); err != nil {
		return err
	}
	logger.Debug("variable set", slog.String("name", name))
	return nil
}

func (m *Manager) SetVariables(ctx context.Context, c hierarchy.Coordinates, vars []Variable) error {
	if err := c.Validate(); err != nil {
		return err
	}
	ctx, logger := logctx.WithAttrs(ctx,
		slog.String("operation", "set_variables"),
		slog.String("hierarchy", c.String()))
	if err := m.adapter.SetVariables(ctx, c, vars); err != nil {
		return err
	}
	logger.Debug("variables set", slog.Int("count", len(vars)))
	return nil
}

// SetVariablesFromMap is SetVariables for callers holding a name to
// value map. Entries are applied in name order.
func (m *Manager) SetVariablesFromMap(ctx context.Context, c hierarchy.Coordinates, vars map[string]string) error {
	return m.SetVariables(ctx, c, FromMap(vars))
}

func (m *Manager) GetVariable(ctx context.Context, c hierarchy.Coordinates, name string) (string, bool, error) {
	if err := validateAddress(c, name); err != nil {
		return "", false, err
	}
	return m.adapter.GetVariable(ctx, c, name)
}

// GetVariables lists the variables stored directly at the addressed
// level, without inheritance.
func (m *Manager) GetVariables(ctx context.Context, c hierarchy.Coordinates) ([]Variable, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return m.adapter.GetVariables(ctx, c)
}

// GetVariablesAsMap reshapes GetVariables into a name to value map and
// fails on duplicate names, which a healthy backend never produces.
func (m *Manager) GetVariablesAsMap(ctx context.Context, c hierarchy.Coordinates) (map[string]string, error) {
	vars, err := m.GetVariables(ctx, c)
	if err != nil {
		return nil, err
	}
	return ToMap(vars)
}

func (m *Manager) DeleteVariable(ctx context.Context, c hierarchy.Coordinates, name string) (bool, error) {
	if err := validateAddress(c, name); err != nil {
		return false, err
	}
	ctx, logger := logctx.WithAttrs(ctx,
		slog.String("operation", "delete_variable"),
		slog.String("hierarchy", c.String()))
	deleted, err := m.adapter.DeleteVariable(ctx, c, name)
	if err != nil {
		return false, err
	}
	logger.Debug("variable delete finished", slog.String("name", name), slog.Bool("deleted", deleted))
	return deleted, nil
}

func (m *Manager) DeleteVariables(ctx context.Context, c hierarchy.Coordinates, names []string) (DeleteResult, error) {
	if err := c.Validate(); err != nil {
		return DeleteResult{}, err
	}
	ctx, logger := logctx.WithAttrs(ctx,
		slog.String("operation", "delete_variables"),
		slog.String("hierarchy", c.String()))
	result, err := m.adapter.DeleteVariables(ctx, c, names)
	if err != nil {
		return DeleteResult{}, err
	}
	logger.Debug("variable delete finished",
		slog.Int("deleted", len(result.Deleted)),
		slog.Int("notFound", len(result.NotFound)))
	return result, nil
}

// CreateVariable writes a variable through the backend's create-only
// operation when it has one. Backends without one treat create as a
// plain upsert.
func (m *Manager) CreateVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error {
	if err := validateAddress(c, name); err != nil {
		return err
	}
	ctx, logger := logctx.WithAttrs(ctx,
		slog.String("operation", "create_variable"),
		slog.String("hierarchy", c.String()))
	if err := CreateVariable(ctx, m.adapter, c, name, value); err != nil {
		return err
	}
	logger.Debug("variable created", slog.String("name", name))
	return nil
}

// UpdateVariable writes a variable through the backend's update-only
// operation when it has one. Backends without one treat update as a
// plain upsert.
func (m *Manager) UpdateVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error {
	if err := validateAddress(c, name); err != nil {
		return err
	}
	ctx, logger := logctx.WithAttrs(ctx,
		slog.String("operation", "update_variable"),
		slog.String("hierarchy", c.String()))
	if err := UpdateVariable(ctx, m.adapter, c, name, value); err != nil {
		return err
	}
	logger.Debug("variable updated", slog.String("name", name))
	return nil
}

func (m *Manager) VariableExists(ctx context.Context, c hierarchy.Coordinates, name string) (bool, error) {
	if err := validateAddress(c, name); err != nil {
		return false, err
	}
	return VariableExists(ctx, m.adapter, c, name)
}

func (m *Manager) GetOrganisations(ctx context.Context) ([]string, error) {
	return m.adapter.ListOrganisations(ctx)
}

func (m *Manager) GetProjects(ctx context.Context, organisation string) ([]string, error) {
	c := hierarchy.Coordinates{Organisation: organisation}
	if err := requireDepth(c, 1); err != nil {
		return nil, err
	}
	return m.adapter.ListProjects(ctx, organisation)
}

func (m *Manager) GetEnvironments(ctx context.Context, organisation, project string) ([]string, error) {
	c := hierarchy.Coordinates{Organisation: organisation, Project: project}
	if err := requireDepth(c, 2); err != nil {
		return nil, err
	}
	return m.adapter.ListEnvironments(ctx, organisation, project)
}

func (m *Manager) GetServices(ctx context.Context, organisation, project, environment string) ([]string, error) {
	c := hierarchy.Coordinates{Organisation: organisation, Project: project, Environment: environment}
	if err := requireDepth(c, 3); err != nil {
		return nil, err
	}
	return m.adapter.ListServices(ctx, organisation, project, environment)
}

// EffectiveVariables resolves the variables visible at the addressed
// level. By default each level's own values overwrite inherited ones
// and the result keeps root-to-leaf insertion order; WithoutParents and
// WithParentPrecedence change that.
func (m *Manager) EffectiveVariables(ctx context.Context, c hierarchy.Coordinates, opts ...ResolveOption) ([]Variable, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	o := defaultResolveOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return m.resolve(ctx, c, o)
}

// resolve computes the effective set for one level, ancestors first.
// The root level has no parent, so its effective set is its exact set;
// every other level merges inherited values with its own through Merge,
// using the same precedence flag at every depth.
func (m *Manager) resolve(ctx context.Context, c hierarchy.Coordinates, o resolveOptions) ([]Variable, error) {
	parent, ok := c.Parent()
	if !ok {
		return m.adapter.GetVariables(ctx, c)
	}
	inherited := []Variable{}
	if o.includeParents {
		var err error
		inherited, err = m.resolve(ctx, parent, o)
		if err != nil {
			return nil, err
		}
	}
	own, err := m.adapter.GetVariables(ctx, c)
	if err != nil {
		return nil, err
	}
	return Merge(inherited, own, o.overwriteParent)
}

// GetRootVariables returns the variables stored at the root level. Root
// has no parent, so resolution options do not apply.
func (m *Manager) GetRootVariables(ctx context.Context) ([]Variable, error) {
	return m.adapter.GetVariables(ctx, hierarchy.Coordinates{})
}

func (m *Manager) GetOrganisationVariables(ctx context.Context, organisation string, opts ...ResolveOption) ([]Variable, error) {
	c := hierarchy.Coordinates{Organisation: organisation}
	if err := requireDepth(c, 1); err != nil {
		return nil, err
	}
	return m.EffectiveVariables(ctx, c, opts...)
}

func (m *Manager) GetProjectVariables(ctx context.Context, organisation, project string, opts ...ResolveOption) ([]Variable, error) {
	c := hierarchy.Coordinates{Organisation: organisation, Project: project}
	if err := requireDepth(c, 2); err != nil {
		return nil, err
	}
	return m.EffectiveVariables(ctx, c, opts...)
}

func (m *Manager) GetEnvironmentVariables(ctx context.Context, organisation, project, environment string, opts ...ResolveOption) ([]Variable, error) {
	c := hierarchy.Coordinates{Organisation: organisation, Project: project, Environment: environment}
	if err := requireDepth(c, 3); err != nil {
		return nil, err
	}
	return m.EffectiveVariables(ctx, c, opts...)
}

func (m *Manager) GetServiceVariables(ctx context.Context, organisation, project, environment, service string, opts ...ResolveOption) ([]Variable, error) {
	c := hierarchy.Coordinates{Organisation: organisation, Project: project, Environment: environment, Service: service}
	if err := requireDepth(c, 4); err != nil {
		return nil, err
	}
	return m.EffectiveVariables(ctx, c, opts...)
}

var levelNames = []string{
	hierarchy.LevelRoot,
	hierarchy.LevelOrganisation,
	hierarchy.LevelProject,
	hierarchy.LevelEnvironment,
	hierarchy.LevelService,
}

// validateAddress checks the coordinates and the variable name of
// operations addressing a single variable. Containment is checked
// first so a bad hierarchy is reported over a missing name.
func validateAddress(c hierarchy.Coordinates, name string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if name == "" {
		return ErrNameRequired
	}
	return nil
}

// LevelRequiredError reports a call missing a mandatory hierarchy level
// argument, such as enumerating projects without an organisation.
type LevelRequiredError struct {
	Level string
}

func (e *LevelRequiredError) Error() string {
	return e.Level + " must be specified"
}

// requireDepth validates containment and then requires every level down
// to depth to be present, for operations whose arguments are mandatory.
func requireDepth(c hierarchy.Coordinates, depth int) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Depth() < depth {
		return &LevelRequiredError{Level: levelNames[c.Depth()+1]}
	}
	return nil
}

//go:build integration

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/envstore/hierarchy"
	"github.com/cardinalhq/envstore/testhelpers"
)

func newTestPostgresAdapter(t *testing.T) Adapter {
	t.Helper()
	pool := testhelpers.SetupTestDB(t)
	adapter, err := NewPostgresAdapter(pool)
	require.NoError(t, err)
	return adapter
}

func TestPostgresAdapter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	a := newTestPostgresAdapter(t)
	svc := hierarchy.Coordinates{Organisation: "acme", Project: "webapp", Environment: "dev", Service: "api"}

	require.NoError(t, a.SetVariable(ctx, hierarchy.Coordinates{}, "GLOBAL", "g"))
	require.NoError(t, a.SetVariable(ctx, svc, "DB_URL", "postgres://db"))
	require.NoError(t, a.SetVariable(ctx, svc, "PORT", "8080"))

	value, found, err := a.GetVariable(ctx, svc, "DB_URL")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "postgres://db", value)

	// Overwrite updates the row in place.
	require.NoError(t, a.SetVariable(ctx, svc, "PORT", "9090"))
	value, found, err = a.GetVariable(ctx, svc, "PORT")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "9090", value)

	_, found, err = a.GetVariable(ctx, svc, "MISSING")
	require.NoError(t, err)
	assert.False(t, found)

	vars, err := a.GetVariables(ctx, svc)
	require.NoError(t, err)
	assert.Equal(t, []Variable{
		{Name: "DB_URL", Value: "postgres://db"},
		{Name: "PORT", Value: "9090"},
	}, vars)

	// The root level only sees its own row.
	vars, err = a.GetVariables(ctx, hierarchy.Coordinates{})
	require.NoError(t, err)
	assert.Equal(t, []Variable{{Name: "GLOBAL", Value: "g"}}, vars)
}

func TestPostgresAdapter_BatchSetAndDelete(t *testing.T) {
	ctx := context.Background()
	a := newTestPostgresAdapter(t)
	org := hierarchy.Coordinates{Organisation: "acme"}

	err := a.SetVariables(ctx, org, []Variable{
		{Name: "A", Value: "1"},
		{Name: "B", Value: "2"},
		{Name: "C", Value: "3"},
	})
	require.NoError(t, err)

	result, err := a.DeleteVariables(ctx, org, []string{"C", "MISSING", "A", "A"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, result.Deleted)
	assert.Equal(t, []string{"MISSING", "A"}, result.NotFound)

	vars, err := a.GetVariables(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, []Variable{{Name: "B", Value: "2"}}, vars)
}

func TestPostgresAdapter_DeleteVariable(t *testing.T) {
	ctx := context.Background()
	a := newTestPostgresAdapter(t)
	org := hierarchy.Coordinates{Organisation: "acme"}

	require.NoError(t, a.SetVariable(ctx, org, "A", "1"))

	deleted, err := a.DeleteVariable(ctx, org, "A")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = a.DeleteVariable(ctx, org, "A")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestPostgresAdapter_Listings(t *testing.T) {
	ctx := context.Background()
	a := newTestPostgresAdapter(t)

	require.NoError(t, a.SetVariable(ctx, hierarchy.Coordinates{}, "GLOBAL", "g"))
	require.NoError(t, a.SetVariable(ctx, hierarchy.Coordinates{Organisation: "zebra"}, "A", "1"))
	require.NoError(t, a.SetVariable(ctx, hierarchy.Coordinates{Organisation: "acme", Project: "webapp", Environment: "dev", Service: "api"}, "A", "1"))
	require.NoError(t, a.SetVariable(ctx, hierarchy.Coordinates{Organisation: "acme", Project: "webapp", Environment: "prod"}, "A", "1"))
	require.NoError(t, a.SetVariable(ctx, hierarchy.Coordinates{Organisation: "acme", Project: "batch"}, "A", "1"))

	orgs, err := a.ListOrganisations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "zebra"}, orgs)

	projects, err := a.ListProjects(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"batch", "webapp"}, projects)

	environments, err := a.ListEnvironments(ctx, "acme", "webapp")
	require.NoError(t, err)
	assert.Equal(t, []string{"dev", "prod"}, environments)

	services, err := a.ListServices(ctx, "acme", "webapp", "dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"api"}, services)

	// zebra has organisation-level variables but nothing deeper.
	projects, err = a.ListProjects(ctx, "zebra")
	require.NoError(t, err)
	assert.Empty(t, projects)

	services, err = a.ListServices(ctx, "acme", "webapp", "prod")
	require.NoError(t, err)
	assert.Empty(t, services)
}

func TestPostgresAdapter_NativeCreateUpdateExists(t *testing.T) {
	ctx := context.Background()
	a := newTestPostgresAdapter(t)
	org := hierarchy.Coordinates{Organisation: "acme"}

	creator, ok := a.(CreateOnlyAdapter)
	require.True(t, ok)
	updater, ok := a.(UpdateOnlyAdapter)
	require.True(t, ok)
	checker, ok := a.(ExistenceChecker)
	require.True(t, ok)

	err := updater.UpdateVariable(ctx, org, "A", "1")
	require.ErrorIs(t, err, ErrVariableNotFound)
	assert.Contains(t, err.Error(), "acme")

	exists, err := checker.VariableExists(ctx, org, "A")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, creator.CreateVariable(ctx, org, "A", "1"))

	err = creator.CreateVariable(ctx, org, "A", "2")
	require.ErrorIs(t, err, ErrVariableExists)

	exists, err = checker.VariableExists(ctx, org, "A")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, updater.UpdateVariable(ctx, org, "A", "3"))
	value, found, err := a.GetVariable(ctx, org, "A")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "3", value)
}

func TestPostgresAdapter_ManagerEndToEnd(t *testing.T) {
	ctx := context.Background()
	a := newTestPostgresAdapter(t)
	m := NewManager(a)

	require.NoError(t, m.SetVariable(ctx, hierarchy.Coordinates{}, "SHARED", "root"))
	require.NoError(t, m.SetVariable(ctx, hierarchy.Coordinates{Organisation: "acme"}, "PORT", "80"))
	env := hierarchy.Coordinates{Organisation: "acme", Project: "webapp", Environment: "dev"}
	require.NoError(t, m.SetVariable(ctx, env, "PORT", "8080"))

	effective, err := m.EffectiveVariables(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, []Variable{
		{Name: "SHARED", Value: "root"},
		{Name: "PORT", Value: "8080"},
	}, effective)
}

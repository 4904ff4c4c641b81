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

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardinalhq/envstore/hierarchy"
)

// postgresAdapter keeps every variable as one row in the variables
// table, addressed by the five-column primary key of organisation,
// project, environment, service and name, with absent levels stored as
// empty strings. A hierarchy level exists while any variable lives at
// or below it.
type postgresAdapter struct {
	pool *pgxpool.Pool
}

var (
	_ Adapter           = (*postgresAdapter)(nil)
	_ CreateOnlyAdapter = (*postgresAdapter)(nil)
	_ UpdateOnlyAdapter = (*postgresAdapter)(nil)
	_ ExistenceChecker  = (*postgresAdapter)(nil)
)

// NewPostgresAdapter returns an Adapter backed by PostgreSQL. The pool
// is expected to point at a database with the envstore migrations
// applied.
func NewPostgresAdapter(pool *pgxpool.Pool) (Adapter, error) {
	if pool == nil {
		return nil, errors.New("postgres adapter requires a connection pool")
	}
	return &postgresAdapter{pool: pool}, nil
}

// Close releases the connection pool. Callers that handed the pool in
// and keep using it elsewhere should close the pool themselves instead.
func (a *postgresAdapter) Close() error {
	a.pool.Close()
	return nil
}

const upsertVariableSQL = `
INSERT INTO variables (organisation, project, environment, service, name, value)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (organisation, project, environment, service, name)
DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

func (a *postgresAdapter) SetVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error {
	_, err := a.pool.Exec(ctx, upsertVariableSQL, c.Organisation, c.Project, c.Environment, c.Service, name, value)
	if err != nil {
		return fmt.Errorf("failed to set variable %s: %w", name, err)
	}
	return nil
}

// SetVariables applies the batch in one transaction: either every entry
// is written or none are.
func (a *postgresAdapter) SetVariables(ctx context.Context, c hierarchy.Coordinates, vars []Variable) error {
	if len(vars) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, v := range vars {
		batch.Queue(upsertVariableSQL, c.Organisation, c.Project, c.Environment, c.Service, v.Name, v.Value)
	}

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to apply variable batch: %w", err)
	}
	return tx.Commit(ctx)
}

const getVariableSQL = `
SELECT value FROM variables
WHERE organisation = $1 AND project = $2 AND environment = $3 AND service = $4 AND name = $5`

func (a *postgresAdapter) GetVariable(ctx context.Context, c hierarchy.Coordinates, name string) (string, bool, error) {
	var value string
	err := a.pool.QueryRow(ctx, getVariableSQL, c.Organisation, c.Project, c.Environment, c.Service, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get variable %s: %w", name, err)
	}
	return value, true, nil
}

const getVariablesSQL = `
SELECT name, value FROM variables
WHERE organisation = $1 AND project = $2 AND environment = $3 AND service = $4
ORDER BY name`

func (a *postgresAdapter) GetVariables(ctx context.Context, c hierarchy.Coordinates) ([]Variable, error) {
	rows, err := a.pool.Query(ctx, getVariablesSQL, c.Organisation, c.Project, c.Environment, c.Service)
	if err != nil {
		return nil, fmt.Errorf("failed to list variables at %s: %w", c, err)
	}
	defer rows.Close()

	vars := []Variable{}
	for rows.Next() {
		var v Variable
		if err := rows.Scan(&v.Name, &v.Value); err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list variables at %s: %w", c, err)
	}
	return vars, nil
}

const deleteVariableSQL = `
DELETE FROM variables
WHERE organisation = $1 AND project = $2 AND environment = $3 AND service = $4 AND name = $5`

func (a *postgresAdapter) DeleteVariable(ctx context.Context, c hierarchy.Coordinates, name string) (bool, error) {
	tag, err := a.pool.Exec(ctx, deleteVariableSQL, c.Organisation, c.Project, c.Environment, c.Service, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete variable %s: %w", name, err)
	}
	return tag.RowsAffected() > 0, nil
}

const deleteVariablesSQL = `
DELETE FROM variables
WHERE organisation = $1 AND project = $2 AND environment = $3 AND service = $4 AND name = ANY($5)
RETURNING name`

func (a *postgresAdapter) DeleteVariables(ctx context.Context, c hierarchy.Coordinates, names []string) (DeleteResult, error) {
	rows, err := a.pool.Query(ctx, deleteVariablesSQL, c.Organisation, c.Project, c.Environment, c.Service, names)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("failed to delete variables at %s: %w", c, err)
	}
	defer rows.Close()

	removed := make(map[string]bool, len(names))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return DeleteResult{}, err
		}
		removed[name] = true
	}
	if err := rows.Err(); err != nil {
		return DeleteResult{}, fmt.Errorf("failed to delete variables at %s: %w", c, err)
	}
	return partitionDeleted(names, removed), nil
}

func (a *postgresAdapter) queryStrings(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := a.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (a *postgresAdapter) ListOrganisations(ctx context.Context) ([]string, error) {
	names, err := a.queryStrings(ctx, `
SELECT DISTINCT organisation FROM variables
WHERE organisation <> ''
ORDER BY organisation`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organisations: %w", err)
	}
	return names, nil
}

func (a *postgresAdapter) ListProjects(ctx context.Context, organisation string) ([]string, error) {
	names, err := a.queryStrings(ctx, `
SELECT DISTINCT project FROM variables
WHERE organisation = $1 AND project <> ''
ORDER BY project`, organisation)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return names, nil
}

func (a *postgresAdapter) ListEnvironments(ctx context.Context, organisation, project string) ([]string, error) {
	names, err := a.queryStrings(ctx, `
SELECT DISTINCT environment FROM variables
WHERE organisation = $1 AND project = $2 AND environment <> ''
ORDER BY environment`, organisation, project)
	if err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}
	return names, nil
}

func (a *postgresAdapter) ListServices(ctx context.Context, organisation, project, environment string) ([]string, error) {
	names, err := a.queryStrings(ctx, `
SELECT DISTINCT service FROM variables
WHERE organisation = $1 AND project = $2 AND environment = $3 AND service <> ''
ORDER BY service`, organisation, project, environment)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return names, nil
}

const createVariableSQL = `
INSERT INTO variables (organisation, project, environment, service, name, value)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT DO NOTHING`

// CreateVariable relies on the primary key to reject duplicates, so the
// existence check and the write are one statement.
func (a *postgresAdapter) CreateVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error {
	tag, err := a.pool.Exec(ctx, createVariableSQL, c.Organisation, c.Project, c.Environment, c.Service, name, value)
	if err != nil {
		return fmt.Errorf("failed to create variable %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("variable %q at %s: %w", name, c, ErrVariableExists)
	}
	return nil
}

const updateVariableSQL = `
UPDATE variables SET value = $6, updated_at = now()
WHERE organisation = $1 AND project = $2 AND environment = $3 AND service = $4 AND name = $5`

func (a *postgresAdapter) UpdateVariable(ctx context.Context, c hierarchy.Coordinates, name, value string) error {
	tag, err := a.pool.Exec(ctx, updateVariableSQL, c.Organisation, c.Project, c.Environment, c.Service, name, value)
	if err != nil {
		return fmt.Errorf("failed to update variable %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("variable %q at %s: %w", name, c, ErrVariableNotFound)
	}
	return nil
}

const variableExistsSQL = `
SELECT EXISTS (
	SELECT 1 FROM variables
	WHERE organisation = $1 AND project = $2 AND environment = $3 AND service = $4 AND name = $5
)`

func (a *postgresAdapter) VariableExists(ctx context.Context, c hierarchy.Coordinates, name string) (bool, error) {
	var exists bool
	err := a.pool.QueryRow(ctx, variableExistsSQL, c.Organisation, c.Project, c.Environment, c.Service, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check variable %s: %w", name, err)
	}
	return exists, nil
}

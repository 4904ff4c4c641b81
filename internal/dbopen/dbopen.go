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

// Package dbopen turns ENVSTORE_PG_* environment variables into a
// ready-to-use PostgreSQL pool for the variables database.
package dbopen

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardinalhq/envstore/internal/envdb"
	"github.com/cardinalhq/envstore/internal/envdb/migrations"
)

var ErrDatabaseNotConfigured = errors.New("database connection configuration is unavailable")

// Options adjusts how ConnectToEnvstoreDB opens the database.
type Options struct {
	// SkipMigrationCheck opens the pool without verifying the schema
	// version, which the migrate command needs to bootstrap an empty
	// database.
	SkipMigrationCheck bool

	// URL overrides the ENVSTORE_PG_* environment variables when set,
	// so a connection string from a config file wins over the ambient
	// environment.
	URL string
}

// ConnectToEnvstoreDB opens the variables database from ENVSTORE_PG_*
// environment variables and verifies the schema is at the version this
// binary expects.
func ConnectToEnvstoreDB(ctx context.Context, opts ...Options) (*pgxpool.Pool, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	connectionString := o.URL
	if connectionString == "" {
		var err error
		connectionString, err = GetDatabaseURLFromEnv("ENVSTORE_PG")
		if err != nil {
			return nil, errors.Join(ErrDatabaseNotConfigured, fmt.Errorf("failed to get ENVSTORE_PG connection string: %w", err))
		}
	}

	pool, err := envdb.NewConnectionPool(ctx, connectionString)
	if err != nil {
		return nil, err
	}

	if !o.SkipMigrationCheck {
		if err := migrations.CheckExpectedVersion(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("database migration version check failed: %w", err)
		}
	}
	return pool, nil
}

// GetDatabaseURLFromEnv constructs a PostgreSQL URL from environment
// variables named PREFIX_HOST, PREFIX_PORT, PREFIX_USER, PREFIX_PASSWORD,
// PREFIX_DBNAME, and optionally PREFIX_SSLMODE. If PREFIX does not end in
// "_", it will be added automatically.
//
// It requires at minimum HOST and DBNAME, and will default PORT to 5432.
// Returns an error listing any missing required variables.
func GetDatabaseURLFromEnv(prefix string) (string, error) {
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}

	// First check to see if prefix_URL is set.  If so, return it directly.
	if urlStr := os.Getenv(prefix + "URL"); urlStr != "" {
		return urlStr, nil
	}

	// required
	host := os.Getenv(prefix + "HOST")
	dbname := os.Getenv(prefix + "DBNAME")

	var missing []string
	if host == "" {
		missing = append(missing, prefix+"HOST")
	}
	if dbname == "" {
		missing = append(missing, prefix+"DBNAME")
	}
	if len(missing) > 0 {
		return "", fmt.Errorf(
			"missing required environment variable(s): %s",
			strings.Join(missing, ", "),
		)
	}

	// optional with defaults
	port := os.Getenv(prefix + "PORT")
	if port == "" {
		port = "5432"
	}

	user := os.Getenv(prefix + "USER")
	pass := os.Getenv(prefix + "PASSWORD")

	sslmode := os.Getenv(prefix + "SSLMODE") // e.g. "require", "disable"

	u := &url.URL{
		Scheme: "postgresql",
		Host:   host + ":" + port,
		Path:   dbname,
	}

	if user != "" {
		if pass != "" {
			u.User = url.UserPassword(user, pass)
		} else {
			u.User = url.User(user)
		}
	}

	// add sslmode or any other query params
	q := u.Query()
	if sslmode != "" {
		q.Set("sslmode", sslmode)
	}

	// Stamp connections with an application_name, PREFIX_APPNAME when
	// set, so the store's sessions are identifiable in pg_stat_activity.
	// Postgres truncates the name at 63 bytes and chokes on odd
	// characters, so sanitize before use.
	appName := os.Getenv(prefix + "APPNAME")
	if appName == "" {
		appName = "envstore"
	}
	if q.Get("application_name") == "" {
		appName = strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') ||
				(r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') ||
				r == '-' || r == '_' {
				return r
			}
			return '_'
		}, appName)
		if len(appName) > 63 {
			appName = appName[:63]
		}
		q.Set("application_name", appName)
	}

	u.RawQuery = q.Encode()

	return u.String(), nil
}

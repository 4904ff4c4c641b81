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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, BackendFile, cfg.Backend)
	require.Equal(t, "envstore.json", cfg.File.Path)
	require.Equal(t, "envstore", cfg.AWS.PathPrefix)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Empty(t, cfg.Postgres.URL)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ENVSTORE_BACKEND", "ssm")
	t.Setenv("ENVSTORE_AWS_REGION", "eu-west-1")
	t.Setenv("ENVSTORE_AWS_PATH_PREFIX", "teamcfg")
	t.Setenv("ENVSTORE_AWS_SECURE_STRINGS", "true")
	t.Setenv("ENVSTORE_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, BackendSSM, cfg.Backend)
	require.Equal(t, "eu-west-1", cfg.AWS.Region)
	require.Equal(t, "teamcfg", cfg.AWS.PathPrefix)
	require.True(t, cfg.AWS.SecureStrings)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "envstore.yaml")
	content := `backend: memory
logging:
  level: warn
  file: /tmp/envstore.log
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, BackendMemory, cfg.Backend)
	require.Equal(t, "warn", cfg.Logging.Level)
	require.Equal(t, "/tmp/envstore.log", cfg.Logging.File)
}

func TestLoadEnvBeatsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "envstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: memory\n"), 0644))
	t.Setenv("ENVSTORE_BACKEND", "postgres")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, BackendPostgres, cfg.Backend)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

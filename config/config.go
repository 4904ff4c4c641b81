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
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// Backend kinds selectable through the backend key.
const (
	BackendFile           = "file"
	BackendMemory         = "memory"
	BackendSSM            = "ssm"
	BackendSecretsManager = "secretsmanager"
	BackendPostgres       = "postgres"
)

// Config aggregates configuration for the application.
// Each section is consumed by the backend it names.
type Config struct {
	Backend  string         `mapstructure:"backend"`
	File     FileConfig     `mapstructure:"file"`
	AWS      AWSConfig      `mapstructure:"aws"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// FileConfig configures the file backend.
type FileConfig struct {
	Path string `mapstructure:"path"`
}

// AWSConfig configures the Parameter Store and Secrets Manager
// backends. PathPrefix roots every stored name so several installations
// can share one account.
type AWSConfig struct {
	Region        string `mapstructure:"region"`
	RoleARN       string `mapstructure:"role_arn"`
	Endpoint      string `mapstructure:"endpoint"`
	InsecureTLS   bool   `mapstructure:"insecure_tls"`
	PathPrefix    string `mapstructure:"path_prefix"`
	SecureStrings bool   `mapstructure:"secure_strings"`
	KMSKeyID      string `mapstructure:"kms_key_id"`
}

// PostgresConfig configures the postgres backend. When URL is empty the
// connection falls back to the ENVSTORE_PG_* environment variables.
type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

// LoggingConfig configures the CLI log output.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Default returns the configuration used when nothing is set: the file
// backend against envstore.json in the working directory.
func Default() *Config {
	return &Config{
		Backend: BackendFile,
		File:    FileConfig{Path: "envstore.json"},
		AWS:     AWSConfig{PathPrefix: "envstore"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads configuration from a file and environment variables.
// Environment variables use the prefix "ENVSTORE" and the dot character
// in keys is replaced by an underscore. For example, "aws.path_prefix"
// becomes "ENVSTORE_AWS_PATH_PREFIX".
//
// When configFile is empty, an optional .envstore.yaml in the working
// directory is used; an explicitly named file must exist. The dotted
// name keeps discovery away from envstore.json, the file backend's
// default data file.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".envstore")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("ENVSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if configFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}

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

package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cardinalhq/envstore/store"
)

// Formats understood by export and import.
const (
	formatJSON   = "json"
	formatYAML   = "yaml"
	formatDotenv = "dotenv"
)

// encodeVariables renders variables in the given format. The json and
// dotenv forms keep the input order; yaml does too, as a list.
func encodeVariables(vars []store.Variable, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(vars, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case formatYAML:
		return yaml.Marshal(vars)
	case formatDotenv:
		var b strings.Builder
		for _, v := range vars {
			fmt.Fprintf(&b, "%s=%s\n", v.Name, dotenvQuote(v.Value))
		}
		return []byte(b.String()), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// decodeVariables parses variables from the given format. The json and
// yaml forms accept either a list of {name, value} objects, as export
// writes, or a plain name-to-value mapping.
func decodeVariables(data []byte, format string) ([]store.Variable, error) {
	var vars []store.Variable
	var err error
	switch format {
	case formatJSON:
		if err = json.Unmarshal(data, &vars); err != nil {
			var m map[string]string
			if mapErr := json.Unmarshal(data, &m); mapErr != nil {
				return nil, fmt.Errorf("failed to parse json variables: %w", err)
			}
			vars = store.FromMap(m)
		}
	case formatYAML:
		if err = yaml.Unmarshal(data, &vars); err != nil {
			var m map[string]string
			if mapErr := yaml.Unmarshal(data, &m); mapErr != nil {
				return nil, fmt.Errorf("failed to parse yaml variables: %w", err)
			}
			vars = store.FromMap(m)
		}
	case formatDotenv:
		if vars, err = parseDotenv(data); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	for _, v := range vars {
		if v.Name == "" {
			return nil, fmt.Errorf("%s variables contain an entry without a name", format)
		}
	}
	return vars, nil
}

// detectFormat picks the format from the flag when given, otherwise
// from the file extension, defaulting to dotenv.
func detectFormat(path, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatDotenv
	}
}

// dotenvQuote wraps values that plain NAME=VALUE lines cannot carry.
func dotenvQuote(value string) string {
	if value == "" || strings.ContainsAny(value, " \t\n\r\"'#") {
		return strconv.Quote(value)
	}
	return value
}

// parseDotenv reads NAME=VALUE lines. Blank lines and # comments are
// skipped; double-quoted values unescape the usual sequences.
func parseDotenv(data []byte) ([]store.Variable, error) {
	vars := []store.Variable{}
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, found := strings.Cut(line, "=")
		if !found || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("line %d: expected NAME=VALUE, got %q", i+1, line)
		}
		name = strings.TrimSpace(name)
		if strings.HasPrefix(value, `"`) {
			unquoted, err := strconv.Unquote(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad quoting in value for %s: %w", i+1, name, err)
			}
			value = unquoted
		}
		vars = append(vars, store.Variable{Name: name, Value: value})
	}
	return vars, nil
}

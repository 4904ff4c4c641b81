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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/envstore/store"
)

func TestEncodeVariablesDotenv(t *testing.T) {
	vars := []store.Variable{
		{Name: "PORT", Value: "8080"},
		{Name: "GREETING", Value: "hello world"},
		{Name: "EMPTY", Value: ""},
		{Name: "COMMENTISH", Value: "#not-a-comment"},
	}

	data, err := encodeVariables(vars, formatDotenv)
	require.NoError(t, err)
	assert.Equal(t, "PORT=8080\nGREETING=\"hello world\"\nEMPTY=\"\"\nCOMMENTISH=\"#not-a-comment\"\n", string(data))
}

func TestEncodeVariablesJSON(t *testing.T) {
	vars := []store.Variable{
		{Name: "B", Value: "2"},
		{Name: "A", Value: "1"},
	}

	data, err := encodeVariables(vars, formatJSON)
	require.NoError(t, err)

	decoded, err := decodeVariables(data, formatJSON)
	require.NoError(t, err)
	assert.Equal(t, vars, decoded, "json keeps the input order")
}

func TestEncodeVariablesYAML(t *testing.T) {
	vars := []store.Variable{
		{Name: "NAMEISH", Value: "multi\nline"},
	}

	data, err := encodeVariables(vars, formatYAML)
	require.NoError(t, err)

	decoded, err := decodeVariables(data, formatYAML)
	require.NoError(t, err)
	assert.Equal(t, vars, decoded)
}

func TestEncodeVariablesUnsupported(t *testing.T) {
	_, err := encodeVariables(nil, "toml")
	assert.EqualError(t, err, "unsupported format: toml")
}

func TestDecodeVariablesJSONMap(t *testing.T) {
	vars, err := decodeVariables([]byte(`{"B": "2", "A": "1"}`), formatJSON)
	require.NoError(t, err)
	assert.Equal(t, []store.Variable{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}}, vars, "maps decode name-sorted")
}

func TestDecodeVariablesYAMLMap(t *testing.T) {
	vars, err := decodeVariables([]byte("PORT: \"8080\"\nHOST: localhost\n"), formatYAML)
	require.NoError(t, err)
	assert.Equal(t, []store.Variable{{Name: "HOST", Value: "localhost"}, {Name: "PORT", Value: "8080"}}, vars)
}

func TestDecodeVariablesRejectsMissingName(t *testing.T) {
	_, err := decodeVariables([]byte(`[{"value": "orphan"}]`), formatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a name")
}

func TestParseDotenv(t *testing.T) {
	input := "# database settings\n\nPORT=8080\r\nGREETING=\"hello world\"\nPLAIN=value\n"

	vars, err := parseDotenv([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, []store.Variable{
		{Name: "PORT", Value: "8080"},
		{Name: "GREETING", Value: "hello world"},
		{Name: "PLAIN", Value: "value"},
	}, vars)
}

func TestParseDotenvBadLine(t *testing.T) {
	_, err := parseDotenv([]byte("PORT=8080\njust some words\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseDotenvBadQuoting(t *testing.T) {
	_, err := parseDotenv([]byte("GREETING=\"unterminated\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GREETING")
}

func TestDotenvRoundTrip(t *testing.T) {
	vars := []store.Variable{
		{Name: "A", Value: "plain"},
		{Name: "B", Value: "has spaces and \"quotes\""},
		{Name: "C", Value: "line1\nline2"},
	}

	data, err := encodeVariables(vars, formatDotenv)
	require.NoError(t, err)

	decoded, err := parseDotenv(data)
	require.NoError(t, err)
	assert.Equal(t, vars, decoded)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path     string
		flag     string
		expected string
	}{
		{"vars.json", "", formatJSON},
		{"vars.yaml", "", formatYAML},
		{"vars.YML", "", formatYAML},
		{"vars.env", "", formatDotenv},
		{"vars", "", formatDotenv},
		{"vars.json", formatDotenv, formatDotenv},
		{"-", "", formatDotenv},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, detectFormat(tt.path, tt.flag), "path %s flag %q", tt.path, tt.flag)
	}
}

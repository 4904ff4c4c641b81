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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMap(t *testing.T) {
	m, err := ToMap([]Variable{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, m)
}

func TestToMapRejectsDuplicates(t *testing.T) {
	_, err := ToMap([]Variable{{Name: "A", Value: "1"}, {Name: "A", Value: "2"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"A"`)
}

func TestFromMapSortsByName(t *testing.T) {
	vars := FromMap(map[string]string{"B": "2", "A": "1", "C": "3"})
	assert.Equal(t, []Variable{
		{Name: "A", Value: "1"},
		{Name: "B", Value: "2"},
		{Name: "C", Value: "3"},
	}, vars)
}

func TestPartitionDeleted(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		removed  map[string]bool
		deleted  []string
		notFound []string
	}{
		{
			name:     "all deleted",
			names:    []string{"A", "B"},
			removed:  map[string]bool{"A": true, "B": true},
			deleted:  []string{"A", "B"},
			notFound: []string{},
		},
		{
			name:     "keeps request order",
			names:    []string{"B", "MISSING", "A"},
			removed:  map[string]bool{"A": true, "B": true},
			deleted:  []string{"B", "A"},
			notFound: []string{"MISSING"},
		},
		{
			name:     "duplicate request counts once",
			names:    []string{"A", "A"},
			removed:  map[string]bool{"A": true},
			deleted:  []string{"A"},
			notFound: []string{"A"},
		},
		{
			name:     "nothing removed",
			names:    []string{"A"},
			removed:  map[string]bool{},
			deleted:  []string{},
			notFound: []string{"A"},
		},
		{
			name:     "empty request",
			names:    []string{},
			removed:  map[string]bool{},
			deleted:  []string{},
			notFound: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := partitionDeleted(tt.names, tt.removed)
			assert.Equal(t, tt.deleted, result.Deleted)
			assert.Equal(t, tt.notFound, result.NotFound)
		})
	}
}

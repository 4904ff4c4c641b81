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

package secretstore

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	secrets         map[string]string
	listCalls       int
	pageSize        int
	lastDeleteInput secretsmanager.DeleteSecretInput
}

func newFakeSecrets() *fakeSecrets {
	return &fakeSecrets{secrets: make(map[string]string)}
}

func (f *fakeSecrets) CreateSecret(_ context.Context, in *secretsmanager.CreateSecretInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error) {
	name := aws.ToString(in.Name)
	if _, ok := f.secrets[name]; ok {
		return nil, &types.ResourceExistsException{Message: aws.String("secret exists")}
	}
	f.secrets[name] = aws.ToString(in.SecretString)
	return &secretsmanager.CreateSecretOutput{}, nil
}

func (f *fakeSecrets) PutSecretValue(_ context.Context, in *secretsmanager.PutSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error) {
	name := aws.ToString(in.SecretId)
	if _, ok := f.secrets[name]; !ok {
		return nil, &types.ResourceNotFoundException{}
	}
	f.secrets[name] = aws.ToString(in.SecretString)
	return &secretsmanager.PutSecretValueOutput{}, nil
}

func (f *fakeSecrets) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	name := aws.ToString(in.SecretId)
	value, ok := f.secrets[name]
	if !ok {
		return nil, &types.ResourceNotFoundException{}
	}
	return &secretsmanager.GetSecretValueOutput{
		Name:         in.SecretId,
		SecretString: aws.String(value),
	}, nil
}

func (f *fakeSecrets) DeleteSecret(_ context.Context, in *secretsmanager.DeleteSecretInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.DeleteSecretOutput, error) {
	f.lastDeleteInput = *in
	name := aws.ToString(in.SecretId)
	if _, ok := f.secrets[name]; !ok {
		return nil, &types.ResourceNotFoundException{}
	}
	delete(f.secrets, name)
	return &secretsmanager.DeleteSecretOutput{Name: in.SecretId}, nil
}

func (f *fakeSecrets) ListSecrets(_ context.Context, in *secretsmanager.ListSecretsInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error) {
	f.listCalls++
	prefix := ""
	for _, filter := range in.Filters {
		if filter.Key == types.FilterNameStringTypeName && len(filter.Values) > 0 {
			prefix = filter.Values[0]
		}
	}
	var names []string
	for name := range f.secrets {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	start := 0
	if in.NextToken != nil {
		start, _ = strconv.Atoi(aws.ToString(in.NextToken))
	}
	size := f.pageSize
	if size <= 0 {
		size = len(names)
	}
	end := len(names)
	if size > 0 {
		end = min(start+size, len(names))
	}

	out := &secretsmanager.ListSecretsOutput{}
	for _, name := range names[start:end] {
		out.SecretList = append(out.SecretList, types.SecretListEntry{Name: aws.String(name)})
	}
	if end < len(names) {
		out.NextToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func TestStore_CreateRefusesExisting(t *testing.T) {
	fake := newFakeSecrets()
	store := New(fake)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "/acme/DB_PASSWORD", "hunter2"))
	err := store.Create(ctx, "/acme/DB_PASSWORD", "hunter3")
	require.ErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, "hunter2", fake.secrets["/acme/DB_PASSWORD"])
}

func TestStore_UpsertOverwrites(t *testing.T) {
	fake := newFakeSecrets()
	store := New(fake)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "/acme/DB_PASSWORD", "hunter2"))
	require.NoError(t, store.Upsert(ctx, "/acme/DB_PASSWORD", "hunter3"))
	assert.Equal(t, "hunter3", fake.secrets["/acme/DB_PASSWORD"])
}

func TestStore_UpdateRequiresExisting(t *testing.T) {
	fake := newFakeSecrets()
	store := New(fake)
	ctx := context.Background()

	err := store.Update(ctx, "/acme/DB_PASSWORD", "hunter3")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Create(ctx, "/acme/DB_PASSWORD", "hunter2"))
	require.NoError(t, store.Update(ctx, "/acme/DB_PASSWORD", "hunter3"))
	assert.Equal(t, "hunter3", fake.secrets["/acme/DB_PASSWORD"])
}

func TestStore_GetValue(t *testing.T) {
	fake := newFakeSecrets()
	fake.secrets["/acme/DB_PASSWORD"] = "hunter2"
	store := New(fake)

	value, found, err := store.GetValue(context.Background(), "/acme/DB_PASSWORD")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hunter2", value)

	_, found, err = store.GetValue(context.Background(), "/acme/MISSING")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_ListByPrefix(t *testing.T) {
	fake := newFakeSecrets()
	fake.secrets = map[string]string{
		"/acme/DB_PASSWORD":    "hunter2",
		"/acme/API_KEY":        "k1",
		"/acme/webapp/API_KEY": "k2",
		"/other/DB_PASSWORD":   "nope",
	}
	store := New(fake)

	values, err := store.ListByPrefix(context.Background(), "/acme")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"/acme/DB_PASSWORD":    "hunter2",
		"/acme/API_KEY":        "k1",
		"/acme/webapp/API_KEY": "k2",
	}, values)
}

func TestStore_ListByPrefixPaginates(t *testing.T) {
	fake := newFakeSecrets()
	fake.pageSize = 2
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		fake.secrets["/acme/"+name] = name
	}
	store := New(fake)

	values, err := store.ListByPrefix(context.Background(), "/acme")
	require.NoError(t, err)
	assert.Len(t, values, 5)
	assert.Equal(t, 3, fake.listCalls)
}

func TestStore_DeleteSkipsRecoveryWindow(t *testing.T) {
	fake := newFakeSecrets()
	fake.secrets["/acme/DB_PASSWORD"] = "hunter2"
	store := New(fake)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "/acme/DB_PASSWORD"))
	assert.True(t, aws.ToBool(fake.lastDeleteInput.ForceDeleteWithoutRecovery))
	assert.Empty(t, fake.secrets)

	err := store.Delete(ctx, "/acme/DB_PASSWORD")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteManyPartitions(t *testing.T) {
	fake := newFakeSecrets()
	fake.secrets["/acme/A"] = "a"
	fake.secrets["/acme/C"] = "c"
	store := New(fake)

	deleted, notFound, err := store.DeleteMany(context.Background(), []string{"/acme/A", "/acme/B", "/acme/C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/acme/A", "/acme/C"}, deleted)
	assert.Equal(t, []string{"/acme/B"}, notFound)
}

func TestStore_NameHandling(t *testing.T) {
	fake := newFakeSecrets()
	store := New(fake)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "acme//webapp/API_KEY/", "k1"))
	assert.Contains(t, fake.secrets, "/acme/webapp/API_KEY")

	err := store.Create(ctx, "/acme/bad name", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal character")

	err = store.Create(ctx, "   ", "v")
	require.ErrorIs(t, err, errEmptyName)
}

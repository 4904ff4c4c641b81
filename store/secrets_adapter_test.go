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
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/envstore/hierarchy"
	"github.com/cardinalhq/envstore/internal/secretstore"
)

// fakeSecretsAPI is a single-page in-memory Secrets Manager. Pagination
// behavior is covered by the secretstore tests.
type fakeSecretsAPI struct {
	secrets map[string]string
}

func newFakeSecretsAPI() *fakeSecretsAPI {
	return &fakeSecretsAPI{secrets: make(map[string]string)}
}

func (f *fakeSecretsAPI) CreateSecret(_ context.Context, in *secretsmanager.CreateSecretInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error) {
	name := aws.ToString(in.Name)
	if _, ok := f.secrets[name]; ok {
		return nil, &smtypes.ResourceExistsException{}
	}
	f.secrets[name] = aws.ToString(in.SecretString)
	return &secretsmanager.CreateSecretOutput{}, nil
}

func (f *fakeSecretsAPI) PutSecretValue(_ context.Context, in *secretsmanager.PutSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error) {
	name := aws.ToString(in.SecretId)
	if _, ok := f.secrets[name]; !ok {
		return nil, &smtypes.ResourceNotFoundException{}
	}
	f.secrets[name] = aws.ToString(in.SecretString)
	return &secretsmanager.PutSecretValueOutput{}, nil
}

func (f *fakeSecretsAPI) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	name := aws.ToString(in.SecretId)
	value, ok := f.secrets[name]
	if !ok {
		return nil, &smtypes.ResourceNotFoundException{}
	}
	return &secretsmanager.GetSecretValueOutput{
		Name:         in.SecretId,
		SecretString: aws.String(value),
	}, nil
}

func (f *fakeSecretsAPI) DeleteSecret(_ context.Context, in *secretsmanager.DeleteSecretInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.DeleteSecretOutput, error) {
	name := aws.ToString(in.SecretId)
	if _, ok := f.secrets[name]; !ok {
		return nil, &smtypes.ResourceNotFoundException{}
	}
	delete(f.secrets, name)
	return &secretsmanager.DeleteSecretOutput{Name: in.SecretId}, nil
}

func (f *fakeSecretsAPI) ListSecrets(_ context.Context, in *secretsmanager.ListSecretsInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error) {
	prefix := ""
	for _, filter := range in.Filters {
		if filter.Key == smtypes.FilterNameStringTypeName && len(filter.Values) > 0 {
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
	out := &secretsmanager.ListSecretsOutput{}
	for _, name := range names {
		out.SecretList = append(out.SecretList, smtypes.SecretListEntry{Name: aws.String(name)})
	}
	return out, nil
}

func newTestSecretsAdapter(t *testing.T) (Adapter, *fakeSecretsAPI) {
	t.Helper()
	fake := newFakeSecretsAPI()
	adapter, err := NewSecretsManagerAdapter(secretstore.New(fake), "envstore")
	require.NoError(t, err)
	return adapter, fake
}

func TestSecretsAdapter_RequiresConfig(t *testing.T) {
	_, err := NewSecretsManagerAdapter(nil, "envstore")
	require.EqualError(t, err, "secrets manager adapter requires a secret store")

	_, err = NewSecretsManagerAdapter(secretstore.New(newFakeSecretsAPI()), "")
	require.EqualError(t, err, "secrets manager adapter requires a path prefix")

	_, err = NewSecretsManagerAdapter(secretstore.New(newFakeSecretsAPI()), "env store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal character")
}

func TestSecretsAdapter_SecretNaming(t *testing.T) {
	adapter, fake := newTestSecretsAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.SetVariable(ctx, hierarchy.Coordinates{}, "GLOBAL", "1"))
	svc := hierarchy.Coordinates{Organisation: "acme", Project: "webapp", Environment: "dev", Service: "api"}
	require.NoError(t, adapter.SetVariable(ctx, svc, "API_KEY", "k1"))

	assert.Equal(t, map[string]string{
		"/envstore/GLOBAL":                      "1",
		"/envstore/acme/webapp/dev/api/API_KEY": "k1",
	}, fake.secrets)
}

func TestSecretsAdapter_PrefixSiblingsStaySeparate(t *testing.T) {
	adapter, fake := newTestSecretsAdapter(t)
	fake.secrets = map[string]string{
		"/envstore/acme/PORT":          "8080",
		"/envstore/acme/webapp/NAME":   "webapp",
		"/envstore/acme-corp/PORT":     "9090",
		"/envstore/acme-corp/api/NAME": "api",
	}
	ctx := context.Background()
	acme := hierarchy.Coordinates{Organisation: "acme"}

	vars, err := adapter.GetVariables(ctx, acme)
	require.NoError(t, err)
	assert.Equal(t, []Variable{{Name: "PORT", Value: "8080"}}, vars, "acme-corp values must not bleed into acme")

	projects, err := adapter.ListProjects(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"webapp"}, projects)

	orgs, err := adapter.ListOrganisations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "acme-corp"}, orgs)
}

func TestSecretsAdapter_DeleteVariables(t *testing.T) {
	adapter, _ := newTestSecretsAdapter(t)
	ctx := context.Background()
	org := hierarchy.Coordinates{Organisation: "acme"}

	require.NoError(t, adapter.SetVariable(ctx, org, "A", "1"))
	require.NoError(t, adapter.SetVariable(ctx, org, "B", "2"))

	result, err := adapter.DeleteVariables(ctx, org, []string{"B", "NOPE", "A"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, result.Deleted)
	assert.Equal(t, []string{"NOPE"}, result.NotFound)

	deleted, err := adapter.DeleteVariable(ctx, org, "A")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSecretsAdapter_NativeCreateAndUpdate(t *testing.T) {
	adapter, _ := newTestSecretsAdapter(t)
	ctx := context.Background()
	org := hierarchy.Coordinates{Organisation: "acme"}

	require.NoError(t, CreateVariable(ctx, adapter, org, "API_KEY", "k1"))
	err := CreateVariable(ctx, adapter, org, "API_KEY", "k2")
	require.ErrorIs(t, err, ErrVariableExists)

	err = UpdateVariable(ctx, adapter, org, "MISSING", "1")
	require.ErrorIs(t, err, ErrVariableNotFound)

	require.NoError(t, UpdateVariable(ctx, adapter, org, "API_KEY", "k2"))
	value, found, err := adapter.GetVariable(ctx, org, "API_KEY")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "k2", value)
}

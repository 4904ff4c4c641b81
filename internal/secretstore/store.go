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

// Package secretstore wraps the AWS Secrets Manager API with the same
// shape ssmstore gives Parameter Store. Secrets Manager has no native
// path queries, so listing filters on a name prefix and fetches each
// matching secret's value.
package secretstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

var (
	// ErrAlreadyExists is returned by Create when the secret name is taken.
	ErrAlreadyExists = errors.New("secret already exists")
	// ErrNotFound is returned by Update and Delete for missing secrets.
	ErrNotFound = errors.New("secret not found")
)

// API is the Secrets Manager surface this package uses.
// *secretsmanager.Client satisfies it, as do test fakes.
type API interface {
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	DeleteSecret(ctx context.Context, params *secretsmanager.DeleteSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DeleteSecretOutput, error)
	ListSecrets(ctx context.Context, params *secretsmanager.ListSecretsInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error)
}

// Store provides secret operations against a single region and role.
type Store struct {
	client     API
	cleanNames bool
}

// Option configures a Store.
type Option func(*Store)

// WithoutNameCleaning disables the pathlike normalization applied to
// every name before use. Names are still validated.
func WithoutNameCleaning() Option {
	return func(s *Store) {
		s.cleanNames = false
	}
}

// New returns a Store backed by the given client.
func New(client API, opts ...Option) *Store {
	s := &Store{client: client, cleanNames: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new secret and fails with ErrAlreadyExists when a
// secret of that name is already present, including one scheduled for
// deletion.
func (s *Store) Create(ctx context.Context, name, value string) error {
	name, err := s.normalize(name)
	if err != nil {
		return err
	}
	return s.create(ctx, name, value)
}

func (s *Store) create(ctx context.Context, name, value string) error {
	_, err := s.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		SecretString: aws.String(value),
	})
	var exists *types.ResourceExistsException
	if errors.As(err, &exists) {
		return fmt.Errorf("secret %s: %w", name, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create secret %s: %w", name, err)
	}
	return nil
}

// Upsert stores a secret, adding a new version when it already exists.
func (s *Store) Upsert(ctx context.Context, name, value string) error {
	name, err := s.normalize(name)
	if err != nil {
		return err
	}
	err = s.create(ctx, name, value)
	if errors.Is(err, ErrAlreadyExists) {
		return s.update(ctx, name, value)
	}
	return err
}

// Update overwrites an existing secret's value and fails with
// ErrNotFound when there is nothing to update.
func (s *Store) Update(ctx context.Context, name, value string) error {
	name, err := s.normalize(name)
	if err != nil {
		return err
	}
	return s.update(ctx, name, value)
}

func (s *Store) update(ctx context.Context, name, value string) error {
	_, err := s.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(value),
	})
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("secret %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update secret %s: %w", name, err)
	}
	return nil
}

// GetValue fetches a secret's current value. A missing secret reports
// found=false rather than an error.
func (s *Store) GetValue(ctx context.Context, name string) (string, bool, error) {
	name, err := s.normalize(name)
	if err != nil {
		return "", false, err
	}
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get secret %s: %w", name, err)
	}
	return aws.ToString(out.SecretString), true, nil
}

// ListByPrefix returns the values of every secret whose name starts
// with the given prefix, keyed by full secret name. The name filter is
// applied server side, then each secret's value is fetched.
func (s *Store) ListByPrefix(ctx context.Context, prefix string) (map[string]string, error) {
	prefix, err := s.normalize(prefix)
	if err != nil {
		return nil, err
	}
	var names []string
	paginator := secretsmanager.NewListSecretsPaginator(s.client, &secretsmanager.ListSecretsInput{
		Filters: []types.Filter{{
			Key:    types.FilterNameStringTypeName,
			Values: []string{prefix},
		}},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list secrets under %s: %w", prefix, err)
		}
		for _, entry := range page.SecretList {
			names = append(names, aws.ToString(entry.Name))
		}
	}

	values := make(map[string]string)
	for _, name := range names {
		value, found, err := s.GetValue(ctx, name)
		if err != nil {
			return nil, err
		}
		if found {
			values[name] = value
		}
	}
	return values, nil
}

// Delete removes a secret immediately, without the recovery window,
// and fails with ErrNotFound when it does not exist.
func (s *Store) Delete(ctx context.Context, name string) error {
	name, err := s.normalize(name)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteSecret(ctx, &secretsmanager.DeleteSecretInput{
		SecretId:                   aws.String(name),
		ForceDeleteWithoutRecovery: aws.Bool(true),
	})
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("secret %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete secret %s: %w", name, err)
	}
	return nil
}

// DeleteMany removes a set of secrets one by one, since the API has no
// batch delete. It returns the names it deleted and the names that did
// not exist; any other failure aborts the walk.
func (s *Store) DeleteMany(ctx context.Context, names []string) (deleted, notFound []string, err error) {
	deleted = []string{}
	notFound = []string{}
	for _, name := range names {
		err := s.Delete(ctx, name)
		switch {
		case errors.Is(err, ErrNotFound):
			notFound = append(notFound, name)
		case err != nil:
			return nil, nil, err
		default:
			deleted = append(deleted, name)
		}
	}
	return deleted, notFound, nil
}

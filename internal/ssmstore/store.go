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

// Package ssmstore wraps the SSM Parameter Store API with the small
// surface the variable adapters need: typed create/update/upsert
// semantics, decrypted reads, paginated listing and batched deletes.
package ssmstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

var (
	// ErrAlreadyExists is returned by Create when the parameter is taken.
	ErrAlreadyExists = errors.New("parameter already exists")
	// ErrNotFound is returned by Update and Delete for missing parameters.
	ErrNotFound = errors.New("parameter not found")
)

// API is the Parameter Store surface this package uses. *ssm.Client
// satisfies it, as do test fakes.
type API interface {
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
	DeleteParameter(ctx context.Context, params *ssm.DeleteParameterInput, optFns ...func(*ssm.Options)) (*ssm.DeleteParameterOutput, error)
	DeleteParameters(ctx context.Context, params *ssm.DeleteParametersInput, optFns ...func(*ssm.Options)) (*ssm.DeleteParametersOutput, error)
}

// deleteBatchMax is the number of names DeleteParameters accepts per call.
const deleteBatchMax = 10

// Store provides parameter operations against a single region and role.
type Store struct {
	client     API
	cleanNames bool
	paramType  types.ParameterType
	kmsKeyID   string
}

// Option configures a Store.
type Option func(*Store)

// WithoutNameCleaning disables the Pathlike normalization applied to
// every name before use. Names are still validated.
func WithoutNameCleaning() Option {
	return func(s *Store) {
		s.cleanNames = false
	}
}

// WithSecureStrings writes parameters as SecureString, encrypted with
// the given KMS key, or the account default key when kmsKeyID is empty.
func WithSecureStrings(kmsKeyID string) Option {
	return func(s *Store) {
		s.paramType = types.ParameterTypeSecureString
		s.kmsKeyID = kmsKeyID
	}
}

// New returns a Store backed by the given client.
func New(client API, opts ...Option) *Store {
	s := &Store{
		client:     client,
		cleanNames: true,
		paramType:  types.ParameterTypeString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) normalize(name string) (string, error) {
	if s.cleanNames {
		cleaned, err := Pathlike(name)
		if err != nil {
			return "", err
		}
		name = cleaned
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Store) put(ctx context.Context, name, value string, overwrite bool) error {
	in := &ssm.PutParameterInput{
		Name:      aws.String(name),
		Value:     aws.String(value),
		Type:      s.paramType,
		Overwrite: aws.Bool(overwrite),
	}
	if s.kmsKeyID != "" {
		in.KeyId = aws.String(s.kmsKeyID)
	}
	_, err := s.client.PutParameter(ctx, in)
	var exists *types.ParameterAlreadyExists
	if errors.As(err, &exists) {
		return fmt.Errorf("parameter %s: %w", name, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to put parameter %s: %w", name, err)
	}
	return nil
}

// Create stores a new parameter and fails with ErrAlreadyExists when a
// parameter of that name is already present.
func (s *Store) Create(ctx context.Context, name, value string) error {
	name, err := s.normalize(name)
	if err != nil {
		return err
	}
	return s.put(ctx, name, value, false)
}

// Upsert stores a parameter, overwriting any existing value.
func (s *Store) Upsert(ctx context.Context, name, value string) error {
	name, err := s.normalize(name)
	if err != nil {
		return err
	}
	return s.put(ctx, name, value, true)
}

// Update overwrites an existing parameter and fails with ErrNotFound
// when there is nothing to update.
func (s *Store) Update(ctx context.Context, name, value string) error {
	name, err := s.normalize(name)
	if err != nil {
		return err
	}
	_, found, err := s.getValue(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("parameter %s: %w", name, ErrNotFound)
	}
	return s.put(ctx, name, value, true)
}

// GetValue fetches a parameter's decrypted value. A missing parameter
// reports found=false rather than an error.
func (s *Store) GetValue(ctx context.Context, name string) (string, bool, error) {
	name, err := s.normalize(name)
	if err != nil {
		return "", false, err
	}
	return s.getValue(ctx, name)
}

func (s *Store) getValue(ctx context.Context, name string) (string, bool, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	var notFound *types.ParameterNotFound
	if errors.As(err, &notFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get parameter %s: %w", name, err)
	}
	return aws.ToString(out.Parameter.Value), true, nil
}

// ListByPath returns the decrypted values of every parameter under the
// given path, keyed by full parameter name. With recursive set the
// listing descends into nested paths, otherwise only direct children
// are returned.
func (s *Store) ListByPath(ctx context.Context, pathPrefix string, recursive bool) (map[string]string, error) {
	pathPrefix, err := s.normalize(pathPrefix)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string)
	paginator := ssm.NewGetParametersByPathPaginator(s.client, &ssm.GetParametersByPathInput{
		Path:           aws.String(pathPrefix),
		Recursive:      aws.Bool(recursive),
		WithDecryption: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list parameters under %s: %w", pathPrefix, err)
		}
		for _, param := range page.Parameters {
			values[aws.ToString(param.Name)] = aws.ToString(param.Value)
		}
	}
	return values, nil
}

// Delete removes a parameter and fails with ErrNotFound when it does
// not exist.
func (s *Store) Delete(ctx context.Context, name string) error {
	name, err := s.normalize(name)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteParameter(ctx, &ssm.DeleteParameterInput{Name: aws.String(name)})
	var notFound *types.ParameterNotFound
	if errors.As(err, &notFound) {
		return fmt.Errorf("parameter %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete parameter %s: %w", name, err)
	}
	return nil
}

// DeleteMany removes a set of parameters, chunking requests to the API
// limit. It returns the names the service deleted and the names it did
// not recognize.
func (s *Store) DeleteMany(ctx context.Context, names []string) (deleted, invalid []string, err error) {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		normalized, err := s.normalize(name)
		if err != nil {
			return nil, nil, err
		}
		cleaned = append(cleaned, normalized)
	}

	deleted = []string{}
	invalid = []string{}
	for start := 0; start < len(cleaned); start += deleteBatchMax {
		end := min(start+deleteBatchMax, len(cleaned))
		out, err := s.client.DeleteParameters(ctx, &ssm.DeleteParametersInput{Names: cleaned[start:end]})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to delete parameters: %w", err)
		}
		deleted = append(deleted, out.DeletedParameters...)
		invalid = append(invalid, out.InvalidParameters...)
	}
	return deleted, invalid, nil
}

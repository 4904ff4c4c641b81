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
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/cardinalhq/envstore/config"
	"github.com/cardinalhq/envstore/internal/awsclient"
	"github.com/cardinalhq/envstore/internal/dbopen"
	"github.com/cardinalhq/envstore/internal/secretstore"
	"github.com/cardinalhq/envstore/internal/ssmstore"
)

// NewAdapter builds the storage backend named by the configuration.
// Adapters holding connections implement io.Closer; callers that care
// about shutdown should type-assert and close.
func NewAdapter(ctx context.Context, cfg *config.Config) (Adapter, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return NewFileAdapter(cfg.File.Path)
	case config.BackendMemory:
		return NewMemoryAdapter(), nil
	case config.BackendSSM:
		client, err := newSSMClient(ctx, cfg.AWS)
		if err != nil {
			return nil, fmt.Errorf("failed to create parameter store client: %w", err)
		}
		var opts []ssmstore.Option
		if cfg.AWS.SecureStrings {
			opts = append(opts, ssmstore.WithSecureStrings(cfg.AWS.KMSKeyID))
		}
		return NewSSMAdapter(ssmstore.New(client, opts...), cfg.AWS.PathPrefix)
	case config.BackendSecretsManager:
		client, err := newSecretsManagerClient(ctx, cfg.AWS)
		if err != nil {
			return nil, fmt.Errorf("failed to create secrets manager client: %w", err)
		}
		return NewSecretsManagerAdapter(secretstore.New(client), cfg.AWS.PathPrefix)
	case config.BackendPostgres:
		pool, err := dbopen.ConnectToEnvstoreDB(ctx, dbopen.Options{URL: cfg.Postgres.URL})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		adapter, err := NewPostgresAdapter(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return adapter, nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}

func newSSMClient(ctx context.Context, cfg config.AWSConfig) (*ssm.Client, error) {
	mgr, err := awsclient.NewManager(ctx, awsclient.WithAssumeRoleSessionName("envstore"))
	if err != nil {
		return nil, err
	}
	var opts []awsclient.SSMOption
	if cfg.Region != "" {
		opts = append(opts, awsclient.WithRegion(cfg.Region))
	}
	if cfg.RoleARN != "" {
		opts = append(opts, awsclient.WithRole(cfg.RoleARN))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, awsclient.WithEndpoint(cfg.Endpoint))
	}
	if cfg.InsecureTLS {
		opts = append(opts, awsclient.WithInsecureTLS())
	}
	return mgr.GetSSM(ctx, opts...)
}

func newSecretsManagerClient(ctx context.Context, cfg config.AWSConfig) (*secretsmanager.Client, error) {
	mgr, err := awsclient.NewManager(ctx, awsclient.WithAssumeRoleSessionName("envstore"))
	if err != nil {
		return nil, err
	}
	var opts []awsclient.SecretsOption
	if cfg.Region != "" {
		opts = append(opts, awsclient.WithSecretsRegion(cfg.Region))
	}
	if cfg.RoleARN != "" {
		opts = append(opts, awsclient.WithSecretsRole(cfg.RoleARN))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, awsclient.WithSecretsEndpoint(cfg.Endpoint))
	}
	if cfg.InsecureTLS {
		opts = append(opts, awsclient.WithSecretsInsecureTLS())
	}
	return mgr.GetSecretsManager(ctx, opts...)
}

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

package awsclient

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// ----------------------------------------------------------------
// internal config struct for GetSecretsManager
// ----------------------------------------------------------------
type secretsConfig struct {
	RoleARN      string
	Region       string
	applyConfigs []func(*aws.Config)
	applySMs     []func(*secretsmanager.Options)
}

// SecretsOption is a functional option for GetSecretsManager.
type SecretsOption func(*secretsConfig)

// WithSecretsRole sets the IAM Role ARN to assume (empty = no assume).
func WithSecretsRole(roleARN string) SecretsOption {
	return func(c *secretsConfig) {
		c.RoleARN = roleARN
	}
}

// WithSecretsRegion overrides the AWS region for this call.
func WithSecretsRegion(region string) SecretsOption {
	return func(c *secretsConfig) {
		c.Region = region
	}
}

// WithSecretsEndpoint forces a custom Secrets Manager endpoint.
func WithSecretsEndpoint(url string) SecretsOption {
	return func(c *secretsConfig) {
		c.applySMs = append(c.applySMs, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(url)
		})
	}
}

// WithSecretsInsecureTLS turns off cert verification (for self-signed or insecure).
func WithSecretsInsecureTLS() SecretsOption {
	return func(c *secretsConfig) {
		c.applyConfigs = append(c.applyConfigs, func(cfg *aws.Config) {
			tr := http.DefaultTransport.(*http.Transport).Clone()
			tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
			cfg.HTTPClient = &http.Client{Transport: tr}
		})
	}
}

// GetSecretsManager builds a Secrets Manager client for the requested
// region and role, reusing cached credentials across calls.
func (m *Manager) GetSecretsManager(ctx context.Context, opts ...SecretsOption) (*secretsmanager.Client, error) {
	sc := secretsConfig{
		Region: m.baseCfg.Region,
	}
	for _, o := range opts {
		o(&sc)
	}

	cfg := m.configFor(sc.Region, sc.RoleARN, sc.applyConfigs)
	return secretsmanager.NewFromConfig(cfg, sc.applySMs...), nil
}

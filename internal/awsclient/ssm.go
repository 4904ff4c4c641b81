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
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ----------------------------------------------------------------
// internal config struct for GetSSM
// ----------------------------------------------------------------
type ssmConfig struct {
	RoleARN      string
	Region       string
	applyConfigs []func(*aws.Config)
	applySSMs    []func(*ssm.Options)
}

// SSMOption is a functional option for GetSSM.
type SSMOption func(*ssmConfig)

// WithRole sets the IAM Role ARN to assume (empty = no assume).
func WithRole(roleARN string) SSMOption {
	return func(c *ssmConfig) {
		c.RoleARN = roleARN
	}
}

// WithRegion overrides the AWS region for this call.
func WithRegion(region string) SSMOption {
	return func(c *ssmConfig) {
		c.Region = region
	}
}

// WithEndpoint forces a custom Parameter Store endpoint (eg localstack).
func WithEndpoint(url string) SSMOption {
	return func(c *ssmConfig) {
		c.applySSMs = append(c.applySSMs, func(o *ssm.Options) {
			o.BaseEndpoint = aws.String(url)
		})
	}
}

// WithInsecureTLS turns off cert verification (for self-signed or insecure).
func WithInsecureTLS() SSMOption {
	return func(c *ssmConfig) {
		c.applyConfigs = append(c.applyConfigs, func(cfg *aws.Config) {
			tr := http.DefaultTransport.(*http.Transport).Clone()
			tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
			cfg.HTTPClient = &http.Client{Transport: tr}
		})
	}
}

// GetSSM builds a Parameter Store client for the requested region and
// role, reusing cached credentials across calls.
func (m *Manager) GetSSM(ctx context.Context, opts ...SSMOption) (*ssm.Client, error) {
	sc := ssmConfig{
		Region: m.baseCfg.Region,
	}
	for _, o := range opts {
		o(&sc)
	}

	cfg := m.configFor(sc.Region, sc.RoleARN, sc.applyConfigs)
	return ssm.NewFromConfig(cfg, sc.applySSMs...), nil
}

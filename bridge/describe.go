// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package bridge

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/scoutlink/osmauth/oidc"
)

// Online Scout Manager provider defaults.
const (
	ProviderID   = "osm"
	ProviderName = "Online Scout Manager"

	OSMWellKnownURL     = "https://www.onlinescoutmanager.co.uk/.well-known/openid-configuration"
	OSMAuthorizationURL = "https://www.onlinescoutmanager.co.uk/oauth/openid/authorize"
	OSMTokenURL         = "https://www.onlinescoutmanager.co.uk/oauth/openid/token"
	OSMUserInfoURL      = "https://www.onlinescoutmanager.co.uk/oauth/resource"
)

// Environment variables read by DescribeProvider.
const (
	EnvIssuer           = "AUTH0_ISSUER"
	EnvClientID         = "AUTH0_ID"
	EnvClientSecret     = "AUTH0_SECRET"
	EnvDiscoveryURL     = "OSM_DISCOVERY_URL"
	EnvAuthorizationURL = "OSM_AUTHORIZATION_URL"
	EnvTokenURL         = "OSM_TOKEN_URL"
	EnvUserInfoURL      = "OSM_USERINFO_URL"
	EnvProviderCA       = "OSM_PROVIDER_CA"
)

// DefaultScopes are requested from the provider.
var DefaultScopes = []string{"openid", "email", "profile"}

// Env looks up configuration values.  os.Getenv satisfies it.
type Env func(key string) string

// OSEnv reads the process environment.
var OSEnv Env = os.Getenv

// DescribeProvider builds the provider configuration for Online Scout Manager
// from env.  The issuer, client id and client secret are required; every
// missing one is reported and the error wraps ErrConfiguration.  Endpoints,
// the discovery URL and the provider CA default to the Online Scout Manager
// values and may be overridden from env.  The opts are applied last, so they
// override everything else.
func DescribeProvider(env Env, redirectURL string, opt ...oidc.Option) (*oidc.Config, error) {
	const op = "bridge.DescribeProvider"
	if env == nil {
		return nil, fmt.Errorf("%s: env is nil: %w", op, ErrConfiguration)
	}
	var missing *multierror.Error
	required := func(key string) string {
		v := env(key)
		if v == "" {
			missing = multierror.Append(missing, fmt.Errorf("%s: %s is not set: %w", op, key, ErrConfiguration))
		}
		return v
	}
	issuer := required(EnvIssuer)
	clientID := required(EnvClientID)
	clientSecret := required(EnvClientSecret)
	if err := missing.ErrorOrNil(); err != nil {
		return nil, err
	}

	withDefault := func(key, def string) string {
		if v := env(key); v != "" {
			return v
		}
		return def
	}
	opts := []oidc.Option{
		oidc.WithProviderID(ProviderID),
		oidc.WithDisplayName(ProviderName),
		oidc.WithScopes(DefaultScopes...),
		oidc.WithDiscoveryURL(withDefault(EnvDiscoveryURL, OSMWellKnownURL)),
		oidc.WithEndpoints(
			withDefault(EnvAuthorizationURL, OSMAuthorizationURL),
			withDefault(EnvTokenURL, OSMTokenURL),
			withDefault(EnvUserInfoURL, OSMUserInfoURL),
		),
		oidc.WithProviderCA(env(EnvProviderCA)),
	}
	c, err := oidc.NewConfig(issuer, clientID, oidc.ClientSecret(clientSecret), redirectURL, append(opts, opt...)...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrConfiguration, err)
	}
	return c, nil
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-multierror"
	"github.com/scoutlink/osmauth/oidc/internal/strutils"
)

// ClientSecret is an oauth client Secret.
type ClientSecret string

// RedactedClientSecret is the redacted string or json for an oauth client secret.
const RedactedClientSecret = "[REDACTED: client secret]"

// String will redact the client secret.
func (t ClientSecret) String() string {
	return RedactedClientSecret
}

// MarshalJSON will redact the client secret.
func (t ClientSecret) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedClientSecret)
}

// WellKnownPath is appended to the issuer when a Config doesn't specify a
// DiscoveryURL.
const WellKnownPath = "/.well-known/openid-configuration"

// Config represents the configuration for an OIDC provider used by a relying
// party for the authorization code flow with PKCE.  A Config is immutable once
// created and may be shared across requests.
type Config struct {
	// ProviderID is the short identifier of the provider used in routes (for
	// example: "osm").
	ProviderID string

	// DisplayName is the human readable name of the provider.
	DisplayName string

	// ClientID is the relying party ID.
	ClientID string

	// ClientSecret is the relying party secret.
	ClientSecret ClientSecret

	// Scopes is a list of scopes to request of the provider.  The required
	// "openid" scope is always requested.
	Scopes []string

	// Issuer is a case-sensitive URL string using the https scheme that
	// contains scheme, host, and optionally, port number and path components
	// and no query or fragment components.
	Issuer string

	// DiscoveryURL is an optional URL of the provider's discovery document.
	// When empty, Issuer + WellKnownPath is used if discovery is needed.
	DiscoveryURL string

	// AuthURL, TokenURL, UserInfoURL and JWKSURL are optional explicit
	// endpoints.  When set they take precedence over discovered endpoints.
	AuthURL     string
	TokenURL    string
	UserInfoURL string
	JWKSURL     string

	// SupportedSigningAlgs is a list of supported signing algorithms for
	// id_tokens. Defaults to RS256.
	SupportedSigningAlgs []Alg

	// RedirectURL is the callback URL registered with the provider.
	RedirectURL string

	// Audiences is an optional list of case-sensitive strings used when
	// verifying an id_token's "aud" claim.
	Audiences []string

	// ProviderCA is an optional CA cert to use when sending requests to the
	// provider.
	ProviderCA string

	// RequireIDToken makes a token exchange fail when the provider doesn't
	// return an id_token.
	RequireIDToken bool
}

// NewConfig composes a new config for a provider.
//
// Supported options:
//   - WithProviderID
//   - WithDisplayName
//   - WithScopes
//   - WithDiscoveryURL
//   - WithEndpoints
//   - WithJWKSURL
//   - WithSigningAlgs
//   - WithAudiences
//   - WithProviderCA
//   - WithRequireIDToken
func NewConfig(issuer string, clientID string, clientSecret ClientSecret, redirectURL string, opt ...Option) (*Config, error) {
	const op = "NewConfig"
	opts := getConfigOpts(opt...)
	c := &Config{
		ProviderID:           opts.withProviderID,
		DisplayName:          opts.withDisplayName,
		ClientID:             clientID,
		ClientSecret:         clientSecret,
		Scopes:               opts.withScopes,
		Issuer:               issuer,
		DiscoveryURL:         opts.withDiscoveryURL,
		AuthURL:              opts.withAuthURL,
		TokenURL:             opts.withTokenURL,
		UserInfoURL:          opts.withUserInfoURL,
		JWKSURL:              opts.withJWKSURL,
		SupportedSigningAlgs: opts.withSigningAlgs,
		RedirectURL:          redirectURL,
		Audiences:            opts.withAudiences,
		ProviderCA:           opts.withProviderCA,
		RequireIDToken:       opts.withRequireIDToken,
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid provider config: %w", op, err)
	}
	return c, nil
}

// Validate the provider configuration.  Every problem found is reported in
// the returned error (a *multierror.Error), and each of them wraps
// ErrInvalidParameter.  It doesn't verify the Issuer is discoverable via an
// http request.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	var result *multierror.Error
	if c.ClientID == "" {
		result = multierror.Append(result, fmt.Errorf("%s: client id is empty: %w", op, ErrInvalidParameter))
	}
	if c.ClientSecret == "" {
		result = multierror.Append(result, fmt.Errorf("%s: client secret is empty: %w", op, ErrInvalidParameter))
	}
	switch {
	case c.Issuer == "":
		result = multierror.Append(result, fmt.Errorf("%s: issuer is empty: %w", op, ErrInvalidParameter))
	default:
		if err := validURL(c.Issuer); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: issuer %q: %s: %w", op, c.Issuer, err, ErrInvalidParameter))
		}
	}
	switch {
	case c.RedirectURL == "":
		result = multierror.Append(result, fmt.Errorf("%s: redirect URL is empty: %w", op, ErrInvalidParameter))
	default:
		if err := validURL(c.RedirectURL); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: redirect URL %q: %s: %w", op, c.RedirectURL, err, ErrInvalidParameter))
		}
	}
	optional := []struct {
		name string
		u    string
	}{
		{"discovery URL", c.DiscoveryURL},
		{"authorization URL", c.AuthURL},
		{"token URL", c.TokenURL},
		{"userinfo URL", c.UserInfoURL},
		{"jwks URL", c.JWKSURL},
	}
	for _, o := range optional {
		if o.u == "" {
			continue
		}
		if err := validURL(o.u); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %s %q: %s: %w", op, o.name, o.u, err, ErrInvalidParameter))
		}
	}
	for _, a := range c.SupportedSigningAlgs {
		if !supportedAlgorithms[a] {
			result = multierror.Append(result, fmt.Errorf("%s: unsupported algorithm %q: %w", op, a, ErrInvalidParameter))
		}
	}
	return result.ErrorOrNil()
}

// RequestedScopes returns the de-duplicated scopes the relying party will
// request, starting with the required "openid" scope.
func (c *Config) RequestedScopes() []string {
	scopes := append([]string{oidc.ScopeOpenID}, c.Scopes...)
	return strutils.RemoveDuplicatesStable(scopes, false)
}

// DiscoveryDocumentURL returns the URL of the provider's discovery document.
func (c *Config) DiscoveryDocumentURL() string {
	if c.DiscoveryURL != "" {
		return c.DiscoveryURL
	}
	return strings.TrimSuffix(c.Issuer, "/") + WellKnownPath
}

// needsDiscovery reports whether the provider's discovery document must be
// fetched to complete the endpoint set.
func (c *Config) needsDiscovery() bool {
	return c.DiscoveryURL != "" || c.AuthURL == "" || c.TokenURL == ""
}

// signingAlgs returns the configured algs as strings, defaulting to RS256.
func (c *Config) signingAlgs() []string {
	if len(c.SupportedSigningAlgs) == 0 {
		return []string{string(RS256)}
	}
	algs := make([]string, 0, len(c.SupportedSigningAlgs))
	for _, a := range c.SupportedSigningAlgs {
		algs = append(algs, string(a))
	}
	return algs
}

// HTTPClient is a helper function that creates a new http client for the
// provider configured.
func (c *Config) HTTPClient() (*http.Client, error) {
	const op = "Config.HTTPClient"
	if c == nil {
		return nil, fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	client, err := NewHTTPClient(c.ProviderCA)
	if err != nil {
		return nil, fmt.Errorf("%s: could not get an http client: %w", op, err)
	}
	return client, nil
}

func validURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("unable to parse url: %w", err)
	}
	if !strutils.StrListContains([]string{"https", "http"}, u.Scheme) {
		return fmt.Errorf("scheme %q is not http or https", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is empty")
	}
	return nil
}

// configOptions is the set of available options.
type configOptions struct {
	withProviderID     string
	withDisplayName    string
	withScopes         []string
	withDiscoveryURL   string
	withAuthURL        string
	withTokenURL       string
	withUserInfoURL    string
	withJWKSURL        string
	withSigningAlgs    []Alg
	withAudiences      []string
	withProviderCA     string
	withRequireIDToken bool
}

// configDefaults is a handy way to get the defaults at runtime and
// during unit tests.
func configDefaults() configOptions {
	return configOptions{
		withProviderID:  "oidc",
		withDisplayName: "OpenID Connect",
	}
}

// getConfigOpts gets the defaults and applies the opt overrides passed
// in.
func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithProviderID provides an optional short identifier for the provider.
func WithProviderID(id string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withProviderID = id
		}
	}
}

// WithDisplayName provides an optional human readable provider name.
func WithDisplayName(name string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withDisplayName = name
		}
	}
}

// WithScopes provides an optional list of scopes for the provider's config.
func WithScopes(scopes ...string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withScopes = scopes
		}
	}
}

// WithDiscoveryURL provides an optional discovery document URL.
func WithDiscoveryURL(u string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withDiscoveryURL = u
		}
	}
}

// WithEndpoints provides optional explicit authorization, token and userinfo
// endpoints.  Empty values are left to discovery.
func WithEndpoints(authURL, tokenURL, userInfoURL string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withAuthURL = authURL
			o.withTokenURL = tokenURL
			o.withUserInfoURL = userInfoURL
		}
	}
}

// WithJWKSURL provides an optional explicit JWKS endpoint.
func WithJWKSURL(u string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withJWKSURL = u
		}
	}
}

// WithSigningAlgs provides an optional list of supported id_token signing
// algorithms.
func WithSigningAlgs(algs ...Alg) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withSigningAlgs = algs
		}
	}
}

// WithProviderCA provides an optional CA cert for the provider's config.
func WithProviderCA(cert string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withProviderCA = cert
		}
	}
}

// WithRequireIDToken makes an id_token mandatory in token exchanges.
func WithRequireIDToken() Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withRequireIDToken = true
		}
	}
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-hclog"
	"github.com/jonboulle/clockwork"
	"github.com/scoutlink/osmauth/oidc/internal/strutils"
	"golang.org/x/oauth2"
)

// Provider provides integration with an OIDC provider using the authorization
// code flow with PKCE.  It's primary capabilities include:
//   - Generating an auth URL for a Request.
//   - Exchanging an authorization code for a Token.
//   - Verifying an id_token.
//   - Retrieving a user's OAuth2/OIDC UserInfo claims.
//
// A Provider is safe for concurrent use once created.
type Provider struct {
	config   *Config
	provider *oidc.Provider
	client   *http.Client

	endpoints Endpoints

	clock  clockwork.Clock
	logger hclog.Logger

	mu sync.Mutex

	// backgroundCtx is the context used by the provider for background
	// activities like: refreshing JWKs key sets.
	backgroundCtx context.Context

	// backgroundCtxCancel is used to cancel any background activities running
	// in spawned go routines.
	backgroundCtxCancel context.CancelFunc
}

// Endpoints are the provider endpoints a Provider uses after merging the
// discovery document with any explicitly configured endpoints.
type Endpoints struct {
	Issuer      string `json:"issuer"`
	AuthURL     string `json:"authorization_endpoint"`
	TokenURL    string `json:"token_endpoint"`
	UserInfoURL string `json:"userinfo_endpoint,omitempty"`
	JWKSURL     string `json:"jwks_uri,omitempty"`
}

// NewProvider creates and initializes a Provider.  Unless the config supplies
// both the authorization and token endpoints and no DiscoveryURL, intializing
// the provider includes making an http request for the provider's discovery
// document.  Explicitly configured endpoints always take precedence over
// discovered ones.
//
// Supported options: WithClock, WithLogger
//
// See Provider.Done() which must be called to release provider resources.
func NewProvider(c *Config, opt ...Option) (*Provider, error) {
	const op = "NewProvider"
	if c == nil {
		return nil, fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: provider config is invalid: %w", op, err)
	}
	opts := getProviderOpts(opt...)

	ctx, cancel := context.WithCancel(context.Background())
	// initializing the Provider with it's background ctx/cancel will
	// allow us to use p.Done() to release any resources when returning errors
	// from this function.
	p := &Provider{
		config:              c,
		clock:               opts.withClock,
		logger:              opts.withLogger,
		backgroundCtx:       ctx,
		backgroundCtxCancel: cancel,
	}

	client, err := c.HTTPClient()
	if err != nil {
		p.Done() // release the backgroundCtxCancel resources
		return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
	}
	p.client = client

	p.endpoints = Endpoints{
		Issuer:      c.Issuer,
		AuthURL:     c.AuthURL,
		TokenURL:    c.TokenURL,
		UserInfoURL: c.UserInfoURL,
		JWKSURL:     c.JWKSURL,
	}
	if c.needsDiscovery() {
		discovered, err := p.discover(HTTPClientContext(p.backgroundCtx, client))
		if err != nil {
			p.Done()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.endpoints = mergeEndpoints(p.endpoints, discovered)
	}
	if p.endpoints.AuthURL == "" || p.endpoints.TokenURL == "" {
		p.Done()
		return nil, fmt.Errorf("%s: provider has no authorization or token endpoint: %w", op, ErrDiscoveryFailed)
	}
	p.logger.Debug("provider endpoints resolved",
		"issuer", p.endpoints.Issuer,
		"authorization_endpoint", p.endpoints.AuthURL,
		"token_endpoint", p.endpoints.TokenURL,
		"userinfo_endpoint", p.endpoints.UserInfoURL,
		"jwks_uri", p.endpoints.JWKSURL,
	)

	pc := &oidc.ProviderConfig{
		IssuerURL:   p.endpoints.Issuer,
		AuthURL:     p.endpoints.AuthURL,
		TokenURL:    p.endpoints.TokenURL,
		UserInfoURL: p.endpoints.UserInfoURL,
		JWKSURL:     p.endpoints.JWKSURL,
		Algorithms:  c.signingAlgs(),
	}
	p.provider = pc.NewProvider(HTTPClientContext(p.backgroundCtx, client))
	return p, nil
}

// Done with the provider's background resources and must be called for every
// Provider created.
func (p *Provider) Done() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.backgroundCtxCancel != nil {
		p.backgroundCtxCancel()
		p.backgroundCtxCancel = nil
	}
}

// Config returns a copy of the provider's configuration.
func (p *Provider) Config() Config {
	c := *p.config
	c.Scopes = append([]string(nil), p.config.Scopes...)
	c.Audiences = append([]string(nil), p.config.Audiences...)
	c.SupportedSigningAlgs = append([]Alg(nil), p.config.SupportedSigningAlgs...)
	return c
}

// Endpoints returns the provider's resolved endpoints.
func (p *Provider) Endpoints() Endpoints {
	return p.endpoints
}

// AuthURL will generate a URL the caller can use to kick off an OIDC
// authorization code flow (with PKCE) with an IdP.
//
// See NewRequest() to create an oidc flow Request with a valid state and Nonce
// that will uniquely identify the user's authentication attempt throughout the
// flow.
func (p *Provider) AuthURL(ctx context.Context, r Request) (url string, e error) {
	const op = "Provider.AuthURL"
	if r == nil {
		return "", fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	if r.State() == r.Nonce() {
		return "", fmt.Errorf("%s: request state and nonce cannot be equal: %w", op, ErrInvalidParameter)
	}
	if r.RedirectURL() == "" {
		return "", fmt.Errorf("%s: request redirect URL is empty: %w", op, ErrInvalidParameter)
	}
	if r.IsExpired() {
		return "", fmt.Errorf("%s: request is expired: %w", op, ErrExpiredRequest)
	}
	authCodeOpts := []oauth2.AuthCodeOption{
		oidc.Nonce(r.Nonce()),
		oauth2.S256ChallengeOption(r.PKCEVerifier()),
	}
	if len(r.UILocales()) > 0 {
		locales := make([]string, 0, len(r.UILocales()))
		for _, l := range r.UILocales() {
			locales = append(locales, l.String())
		}
		authCodeOpts = append(authCodeOpts, oauth2.SetAuthURLParam("ui_locales", strings.Join(locales, " ")))
	}
	return p.oauth2Config(r.RedirectURL()).AuthCodeURL(r.State(), authCodeOpts...), nil
}

// Exchange will request a token from the oidc token endpoint, using the
// authorizationCode and authorizationState it received in an earlier successful
// oidc authentication response.
//
// It will also validate the authorizationState it receives against the
// existing Request for the user's oidc authentication flow.
//
// On success, the Token returned will include an AccessToken and, depending on
// the IdP, a RefreshToken.  When the IdP returns an id_token it's verified
// before the Token is returned.
func (p *Provider) Exchange(ctx context.Context, r Request, authorizationState string, authorizationCode string) (*Tk, error) {
	const op = "Provider.Exchange"
	if p.config == nil {
		return nil, fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	if r == nil {
		return nil, fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	if r.State() != authorizationState {
		return nil, fmt.Errorf("%s: authentication request state and authorization state are not equal: %w", op, ErrInvalidResponseState)
	}
	if r.IsExpired() {
		return nil, fmt.Errorf("%s: authentication request is expired: %w", op, ErrExpiredRequest)
	}
	if authorizationCode == "" {
		return nil, fmt.Errorf("%s: authorization code is empty: %w", op, ErrInvalidParameter)
	}

	oidcCtx := HTTPClientContext(ctx, p.client)
	oauth2Token, err := p.oauth2Config(r.RedirectURL()).Exchange(oidcCtx, authorizationCode, oauth2.VerifierOption(r.PKCEVerifier()))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to exchange auth code with provider: %w: %w", op, ErrLoginFailed, err)
	}

	rawIDToken, _ := oauth2Token.Extra("id_token").(string)
	if rawIDToken == "" && p.config.RequireIDToken {
		return nil, fmt.Errorf("%s: id_token is missing from auth code exchange: %w", op, ErrMissingIDToken)
	}
	t, err := NewToken(IDToken(rawIDToken), oauth2Token, WithClock(p.clock))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create new token: %w", op, err)
	}
	if rawIDToken != "" {
		idTk, err := p.verifyIDToken(ctx, t.IDToken(), r)
		if err != nil {
			return nil, fmt.Errorf("%s: id_token failed verification: %w", op, err)
		}
		if idTk.AccessTokenHash != "" {
			if err := idTk.VerifyAccessToken(string(t.AccessToken())); err != nil {
				return nil, fmt.Errorf("%s: access_token hash does not match id_token: %v: %w", op, err, ErrIDTokenVerificationFailed)
			}
		}
	}
	return t, nil
}

// UserInfo gets the UserInfo claims from the provider using the token produced
// by the tokenSource.  When both validSubject and the returned "sub" claim are
// non-empty they must match.  The claims parameter must be a pointer.
func (p *Provider) UserInfo(ctx context.Context, tokenSource oauth2.TokenSource, validSubject string, claims interface{}) error {
	const op = "Provider.UserInfo"
	if tokenSource == nil {
		return fmt.Errorf("%s: token source is nil: %w", op, ErrNilParameter)
	}
	if claims == nil {
		return fmt.Errorf("%s: claims interface is nil: %w", op, ErrNilParameter)
	}
	if p.endpoints.UserInfoURL == "" {
		return fmt.Errorf("%s: provider has no userinfo endpoint: %w", op, ErrUserInfoFailed)
	}
	oidcCtx := HTTPClientContext(ctx, p.client)

	userinfo, err := p.provider.UserInfo(oidcCtx, tokenSource)
	if err != nil {
		return fmt.Errorf("%s: provider UserInfo request failed: %v: %w", op, err, ErrUserInfoFailed)
	}
	if validSubject != "" && userinfo.Subject != "" && userinfo.Subject != validSubject {
		// The sub Claim in the UserInfo Response MUST be verified to exactly
		// match the sub Claim in the ID Token.
		return fmt.Errorf("%s: %q is not a valid subject for userinfo: %w", op, userinfo.Subject, ErrInvalidSubject)
	}
	if err := userinfo.Claims(claims); err != nil {
		return fmt.Errorf("%s: failed to get UserInfo claims: %v: %w", op, err, ErrUserInfoFailed)
	}
	return nil
}

// VerifyIDToken will verify the inbound IDToken and return its claims.  It
// verifies it's been signed by the provider, it validates the nonce against the
// Request, and performs any additional checks depending on the provider's
// config (audiences, etc).
//
// See: https://openid.net/specs/openid-connect-core-1_0.html#IDTokenValidation
func (p *Provider) VerifyIDToken(ctx context.Context, t IDToken, r Request) (map[string]interface{}, error) {
	const op = "Provider.VerifyIDToken"
	idTk, err := p.verifyIDToken(ctx, t, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims := map[string]interface{}{}
	if err := idTk.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%s: unable to get id_token claims: %v: %w", op, err, ErrIDTokenVerificationFailed)
	}
	return claims, nil
}

func (p *Provider) verifyIDToken(ctx context.Context, t IDToken, r Request) (*oidc.IDToken, error) {
	const op = "Provider.verifyIDToken"
	if t == "" {
		return nil, fmt.Errorf("%s: id_token is empty: %w", op, ErrInvalidParameter)
	}
	if r == nil {
		return nil, fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	if r.Nonce() == "" {
		return nil, fmt.Errorf("%s: nonce is empty: %w", op, ErrInvalidParameter)
	}
	oidcConfig := &oidc.Config{
		ClientID:             p.config.ClientID,
		SupportedSigningAlgs: p.config.signingAlgs(),
		Now:                  p.clock.Now,
	}
	verifier := p.provider.Verifier(oidcConfig)

	oidcIDToken, err := verifier.Verify(HTTPClientContext(ctx, p.client), string(t))
	if err != nil {
		return nil, fmt.Errorf("%s: invalid id_token: %v: %w", op, err, ErrIDTokenVerificationFailed)
	}
	if oidcIDToken.Nonce != r.Nonce() {
		return nil, fmt.Errorf("%s: invalid id_token nonce: %w", op, ErrInvalidNonce)
	}
	if len(p.config.Audiences) > 0 {
		found := false
		for _, v := range p.config.Audiences {
			if strutils.StrListContains(oidcIDToken.Audience, v) {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%s: invalid id_token audiences: %w", op, ErrInvalidAudience)
		}
	}
	return oidcIDToken, nil
}

func (p *Provider) oauth2Config(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.config.ClientID,
		ClientSecret: string(p.config.ClientSecret),
		RedirectURL:  redirectURL,
		Endpoint:     p.provider.Endpoint(),
		Scopes:       p.config.RequestedScopes(),
	}
}

// discover fetches the provider's discovery document.  The document's issuer
// must match the configured issuer.
func (p *Provider) discover(ctx context.Context) (Endpoints, error) {
	const op = "Provider.discover"
	u := p.config.DiscoveryDocumentURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Endpoints{}, fmt.Errorf("%s: unable to create discovery request: %v: %w", op, err, ErrDiscoveryFailed)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return Endpoints{}, fmt.Errorf("%s: unable to fetch %s: %v: %w", op, u, err, ErrDiscoveryFailed)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Endpoints{}, fmt.Errorf("%s: unable to read discovery response: %v: %w", op, err, ErrDiscoveryFailed)
	}
	if resp.StatusCode != http.StatusOK {
		return Endpoints{}, fmt.Errorf("%s: %s returned %s: %w", op, u, resp.Status, ErrDiscoveryFailed)
	}
	var doc Endpoints
	if err := json.Unmarshal(body, &doc); err != nil {
		return Endpoints{}, fmt.Errorf("%s: unable to decode discovery document: %v: %w", op, err, ErrDiscoveryFailed)
	}
	if strings.TrimSuffix(doc.Issuer, "/") != strings.TrimSuffix(p.config.Issuer, "/") {
		return Endpoints{}, fmt.Errorf("%s: issuer did not match the issuer returned by provider, expected %q got %q: %w", op, p.config.Issuer, doc.Issuer, ErrInvalidIssuer)
	}
	return doc, nil
}

// mergeEndpoints returns configured endpoints with the gaps filled from the
// discovered ones.  The discovered issuer wins, since it's the value the
// provider puts in its id_tokens' iss claim.
func mergeEndpoints(configured, discovered Endpoints) Endpoints {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return Endpoints{
		Issuer:      pick(discovered.Issuer, configured.Issuer),
		AuthURL:     pick(configured.AuthURL, discovered.AuthURL),
		TokenURL:    pick(configured.TokenURL, discovered.TokenURL),
		UserInfoURL: pick(configured.UserInfoURL, discovered.UserInfoURL),
		JWKSURL:     pick(configured.JWKSURL, discovered.JWKSURL),
	}
}

// providerOptions is the set of available options for Provider functions.
type providerOptions struct {
	withClock  clockwork.Clock
	withLogger hclog.Logger
}

// providerDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func providerDefaults() providerOptions {
	return providerOptions{
		withClock:  clockwork.NewRealClock(),
		withLogger: hclog.NewNullLogger(),
	}
}

// getProviderOpts gets the provider defaults and applies the opt overrides
// passed in.
func getProviderOpts(opt ...Option) providerOptions {
	opts := providerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger for: Provider.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

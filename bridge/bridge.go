// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package bridge

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// Bridge translates completed handshakes into Tokens and Tokens into
// Sessions.  It holds no mutable state, so one Bridge serves all requests
// concurrently.
type Bridge struct {
	logger   hclog.Logger
	policies []SignInPolicy
}

// New creates a Bridge.  Supported options: WithLogger, WithPolicies
func New(opt ...Option) *Bridge {
	opts := getBridgeOpts(opt...)
	return &Bridge{
		logger:   opts.withLogger,
		policies: opts.withPolicies,
	}
}

// CheckSignIn evaluates every sign-in policy for the handshake.  It returns
// nil when the sign-in is allowed.  Denials wrap ErrHandshakeRejected and
// policies that fail (error or panic) wrap ErrPolicyFailed; all of them are
// reported together.
func (b *Bridge) CheckSignIn(ctx context.Context, profile *ProfileClaims, account *Account) error {
	const op = "Bridge.CheckSignIn"
	switch {
	case profile == nil:
		return fmt.Errorf("%s: profile is nil: %w", op, ErrInvalidParameter)
	case account == nil:
		return fmt.Errorf("%s: account is nil: %w", op, ErrInvalidParameter)
	}
	var result *multierror.Error
	for i, p := range b.policies {
		allowed, err := evaluate(ctx, p, profile, account)
		switch {
		case err != nil:
			result = multierror.Append(result, fmt.Errorf("%s: policy %d: %w: %w", op, i, ErrPolicyFailed, err))
		case !allowed:
			result = multierror.Append(result, fmt.Errorf("%s: policy %d denied sign-in: %w", op, i, ErrHandshakeRejected))
		}
	}
	return result.ErrorOrNil()
}

func evaluate(ctx context.Context, p SignInPolicy, profile *ProfileClaims, account *Account) (allowed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			allowed, err = false, fmt.Errorf("panic: %v", r)
		}
	}()
	return p.Allow(ctx, profile, account)
}

// OnSignIn is the sign-in gate run before a Token is issued.  It returns
// false when the sign-in must be rejected, including when evaluating it
// failed; the reason is logged and never propagated.
func (b *Bridge) OnSignIn(ctx context.Context, profile *ProfileClaims, account *Account) bool {
	err := b.CheckSignIn(ctx, profile, account)
	if err == nil {
		return true
	}
	args := []interface{}{"error", err}
	if account != nil {
		args = append(args, "provider", account.Provider, "provider_account_id", account.ProviderAccountID)
	}
	b.logger.Error("error during sign-in", args...)
	return false
}

// ShapeToken is the token hook.  When a handshake just completed (account
// and profile both present) it returns the projection of the account and
// profile; otherwise the token is passed through unchanged.
func (b *Bridge) ShapeToken(token *Token, account *Account, profile *ProfileClaims) *Token {
	if account == nil || profile == nil {
		return token
	}
	b.logger.Debug("token projected from handshake", "provider", account.Provider, "provider_account_id", account.ProviderAccountID)
	return ProjectToAccount(token, account, profile)
}

// ShapeSession is the session hook.  It copies the user fields of token into
// session when the token is present and session carries a user; otherwise
// session is returned unchanged.
func (b *Bridge) ShapeSession(session *Session, token *Token) *Session {
	return shapeSession(session, token)
}

// OnRedirectAfterAuth is the redirect hook, see OnRedirectAfterAuth.
func (b *Bridge) OnRedirectAfterAuth(requestedURL, baseURL string) string {
	if requestedURL != "" && requestedURL != baseURL {
		b.logger.Trace("ignoring requested redirect", "requested_url", requestedURL, "base_url", baseURL)
	}
	return OnRedirectAfterAuth(requestedURL, baseURL)
}

// OnRedirectAfterAuth decides where to send the user after sign-in or
// sign-out.  It always returns baseURL, so requested deep links (including
// ones on other origins) are never followed.
func OnRedirectAfterAuth(_, baseURL string) string {
	return baseURL
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package bridge

import (
	"fmt"

	"github.com/scoutlink/osmauth/oidc"
)

// AccountTypeOAuth is the Account.Type of accounts created by an OAuth2
// authorization code exchange.
const AccountTypeOAuth = "oauth"

// Account is the result of one completed handshake with a provider.  It's
// created once per token exchange, folded into a Token by ShapeToken and then
// discarded.
type Account struct {
	Provider          string `json:"provider"`
	Type              string `json:"type"`
	ProviderAccountID string `json:"providerAccountId"`
	AccessToken       string `json:"access_token"`
	RefreshToken      string `json:"refresh_token,omitempty"`
	// ExpiresAt is the access_token expiry in epoch seconds, zero when the
	// provider didn't say.
	ExpiresAt int64  `json:"expires_at,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Scope     string `json:"scope,omitempty"`
	IDToken   string `json:"id_token,omitempty"`
}

// NewAccount builds the Account for a token exchange with the provider.  The
// providerAccountID is the provider's stable subject identifier for the user.
func NewAccount(provider, providerAccountID string, t oidc.Token) (*Account, error) {
	const op = "bridge.NewAccount"
	switch {
	case provider == "":
		return nil, fmt.Errorf("%s: provider is empty: %w", op, ErrInvalidParameter)
	case providerAccountID == "":
		return nil, fmt.Errorf("%s: provider account id is empty: %w", op, ErrInvalidParameter)
	case t == nil:
		return nil, fmt.Errorf("%s: token is nil: %w", op, ErrInvalidParameter)
	case t.AccessToken() == "":
		return nil, fmt.Errorf("%s: access_token is empty: %w", op, ErrInvalidParameter)
	}
	a := &Account{
		Provider:          provider,
		Type:              AccountTypeOAuth,
		ProviderAccountID: providerAccountID,
		AccessToken:       string(t.AccessToken()),
		RefreshToken:      string(t.RefreshToken()),
		IDToken:           string(t.IDToken()),
	}
	if exp := t.Expiry(); !exp.IsZero() {
		a.ExpiresAt = exp.Unix()
	}
	if tk, ok := t.(interface {
		TokenType() string
		Scope() string
	}); ok {
		a.TokenType = tk.TokenType()
		a.Scope = tk.Scope()
	}
	return a, nil
}

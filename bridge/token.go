// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package bridge

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Token is the signed record carried between requests.  It's written once,
// when a handshake completes, and passed through unchanged afterwards.
type Token struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	// ExpiresAt is the provider access_token expiry in epoch seconds.
	ExpiresAt int64  `json:"expires_at,omitempty"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Image     string `json:"image,omitempty"`
}

// Expired reports whether the provider access_token has expired.  A nil
// Token is expired; a Token without an expiry never is.
func (t *Token) Expired(clock clockwork.Clock) bool {
	if t == nil {
		return true
	}
	if t.ExpiresAt == 0 {
		return false
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return !clock.Now().Before(time.Unix(t.ExpiresAt, 0))
}

// ProjectToAccount returns a copy of token with the account and profile
// fields written over it.  All seven fields are replaced: a claim missing
// from the profile clears the field rather than keeping the prior value.
func ProjectToAccount(token *Token, account *Account, profile *ProfileClaims) *Token {
	var out Token
	if token != nil {
		out = *token
	}
	if account == nil {
		account = &Account{}
	}
	if profile == nil {
		profile = &ProfileClaims{}
	}
	out.AccessToken = account.AccessToken
	out.RefreshToken = account.RefreshToken
	out.ExpiresAt = account.ExpiresAt
	out.ID = account.ProviderAccountID
	out.Name = profile.Name
	out.Email = profile.Email
	out.Image = profile.Image
	return &out
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package bridge

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/scoutlink/osmauth/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewAccount(t *testing.T) {
	t.Parallel()
	expiry := time.Unix(1700000000, 0)
	full, err := oidc.NewToken("id-token", (&oauth2.Token{
		AccessToken:  "AT1",
		RefreshToken: "RT1",
		TokenType:    "Bearer",
		Expiry:       expiry,
	}).WithExtra(map[string]interface{}{"scope": "openid email profile"}))
	require.NoError(t, err)
	minimal, err := oidc.NewToken("", &oauth2.Token{AccessToken: "AT1"})
	require.NoError(t, err)

	tests := []struct {
		name              string
		provider          string
		providerAccountID string
		token             oidc.Token
		want              *Account
		wantErr           bool
	}{
		{
			name:              "full",
			provider:          ProviderID,
			providerAccountID: "osm-123",
			token:             full,
			want: &Account{
				Provider:          ProviderID,
				Type:              AccountTypeOAuth,
				ProviderAccountID: "osm-123",
				AccessToken:       "AT1",
				RefreshToken:      "RT1",
				ExpiresAt:         1700000000,
				TokenType:         "Bearer",
				Scope:             "openid email profile",
				IDToken:           "id-token",
			},
		},
		{
			name:              "no-expiry",
			provider:          ProviderID,
			providerAccountID: "osm-123",
			token:             minimal,
			want: &Account{
				Provider:          ProviderID,
				Type:              AccountTypeOAuth,
				ProviderAccountID: "osm-123",
				AccessToken:       "AT1",
			},
		},
		{
			name:              "missing-provider",
			providerAccountID: "osm-123",
			token:             full,
			wantErr:           true,
		},
		{
			name:     "missing-account-id",
			provider: ProviderID,
			token:    full,
			wantErr:  true,
		},
		{
			name:              "nil-token",
			provider:          ProviderID,
			providerAccountID: "osm-123",
			wantErr:           true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			got, err := NewAccount(tt.provider, tt.providerAccountID, tt.token)
			if tt.wantErr {
				require.Error(err)
				assert.ErrorIs(err, ErrInvalidParameter)
				assert.Nil(got)
				return
			}
			require.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
}

func TestToken_Expired(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClockAt(time.Unix(1700000000, 0))
	tests := []struct {
		name  string
		token *Token
		want  bool
	}{
		{name: "nil", want: true},
		{name: "no-expiry", token: &Token{AccessToken: "AT1"}},
		{name: "future", token: &Token{ExpiresAt: 1700000001}},
		{name: "now", token: &Token{ExpiresAt: 1700000000}, want: true},
		{name: "past", token: &Token{ExpiresAt: 1699999999}, want: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.token.Expired(clock))
		})
	}
	t.Run("real-clock", func(t *testing.T) {
		assert := assert.New(t)
		assert.True((&Token{ExpiresAt: 1}).Expired(nil))
		assert.False((&Token{ExpiresAt: time.Now().Add(time.Hour).Unix()}).Expired(nil))
	})
}

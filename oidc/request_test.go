// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNewRequest(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	defaultExpireIn := 2 * time.Minute

	tests := []struct {
		name          string
		expireIn      time.Duration
		redirectURL   string
		opts          []Option
		wantState     string
		wantNonce     string
		wantReturnTo  string
		wantUILocales []language.Tag
		wantIsErr     error
	}{
		{
			name:        "valid-with-all-options",
			expireIn:    defaultExpireIn,
			redirectURL: "https://app.example.org/api/auth/callback/osm",
			opts: []Option{
				WithClock(clock),
				WithState("st_alice"),
				WithNonce("n_alice"),
				WithReturnTo("https://app.example.org/dashboard"),
				WithUILocales(language.BritishEnglish, language.MustParse("cy")),
			},
			wantState:     "st_alice",
			wantNonce:     "n_alice",
			wantReturnTo:  "https://app.example.org/dashboard",
			wantUILocales: []language.Tag{language.BritishEnglish, language.MustParse("cy")},
		},
		{
			name:        "valid-no-opt",
			expireIn:    defaultExpireIn,
			redirectURL: "https://app.example.org/api/auth/callback/osm",
			opts:        []Option{WithClock(clock)},
		},
		{
			name:        "zero-expireIn",
			redirectURL: "https://app.example.org/api/auth/callback/osm",
			wantIsErr:   ErrInvalidParameter,
		},
		{
			name:      "missing-redirect",
			expireIn:  defaultExpireIn,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name:        "state-equals-nonce",
			expireIn:    defaultExpireIn,
			redirectURL: "https://app.example.org/api/auth/callback/osm",
			opts:        []Option{WithState("same"), WithNonce("same")},
			wantIsErr:   ErrInvalidParameter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := NewRequest(tt.expireIn, tt.redirectURL, tt.opts...)
			if tt.wantIsErr != nil {
				require.Error(err)
				assert.ErrorIs(err, tt.wantIsErr)
				return
			}
			require.NoError(err)
			assert.Equal(clock.Now().Add(tt.expireIn), got.Expiration())
			assert.NotEqual(got.State(), got.Nonce())
			if tt.wantState != "" {
				assert.Equal(tt.wantState, got.State())
			} else {
				assert.True(strings.HasPrefix(got.State(), "st_"))
			}
			if tt.wantNonce != "" {
				assert.Equal(tt.wantNonce, got.Nonce())
			} else {
				assert.True(strings.HasPrefix(got.Nonce(), "n_"))
			}
			assert.Equal(tt.redirectURL, got.RedirectURL())
			assert.Equal(tt.wantReturnTo, got.ReturnTo())
			assert.Equal(tt.wantUILocales, got.UILocales())
			// RFC 7636 verifiers are 43-128 characters.
			assert.GreaterOrEqual(len(got.PKCEVerifier()), 43)
			assert.LessOrEqual(len(got.PKCEVerifier()), 128)
		})
	}
	t.Run("unique-verifiers", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		r1, err := NewRequest(defaultExpireIn, "https://app.example.org")
		require.NoError(err)
		r2, err := NewRequest(defaultExpireIn, "https://app.example.org")
		require.NoError(err)
		assert.NotEqual(r1.PKCEVerifier(), r2.PKCEVerifier())
		assert.NotEqual(r1.State(), r2.State())
	})
}

func TestReq_IsExpired(t *testing.T) {
	t.Parallel()
	t.Run("not-expired", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		clock := clockwork.NewFakeClock()
		r, err := NewRequest(time.Minute, "https://redirect", WithClock(clock))
		require.NoError(err)
		assert.False(r.IsExpired())
	})
	t.Run("expired", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		clock := clockwork.NewFakeClock()
		r, err := NewRequest(time.Minute, "https://redirect", WithClock(clock))
		require.NoError(err)
		clock.Advance(time.Minute)
		assert.True(r.IsExpired())
	})
	t.Run("expired-within-skew", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		clock := clockwork.NewFakeClock()
		r, err := NewRequest(time.Minute, "https://redirect", WithClock(clock), WithExpirySkew(10*time.Second))
		require.NoError(err)
		clock.Advance(55 * time.Second)
		assert.True(r.IsExpired())
	})
}

func Test_WithReturnTo(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	opts := getReqOpts(WithReturnTo("https://app.example.org/dashboard"))
	testOpts := reqDefaults()
	testOpts.withReturnTo = "https://app.example.org/dashboard"
	assert.Equal(testOpts.withReturnTo, opts.withReturnTo)
	assert.Equal(testOpts.withExpirySkew, opts.withExpirySkew)
}

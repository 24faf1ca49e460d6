// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "a-session-secret-of-at-least-32-bytes!!"

type testClaims struct {
	AccessToken string `json:"accessToken,omitempty"`
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
}

func TestNewCodec(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		secret     string
		opt        []Option
		wantMaxAge time.Duration
		wantIsErr  error
	}{
		{
			name:       "defaults",
			secret:     testSecret,
			wantMaxAge: DefaultMaxAge,
		},
		{
			name:       "with-max-age",
			secret:     testSecret,
			opt:        []Option{WithMaxAge(time.Hour)},
			wantMaxAge: time.Hour,
		},
		{
			name:       "ignores-non-positive-max-age",
			secret:     testSecret,
			opt:        []Option{WithMaxAge(-time.Hour)},
			wantMaxAge: DefaultMaxAge,
		},
		{
			name:      "short-secret",
			secret:    "too-short",
			wantIsErr: ErrInvalidParameter,
		},
		{
			name:      "empty-secret",
			wantIsErr: ErrInvalidParameter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			c, err := NewCodec(tt.secret, tt.opt...)
			if tt.wantIsErr != nil {
				require.Error(err)
				assert.ErrorIs(err, tt.wantIsErr)
				return
			}
			require.NoError(err)
			assert.Equal(tt.wantMaxAge, c.MaxAge())
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	clock := clockwork.NewFakeClockAt(time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC))
	c, err := NewCodec(testSecret, WithClock(clock), WithMaxAge(time.Hour))
	require.NoError(err)

	in := testClaims{AccessToken: "AT1", ID: "osm-123", Name: "Jane Scout"}
	raw, err := c.Encode(in)
	require.NoError(err)
	assert.Equal(2, strings.Count(raw, "."))

	var out testClaims
	require.NoError(c.Decode(raw, &out))
	assert.Equal(in, out)

	var registered map[string]interface{}
	require.NoError(c.Decode(raw, &registered))
	assert.Equal(DefaultIssuer, registered["iss"])
	assert.Equal(float64(clock.Now().Unix()), registered["iat"])
	assert.Equal(float64(clock.Now().Add(time.Hour).Unix()), registered["exp"])
	assert.NotEmpty(registered["jti"])

	// same secret, new codec: still decodes
	c2, err := NewCodec(testSecret, WithClock(clock))
	require.NoError(err)
	require.NoError(c2.Decode(raw, &out))

	// unique jti per token
	raw2, err := c.Encode(in)
	require.NoError(err)
	assert.NotEqual(raw, raw2)
}

func TestCodec_Decode(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	c, err := NewCodec(testSecret, WithClock(clock), WithMaxAge(time.Hour))
	require.NoError(t, err)
	valid, err := c.Encode(testClaims{ID: "osm-123"})
	require.NoError(t, err)

	other, err := NewCodec(strings.Repeat("x", MinSecretLength), WithClock(clock))
	require.NoError(t, err)
	foreign, err := other.Encode(testClaims{ID: "osm-123"})
	require.NoError(t, err)

	otherIssuer, err := NewCodec(testSecret, WithClock(clock), WithIssuer("someone-else"))
	require.NoError(t, err)
	wrongIssuer, err := otherIssuer.Encode(testClaims{ID: "osm-123"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		raw       string
		advance   time.Duration
		claims    interface{}
		wantIsErr error
	}{
		{
			name:   "valid",
			raw:    valid,
			claims: &testClaims{},
		},
		{
			name:   "valid-within-leeway",
			raw:    valid,
			claims: &testClaims{},
			// exp is inclusive of the leeway
			advance: time.Hour + DefaultLeeway - time.Second,
		},
		{
			name:      "expired",
			raw:       valid,
			claims:    &testClaims{},
			advance:   time.Hour + DefaultLeeway + time.Second,
			wantIsErr: ErrExpired,
		},
		{
			name:      "signed-with-another-secret",
			raw:       foreign,
			claims:    &testClaims{},
			wantIsErr: ErrInvalidSignature,
		},
		{
			name:      "tampered-payload",
			raw:       testTamper(t, valid),
			claims:    &testClaims{},
			wantIsErr: ErrInvalidSignature,
		},
		{
			name:      "other-alg",
			raw:       testOtherAlg(t),
			claims:    &testClaims{},
			wantIsErr: ErrInvalidSignature,
		},
		{
			name:      "wrong-issuer",
			raw:       wrongIssuer,
			claims:    &testClaims{},
			wantIsErr: ErrInvalidClaims,
		},
		{
			name:      "garbage",
			raw:       "not-a-token",
			claims:    &testClaims{},
			wantIsErr: ErrMalformed,
		},
		{
			name:      "empty",
			claims:    &testClaims{},
			wantIsErr: ErrMalformed,
		},
		{
			name:      "nil-claims",
			raw:       valid,
			wantIsErr: ErrInvalidParameter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			fc := clockwork.NewFakeClockAt(clock.Now().Add(tt.advance))
			c.clock = fc
			defer func() { c.clock = clock }()
			err := c.Decode(tt.raw, tt.claims)
			if tt.wantIsErr != nil {
				require.Error(err)
				assert.ErrorIs(err, tt.wantIsErr)
				return
			}
			require.NoError(err)
			assert.Equal("osm-123", tt.claims.(*testClaims).ID)
		})
	}
}

func TestCodec_Encode(t *testing.T) {
	t.Parallel()
	c, err := NewCodec(testSecret)
	require.NoError(t, err)
	t.Run("nil-claims", func(t *testing.T) {
		_, err := c.Encode(nil)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})
	t.Run("not-an-object", func(t *testing.T) {
		_, err := c.Encode("just a string")
		assert.Error(t, err)
	})
}

// testTamper swaps the payload of a signed token for a different one.
func testTamper(t *testing.T, raw string) string {
	t.Helper()
	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	c, err := NewCodec(testSecret)
	require.NoError(t, err)
	other, err := c.Encode(testClaims{ID: "someone-else"})
	require.NoError(t, err)
	parts[1] = strings.Split(other, ".")[1]
	return strings.Join(parts, ".")
}

// testOtherAlg returns a token signed with HS512.
func testOtherAlg(t *testing.T) string {
	t.Helper()
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS512, Key: []byte(strings.Repeat("k", 64))}, nil)
	require.NoError(t, err)
	raw, err := jwt.Signed(signer).Claims(testClaims{ID: "osm-123"}).CompactSerialize()
	require.NoError(t, err)
	return raw
}

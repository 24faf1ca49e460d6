// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/hashicorp/go-uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/hkdf"
)

const (
	// MinSecretLength is the minimum length of the secret given to NewCodec.
	MinSecretLength = 32

	// DefaultMaxAge is how long an encoded session token stays valid.
	DefaultMaxAge = 30 * 24 * time.Hour

	// DefaultLeeway is the clock skew tolerated when validating exp and nbf.
	DefaultLeeway = 5 * time.Second

	// DefaultIssuer is the iss claim of session tokens.
	DefaultIssuer = "osmauth"

	keyInfo = "osmauth session token"
)

// Codec signs claims into compact HS256 JWS tokens and verifies them on the
// way back.  The signing key is derived from a secret with HKDF-SHA256, so
// the same secret always yields the same key across process restarts.
//
// A Codec is safe for concurrent use.
type Codec struct {
	signer jose.Signer
	key    []byte

	maxAge time.Duration
	leeway time.Duration
	issuer string
	clock  clockwork.Clock
}

// NewCodec creates a Codec for the secret, which must be at least
// MinSecretLength bytes.
//
// Supported options: WithMaxAge, WithLeeway, WithIssuer, WithClock
func NewCodec(secret string, opt ...Option) (*Codec, error) {
	const op = "jwt.NewCodec"
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%s: secret must be at least %d bytes: %w", op, MinSecretLength, ErrInvalidParameter)
	}
	opts := getCodecOpts(opt...)

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("%s: unable to derive signing key: %w", op, err)
	}
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create signer: %w", op, err)
	}
	return &Codec{
		signer: signer,
		key:    key,
		maxAge: opts.withMaxAge,
		leeway: opts.withLeeway,
		issuer: opts.withIssuer,
		clock:  opts.withClock,
	}, nil
}

// MaxAge is how long tokens encoded by the codec stay valid.
func (c *Codec) MaxAge() time.Duration {
	return c.maxAge
}

// Encode signs the claims (anything that marshals to a JSON object) along
// with the registered iss, iat, nbf, exp and jti claims.
func (c *Codec) Encode(claims interface{}) (string, error) {
	const op = "Codec.Encode"
	if claims == nil {
		return "", fmt.Errorf("%s: claims are nil: %w", op, ErrInvalidParameter)
	}
	jti, err := uuid.GenerateUUID()
	if err != nil {
		return "", fmt.Errorf("%s: unable to generate jti: %w", op, err)
	}
	now := c.clock.Now()
	registered := jwt.Claims{
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Expiry:    jwt.NewNumericDate(now.Add(c.maxAge)),
		ID:        jti,
	}
	raw, err := jwt.Signed(c.signer).Claims(claims).Claims(registered).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("%s: unable to sign token: %w", op, err)
	}
	return raw, nil
}

// Decode verifies the token's signature, issuer and validity window, then
// unmarshals its payload into claims, which must be a pointer.
func (c *Codec) Decode(raw string, claims interface{}) error {
	const op = "Codec.Decode"
	if claims == nil {
		return fmt.Errorf("%s: claims are nil: %w", op, ErrInvalidParameter)
	}
	if raw == "" {
		return fmt.Errorf("%s: token is empty: %w", op, ErrMalformed)
	}
	tok, err := jwt.ParseSigned(raw)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", op, err, ErrMalformed)
	}
	if len(tok.Headers) != 1 || tok.Headers[0].Algorithm != string(jose.HS256) {
		return fmt.Errorf("%s: unexpected signing algorithm: %w", op, ErrInvalidSignature)
	}
	var registered jwt.Claims
	if err := tok.Claims(c.key, &registered); err != nil {
		return fmt.Errorf("%s: %v: %w", op, err, ErrInvalidSignature)
	}
	expected := jwt.Expected{
		Issuer: c.issuer,
		Time:   c.clock.Now(),
	}
	if err := registered.ValidateWithLeeway(expected, c.leeway); err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpired):
			return fmt.Errorf("%s: %w", op, ErrExpired)
		default:
			return fmt.Errorf("%s: %v: %w", op, err, ErrInvalidClaims)
		}
	}
	if registered.Expiry == nil {
		return fmt.Errorf("%s: token has no expiry: %w", op, ErrInvalidClaims)
	}
	if err := tok.UnsafeClaimsWithoutVerification(claims); err != nil {
		return fmt.Errorf("%s: unable to unmarshal claims: %v: %w", op, err, ErrMalformed)
	}
	return nil
}

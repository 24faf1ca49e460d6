// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import "github.com/coreos/go-oidc/v3/oidc"

// Alg represents asymmetric signing algorithms
type Alg string

const (
	// JOSE asymmetric signing algorithm values as defined by RFC 7518.
	//
	// See: https://tools.ietf.org/html/rfc7518#section-3.1
	RS256 Alg = oidc.RS256 // RSASSA-PKCS-v1.5 using SHA-256
	RS384 Alg = oidc.RS384 // RSASSA-PKCS-v1.5 using SHA-384
	RS512 Alg = oidc.RS512 // RSASSA-PKCS-v1.5 using SHA-512
	ES256 Alg = oidc.ES256 // ECDSA using P-256 and SHA-256
	ES384 Alg = oidc.ES384 // ECDSA using P-384 and SHA-384
	ES512 Alg = oidc.ES512 // ECDSA using P-521 and SHA-512
	PS256 Alg = oidc.PS256 // RSASSA-PSS using SHA256 and MGF1-SHA256
	PS384 Alg = oidc.PS384 // RSASSA-PSS using SHA384 and MGF1-SHA384
	PS512 Alg = oidc.PS512 // RSASSA-PSS using SHA512 and MGF1-SHA512
	EdDSA Alg = oidc.EdDSA // Ed25519 using SHA-512
)

var supportedAlgorithms = map[Alg]bool{
	RS256: true,
	RS384: true,
	RS512: true,
	ES256: true,
	ES384: true,
	ES512: true,
	PS256: true,
	PS384: true,
	PS512: true,
	EdDSA: true,
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package jwt encodes the session token carried in the session cookie.

A Codec signs any JSON object as a compact JWS (HS256) with a key derived from
the session secret, adding the registered iss, iat, nbf, exp and jti claims.
Decode verifies the signature and the validity window before handing the
payload back.  Tokens are signed, not encrypted: anything placed in the claims
is readable by whoever holds the token.
*/
package jwt

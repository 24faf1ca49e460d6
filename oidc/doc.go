// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package oidc is a package for writing relying party integrations with an OIDC
or OAuth2 provider using the authorization code flow with PKCE.

Primary types provided by the package

* Request: represents one authentication flow for a user.  It contains the
data needed to uniquely represent that one-time flow across the multiple
interactions needed to complete it (state, nonce, PKCE verifier and the URL
the user asked to return to).  All Requests contain an expiration.

* Token: represents an OAuth2 access_token and refresh_token (including the
access_token expiry), as well as an optional OIDC id_token.

* Config: provides the configuration for a provider (for example: client
ID/secret, redirect URL, issuer, optional explicit endpoints, supported
signing algorithms, additional scopes requested, etc).

* Provider: provides integration with a provider. The provider provides
capabilities like: generating an auth URL, exchanging codes for tokens,
verifying id_tokens, making user info requests, etc.

* Alg: represents asymmetric signing algorithms

The oidc/callback package

The callback package includes the ability to create a http.HandlerFunc which
can be used for the 3rd leg of the flow where the authorization code is
exchanged for tokens.

Testing

TestProvider is an https test provider that implements discovery,
/authorize, /token (with PKCE verification), /userinfo and /certs.
*/
package oidc

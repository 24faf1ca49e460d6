// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// osmauth signs users of a web application in with Online Scout Manager
// (OSM), an OAuth2/OIDC provider, and keeps who they are in a signed session
// cookie.
//
// The packages:
//
//   - oidc: an OIDC relying party (authorization code flow with PKCE).
//   - oidc/callback: the http.HandlerFunc for the provider's redirect back.
//   - bridge: turns a completed handshake into a Token and a Token into a
//     client-safe Session, and decides whether a sign-in is allowed.
//   - jwt: signs and verifies the session token.
//   - handler: the sign-in, callback, session and sign-out routes.
//
// cmd/osm-example wires all of them into a runnable application.
package osmauth

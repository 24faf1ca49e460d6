// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package bridge is the identity bridge between the Online Scout Manager
provider and the application's session.

A sign-in moves through three states.  Unauthenticated users start a
handshake (HandshakePending); when the provider returns an authorization code
it's exchanged for an Account and the userinfo ProfileClaims, and OnSignIn
decides whether the user becomes Authenticated.  On success ShapeToken
projects the Account and ProfileClaims into a Token, and every later request
derives its Session from that Token with ShapeSession.  A Token whose
ExpiresAt has passed, or an explicit sign-out, returns the user to
Unauthenticated; refresh-token rotation isn't implemented.

The hooks:

* DescribeProvider: the provider Config, built once at startup from the
environment.

* OnSignIn: the sign-in gate.  SignInPolicy values (RequireVerifiedEmail,
RequireEmailDomain, RequireClaim or a PolicyFunc) can deny a sign-in; a
policy that fails or panics denies it too.  Failures are logged, never
propagated.

* ShapeToken: total overwrite of the Token's seven fields on the handshake,
pass-through afterwards.

* ShapeSession / ProjectToSession: copies name, email and image.  A Session
never carries the provider's access or refresh token.

* OnRedirectAfterAuth: always the application's base URL.

A Bridge holds no mutable state and is safe for concurrent use.
*/
package bridge

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package handler provides the HTTP routes that drive a sign-in with an OIDC
provider and keep the resulting session in a signed cookie.

	h, err := handler.New("https://app.example.org", b, codec, []*oidc.Provider{p})
	r := chi.NewRouter()
	r.Mount(handler.DefaultBasePath, h.Routes())
	r.With(h.Middleware).Get("/", home)

A sign-in starts with a POST to /signin/{provider}, which stores a pending
oidc.Request in a RequestCache and redirects to the provider.  The provider
redirects back to /callback/{provider}; the code is exchanged, the userinfo
claims fetched and the bridge decides whether the user is signed in.  The
Token is carried in the SessionCookieName cookie, signed by a jwt.Codec, and
only ever exposed as a bridge.Session (see /session and SessionFromContext).

Failures redirect to /error with an ErrorCode.
*/
package handler

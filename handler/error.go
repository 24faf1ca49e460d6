// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import "errors"

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUnknownProvider  = errors.New("unknown provider")
	ErrNoSession        = errors.New("no session")
)

// ErrorCode is the value of the error query parameter of the error page.
type ErrorCode string

const (
	// ErrorConfiguration means the server is misconfigured.
	ErrorConfiguration ErrorCode = "Configuration"

	// ErrorAccessDenied means the sign-in was rejected, by the user at the
	// provider or by a sign-in policy.
	ErrorAccessDenied ErrorCode = "AccessDenied"

	// ErrorOAuthSignin means the handshake couldn't be started.
	ErrorOAuthSignin ErrorCode = "OAuthSignin"

	// ErrorOAuthCallback means the provider's response couldn't be
	// processed: a bad or expired state, a failed code exchange, id_token
	// verification or userinfo request.
	ErrorOAuthCallback ErrorCode = "OAuthCallback"

	// ErrorDefault is used for any unrecognized code.
	ErrorDefault ErrorCode = "Default"
)

func parseErrorCode(s string) ErrorCode {
	switch c := ErrorCode(s); c {
	case ErrorConfiguration, ErrorAccessDenied, ErrorOAuthSignin, ErrorOAuthCallback:
		return c
	default:
		return ErrorDefault
	}
}

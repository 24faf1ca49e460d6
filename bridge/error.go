// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package bridge

import "errors"

var (
	// ErrConfiguration means the provider can't be described from the
	// environment.  It's fatal at startup.
	ErrConfiguration = errors.New("configuration error")

	// ErrHandshakeRejected means sign-in was denied and no Token may be
	// issued.
	ErrHandshakeRejected = errors.New("handshake rejected")

	// ErrPolicyFailed means a sign-in policy couldn't be evaluated.
	ErrPolicyFailed = errors.New("sign-in policy failed")

	ErrInvalidParameter = errors.New("invalid parameter")
)

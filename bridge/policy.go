// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package bridge

import (
	"context"
	"fmt"
	"strings"
)

// SignInPolicy decides whether a completed handshake may become a session.
// Returning false denies the sign-in; returning an error means the policy
// couldn't decide, which also denies it.
type SignInPolicy interface {
	Allow(ctx context.Context, profile *ProfileClaims, account *Account) (bool, error)
}

// PolicyFunc adapts a function to a SignInPolicy.
type PolicyFunc func(ctx context.Context, profile *ProfileClaims, account *Account) (bool, error)

// Allow calls f.
func (f PolicyFunc) Allow(ctx context.Context, profile *ProfileClaims, account *Account) (bool, error) {
	return f(ctx, profile, account)
}

// RequireVerifiedEmail allows users whose "email_verified" claim is true
// (or the string "true").
func RequireVerifiedEmail() SignInPolicy {
	return PolicyFunc(func(_ context.Context, profile *ProfileClaims, _ *Account) (bool, error) {
		const op = "bridge.RequireVerifiedEmail"
		var v interface{}
		found, err := profile.Claim("email_verified", &v)
		if err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		if !found {
			return false, nil
		}
		switch verified := v.(type) {
		case bool:
			return verified, nil
		case string:
			return strings.EqualFold(verified, "true"), nil
		default:
			return false, fmt.Errorf("%s: email_verified claim is a %T: %w", op, v, ErrPolicyFailed)
		}
	})
}

// RequireEmailDomain allows users whose email address belongs to one of
// domains (case-insensitive).
func RequireEmailDomain(domains ...string) SignInPolicy {
	allowed := make(map[string]bool, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d != "" {
			allowed[d] = true
		}
	}
	return PolicyFunc(func(_ context.Context, profile *ProfileClaims, _ *Account) (bool, error) {
		const op = "bridge.RequireEmailDomain"
		if len(allowed) == 0 {
			return false, fmt.Errorf("%s: no domains configured: %w", op, ErrPolicyFailed)
		}
		at := strings.LastIndex(profile.Email, "@")
		if at < 0 {
			return false, nil
		}
		return allowed[strings.ToLower(profile.Email[at+1:])], nil
	})
}

// RequireClaim allows users with a string claim called name whose value is
// one of allowed.  With no allowed values the claim only has to be present.
func RequireClaim(name string, allowed ...string) SignInPolicy {
	return PolicyFunc(func(_ context.Context, profile *ProfileClaims, _ *Account) (bool, error) {
		const op = "bridge.RequireClaim"
		var v string
		found, err := profile.Claim(name, &v)
		if err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		if !found {
			return false, nil
		}
		if len(allowed) == 0 {
			return true, nil
		}
		for _, a := range allowed {
			if v == a {
				return true, nil
			}
		}
		return false, nil
	})
}

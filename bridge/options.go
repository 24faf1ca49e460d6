// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package bridge

import (
	"github.com/hashicorp/go-hclog"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

// bridgeOptions is the set of available options for New.
type bridgeOptions struct {
	withLogger   hclog.Logger
	withPolicies []SignInPolicy
}

func bridgeDefaults() bridgeOptions {
	return bridgeOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getBridgeOpts(opt ...Option) bridgeOptions {
	opts := bridgeDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*bridgeOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithPolicies adds sign-in policies.  Every policy must allow a sign-in for
// it to succeed.  Without policies every sign-in is allowed.
func WithPolicies(p ...SignInPolicy) Option {
	return func(o interface{}) {
		if o, ok := o.(*bridgeOptions); ok {
			for _, policy := range p {
				if policy != nil {
					o.withPolicies = append(o.withPolicies, policy)
				}
			}
		}
	}
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

type codecOptions struct {
	withMaxAge time.Duration
	withLeeway time.Duration
	withIssuer string
	withClock  clockwork.Clock
}

func codecDefaults() codecOptions {
	return codecOptions{
		withMaxAge: DefaultMaxAge,
		withLeeway: DefaultLeeway,
		withIssuer: DefaultIssuer,
		withClock:  clockwork.NewRealClock(),
	}
}

// getCodecOpts gets the defaults and applies the opt overrides passed
// in.
func getCodecOpts(opt ...Option) codecOptions {
	opts := codecDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

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

// WithMaxAge sets how long an encoded token stays valid.
func WithMaxAge(d time.Duration) Option {
	return func(o interface{}) {
		if v, ok := o.(*codecOptions); ok && d > 0 {
			v.withMaxAge = d
		}
	}
}

// WithLeeway sets the clock skew tolerated when validating the exp and nbf
// claims.
func WithLeeway(d time.Duration) Option {
	return func(o interface{}) {
		if v, ok := o.(*codecOptions); ok && d >= 0 {
			v.withLeeway = d
		}
	}
}

// WithIssuer sets the iss claim written by Encode and required by Decode.
func WithIssuer(iss string) Option {
	return func(o interface{}) {
		if v, ok := o.(*codecOptions); ok {
			v.withIssuer = iss
		}
	}
}

// WithClock provides an optional clock, mostly useful for testing expiry.
func WithClock(c clockwork.Clock) Option {
	return func(o interface{}) {
		if v, ok := o.(*codecOptions); ok && c != nil {
			v.withClock = c
		}
	}
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/jonboulle/clockwork"
)

// DefaultBasePath is where the handler's routes are expected to be mounted.
const DefaultBasePath = "/api/auth"

// DefaultRequestTTL is how long a started sign-in may take to come back
// through the callback.
const DefaultRequestTTL = 10 * time.Minute

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

// handlerOptions is the set of available options for New.
type handlerOptions struct {
	withLogger     hclog.Logger
	withClock      clockwork.Clock
	withBasePath   string
	withRequestTTL time.Duration
}

func handlerDefaults() handlerOptions {
	return handlerOptions{
		withLogger:     hclog.NewNullLogger(),
		withClock:      clockwork.NewRealClock(),
		withBasePath:   DefaultBasePath,
		withRequestTTL: DefaultRequestTTL,
	}
}

func getHandlerOpts(opt ...Option) handlerOptions {
	opts := handlerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithClock provides an optional clock used for request and token expiry.
func WithClock(c clockwork.Clock) Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok && c != nil {
			o.withClock = c
		}
	}
}

// WithBasePath provides the path the routes are mounted under.
func WithBasePath(p string) Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok {
			o.withBasePath = p
		}
	}
}

// WithRequestTTL provides how long a pending sign-in stays valid.
func WithRequestTTL(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok && d > 0 {
			o.withRequestTTL = d
		}
	}
}

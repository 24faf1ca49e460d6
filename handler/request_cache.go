// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/scoutlink/osmauth/oidc"
	"github.com/scoutlink/osmauth/oidc/callback"
)

// RequestCache holds the pending sign-in requests, keyed by their state,
// between the sign-in redirect and the provider's callback.  Entries are
// evicted once their TTL passes.  It's safe for concurrent use.
type RequestCache struct {
	c *cache.Cache
}

// ensure that RequestCache implements the callback.RequestReader interface.
var _ callback.RequestReader = (*RequestCache)(nil)

// NewRequestCache creates a RequestCache for requests that expire after ttl.
// Entries are kept for twice as long, so a late callback still finds its
// request and reports it as expired rather than unknown.
func NewRequestCache(ttl time.Duration) *RequestCache {
	return &RequestCache{
		c: cache.New(ttl*2, ttl*2),
	}
}

// Add a pending request.  Adding a second request with the same state is an
// error.
func (rc *RequestCache) Add(r oidc.Request) error {
	const op = "RequestCache.Add"
	if r == nil {
		return fmt.Errorf("%s: request is nil: %w", op, ErrInvalidParameter)
	}
	if err := rc.c.Add(r.State(), r, cache.DefaultExpiration); err != nil {
		return fmt.Errorf("%s: %v: %w", op, err, ErrInvalidParameter)
	}
	return nil
}

// Read implements the callback.RequestReader interface.  A request past its
// own expiry is still returned until the cache evicts it.
func (rc *RequestCache) Read(_ context.Context, state string) (oidc.Request, error) {
	const op = "RequestCache.Read"
	v, ok := rc.c.Get(state)
	if !ok {
		return nil, fmt.Errorf("%s: state %q: %w", op, state, oidc.ErrNotFound)
	}
	return v.(oidc.Request), nil
}

// Delete the request for state.  A request is deleted once its callback has
// been handled, successfully or not, so a state can't be replayed.
func (rc *RequestCache) Delete(state string) {
	rc.c.Delete(state)
}

// Len is the number of pending requests, including ones that expired but
// haven't been evicted yet.
func (rc *RequestCache) Len() int {
	return rc.c.ItemCount()
}

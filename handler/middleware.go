// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"context"
	"net/http"

	"github.com/scoutlink/osmauth/bridge"
)

type sessionKey struct{}

// Middleware attaches the request's Session to its context.  An expired or
// invalid session cookie is cleared.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, stale := h.sessionFor(r)
		if stale {
			h.clearSessionCookie(w)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
	})
}

// SessionFromContext returns the Session attached by Middleware.  It's never
// nil: without one an unauthenticated Session is returned.
func SessionFromContext(ctx context.Context) *bridge.Session {
	if s, ok := ctx.Value(sessionKey{}).(*bridge.Session); ok && s != nil {
		return s
	}
	return &bridge.Session{}
}

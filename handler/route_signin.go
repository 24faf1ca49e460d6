// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"net/http"

	"github.com/scoutlink/osmauth/oidc"
	"golang.org/x/text/language"
)

// signin starts a handshake: it records a pending Request (state, nonce,
// PKCE verifier and the callbackUrl to return to) and redirects to the
// provider's authorization endpoint.
func (h *Handler) signin(w http.ResponseWriter, r *http.Request) {
	p, ok := h.provider(w, r)
	if !ok {
		return
	}
	c := p.Config()
	logger := h.logger.With("provider", c.ProviderID)

	opts := []oidc.Option{
		oidc.WithReturnTo(r.FormValue("callbackUrl")),
		oidc.WithClock(h.clock),
	}
	if tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language")); err == nil && len(tags) > 0 {
		opts = append(opts, oidc.WithUILocales(tags...))
	}
	oidcRequest, err := oidc.NewRequest(h.requestTTL, c.RedirectURL, opts...)
	if err != nil {
		logger.Error("unable to create sign-in request", "error", err)
		h.redirectError(w, r, ErrorOAuthSignin)
		return
	}
	if err := h.requests.Add(oidcRequest); err != nil {
		logger.Error("unable to store sign-in request", "error", err)
		h.redirectError(w, r, ErrorOAuthSignin)
		return
	}
	authURL, err := p.AuthURL(r.Context(), oidcRequest)
	if err != nil {
		h.requests.Delete(oidcRequest.State())
		logger.Error("unable to create auth URL", "error", err)
		h.redirectError(w, r, ErrorOAuthSignin)
		return
	}
	logger.Debug("sign-in started", "state", oidcRequest.State())
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"net/http"
)

// session responds with the request's Session as JSON, {} when the user
// isn't signed in.  An expired or invalid session cookie is cleared.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	s, stale := h.sessionFor(r)
	if stale {
		h.clearSessionCookie(w)
	}
	h.writeJSON(w, http.StatusOK, s)
}

// signout clears the session cookie and redirects to the base URL.
func (h *Handler) signout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	if t, err := h.token(r); err == nil {
		h.logger.Info("signed out", "id", t.ID)
	}
	http.Redirect(w, r, h.bridge.OnRedirectAfterAuth(r.FormValue("callbackUrl"), h.baseURL), http.StatusFound)
}

type providerJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	SigninURL   string `json:"signinUrl"`
	CallbackURL string `json:"callbackUrl"`
}

// providersJSON describes the configured providers, keyed by id.
func (h *Handler) providersJSON(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string]providerJSON, len(h.providers))
	for _, c := range h.sortedProviders() {
		out[c.ProviderID] = providerJSON{
			ID:          c.ProviderID,
			Name:        c.DisplayName,
			Type:        "oauth",
			SigninURL:   h.URL("/signin/" + c.ProviderID),
			CallbackURL: c.RedirectURL,
		}
	}
	h.writeJSON(w, http.StatusOK, out)
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-hclog"
	"github.com/jonboulle/clockwork"
	"github.com/scoutlink/osmauth/bridge"
	"github.com/scoutlink/osmauth/jwt"
	"github.com/scoutlink/osmauth/oidc"
)

// Handler serves the sign-in, callback, session and sign-out routes the
// Identity Bridge plugs into.  It's safe for concurrent use.
type Handler struct {
	baseURL  string
	basePath string
	secure   bool

	providers map[string]*oidc.Provider
	bridge    *bridge.Bridge
	codec     *jwt.Codec
	requests  *RequestCache

	requestTTL time.Duration
	clock      clockwork.Clock
	logger     hclog.Logger
}

// New creates a Handler for the application at baseURL (for example:
// https://app.example.org).  Providers are routed by their Config's
// ProviderID, which must be unique.
//
// Supported options: WithLogger, WithClock, WithBasePath, WithRequestTTL
func New(baseURL string, b *bridge.Bridge, codec *jwt.Codec, providers []*oidc.Provider, opt ...Option) (*Handler, error) {
	const op = "handler.New"
	switch {
	case b == nil:
		return nil, fmt.Errorf("%s: bridge is nil: %w", op, ErrInvalidParameter)
	case codec == nil:
		return nil, fmt.Errorf("%s: codec is nil: %w", op, ErrInvalidParameter)
	case len(providers) == 0:
		return nil, fmt.Errorf("%s: no providers: %w", op, ErrInvalidParameter)
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%s: base URL %q is not an absolute http(s) URL: %w", op, baseURL, ErrInvalidParameter)
	}
	opts := getHandlerOpts(opt...)

	h := &Handler{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		basePath:   "/" + strings.Trim(opts.withBasePath, "/"),
		secure:     u.Scheme == "https",
		providers:  make(map[string]*oidc.Provider, len(providers)),
		bridge:     b,
		codec:      codec,
		requests:   NewRequestCache(opts.withRequestTTL),
		requestTTL: opts.withRequestTTL,
		clock:      opts.withClock,
		logger:     opts.withLogger,
	}
	if h.basePath == "/" {
		h.basePath = ""
	}
	for _, p := range providers {
		if p == nil {
			return nil, fmt.Errorf("%s: provider is nil: %w", op, ErrInvalidParameter)
		}
		id := p.Config().ProviderID
		if _, ok := h.providers[id]; ok {
			return nil, fmt.Errorf("%s: duplicate provider %q: %w", op, id, ErrInvalidParameter)
		}
		h.providers[id] = p
	}
	return h, nil
}

// Routes returns the handler's routes, to be mounted at the base path:
//
//	GET       /signin             sign-in page
//	POST      /signin/{provider}  start a sign-in
//	GET|POST  /callback/{provider}
//	GET       /session            the current Session as JSON
//	GET|POST  /signout            sign-out page, sign out
//	GET       /providers          the configured providers as JSON
//	GET       /error              error page
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/signin", h.signinPage)
	r.Post("/signin/{provider}", h.signin)
	r.Get("/callback/{provider}", h.callback)
	r.Post("/callback/{provider}", h.callback)
	r.Get("/session", h.session)
	r.Get("/signout", h.signoutPage)
	r.Post("/signout", h.signout)
	r.Get("/providers", h.providersJSON)
	r.Get("/error", h.errorPage)
	return r
}

// URL returns the absolute URL of one of the handler's routes.
func (h *Handler) URL(route string) string {
	return h.baseURL + h.basePath + route
}

// provider looks up the route's provider and writes a 404 when it's unknown.
func (h *Handler) provider(w http.ResponseWriter, r *http.Request) (*oidc.Provider, bool) {
	p, err := h.lookupProvider(chi.URLParam(r, "provider"))
	if err != nil {
		h.logger.Debug("rejecting request", "error", err)
		http.NotFound(w, r)
		return nil, false
	}
	return p, true
}

// lookupProvider returns the provider with the id, or ErrUnknownProvider.
func (h *Handler) lookupProvider(id string) (*oidc.Provider, error) {
	const op = "Handler.lookupProvider"
	p, ok := h.providers[id]
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", op, id, ErrUnknownProvider)
	}
	return p, nil
}

// sortedProviders returns the providers ordered by id.
func (h *Handler) sortedProviders() []oidc.Config {
	out := make([]oidc.Config, 0, len(h.providers))
	for _, p := range h.providers {
		out = append(out, p.Config())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProviderID < out[j].ProviderID })
	return out
}

func (h *Handler) redirectError(w http.ResponseWriter, r *http.Request, code ErrorCode) {
	http.Redirect(w, r, h.URL("/error")+"?error="+url.QueryEscape(string(code)), http.StatusFound)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("unable to write response", "error", err)
	}
}

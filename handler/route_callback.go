// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-hclog"
	"github.com/scoutlink/osmauth/bridge"
	"github.com/scoutlink/osmauth/oidc"
	"github.com/scoutlink/osmauth/oidc/callback"
)

// callback completes a handshake.  The authorization code is exchanged by
// callback.AuthCode; on success the userinfo claims are fetched, the sign-in
// gate is run and the projected Token is written to the session cookie.
func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	p, ok := h.provider(w, r)
	if !ok {
		return
	}
	logger := h.logger.With("provider", p.Config().ProviderID)
	c, err := callback.AuthCode(r.Context(), p, h.requests, h.callbackSuccess(p, logger), h.callbackError(logger))
	if err != nil {
		logger.Error("unable to create callback", "error", err)
		h.redirectError(w, r, ErrorConfiguration)
		return
	}
	c(w, r)
}

func (h *Handler) callbackSuccess(p *oidc.Provider, logger hclog.Logger) callback.SuccessResponseFunc {
	return func(state string, t oidc.Token, w http.ResponseWriter, req *http.Request) {
		oidcRequest, err := h.requests.Read(req.Context(), state)
		if err != nil {
			logger.Error("error reading state during successful response", "error", err)
			h.redirectError(w, req, ErrorOAuthCallback)
			return
		}
		h.requests.Delete(state)

		account, profile, err := h.handshake(req, p, t)
		if err != nil {
			logger.Error("unable to complete handshake", "error", err)
			h.redirectError(w, req, ErrorOAuthCallback)
			return
		}
		if !h.bridge.OnSignIn(req.Context(), profile, account) {
			logger.Info("sign-in rejected", "provider_account_id", account.ProviderAccountID)
			h.redirectError(w, req, ErrorAccessDenied)
			return
		}

		prior, _ := h.token(req)
		token := h.bridge.ShapeToken(prior, account, profile)
		if err := h.setSessionCookie(w, token); err != nil {
			logger.Error("unable to write session cookie", "error", err)
			h.redirectError(w, req, ErrorOAuthCallback)
			return
		}
		logger.Info("signed in", "provider_account_id", account.ProviderAccountID)
		http.Redirect(w, req, h.bridge.OnRedirectAfterAuth(oidcRequest.ReturnTo(), h.baseURL), http.StatusFound)
	}
}

// handshake builds the Account and ProfileClaims for an exchanged token.  The
// providerAccountId is the userinfo subject, or the id_token's when userinfo
// doesn't return one.
func (h *Handler) handshake(req *http.Request, p *oidc.Provider, t oidc.Token) (*bridge.Account, *bridge.ProfileClaims, error) {
	const op = "Handler.handshake"
	var idClaims struct {
		Subject string `json:"sub"`
	}
	if t.IDToken() != "" {
		if err := t.IDToken().Claims(&idClaims); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	ts, ok := t.(oidc.StaticTokenSource)
	if !ok {
		return nil, nil, fmt.Errorf("%s: token is not a token source: %w", op, ErrInvalidParameter)
	}
	var profile bridge.ProfileClaims
	if err := p.UserInfo(req.Context(), ts.StaticTokenSource(), idClaims.Subject, &profile); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	subject := profile.Subject
	if subject == "" {
		subject = idClaims.Subject
	}
	account, err := bridge.NewAccount(p.Config().ProviderID, subject, t)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return account, &profile, nil
}

func (h *Handler) callbackError(logger hclog.Logger) callback.ErrorResponseFunc {
	return func(state string, respErr *callback.AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request) {
		h.requests.Delete(state)
		switch {
		case respErr != nil:
			logger.Warn("callback error from provider", "error", respErr.Error, "error_description", respErr.Description)
			if respErr.Error == "access_denied" {
				h.redirectError(w, req, ErrorAccessDenied)
				return
			}
		case errors.Is(e, oidc.ErrExpiredRequest), errors.Is(e, oidc.ErrNotFound):
			logger.Warn("callback for unknown or expired sign-in", "error", e)
		default:
			logger.Error("callback error", "error", e)
		}
		h.redirectError(w, req, ErrorOAuthCallback)
	}
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/scoutlink/osmauth/bridge"
)

// SessionCookieName is the name of the cookie carrying the signed Token.
const SessionCookieName = "osmauth.session-token"

func (h *Handler) setSessionCookie(w http.ResponseWriter, token *bridge.Token) error {
	const op = "Handler.setSessionCookie"
	raw, err := h.codec.Encode(token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    raw,
		Path:     "/",
		MaxAge:   int(h.codec.MaxAge().Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// token decodes the request's session cookie.  It returns ErrNoSession when
// there's no cookie.
func (h *Handler) token(r *http.Request) (*bridge.Token, error) {
	const op = "Handler.token"
	c, err := r.Cookie(SessionCookieName)
	if errors.Is(err, http.ErrNoCookie) || (err == nil && c.Value == "") {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var t bridge.Token
	if err := h.codec.Decode(c.Value, &t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}

// sessionFor derives the request's Session.  stale is true when the request
// carried a session cookie that must be cleared: undecodable, or holding a
// Token whose access_token expired.
func (h *Handler) sessionFor(r *http.Request) (session *bridge.Session, stale bool) {
	token, err := h.token(r)
	switch {
	case errors.Is(err, ErrNoSession):
	case err != nil:
		h.logger.Debug("discarding session cookie", "error", err)
		stale = true
	default:
		// subsequent requests pass the token through unchanged
		token = h.bridge.ShapeToken(token, nil, nil)
		if token.Expired(h.clock) {
			h.logger.Debug("session expired", "id", token.ID)
			token, stale = nil, true
		}
	}
	session = &bridge.Session{}
	if token != nil {
		session.User = &bridge.User{}
	}
	return h.bridge.ShapeSession(session, token), stale
}

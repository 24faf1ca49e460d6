// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package bridge

// Session is the per-request view of a Token that's safe to hand to the
// client.  It never carries provider tokens.
type Session struct {
	User *User `json:"user,omitempty"`
}

// User is the identity part of a Session.
type User struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

// Authenticated reports whether the session carries a user.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

// ProjectToSession derives the Session for token.  A nil token yields an
// unauthenticated (empty) Session.
func ProjectToSession(token *Token) *Session {
	if token == nil {
		return &Session{}
	}
	return shapeSession(&Session{User: &User{}}, token)
}

func shapeSession(s *Session, token *Token) *Session {
	if token == nil || s == nil || s.User == nil {
		return s
	}
	s.User.Name = token.Name
	s.User.Email = token.Email
	s.User.Image = token.Image
	return s
}

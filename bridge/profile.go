// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package bridge

import (
	"encoding/json"
	"fmt"
)

// ProfileClaims is the provider's userinfo response.  The claims the bridge
// projects are named fields; every other claim is kept, undecoded, in Extra
// and never copied into a Token.
type ProfileClaims struct {
	Subject string
	Name    string
	Email   string
	Image   string
	Extra   map[string]json.RawMessage
}

// UnmarshalJSON decodes a userinfo response.  "picture" (the OIDC standard
// claim) is used as the Image when "image" is absent.  A null or missing
// claim leaves its field empty.
func (p *ProfileClaims) UnmarshalJSON(data []byte) error {
	const op = "ProfileClaims.UnmarshalJSON"
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	take := func(name string, dst *string) error {
		v, ok := raw[name]
		if !ok {
			return nil
		}
		delete(raw, name)
		if string(v) == "null" {
			return nil
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("%s: claim %q: %w", op, name, err)
		}
		return nil
	}
	var out ProfileClaims
	for _, c := range []struct {
		name string
		dst  *string
	}{
		{"sub", &out.Subject},
		{"name", &out.Name},
		{"email", &out.Email},
		{"image", &out.Image},
	} {
		if err := take(c.name, c.dst); err != nil {
			return err
		}
	}
	if out.Image == "" {
		if err := take("picture", &out.Image); err != nil {
			return err
		}
	}
	if len(raw) > 0 {
		out.Extra = raw
	}
	*p = out
	return nil
}

// Claim decodes the extra claim called name into v.  It reports whether the
// claim was present.
func (p *ProfileClaims) Claim(name string, v interface{}) (bool, error) {
	const op = "ProfileClaims.Claim"
	if v == nil {
		return false, fmt.Errorf("%s: nil value: %w", op, ErrInvalidParameter)
	}
	if p == nil {
		return false, nil
	}
	raw, ok := p.Extra[name]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("%s: claim %q: %v: %w", op, name, err, ErrInvalidParameter)
	}
	return true, nil
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken_String(t *testing.T) {
	t.Parallel()
	t.Run("redacted", func(t *testing.T) {
		assert := assert.New(t)
		tk := AccessToken("super secret token")
		assert.Equal(RedactedAccessToken, tk.String())
		assert.NotContains(fmt.Sprintf("%v", tk), "super secret")
	})
}

func TestAccessToken_MarshalJSON(t *testing.T) {
	t.Parallel()
	t.Run("redacted", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		want := fmt.Sprintf(`"%s"`, RedactedAccessToken)
		tk := AccessToken("super secret token")
		got, err := tk.MarshalJSON()
		require.NoError(err)
		assert.Equalf([]byte(want), got, "AccessToken.MarshalJSON() = %s, want %s", got, want)
	})
	t.Run("embedded", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		got, err := json.Marshal(struct {
			Token AccessToken `json:"token"`
		}{Token: "super secret token"})
		require.NoError(err)
		assert.NotContains(string(got), "super secret")
	})
}

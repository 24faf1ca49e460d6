// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestApplyOpts(t *testing.T) {
	t.Parallel()
	t.Run("nil-options-ignored", func(t *testing.T) {
		assert := assert.New(t)
		opts := tokenDefaults()
		ApplyOpts(&opts, nil, WithExpirySkew(time.Minute), nil)
		assert.Equal(time.Minute, opts.withExpirySkew)
	})
	t.Run("options-for-other-types-ignored", func(t *testing.T) {
		assert := assert.New(t)
		opts := idDefaults()
		ApplyOpts(&opts, WithExpirySkew(time.Minute), WithAudiences("alice"))
		assert.Equal(idDefaults(), opts)
	})
}

func Test_WithClock(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	c := clockwork.NewFakeClock()

	tOpts := getTokenOpts(WithClock(c))
	assert.Equal(c, tOpts.withClock)

	rOpts := getReqOpts(WithClock(c))
	assert.Equal(c, rOpts.withClock)

	pOpts := getProviderOpts(WithClock(c))
	assert.Equal(c, pOpts.withClock)
}

func Test_WithAudiences(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	opts := getConfigOpts(WithAudiences("alice", "bob"))
	testOpts := configDefaults()
	testOpts.withAudiences = []string{"alice", "bob"}
	assert.Equal(testOpts, opts)
}

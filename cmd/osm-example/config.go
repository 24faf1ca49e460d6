// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/scoutlink/osmauth/bridge"
	"github.com/scoutlink/osmauth/handler"
	"github.com/scoutlink/osmauth/jwt"
)

// Environment variables read by the example, in addition to the ones
// bridge.DescribeProvider reads.
const (
	envBaseURL  = "NEXTAUTH_URL"
	envSecret   = "NEXTAUTH_SECRET"
	envPort     = "PORT"
	envLogLevel = "LOG_LEVEL"

	defaultBaseURL = "http://localhost:3000"
	defaultPort    = "3000"
)

type config struct {
	baseURL  string
	secret   string
	addr     string
	logLevel hclog.Level
}

func envConfig(env bridge.Env) (*config, error) {
	const op = "envConfig"
	c := &config{
		baseURL:  strings.TrimSuffix(env(envBaseURL), "/"),
		secret:   env(envSecret),
		logLevel: hclog.LevelFromString(env(envLogLevel)),
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.logLevel == hclog.NoLevel {
		c.logLevel = hclog.Info
	}
	port := env(envPort)
	if port == "" {
		port = defaultPort
	}
	c.addr = ":" + port

	var result *multierror.Error
	if u, err := url.Parse(c.baseURL); err != nil || u.Host == "" {
		result = multierror.Append(result, fmt.Errorf("%s: %s %q is not an absolute URL: %w", op, envBaseURL, c.baseURL, bridge.ErrConfiguration))
	}
	if len(c.secret) < jwt.MinSecretLength {
		result = multierror.Append(result, fmt.Errorf("%s: %s must be at least %d bytes: %w", op, envSecret, jwt.MinSecretLength, bridge.ErrConfiguration))
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return c, nil
}

// redirectURL is the provider callback route of the handler.
func (c *config) redirectURL() string {
	return c.baseURL + handler.DefaultBasePath + "/callback/" + bridge.ProviderID
}

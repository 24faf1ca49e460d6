// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// osm-example is a web application that signs users in with Online Scout
// Manager.  It's configured from the environment:
//
//	AUTH0_ISSUER, AUTH0_ID, AUTH0_SECRET  the provider (required)
//	NEXTAUTH_SECRET                       session signing secret (required)
//	NEXTAUTH_URL                          base URL, default http://localhost:3000
//	PORT                                  default 3000
//	LOG_LEVEL                             default info
//
// See bridge.DescribeProvider for the optional OSM_* endpoint overrides.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/scoutlink/osmauth/bridge"
	"github.com/scoutlink/osmauth/handler"
	"github.com/scoutlink/osmauth/jwt"
	"github.com/scoutlink/osmauth/oidc"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "osm-example",
		Level: hclog.LevelFromString(os.Getenv(envLogLevel)),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, bridge.OSEnv, logger, nil); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// run serves the application until ctx is done.  When ready is non-nil the
// listener's base address is sent on it once the server is accepting
// connections.
func run(ctx context.Context, env bridge.Env, logger hclog.Logger, ready chan<- string) error {
	cfg, err := envConfig(env)
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.logLevel)

	pc, err := bridge.DescribeProvider(env, cfg.redirectURL())
	if err != nil {
		return err
	}
	p, err := oidc.NewProvider(pc, oidc.WithLogger(logger.Named("oidc")))
	if err != nil {
		return fmt.Errorf("unable to create provider: %w", err)
	}
	defer p.Done()

	codec, err := jwt.NewCodec(cfg.secret)
	if err != nil {
		return fmt.Errorf("unable to create session codec: %w", err)
	}
	b := bridge.New(bridge.WithLogger(logger.Named("bridge")))
	h, err := handler.New(cfg.baseURL, b, codec, []*oidc.Provider{p}, handler.WithLogger(logger.Named("handler")))
	if err != nil {
		return fmt.Errorf("unable to create handler: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	server := &http.Server{
		Handler:           newRouter(h, logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true}),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", ln.Addr().String(), "base_url", cfg.baseURL)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if ready != nil {
		ready <- "http://" + ln.Addr().String()
	}

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	logger.Info("stopped")
	return nil
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package osmauth_test

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-hclog"
	"github.com/scoutlink/osmauth/bridge"
	"github.com/scoutlink/osmauth/handler"
	"github.com/scoutlink/osmauth/jwt"
	"github.com/scoutlink/osmauth/oidc"
)

func Example() {
	const baseURL = "https://app.example.org"
	logger := hclog.New(&hclog.LoggerOptions{Name: "app"})

	// Describe OSM from AUTH0_ISSUER, AUTH0_ID and AUTH0_SECRET.
	pc, err := bridge.DescribeProvider(bridge.OSEnv, baseURL+handler.DefaultBasePath+"/callback/"+bridge.ProviderID)
	if err != nil {
		// the deployment is misconfigured: errors.Is(err, bridge.ErrConfiguration)
		fmt.Fprintln(os.Stderr, err)
		return
	}
	p, err := oidc.NewProvider(pc, oidc.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	defer p.Done()

	// Only allow verified scouting email addresses.
	b := bridge.New(
		bridge.WithLogger(logger),
		bridge.WithPolicies(bridge.RequireVerifiedEmail(), bridge.RequireEmailDomain("example.org")),
	)
	codec, err := jwt.NewCodec(os.Getenv("NEXTAUTH_SECRET"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	h, err := handler.New(baseURL, b, codec, []*oidc.Provider{p}, handler.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}

	r := chi.NewRouter()
	r.Mount(handler.DefaultBasePath, h.Routes())
	r.With(h.Middleware).Get("/", func(w http.ResponseWriter, r *http.Request) {
		if s := handler.SessionFromContext(r.Context()); s.Authenticated() {
			fmt.Fprintf(w, "hello %s", s.User.Name)
			return
		}
		http.Redirect(w, r, h.URL("/signin"), http.StatusFound)
	})

	srv := &http.Server{Addr: ":3000", Handler: r}
	go func() { _ = srv.ListenAndServe() }()
	_ = srv.Shutdown(context.Background())
}

func Example_session() {
	b := bridge.New()
	account := &bridge.Account{
		Provider:          bridge.ProviderID,
		Type:              bridge.AccountTypeOAuth,
		ProviderAccountID: "osm-123",
		AccessToken:       "AT1",
		RefreshToken:      "RT1",
		ExpiresAt:         1700000000,
	}
	profile := &bridge.ProfileClaims{
		Subject: "osm-123",
		Name:    "Jane Scout",
		Email:   "jane@example.org",
		Image:   "https://img/jane.png",
	}
	if !b.OnSignIn(context.Background(), profile, account) {
		return
	}
	token := b.ShapeToken(nil, account, profile)
	session := b.ShapeSession(bridge.ProjectToSession(token), token)
	fmt.Println(token.ID, token.AccessToken, token.ExpiresAt)
	fmt.Println(session.User.Name, session.User.Email, session.User.Image)

	// Output:
	// osm-123 AT1 1700000000
	// Jane Scout jane@example.org https://img/jane.png
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"
	"github.com/scoutlink/osmauth/bridge"
	"github.com/scoutlink/osmauth/handler"
)

var home = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>OSM example</title></head>
<body>
{{if .Session.Authenticated}}
<p id="user">Signed in as {{.Session.User.Name}}{{with .Session.User.Email}} ({{.}}){{end}}</p>
{{with .Session.User.Image}}<img src="{{.}}" alt="">{{end}}
<form action="{{.SignoutURL}}" method="POST"><button type="submit">Sign out</button></form>
{{else}}
<p id="user">Not signed in</p>
<a href="{{.SigninURL}}">Sign in</a>
{{end}}
</body>
</html>
`))

func newRouter(h *handler.Handler, logger hclog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Mount(handler.DefaultBasePath, h.Routes())
	r.With(h.Middleware).Get("/", func(w http.ResponseWriter, r *http.Request) {
		data := struct {
			Session    *bridge.Session
			SigninURL  string
			SignoutURL string
		}{
			Session:    handler.SessionFromContext(r.Context()),
			SigninURL:  h.URL("/signin"),
			SignoutURL: h.URL("/signout"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := home.Execute(w, data); err != nil {
			logger.Error("unable to render home page", "error", err)
		}
	})
	return r
}

// requestLogger logs each request at debug level.
func requestLogger(logger hclog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("request",
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration", time.Since(start),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

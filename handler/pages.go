// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"bytes"
	"html/template"
	"net/http"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main>
{{template "content" .}}
</main>
</body>
</html>
{{end}}`

var pages = map[string]*template.Template{
	"signin": template.Must(template.New("signin").Parse(layout + `{{define "content"}}
<h1>Sign in</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{range .Providers}}
<form class="provider" action="{{.Action}}" method="POST">
<input type="hidden" name="callbackUrl" value="{{$.CallbackURL}}">
<button type="submit">Sign in with {{.Name}}</button>
</form>
{{end}}
{{end}}`)),
	"signout": template.Must(template.New("signout").Parse(layout + `{{define "content"}}
<h1>Sign out</h1>
<p>Are you sure you want to sign out?</p>
<form class="signout" action="{{.Action}}" method="POST">
<input type="hidden" name="callbackUrl" value="{{.CallbackURL}}">
<button type="submit">Sign out</button>
</form>
{{end}}`)),
	"error": template.Must(template.New("error").Parse(layout + `{{define "content"}}
<h1>{{.Heading}}</h1>
<p class="message">{{.Message}}</p>
<p><a class="signin" href="{{.SigninURL}}">Sign in</a></p>
{{end}}`)),
}

type pageProvider struct {
	Name   string
	Action string
}

type signinData struct {
	Title       string
	Error       string
	CallbackURL string
	Providers   []pageProvider
}

type signoutData struct {
	Title       string
	Action      string
	CallbackURL string
}

type errorData struct {
	Title     string
	Heading   string
	Message   string
	SigninURL string
}

var errorMessages = map[ErrorCode]struct {
	status  int
	heading string
	message string
}{
	ErrorConfiguration: {http.StatusInternalServerError, "Server error", "There is a problem with the server configuration."},
	ErrorAccessDenied:  {http.StatusForbidden, "Access denied", "You do not have permission to sign in."},
	ErrorOAuthSignin:   {http.StatusOK, "Unable to sign in", "Sign in could not be started. Try again."},
	ErrorOAuthCallback: {http.StatusOK, "Unable to sign in", "The response from Online Scout Manager could not be processed. Try again."},
	ErrorDefault:       {http.StatusOK, "Error", "Something went wrong while signing in."},
}

// signinMessages are shown on the sign-in page when it's given an error.
var signinMessages = map[ErrorCode]string{
	ErrorAccessDenied:  "Sign in was denied.",
	ErrorOAuthSignin:   "Try signing in again.",
	ErrorOAuthCallback: "Try signing in again.",
}

func (h *Handler) signinPage(w http.ResponseWriter, r *http.Request) {
	data := signinData{
		Title:       "Sign in",
		CallbackURL: r.FormValue("callbackUrl"),
	}
	if e := r.FormValue("error"); e != "" {
		data.Error = signinMessages[parseErrorCode(e)]
		if data.Error == "" {
			data.Error = errorMessages[ErrorDefault].message
		}
	}
	if data.CallbackURL == "" {
		data.CallbackURL = h.baseURL
	}
	for _, c := range h.sortedProviders() {
		data.Providers = append(data.Providers, pageProvider{
			Name:   c.DisplayName,
			Action: h.URL("/signin/" + c.ProviderID),
		})
	}
	h.render(w, http.StatusOK, "signin", data)
}

func (h *Handler) signoutPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "signout", signoutData{
		Title:       "Sign out",
		Action:      h.URL("/signout"),
		CallbackURL: h.baseURL,
	})
}

func (h *Handler) errorPage(w http.ResponseWriter, r *http.Request) {
	m := errorMessages[parseErrorCode(r.FormValue("error"))]
	h.render(w, m.status, "error", errorData{
		Title:     m.heading,
		Heading:   m.heading,
		Message:   m.message,
		SigninURL: h.URL("/signin"),
	})
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("unable to render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("unable to write page", "page", name, "error", err)
	}
}

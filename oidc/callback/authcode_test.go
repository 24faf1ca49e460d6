// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/scoutlink/osmauth/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthCode(t *testing.T) {
	ctx := context.Background()
	clientID := "test-client-id"
	clientSecret := "test-client-secret"
	tp := oidc.StartTestProvider(t)
	p := testNewProvider(t, clientID, clientSecret, "https://alice.com", tp)
	rw := &SingleRequestReader{}

	tests := []struct {
		name      string
		p         *oidc.Provider
		rw        RequestReader
		sFn       SuccessResponseFunc
		eFn       ErrorResponseFunc
		wantIsErr error
	}{
		{"valid", p, rw, testSuccessFn, testFailFn, nil},
		{"nil-p", nil, rw, testSuccessFn, testFailFn, oidc.ErrInvalidParameter},
		{"nil-rw", p, nil, testSuccessFn, testFailFn, oidc.ErrInvalidParameter},
		{"nil-sFn", p, rw, nil, testFailFn, oidc.ErrInvalidParameter},
		{"nil-eFn", p, rw, testSuccessFn, nil, oidc.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := AuthCode(ctx, tt.p, tt.rw, tt.sFn, tt.eFn)
			if tt.wantIsErr != nil {
				require.Error(err)
				assert.ErrorIs(err, tt.wantIsErr)
				return
			}
			require.NoError(err)
			assert.NotNil(got)
		})
	}
}

func Test_AuthCodeResponses(t *testing.T) {
	ctx := context.Background()
	clientID := "test-client-id"
	clientSecret := "test-client-secret"
	tp := oidc.StartTestProvider(t)
	tp.SetClientCreds(clientID, clientSecret)
	tp.SetExpectedAuthCode("valid-code")

	// httptest TLS servers share a certificate, so the TestProvider's client
	// trusts the callback server too.
	callbackSrv := httptest.NewTLSServer(nil)
	defer callbackSrv.Close()

	redirect := callbackSrv.URL
	tp.SetAllowedRedirectURIs([]string{redirect})

	p := testNewProvider(t, clientID, clientSecret, redirect, tp)

	tests := []struct {
		name                string
		nonceOverride       string
		expireBeforeReturn  bool
		readerOverride      func(r oidc.Request) RequestReader
		badClientSecret     bool
		wantStatusCode      int
		wantError           bool
		wantRespError       string
		wantRespDescription string
	}{
		{
			name:           "basic",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "bad-nonce",
			nonceOverride:  "bad-nonce",
			wantStatusCode: http.StatusUnauthorized,
			wantError:      true,
			wantRespError:  "access_denied",
		},
		{
			name:                "expired",
			expireBeforeReturn:  true,
			wantStatusCode:      http.StatusInternalServerError,
			wantError:           true,
			wantRespError:       "internal-callback-error",
			wantRespDescription: "request is expired",
		},
		{
			name: "state-not-found",
			readerOverride: func(oidc.Request) RequestReader {
				other, _ := oidc.NewRequest(time.Minute, redirect)
				return &SingleRequestReader{Request: other}
			},
			wantStatusCode:      http.StatusInternalServerError,
			wantError:           true,
			wantRespError:       "internal-callback-error",
			wantRespDescription: "not found",
		},
		{
			name: "state-returns-nil",
			readerOverride: func(oidc.Request) RequestReader {
				return &testNilRequestReader{}
			},
			wantStatusCode:      http.StatusInternalServerError,
			wantError:           true,
			wantRespError:       "internal-callback-error",
			wantRespDescription: "not found",
		},
		{
			name: "reader-returns-wrong-request",
			readerOverride: func(oidc.Request) RequestReader {
				other, _ := oidc.NewRequest(time.Minute, redirect)
				return &testWrongRequestReader{r: other}
			},
			wantStatusCode:      http.StatusInternalServerError,
			wantError:           true,
			wantRespError:       "internal-callback-error",
			wantRespDescription: "invalid response state",
		},
		{
			name:                "bad-exchange",
			badClientSecret:     true,
			wantStatusCode:      http.StatusInternalServerError,
			wantError:           true,
			wantRespError:       "internal-callback-error",
			wantRespDescription: "login failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			clock := clockwork.NewFakeClock()
			oidcRequest, err := oidc.NewRequest(time.Minute, redirect, oidc.WithClock(clock))
			require.NoError(err)

			switch {
			case tt.nonceOverride != "":
				tp.SetExpectedAuthNonce(tt.nonceOverride)
			default:
				tp.SetExpectedAuthNonce(oidcRequest.Nonce())
			}
			if tt.badClientSecret {
				tp.SetClientCreds(clientID, "rotated-secret")
				defer tp.SetClientCreds(clientID, clientSecret)
			}
			var reader RequestReader
			switch {
			case tt.readerOverride != nil:
				reader = tt.readerOverride(oidcRequest)
			default:
				reader = &SingleRequestReader{Request: oidcRequest}
			}
			callbackSrv.Config.Handler, err = AuthCode(ctx, p, reader, testSuccessFn, testFailFn)
			require.NoError(err)

			authURL, err := p.AuthURL(ctx, oidcRequest)
			require.NoError(err)
			if tt.expireBeforeReturn {
				clock.Advance(2 * time.Minute)
			}

			resp, err := tp.HTTPClient().Get(authURL)
			require.NoError(err)
			defer resp.Body.Close()
			contents, err := io.ReadAll(resp.Body)
			require.NoError(err)

			assert.Equal(tt.wantStatusCode, resp.StatusCode)

			if tt.wantError {
				var errResp AuthenErrorResponse
				require.NoError(json.Unmarshal(contents, &errResp))
				assert.Equal(tt.wantRespError, errResp.Error)
				if tt.wantRespDescription != "" {
					assert.Contains(errResp.Description, tt.wantRespDescription)
				}
				return
			}
			assert.Equal("login successful", string(contents))
		})
	}
}

func TestSingleRequestReader_Read(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	r, err := oidc.NewRequest(time.Minute, "https://alice.com")
	require.NoError(err)
	sr := &SingleRequestReader{Request: r}

	got, err := sr.Read(context.Background(), r.State())
	require.NoError(err)
	assert.Equal(r, got)

	_, err = sr.Read(context.Background(), "unknown")
	assert.ErrorIs(err, oidc.ErrNotFound)

	_, err = (&SingleRequestReader{}).Read(context.Background(), "unknown")
	assert.ErrorIs(err, oidc.ErrNotFound)
}

// testSuccessFn is a test SuccessResponseFunc
func testSuccessFn(_ string, _ oidc.Token, w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("login successful"))
}

// testFailFn is a test ErrorResponseFunc
func testFailFn(_ string, r *AuthenErrorResponse, e error, w http.ResponseWriter, _ *http.Request) {
	if e != nil {
		w.WriteHeader(http.StatusInternalServerError)
		j, _ := json.Marshal(&AuthenErrorResponse{
			Error:       "internal-callback-error",
			Description: e.Error(),
		})
		_, _ = w.Write(j)
		return
	}
	if r != nil {
		w.WriteHeader(http.StatusUnauthorized)
		j, _ := json.Marshal(r)
		_, _ = w.Write(j)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	j, _ := json.Marshal(&AuthenErrorResponse{
		Error: "unknown-callback-error",
	})
	_, _ = w.Write(j)
}

// testNewProvider creates a new Provider for the TestProvider.
func testNewProvider(t *testing.T, clientID, clientSecret, redirectURL string, tp *oidc.TestProvider) *oidc.Provider {
	t.Helper()
	require := require.New(t)
	_, _, alg := tp.SigningKeys()
	c, err := oidc.NewConfig(
		tp.Addr(),
		clientID,
		oidc.ClientSecret(clientSecret),
		redirectURL,
		oidc.WithSigningAlgs(alg),
		oidc.WithProviderCA(tp.CACert()),
	)
	require.NoError(err)
	p, err := oidc.NewProvider(c)
	require.NoError(err)
	t.Cleanup(p.Done)
	return p
}

type testNilRequestReader struct{}

func (s *testNilRequestReader) Read(context.Context, string) (oidc.Request, error) {
	return nil, nil
}

type testWrongRequestReader struct {
	r oidc.Request
}

func (s *testWrongRequestReader) Read(context.Context, string) (oidc.Request, error) {
	return s.r, nil
}

// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/securepass/internal/platform/constants"
	"github.com/taibuivan/securepass/internal/platform/middleware"
	"github.com/taibuivan/securepass/internal/users/auth"
)

const testClientURL = "http://client.example.com"

type httpFixture struct {
	*fixture
	clock  *clockwork.FakeClock
	server *httptest.Server
	client *http.Client
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()

	f := newFixture(t)
	clock := clockwork.NewFakeClock()
	sessions := auth.NewSessionManager("test-session-secret", false, f.service, clock)
	handler := auth.NewHandler(f.service, sessions, testClientURL)

	router := chi.NewRouter()
	router.Mount("/api/auth", handler.Routes(middleware.Authenticate(f.tokens, sessions)))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &httpFixture{fixture: f, clock: clock, server: server, client: client}
}

func (f *httpFixture) do(t *testing.T, method, path string, body any, bearer string) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	request, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+bearer)
	}

	response, err := f.client.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	decoded := map[string]any{}
	if strings.HasPrefix(response.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(response.Body).Decode(&decoded))
	}

	return response, decoded
}

/*
TestHandler_RegisterLoginMe walks the password flow end to end.
*/
func TestHandler_RegisterLoginMe(t *testing.T) {
	f := newHTTPFixture(t)

	response, body := f.do(t, http.MethodPost, "/api/auth/register",
		map[string]string{"name": "Ann", "email": "ann@example.com", "password": "hunter22"}, "")
	require.Equal(t, http.StatusCreated, response.StatusCode)
	assert.NotEmpty(t, body["token"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "ann@example.com", user["email"])
	assert.NotContains(t, user, "passwordHash")

	response, body = f.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ann@example.com", "password": "hunter22"}, "")
	require.Equal(t, http.StatusOK, response.StatusCode)
	token := body["token"].(string)

	response, body = f.do(t, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "Ann", body["user"].(map[string]any)["name"])
}

/*
TestHandler_StaleBearerOnEntryPoints verifies an expired or forged token left in
the client does not block registering or logging in again.
*/
func TestHandler_StaleBearerOnEntryPoints(t *testing.T) {
	f := newHTTPFixture(t)
	const stale = "expired.or.stale"

	response, body := f.do(t, http.MethodPost, "/api/auth/register",
		map[string]string{"name": "Ann", "email": "ann@example.com", "password": "hunter22"}, stale)
	require.Equal(t, http.StatusCreated, response.StatusCode, body)

	response, body = f.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ann@example.com", "password": "hunter22"}, stale)
	require.Equal(t, http.StatusOK, response.StatusCode, body)
	assert.NotEmpty(t, body["token"])

	response, _ = f.do(t, http.MethodPost, "/api/auth/logout", nil, stale)
	assert.Equal(t, http.StatusOK, response.StatusCode)

	response, body = f.do(t, http.MethodGet, "/api/auth/me", nil, stale)
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
	assert.Equal(t, "TOKEN_INVALID", body["code"])
}

/*
TestHandler_ErrorBodies checks status codes and error envelopes of the auth endpoints.
*/
func TestHandler_ErrorBodies(t *testing.T) {
	f := newHTTPFixture(t)

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		bearer  string
		status  int
		code    string
		message string
	}{
		{"register_missing", http.MethodPost, "/api/auth/register", map[string]string{"email": "a@b.co"}, "", http.StatusBadRequest, "VALIDATION_ERROR", "Please provide all required fields"},
		{"login_unknown", http.MethodPost, "/api/auth/login", map[string]string{"email": "x@y.co", "password": "secret1"}, "", http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid credentials"},
		{"me_anonymous", http.MethodGet, "/api/auth/me", nil, "", http.StatusUnauthorized, "TOKEN_INVALID", ""},
		{"me_bad_token", http.MethodGet, "/api/auth/me", nil, "not.a.jwt", http.StatusUnauthorized, "TOKEN_INVALID", ""},
		{"token_without_session", http.MethodPost, "/api/auth/token", nil, "", http.StatusUnauthorized, "UNAUTHORIZED", "Session required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response, body := f.do(t, tt.method, tt.path, tt.body, tt.bearer)
			assert.Equal(t, tt.status, response.StatusCode)
			assert.Equal(t, tt.code, body["code"])
			if tt.message != "" {
				assert.Equal(t, tt.message, body["message"])
			}
		})
	}
}

/*
TestHandler_InvalidJSON verifies a malformed body is a 400 validation error.
*/
func TestHandler_InvalidJSON(t *testing.T) {
	f := newHTTPFixture(t)

	response, err := f.client.Post(f.server.URL+"/api/auth/login", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer response.Body.Close()
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
}

/*
TestHandler_GoogleFlow walks consent redirect, callback, session use, token exchange and logout.
*/
func TestHandler_GoogleFlow(t *testing.T) {
	f := newHTTPFixture(t)
	f.provider.profile = &auth.OAuthProfile{ProviderID: "google-1", DisplayName: "Gee", Email: "gee@example.com"}

	// 1. Consent redirect stores the state in the session cookie
	response, _ := f.do(t, http.MethodGet, "/api/auth/google", nil, "")
	require.Equal(t, http.StatusFound, response.StatusCode)

	consent, err := url.Parse(response.Header.Get("Location"))
	require.NoError(t, err)
	state := consent.Query().Get("state")
	require.NotEmpty(t, state)

	// 2. Callback establishes the session and lands on the client
	response, _ = f.do(t, http.MethodGet, "/api/auth/google/callback?state="+url.QueryEscape(state)+"&code=abc", nil, "")
	require.Equal(t, http.StatusFound, response.StatusCode)
	assert.Equal(t, testClientURL, response.Header.Get("Location"))

	// 3. The session authenticates /me
	response, body := f.do(t, http.MethodGet, "/api/auth/me", nil, "")
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "gee@example.com", body["user"].(map[string]any)["email"])

	// 4. The session can be exchanged for a bearer token
	response, body = f.do(t, http.MethodPost, "/api/auth/token", nil, "")
	require.Equal(t, http.StatusOK, response.StatusCode)
	claims, err := f.tokens.Verify(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, body["user"].(map[string]any)["id"], claims.UserID)

	// 5. A replayed callback fails because the state was consumed
	response, _ = f.do(t, http.MethodGet, "/api/auth/google/callback?state="+url.QueryEscape(state)+"&code=abc", nil, "")
	require.Equal(t, http.StatusFound, response.StatusCode)
	assert.Equal(t, testClientURL+"/login?error=oauth", response.Header.Get("Location"))

	// 6. Logout clears the session
	response, body = f.do(t, http.MethodPost, "/api/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "Logged out successfully", body["message"])

	response, _ = f.do(t, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
}

/*
TestHandler_GoogleCallbackFailures verifies declined consent and forged state redirect to the login page.
*/
func TestHandler_GoogleCallbackFailures(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"declined", "error=access_denied"},
		{"forged_state", "state=forged&code=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHTTPFixture(t)
			f.provider.profile = &auth.OAuthProfile{ProviderID: "google-1", Email: "gee@example.com"}

			response, _ := f.do(t, http.MethodGet, "/api/auth/google", nil, "")
			require.Equal(t, http.StatusFound, response.StatusCode)

			response, _ = f.do(t, http.MethodGet, "/api/auth/google/callback?"+tt.query, nil, "")
			require.Equal(t, http.StatusFound, response.StatusCode)
			assert.Equal(t, testClientURL+"/login?error=oauth", response.Header.Get("Location"))
			assert.Zero(t, f.users.count())
		})
	}
}

/*
TestHandler_GoogleCallbackStateExpiry verifies a state is honoured within
OAuthStateTTL and refused once it has aged past it.
*/
func TestHandler_GoogleCallbackStateExpiry(t *testing.T) {
	tests := []struct {
		name     string
		wait     time.Duration
		location string
		users    int
	}{
		{"within_ttl", auth.OAuthStateTTL - time.Minute, testClientURL, 1},
		{"expired", auth.OAuthStateTTL + time.Second, testClientURL + "/login?error=oauth", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHTTPFixture(t)
			f.provider.profile = &auth.OAuthProfile{ProviderID: "google-1", Email: "gee@example.com"}

			response, _ := f.do(t, http.MethodGet, "/api/auth/google", nil, "")
			require.Equal(t, http.StatusFound, response.StatusCode)

			consent, err := url.Parse(response.Header.Get("Location"))
			require.NoError(t, err)
			state := consent.Query().Get("state")

			f.clock.Advance(tt.wait)

			response, _ = f.do(t, http.MethodGet, "/api/auth/google/callback?state="+url.QueryEscape(state)+"&code=abc", nil, "")
			require.Equal(t, http.StatusFound, response.StatusCode)
			assert.Equal(t, tt.location, response.Header.Get("Location"))
			assert.Equal(t, tt.users, f.users.count())
		})
	}
}

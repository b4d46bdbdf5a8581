// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// googleUserInfoURL is the OpenID Connect userinfo endpoint.
const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// OAuthProvider is the external sign-in flow used by [Service].
type OAuthProvider interface {
	// AuthCodeURL builds the consent page URL carrying state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for the signed-in profile.
	Exchange(context context.Context, code string) (*OAuthProfile, error)
}

// GoogleProvider implements [OAuthProvider] against Google's OAuth 2.0 endpoints.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// GoogleOption configures a [GoogleProvider].
type GoogleOption func(*GoogleProvider)

// WithGoogleEndpoints points the provider at alternative token and userinfo
// endpoints. Tests use it with an httptest server.
func WithGoogleEndpoints(endpoint oauth2.Endpoint, userInfoURL string) GoogleOption {
	return func(provider *GoogleProvider) {
		provider.config.Endpoint = endpoint
		provider.userInfoURL = userInfoURL
	}
}

// NewGoogleProvider builds the provider for the configured OAuth client.
func NewGoogleProvider(clientID, clientSecret, callbackURL string, opts ...GoogleOption) *GoogleProvider {
	provider := &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
		userInfoURL: googleUserInfoURL,
	}

	for _, opt := range opts {
		opt(provider)
	}

	return provider
}

// AuthCodeURL implements [OAuthProvider].
func (provider *GoogleProvider) AuthCodeURL(state string) string {
	return provider.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// Exchange implements [OAuthProvider].
//
// Profiles without a verified email are rejected, because the email is what
// links a Google identity to an existing password account.
func (provider *GoogleProvider) Exchange(context context.Context, code string) (*OAuthProfile, error) {
	token, err := provider.config.Exchange(context, code)
	if err != nil {
		return nil, fmt.Errorf("google_oauth_exchange_failed: %w", err)
	}

	request, err := http.NewRequestWithContext(context, http.MethodGet, provider.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("google_oauth_userinfo_request_failed: %w", err)
	}

	response, err := provider.config.Client(context, token).Do(request)
	if err != nil {
		return nil, fmt.Errorf("google_oauth_userinfo_failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google_oauth_userinfo_failed: status %d", response.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(response.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("google_oauth_userinfo_decode_failed: %w", err)
	}

	if info.Sub == "" {
		return nil, errors.New("google_oauth_userinfo_missing_subject")
	}

	if info.Email == "" || !info.EmailVerified {
		return nil, errors.New("google_oauth_email_not_verified")
	}

	return &OAuthProfile{
		ProviderID:  info.Sub,
		DisplayName: info.Name,
		Email:       info.Email,
	}, nil
}

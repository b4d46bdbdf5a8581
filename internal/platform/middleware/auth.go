// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taibuivan/securepass/internal/platform/apperr"
	"github.com/taibuivan/securepass/internal/platform/constants"
	"github.com/taibuivan/securepass/internal/platform/ctxutil"
	"github.com/taibuivan/securepass/internal/platform/respond"
	"github.com/taibuivan/securepass/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify bearer tokens in middleware.
type TokenVerifier interface {
	Verify(token string) (*sec.AuthClaims, error)
}

// SessionResolver turns a browser session cookie into an identity.
//
// It returns (nil, nil) when the request carries no usable session.
type SessionResolver interface {
	ResolveSession(request *http.Request) (*sec.AuthenticatedUser, error)
}

// identitySlot lets [StructuredLogger] see the identity attached further down the chain.
type identitySlot struct {
	user *sec.AuthenticatedUser
}

type identitySlotKey struct{}

func withIdentitySlot(ctx context.Context) (context.Context, *identitySlot) {
	slot := &identitySlot{}
	return context.WithValue(ctx, identitySlotKey{}, slot), slot
}

func attachUser(request *http.Request, user *sec.AuthenticatedUser) *http.Request {
	if slot, ok := request.Context().Value(identitySlotKey{}).(*identitySlot); ok {
		slot.user = user
	}
	return request.WithContext(ctxutil.WithAuthUser(request.Context(), user))
}

/*
Authenticate resolves the caller's identity from a bearer token or a session cookie.

Flow:
 1. 'Authorization: Bearer <token>' present: verify it; any failure is 401 TOKEN_INVALID.
 2. Otherwise ask the [SessionResolver] (if any) for a session identity.
 3. Neither: the request proceeds as anonymous.

Parameters:
  - verifier: TokenVerifier
  - sessions: SessionResolver (may be nil)

Returns:
  - An [http.Handler] middleware.
*/
func Authenticate(verifier TokenVerifier, sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// 1. Bearer token
			if authHeader != "" {
				scheme, token, found := strings.Cut(authHeader, " ")
				if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
					respond.Error(writer, request, apperr.TokenInvalid(nil))
					return
				}

				claims, err := verifier.Verify(strings.TrimSpace(token))
				if err != nil {
					respond.Error(writer, request, apperr.TokenInvalid(err))
					return
				}

				user := &sec.AuthenticatedUser{UserID: claims.UserID, Method: sec.AuthMethodBearer}
				next.ServeHTTP(writer, attachUser(request, user))
				return
			}

			// 2. Session cookie
			if sessions != nil {
				user, err := sessions.ResolveSession(request)
				if err != nil {
					respond.Error(writer, request, err)
					return
				}
				if user != nil {
					next.ServeHTTP(writer, attachUser(request, user))
					return
				}
			}

			// 3. Anonymous
			next.ServeHTTP(writer, request)
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.TokenInvalid(nil))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireSession blocks requests that did not authenticate with a session cookie.
// Token exchange uses it so a bearer token cannot mint another bearer token.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		user := ctxutil.GetAuthUser(request.Context())
		if user == nil || user.Method != sec.AuthMethodSession {
			respond.Error(writer, request, apperr.Unauthorized("Session required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

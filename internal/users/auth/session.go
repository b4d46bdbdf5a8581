// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"

	"github.com/taibuivan/securepass/internal/platform/constants"
	"github.com/taibuivan/securepass/internal/platform/sec"
)

// Session value keys.
const (
	sessionKeyUserID      = "user_id"
	sessionKeyOAuthState  = "oauth_state"
	sessionKeyOAuthIssued = "oauth_state_issued"
)

// UserLoader rehydrates the account stored in a session.
type UserLoader interface {
	CurrentUser(context context.Context, userID string) (*User, error)
}

// SessionManager keeps the browser identity in a signed cookie.
//
// The cookie holds the user id and, while a Google sign-in is in flight, the
// pending OAuth state. Nothing else is stored server side.
type SessionManager struct {
	store sessions.Store
	users UserLoader
	clock clockwork.Clock
}

/*
NewSessionManager builds a [SessionManager] over a gorilla cookie store.

Parameters:
  - secret: string (SESSION_SECRET, signs the cookie)
  - secure: bool (mark the cookie Secure, production only)
  - users: UserLoader
  - clock: clockwork.Clock (ages the OAuth state; nil uses the wall clock)

Returns:
  - *SessionManager
*/
func NewSessionManager(secret string, secure bool, users UserLoader, clock clockwork.Clock) *SessionManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(constants.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &SessionManager{store: store, users: users, clock: clock}
}

// session returns the current session. A cookie that fails verification is
// discarded and a fresh session is returned in its place.
func (manager *SessionManager) session(request *http.Request) *sessions.Session {
	session, err := manager.store.Get(request, constants.SessionCookieName)
	if err != nil {
		session, _ = manager.store.New(request, constants.SessionCookieName)
		session.IsNew = true
		session.Values = map[any]any{}
	}
	return session
}

// SetUser binds userID to the browser session.
func (manager *SessionManager) SetUser(writer http.ResponseWriter, request *http.Request, userID string) error {
	session := manager.session(request)
	delete(session.Values, sessionKeyOAuthState)
	delete(session.Values, sessionKeyOAuthIssued)
	session.Values[sessionKeyUserID] = userID
	return session.Save(request, writer)
}

// Clear expires the session cookie.
func (manager *SessionManager) Clear(writer http.ResponseWriter, request *http.Request) error {
	session := manager.session(request)
	session.Values = map[any]any{}
	session.Options.MaxAge = -1
	return session.Save(request, writer)
}

// SetOAuthState remembers the state of a Google sign-in in progress, stamped
// with the time it was issued.
func (manager *SessionManager) SetOAuthState(writer http.ResponseWriter, request *http.Request, state string) error {
	session := manager.session(request)
	session.Values[sessionKeyOAuthState] = state
	session.Values[sessionKeyOAuthIssued] = manager.clock.Now().Unix()
	return session.Save(request, writer)
}

// PopOAuthState returns the pending state and removes it, so a callback can be
// completed once. A state older than [OAuthStateTTL], or one without an issue
// time, is dropped and "" is returned.
func (manager *SessionManager) PopOAuthState(writer http.ResponseWriter, request *http.Request) (string, error) {
	session := manager.session(request)

	state, _ := session.Values[sessionKeyOAuthState].(string)
	issued, stamped := session.Values[sessionKeyOAuthIssued].(int64)
	delete(session.Values, sessionKeyOAuthState)
	delete(session.Values, sessionKeyOAuthIssued)

	if err := session.Save(request, writer); err != nil {
		return "", err
	}

	if !stamped || manager.clock.Since(time.Unix(issued, 0)) > OAuthStateTTL {
		return "", nil
	}
	return state, nil
}

/*
ResolveSession implements the session half of request authentication.

Description: A missing or unverifiable cookie, or one naming an account that
no longer exists, yields an anonymous request rather than an error.

Returns:
  - *sec.AuthenticatedUser: Identity, or nil when anonymous
  - err: Storage failures only
*/
func (manager *SessionManager) ResolveSession(request *http.Request) (*sec.AuthenticatedUser, error) {
	session := manager.session(request)

	userID, _ := session.Values[sessionKeyUserID].(string)
	if userID == "" {
		return nil, nil
	}

	user, err := manager.users.CurrentUser(request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &sec.AuthenticatedUser{UserID: user.ID, Method: sec.AuthMethodSession}, nil
}

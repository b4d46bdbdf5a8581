// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/securepass/internal/platform/ctxutil"
	"github.com/taibuivan/securepass/internal/platform/middleware"
	requestutil "github.com/taibuivan/securepass/internal/platform/request"
	"github.com/taibuivan/securepass/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// Password registration and login return a bearer token. Google sign-in
// establishes a cookie session instead, which can later be exchanged for a
// token through POST /token.
type Handler struct {
	authService *Service
	sessions    *SessionManager
	clientURL   string
}

// NewHandler constructs a new [Handler].
//
// clientURL is where the browser lands after a Google sign-in.
func NewHandler(service *Service, sessions *SessionManager, clientURL string) *Handler {
	return &Handler{authService: service, sessions: sessions, clientURL: clientURL}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// authenticate resolves the caller and is applied to /me and /token only.
// The entry points stay outside it, so a stale bearer token never blocks a
// fresh login.
//
// # Endpoints
//   - POST /register        : Creates a new account.
//   - POST /login           : Authenticates and returns a JWT.
//   - GET  /google          : Redirects to the Google consent page.
//   - GET  /google/callback : Completes Google sign-in.
//   - POST /logout          : Clears the session cookie.
//   - GET  /me              : Returns the caller's profile.
//   - POST /token           : Exchanges a session for a JWT.
func (handler *Handler) Routes(authenticate func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Get("/google", handler.googleBegin)
	router.Get("/google/callback", handler.googleCallback)
	router.Post("/logout", handler.logout)

	// Protected endpoints
	router.Group(func(protected chi.Router) {
		protected.Use(authenticate)
		protected.With(middleware.RequireAuth).Get("/me", handler.me)
		protected.With(middleware.RequireSession).Post("/token", handler.token)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	User PublicUser `json:"user"`
}

/*
Register handles the creation of a new user account.

POST /api/auth/register

Request:
  - Body: registerRequest (Name, Email, Password)

Response:
  - 201: AuthResult: Token and user profile
  - 400: ValidationError or DuplicateAccount
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Register(request.Context(), RegisterInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

/*
Login authenticates a user with email and password.

POST /api/auth/login

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: AuthResult: Token and user profile
  - 400: ValidationError or InvalidCredentials
  - 429: RateLimited: Too many failed attempts for this email
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), LoginInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
GoogleBegin starts the Google sign-in by storing a fresh state in the session.

GET /api/auth/google

Response:
  - 302: Redirect to the Google consent page
*/
func (handler *Handler) googleBegin(writer http.ResponseWriter, request *http.Request) {
	consentURL, state, err := handler.authService.BeginOAuth()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.sessions.SetOAuthState(writer, request, state); err != nil {
		respond.Error(writer, request, AuthProviderError(err))
		return
	}

	http.Redirect(writer, request, consentURL, http.StatusFound)
}

/*
GoogleCallback completes the Google sign-in.

GET /api/auth/google/callback

Request:
  - Query: state, code (or error when the user declined)

Response:
  - 302: Redirect to the client, with a session cookie on success or
    '/login?error=oauth' on failure
*/
func (handler *Handler) googleCallback(writer http.ResponseWriter, request *http.Request) {
	logger := ctxutil.GetLogger(request.Context())
	query := request.URL.Query()

	expected, err := handler.sessions.PopOAuthState(writer, request)
	if err != nil {
		logger.WarnContext(request.Context(), "oauth_state_read_failed", slog.Any("error", err))
	}

	if providerError := query.Get("error"); providerError != "" {
		logger.InfoContext(request.Context(), "oauth_declined", slog.String("reason", providerError))
		handler.redirectFailure(writer, request)
		return
	}

	user, err := handler.authService.CompleteOAuth(request.Context(), expected, query.Get("state"), query.Get("code"))
	if err != nil {
		logger.WarnContext(request.Context(), "oauth_failed", slog.Any("error", err))
		handler.redirectFailure(writer, request)
		return
	}

	if err := handler.sessions.SetUser(writer, request, user.ID); err != nil {
		logger.ErrorContext(request.Context(), "session_save_failed", slog.Any("error", err))
		handler.redirectFailure(writer, request)
		return
	}

	http.Redirect(writer, request, handler.clientURL, http.StatusFound)
}

func (handler *Handler) redirectFailure(writer http.ResponseWriter, request *http.Request) {
	target, err := url.JoinPath(handler.clientURL, "login")
	if err != nil {
		target = handler.clientURL
	}
	http.Redirect(writer, request, target+"?error=oauth", http.StatusFound)
}

/*
Me returns the profile of the authenticated caller.

GET /api/auth/me

Response:
  - 200: { user }
  - 401: TokenInvalid
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.CurrentUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, meResponse{User: user.Public()})
}

/*
Token exchanges a browser session for a bearer token.

POST /api/auth/token

Response:
  - 200: AuthResult
  - 401: Session required
*/
func (handler *Handler) token(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.IssueToken(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
Logout clears the browser session. Bearer tokens stay valid until expiry.

POST /api/auth/logout

Response:
  - 200: { message }
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if err := handler.sessions.Clear(writer, request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, msgLoggedOut)
}

// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/securepass/internal/platform/apperr"
	"github.com/taibuivan/securepass/internal/platform/ctxutil"
	"github.com/taibuivan/securepass/internal/platform/metrics"
	"github.com/taibuivan/securepass/internal/platform/sec"
	"github.com/taibuivan/securepass/internal/platform/validate"
	"github.com/taibuivan/securepass/pkg/pointer"
	"github.com/taibuivan/securepass/pkg/uuid"
)

// # Contracts & Types

// TokenIssuer defines the contract for generating bearer tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// ThrottlePolicy bounds failed password logins per email.
type ThrottlePolicy struct {
	MaxAttempts int
	Window      time.Duration
}

// Service implements the authentication use cases.
type Service struct {
	userRepository    UserRepository
	attemptRepository LoginAttemptRepository
	tokenIssuer       TokenIssuer
	oauthProvider     OAuthProvider
	throttle          ThrottlePolicy
	metrics           *metrics.DomainMetrics
}

// NewService constructs a new [Service] with necessary dependencies.
//
// domainMetrics may be nil.
func NewService(
	userRepo UserRepository,
	attemptRepo LoginAttemptRepository,
	tokens TokenIssuer,
	oauth OAuthProvider,
	throttle ThrottlePolicy,
	domainMetrics *metrics.DomainMetrics,
) *Service {
	return &Service{
		userRepository:    userRepo,
		attemptRepository: attemptRepo,
		tokenIssuer:       tokens,
		oauthProvider:     oauth,
		throttle:          throttle,
		metrics:           domainMetrics,
	}
}

// # Registration Flow

// RegisterInput holds the data required to open a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

/*
Register validates, hashes, and persists a brand new user account.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *AuthResult: Token and public profile
  - err: ValidationError, ErrDuplicateAccount or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := NormalizeEmail(input.Email)

	// 1. Presence first, with one message for any missing field
	if err := validate.New().
		Required(FieldName, name).
		Required(FieldEmail, email).
		Required(FieldPassword, input.Password).
		Fail(msgRegisterMissing); err != nil {
		return nil, err
	}

	// 2. Shape
	if err := validate.New().MinLen(FieldPassword, input.Password, MinPasswordLength).Fail(msgPasswordShort); err != nil {
		return nil, err
	}
	if len(input.Password) > sec.MaxPasswordBytes {
		return nil, apperr.ValidationError(msgPasswordLong, apperr.FieldError{Field: FieldPassword, Message: msgPasswordLong})
	}
	if err := validate.New().Email(FieldEmail, email).Fail(msgEmailInvalid); err != nil {
		return nil, err
	}

	// 3. Uniqueness. The unique constraint still guards the race.
	_, err := service.userRepository.FindByEmail(context, email)
	switch {
	case err == nil:
		service.metrics.AuthAttempt(metrics.MethodRegister, metrics.OutcomeFailure)
		return nil, ErrDuplicateAccount
	case !errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: pointer.To(hashedPassword),
	}

	if err := service.userRepository.Create(context, user); err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			service.metrics.AuthAttempt(metrics.MethodRegister, metrics.OutcomeFailure)
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	result, err := service.issue(user)
	if err != nil {
		return nil, err
	}

	service.metrics.AuthAttempt(metrics.MethodRegister, metrics.OutcomeSuccess)
	ctxutil.GetLogger(context).InfoContext(context, "user_registered", slog.String("user_id", user.ID))

	return result, nil
}

// # Authentication Flow

// LoginInput defines credentials for a password authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// dummyHash is compared against when the email is unknown, so a miss costs as
// much as a wrong password.
var dummyHash = sync.OnceValue(func() string {
	hash, err := sec.HashPassword("securepass-timing-equalizer")
	if err != nil {
		return ""
	}
	return hash
})

/*
Login validates user credentials and issues a bearer token.

Description: Unknown email, wrong password and Google-only accounts all yield
the same ErrInvalidCredentials. Repeated failures lock the email for the
throttle window.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *AuthResult: Token and public profile
  - err: ValidationError, ErrInvalidCredentials, RateLimited or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*AuthResult, error) {
	email := NormalizeEmail(input.Email)

	if err := validate.New().
		Required(FieldEmail, email).
		Required(FieldPassword, input.Password).
		Fail(msgLoginMissing); err != nil {
		return nil, err
	}

	// 1. Lockout check
	if locked := service.lockedFor(context, email); locked > 0 {
		service.metrics.AuthAttempt(metrics.MethodPassword, metrics.OutcomeLocked)
		return nil, apperr.RateLimited(int(math.Ceil(locked.Seconds())))
	}

	// 2. Lookup and verify
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// Google-only accounts have no hash; they fail like unknown emails.
	var passwordHash string
	if user != nil {
		passwordHash = pointer.Val(user.PasswordHash)
	}

	if passwordHash == "" {
		sec.CheckPasswordHash(input.Password, dummyHash())
		return nil, service.loginFailed(context, email)
	}

	if !sec.CheckPasswordHash(input.Password, passwordHash) {
		return nil, service.loginFailed(context, email)
	}

	// 3. Success clears the counter
	if err := service.attemptRepository.Reset(context, email); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "login_attempts_reset_failed", slog.Any("error", err))
	}

	result, err := service.issue(user)
	if err != nil {
		return nil, err
	}

	service.metrics.AuthAttempt(metrics.MethodPassword, metrics.OutcomeSuccess)
	return result, nil
}

// lockedFor returns how long email stays locked, or zero.
//
// A throttle store outage fails open: login keeps working without lockout.
func (service *Service) lockedFor(context context.Context, email string) time.Duration {
	failures, remaining, err := service.attemptRepository.Failures(context, email)
	if err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "login_attempts_lookup_failed", slog.Any("error", err))
		return 0
	}

	if failures < service.throttle.MaxAttempts {
		return 0
	}

	if remaining <= 0 {
		remaining = time.Second
	}
	return remaining
}

func (service *Service) loginFailed(context context.Context, email string) error {
	if err := service.attemptRepository.RecordFailure(context, email, service.throttle.Window); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "login_attempts_record_failed", slog.Any("error", err))
	}

	service.metrics.AuthAttempt(metrics.MethodPassword, metrics.OutcomeFailure)
	return ErrInvalidCredentials
}

// # External Identity

/*
ResolveOAuthUser maps a provider profile to an account.

Description: An account already linked to the provider id, or registered under
the same email, is returned (and linked if needed). Otherwise a new account
without a password is created. Every failure is an AuthProviderError, and no
partial account is left behind.

Parameters:
  - context: context.Context
  - profile: OAuthProfile

Returns:
  - *User: Resolved account
  - err: AuthProviderError
*/
func (service *Service) ResolveOAuthUser(context context.Context, profile OAuthProfile) (*User, error) {
	if profile.ProviderID == "" {
		return nil, AuthProviderError(errors.New("auth_service_oauth_missing_provider_id"))
	}

	email := NormalizeEmail(profile.Email)
	logger := ctxutil.GetLogger(context)

	user, err := service.userRepository.FindByEmailOrProviderID(context, email, profile.ProviderID)
	switch {
	case err == nil:
		if user.GoogleID == nil {
			if err := service.userRepository.LinkProvider(context, user.ID, profile.ProviderID); err != nil {
				return nil, AuthProviderError(fmt.Errorf("auth_service_oauth_link_failed: %w", err))
			}
			user.GoogleID = pointer.To(profile.ProviderID)
			logger.InfoContext(context, "oauth_user_linked", slog.String("user_id", user.ID))
		}
		return user, nil

	case !errors.Is(err, ErrUserNotFound):
		return nil, AuthProviderError(fmt.Errorf("auth_service_oauth_lookup_failed: %w", err))
	}

	name := strings.TrimSpace(profile.DisplayName)
	if name == "" {
		name = email
	}

	user = &User{
		ID:       uuid.New(),
		Name:     name,
		Email:    email,
		GoogleID: pointer.To(profile.ProviderID),
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, AuthProviderError(fmt.Errorf("auth_service_oauth_create_failed: %w", err))
	}

	logger.InfoContext(context, "oauth_user_created", slog.String("user_id", user.ID))
	return user, nil
}

/*
BeginOAuth starts a Google sign-in.

Returns:
  - string: Consent page URL
  - string: State value the caller must keep for [Service.CompleteOAuth]
  - err: AuthProviderError if no random state can be drawn
*/
func (service *Service) BeginOAuth() (string, string, error) {
	state, err := sec.GenerateSecureToken(OAuthStateLength)
	if err != nil {
		return "", "", AuthProviderError(err)
	}
	return service.oauthProvider.AuthCodeURL(state), state, nil
}

/*
CompleteOAuth finishes a Google sign-in started by [Service.BeginOAuth].

Parameters:
  - context: context.Context
  - expectedState: string (state kept by the caller)
  - receivedState: string (state echoed by the provider)
  - code: string (authorization code)

Returns:
  - *User: Resolved account
  - err: AuthProviderError on state mismatch or provider failure
*/
func (service *Service) CompleteOAuth(context context.Context, expectedState, receivedState, code string) (*User, error) {
	if expectedState == "" || subtle.ConstantTimeCompare([]byte(expectedState), []byte(receivedState)) != 1 {
		service.metrics.AuthAttempt(metrics.MethodGoogle, metrics.OutcomeFailure)
		return nil, AuthProviderError(errors.New("auth_service_oauth_state_mismatch"))
	}

	if code == "" {
		service.metrics.AuthAttempt(metrics.MethodGoogle, metrics.OutcomeFailure)
		return nil, AuthProviderError(errors.New("auth_service_oauth_missing_code"))
	}

	profile, err := service.oauthProvider.Exchange(context, code)
	if err != nil {
		service.metrics.AuthAttempt(metrics.MethodGoogle, metrics.OutcomeFailure)
		return nil, AuthProviderError(err)
	}

	user, err := service.ResolveOAuthUser(context, *profile)
	if err != nil {
		service.metrics.AuthAttempt(metrics.MethodGoogle, metrics.OutcomeFailure)
		return nil, err
	}

	service.metrics.AuthAttempt(metrics.MethodGoogle, metrics.OutcomeSuccess)
	return user, nil
}

// # Session Support

/*
CurrentUser rehydrates the account behind an authenticated request.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Account
  - err: ErrUserNotFound or storage errors
*/
func (service *Service) CurrentUser(context context.Context, userID string) (*User, error) {
	if _, ok := uuid.Normalize(userID); !ok {
		return nil, ErrUserNotFound
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_current_user_failed: %w", err)
	}

	return user, nil
}

/*
IssueToken mints a bearer token for an already authenticated account.

Description: Lets a browser that signed in with Google obtain a token for
API clients that do not carry cookies.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *AuthResult: Token and public profile
  - err: ErrUserNotFound or signing failures
*/
func (service *Service) IssueToken(context context.Context, userID string) (*AuthResult, error) {
	user, err := service.CurrentUser(context, userID)
	if err != nil {
		return nil, err
	}
	return service.issue(user)
}

func (service *Service) issue(user *User) (*AuthResult, error) {
	token, err := service.tokenIssuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/taibuivan/securepass/internal/users/auth"
	"github.com/taibuivan/securepass/pkg/pointer"
)

// # In-memory user repository

type memoryUsers struct {
	mu    sync.Mutex
	byID  map[string]*auth.User
	err   error
	races bool
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[string]*auth.User{}}
}

func clone(user *auth.User) *auth.User {
	copied := *user
	return &copied
}

func (repo *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.err != nil {
		return nil, repo.err
	}
	if user, ok := repo.byID[id]; ok {
		return clone(user), nil
	}
	return nil, auth.ErrUserNotFound
}

func (repo *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.err != nil {
		return nil, repo.err
	}
	for _, user := range repo.byID {
		if user.Email == email {
			return clone(user), nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (repo *memoryUsers) FindByEmailOrProviderID(_ context.Context, email, providerID string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.err != nil {
		return nil, repo.err
	}
	var byEmail *auth.User
	for _, user := range repo.byID {
		if user.GoogleID != nil && *user.GoogleID == providerID {
			return clone(user), nil
		}
		if user.Email == email {
			byEmail = user
		}
	}
	if byEmail != nil {
		return clone(byEmail), nil
	}
	return nil, auth.ErrUserNotFound
}

func (repo *memoryUsers) Create(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.err != nil {
		return repo.err
	}
	if repo.races {
		return auth.ErrDuplicateAccount
	}
	for _, existing := range repo.byID {
		if existing.Email == user.Email {
			return auth.ErrDuplicateAccount
		}
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	repo.byID[user.ID] = clone(user)
	return nil
}

func (repo *memoryUsers) LinkProvider(_ context.Context, userID, providerID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.err != nil {
		return repo.err
	}
	if user, ok := repo.byID[userID]; ok && user.GoogleID == nil {
		user.GoogleID = pointer.To(providerID)
	}
	return nil
}

func (repo *memoryUsers) count() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.byID)
}

// # In-memory login attempts

type memoryAttempts struct {
	mu       sync.Mutex
	failures map[string]int
	err      error
}

func newMemoryAttempts() *memoryAttempts {
	return &memoryAttempts{failures: map[string]int{}}
}

func (repo *memoryAttempts) Failures(_ context.Context, email string) (int, time.Duration, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.err != nil {
		return 0, 0, repo.err
	}
	return repo.failures[email], 90 * time.Second, nil
}

func (repo *memoryAttempts) RecordFailure(_ context.Context, email string, _ time.Duration) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.err != nil {
		return repo.err
	}
	repo.failures[email]++
	return nil
}

func (repo *memoryAttempts) Reset(_ context.Context, email string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.failures, email)
	return nil
}

func (repo *memoryAttempts) get(email string) int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.failures[email]
}

// # Stub identity provider

type stubProvider struct {
	profile *auth.OAuthProfile
	err     error
	codes   []string
}

func (provider *stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/consent?state=" + url.QueryEscape(state)
}

func (provider *stubProvider) Exchange(_ context.Context, code string) (*auth.OAuthProfile, error) {
	provider.codes = append(provider.codes, code)
	if provider.err != nil {
		return nil, provider.err
	}
	return provider.profile, nil
}

// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package credential_test

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/securepass/internal/platform/apperr"
	"github.com/taibuivan/securepass/internal/platform/metrics"
	"github.com/taibuivan/securepass/internal/platform/sec"
	"github.com/taibuivan/securepass/internal/vault/credential"
	"github.com/taibuivan/securepass/pkg/pointer"
)

const (
	ownerA = "0190a1b2-0000-7000-8000-00000000000a"
	ownerB = "0190a1b2-0000-7000-8000-00000000000b"
)

// # In-memory repository

type memoryRepository struct {
	mu    sync.Mutex
	rows  map[string]*credential.Credential
	clock time.Time
	err   error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		rows:  map[string]*credential.Credential{},
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (repo *memoryRepository) tick() time.Time {
	repo.clock = repo.clock.Add(time.Second)
	return repo.clock
}

func (repo *memoryRepository) List(_ context.Context, userID string) ([]*credential.Credential, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.err != nil {
		return nil, repo.err
	}
	out := []*credential.Credential{}
	for _, row := range repo.rows {
		if row.UserID == userID {
			copied := *row
			copied.EncryptedPassword = ""
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (repo *memoryRepository) FindByID(_ context.Context, userID, id string) (*credential.Credential, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.err != nil {
		return nil, repo.err
	}
	row, ok := repo.rows[id]
	if !ok || row.UserID != userID {
		return nil, credential.ErrCredentialNotFound
	}
	copied := *row
	return &copied, nil
}

func (repo *memoryRepository) Create(_ context.Context, c *credential.Credential) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.err != nil {
		return repo.err
	}
	now := repo.tick()
	c.CreatedAt, c.UpdatedAt = now, now
	copied := *c
	repo.rows[c.ID] = &copied
	return nil
}

func (repo *memoryRepository) Update(_ context.Context, c *credential.Credential) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	row, ok := repo.rows[c.ID]
	if !ok || row.UserID != c.UserID {
		return credential.ErrCredentialNotFound
	}
	c.UpdatedAt = repo.tick()
	copied := *c
	repo.rows[c.ID] = &copied
	return nil
}

func (repo *memoryRepository) Delete(_ context.Context, userID, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	row, ok := repo.rows[id]
	if !ok || row.UserID != userID {
		return credential.ErrCredentialNotFound
	}
	delete(repo.rows, id)
	return nil
}

func (repo *memoryRepository) envelope(id string) string {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.rows[id].EncryptedPassword
}

func (repo *memoryRepository) corrupt(id, envelope string) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.rows[id].EncryptedPassword = envelope
}

// brokenCipher fails every operation.
type brokenCipher struct{}

func (brokenCipher) Encrypt(string) (string, error) { return "", sec.ErrEncryptionFailure }
func (brokenCipher) Decrypt(string) (string, error) { return "", sec.ErrDecryptionFailure }

// # Fixture

type fixture struct {
	service *credential.Service
	repo    *memoryRepository
	metrics *metrics.DomainMetrics
}

func newFixture(t *testing.T, cipher credential.Cipher) *fixture {
	t.Helper()
	if cipher == nil {
		cipher = sec.NewCredentialCipher("test-secret", sec.PadKeyDeriver{})
	}
	repo := newMemoryRepository()
	domainMetrics := metrics.NewDomainMetrics(prometheus.NewRegistry())
	return &fixture{
		service: credential.NewService(repo, cipher, domainMetrics),
		repo:    repo,
		metrics: domainMetrics,
	}
}

func (f *fixture) create(t *testing.T, owner string, input credential.CreateInput) *credential.Summary {
	t.Helper()
	summary, err := f.service.Create(context.Background(), owner, input)
	require.NoError(t, err)
	return summary
}

// sealWith encrypts plaintext under a different secret than the fixture uses.
func sealWith(t *testing.T, secret, plaintext string) string {
	t.Helper()
	envelope, err := sec.NewCredentialCipher(secret, sec.PadKeyDeriver{}).Encrypt(plaintext)
	require.NoError(t, err)
	return envelope
}

func requireAppError(t *testing.T, err error, status int, code string) *apperr.AppError {
	t.Helper()
	ae := apperr.As(err)
	require.NotNil(t, ae, "expected AppError, got %v", err)
	assert.Equal(t, status, ae.HTTPStatus)
	assert.Equal(t, code, ae.Code)
	return ae
}

// # Create

/*
TestCreate_RoundTrip verifies the stored envelope is not plaintext and reads back.
*/
func TestCreate_RoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	summary := f.create(t, ownerA, credential.CreateInput{
		Site: "  github.com ", Username: "ann", Password: "hunter2", Notes: pointer.To(" work account "),
	})

	assert.Equal(t, "github.com", summary.Site)
	assert.Equal(t, credential.CategoryGeneral, summary.Category)
	assert.Equal(t, "work account", pointer.Val(summary.Notes))

	envelope := f.repo.envelope(summary.ID)
	assert.NotContains(t, envelope, "hunter2")
	assert.Len(t, strings.SplitN(envelope, ":", 2)[0], 32)

	detail, err := f.service.Get(ctx, ownerA, summary.ID)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", detail.Password)
	assert.Equal(t, summary.ID, detail.ID)
}

/*
TestCreate_Validation checks required fields and the category set.
*/
func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   credential.CreateInput
		message string
	}{
		{"missing_site", credential.CreateInput{Username: "u", Password: "p"}, "Site, username, and password are required"},
		{"blank_username", credential.CreateInput{Site: "s", Username: "   ", Password: "p"}, "Site, username, and password are required"},
		{"missing_password", credential.CreateInput{Site: "s", Username: "u"}, "Site, username, and password are required"},
		{"bad_category", credential.CreateInput{Site: "s", Username: "u", Password: "p", Category: "crypto"}, "Invalid category"},
		{"long_site", credential.CreateInput{Site: strings.Repeat("s", credential.MaxSiteLength+1), Username: "u", Password: "p"}, "Field is too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)

			_, err := f.service.Create(context.Background(), ownerA, tt.input)
			ae := requireAppError(t, err, http.StatusBadRequest, "VALIDATION_ERROR")
			assert.Equal(t, tt.message, ae.Message)
		})
	}
}

/*
TestCreate_EveryCategory verifies each of the six categories is accepted.
*/
func TestCreate_EveryCategory(t *testing.T) {
	f := newFixture(t, nil)

	for _, category := range credential.Categories {
		summary := f.create(t, ownerA, credential.CreateInput{Site: "s", Username: "u", Password: "p", Category: string(category)})
		assert.Equal(t, category, summary.Category)
	}
}

/*
TestCreate_EncryptionFailure verifies a cipher failure is a 500 and nothing is stored.
*/
func TestCreate_EncryptionFailure(t *testing.T) {
	f := newFixture(t, brokenCipher{})

	_, err := f.service.Create(context.Background(), ownerA, credential.CreateInput{Site: "s", Username: "u", Password: "p"})
	requireAppError(t, err, http.StatusInternalServerError, "INTERNAL_ERROR")
	assert.ErrorIs(t, err, sec.ErrEncryptionFailure)

	list, err := f.service.List(context.Background(), ownerA)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CryptoFailures.WithLabelValues(metrics.OperationEncrypt)))
}

// # Read

/*
TestList_NewestFirstAndScoped verifies ordering and owner isolation.
*/
func TestList_NewestFirstAndScoped(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first := f.create(t, ownerA, credential.CreateInput{Site: "one", Username: "u", Password: "p"})
	second := f.create(t, ownerA, credential.CreateInput{Site: "two", Username: "u", Password: "p"})
	f.create(t, ownerB, credential.CreateInput{Site: "other", Username: "u", Password: "p"})

	list, err := f.service.List(ctx, ownerA)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	empty, err := f.service.List(ctx, "0190a1b2-0000-7000-8000-0000000000cc")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

/*
TestOwnership verifies another user's credential is reported as not found everywhere.
*/
func TestOwnership(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owned := f.create(t, ownerA, credential.CreateInput{Site: "s", Username: "u", Password: "p"})

	_, err := f.service.Get(ctx, ownerB, owned.ID)
	assert.ErrorIs(t, err, credential.ErrCredentialNotFound)

	_, err = f.service.Update(ctx, ownerB, owned.ID, credential.UpdateInput{Site: "stolen"})
	assert.ErrorIs(t, err, credential.ErrCredentialNotFound)

	err = f.service.Delete(ctx, ownerB, owned.ID)
	assert.ErrorIs(t, err, credential.ErrCredentialNotFound)

	detail, err := f.service.Get(ctx, ownerA, owned.ID)
	require.NoError(t, err)
	assert.Equal(t, "s", detail.Site)
}

/*
TestGet_InvalidID verifies ids that are not UUIDs are a plain 404.
*/
func TestGet_InvalidID(t *testing.T) {
	f := newFixture(t, nil)

	for _, id := range []string{"", "123", "not-a-uuid", "../etc/passwd"} {
		_, err := f.service.Get(context.Background(), ownerA, id)
		ae := requireAppError(t, err, http.StatusNotFound, "NOT_FOUND")
		assert.Equal(t, "Credential not found", ae.Message)
	}
}

/*
TestGet_DecryptFailure verifies a damaged envelope is a 500 data integrity error.
*/
func TestGet_DecryptFailure(t *testing.T) {
	tests := []struct {
		name     string
		envelope string
	}{
		{"malformed", "no-colon-here"},
		{"unaligned", "000102030405060708090a0b0c0d0e0f:abcd"},
		{"not_hex", "zz:yy"},
		{"wrong_key", sealWith(t, "other-secret", "hunter2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			owned := f.create(t, ownerA, credential.CreateInput{Site: "s", Username: "u", Password: "p"})
			f.repo.corrupt(owned.ID, tt.envelope)

			_, err := f.service.Get(context.Background(), ownerA, owned.ID)
			ae := requireAppError(t, err, http.StatusInternalServerError, "DATA_INTEGRITY_ERROR")
			assert.Equal(t, "Error decrypting password", ae.Message)
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CryptoFailures.WithLabelValues(metrics.OperationDecrypt)))
		})
	}
}

// # Update

/*
TestUpdate_Partial verifies only supplied fields change and the envelope is kept.
*/
func TestUpdate_Partial(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owned := f.create(t, ownerA, credential.CreateInput{
		Site: "s", Username: "u", Password: "p", Category: "work", Notes: pointer.To("keep"),
	})
	before := f.repo.envelope(owned.ID)

	updated, err := f.service.Update(ctx, ownerA, owned.ID, credential.UpdateInput{Site: "new-site"})
	require.NoError(t, err)

	assert.Equal(t, "new-site", updated.Site)
	assert.Equal(t, "u", updated.Username)
	assert.Equal(t, credential.CategoryWork, updated.Category)
	assert.Equal(t, "keep", pointer.Val(updated.Notes))
	assert.True(t, updated.UpdatedAt.After(owned.UpdatedAt))
	assert.Equal(t, owned.CreatedAt, updated.CreatedAt)
	assert.Equal(t, before, f.repo.envelope(owned.ID))
}

/*
TestUpdate_Password verifies a new password is re-encrypted under a fresh IV.
*/
func TestUpdate_Password(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owned := f.create(t, ownerA, credential.CreateInput{Site: "s", Username: "u", Password: "old"})
	before := f.repo.envelope(owned.ID)

	_, err := f.service.Update(ctx, ownerA, owned.ID, credential.UpdateInput{Password: "new-password"})
	require.NoError(t, err)

	after := f.repo.envelope(owned.ID)
	assert.NotEqual(t, strings.SplitN(before, ":", 2)[0], strings.SplitN(after, ":", 2)[0])

	detail, err := f.service.Get(ctx, ownerA, owned.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-password", detail.Password)
}

/*
TestUpdate_NotesClear verifies an empty notes value clears the field.
*/
func TestUpdate_NotesClear(t *testing.T) {
	f := newFixture(t, nil)
	owned := f.create(t, ownerA, credential.CreateInput{Site: "s", Username: "u", Password: "p", Notes: pointer.To("old")})

	updated, err := f.service.Update(context.Background(), ownerA, owned.ID, credential.UpdateInput{Notes: pointer.To("")})
	require.NoError(t, err)
	assert.Equal(t, "", pointer.Val(updated.Notes))
}

/*
TestUpdate_InvalidCategory verifies an unknown category is rejected.
*/
func TestUpdate_InvalidCategory(t *testing.T) {
	f := newFixture(t, nil)
	owned := f.create(t, ownerA, credential.CreateInput{Site: "s", Username: "u", Password: "p"})

	_, err := f.service.Update(context.Background(), ownerA, owned.ID, credential.UpdateInput{Category: "crypto"})
	requireAppError(t, err, http.StatusBadRequest, "VALIDATION_ERROR")
}

// # Delete

/*
TestDelete verifies a deleted credential is gone and a second delete is 404.
*/
func TestDelete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owned := f.create(t, ownerA, credential.CreateInput{Site: "s", Username: "u", Password: "p"})

	require.NoError(t, f.service.Delete(ctx, ownerA, owned.ID))

	_, err := f.service.Get(ctx, ownerA, owned.ID)
	assert.ErrorIs(t, err, credential.ErrCredentialNotFound)
	assert.ErrorIs(t, f.service.Delete(ctx, ownerA, owned.ID), credential.ErrCredentialNotFound)
}

/*
TestStorageFailure verifies repository errors keep their cause.
*/
func TestStorageFailure(t *testing.T) {
	f := newFixture(t, nil)
	cause := errors.New("connection reset")
	f.repo.err = cause

	_, err := f.service.List(context.Background(), ownerA)
	assert.ErrorIs(t, err, cause)
}

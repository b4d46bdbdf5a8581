// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/securepass/internal/platform/apperr"
	"github.com/taibuivan/securepass/internal/platform/ctxutil"
	"github.com/taibuivan/securepass/internal/platform/metrics"
	"github.com/taibuivan/securepass/internal/platform/validate"
	"github.com/taibuivan/securepass/pkg/uuid"
)

// # Contracts & Types

// Cipher seals and opens password envelopes.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(envelope string) (string, error)
}

// Service implements the vault use cases for one authenticated owner at a time.
type Service struct {
	repository Repository
	cipher     Cipher
	metrics    *metrics.DomainMetrics
}

// NewService constructs a new [Service]. domainMetrics may be nil.
func NewService(repository Repository, cipher Cipher, domainMetrics *metrics.DomainMetrics) *Service {
	return &Service{repository: repository, cipher: cipher, metrics: domainMetrics}
}

// CreateInput holds a new credential. Category and Notes are optional.
type CreateInput struct {
	Site     string
	Username string
	Password string
	Category string
	Notes    *string
}

// UpdateInput holds a partial update. Empty strings leave a field unchanged.
// Notes is applied whenever it is non-nil, so an empty string clears it.
type UpdateInput struct {
	Site     string
	Username string
	Password string
	Category string
	Notes    *string
}

// # Read Operations

/*
List returns every credential of the owner, newest first, without passwords.

Parameters:
  - context: context.Context
  - userID: string (Owner)

Returns:
  - []Summary: Possibly empty
  - err: Storage failures
*/
func (service *Service) List(context context.Context, userID string) ([]Summary, error) {
	credentials, err := service.repository.List(context, userID)
	if err != nil {
		return nil, fmt.Errorf("credential_service_list_failed: %w", err)
	}

	summaries := make([]Summary, 0, len(credentials))
	for _, credential := range credentials {
		summaries = append(summaries, credential.Summary())
	}

	return summaries, nil
}

/*
Get returns one owned credential with its decrypted password.

Parameters:
  - context: context.Context
  - userID: string (Owner)
  - id: string

Returns:
  - *Detail: Credential with plaintext password
  - err: ErrCredentialNotFound, or DataIntegrity when the envelope cannot be opened
*/
func (service *Service) Get(context context.Context, userID, id string) (*Detail, error) {
	credential, err := service.find(context, userID, id)
	if err != nil {
		return nil, err
	}

	password, err := service.cipher.Decrypt(credential.EncryptedPassword)
	if err != nil {
		service.metrics.CryptoFailure(metrics.OperationDecrypt)
		ctxutil.GetLogger(context).ErrorContext(context, "credential_decrypt_failed",
			slog.String("credential_id", credential.ID),
			slog.Any("error", err),
		)
		return nil, apperr.DataIntegrity(msgDecryption, err)
	}

	detail := credential.Detail(password)
	return &detail, nil
}

// # Write Operations

/*
Create validates, encrypts and persists a new credential.

Parameters:
  - context: context.Context
  - userID: string (Owner)
  - input: CreateInput

Returns:
  - *Summary: Stored credential without password
  - err: ValidationError, encryption or storage failures
*/
func (service *Service) Create(context context.Context, userID string, input CreateInput) (*Summary, error) {
	site := strings.TrimSpace(input.Site)
	username := strings.TrimSpace(input.Username)
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = string(CategoryGeneral)
	}
	notes := trimNotes(input.Notes)

	if err := validate.New().
		Required(FieldSite, site).
		Required(FieldUsername, username).
		Required(FieldPassword, input.Password).
		Fail(msgRequired); err != nil {
		return nil, err
	}

	if err := validateFields(site, username, input.Password, category, notes); err != nil {
		return nil, err
	}

	envelope, err := service.encrypt(input.Password)
	if err != nil {
		return nil, err
	}

	credential := &Credential{
		ID:                uuid.New(),
		UserID:            userID,
		Site:              site,
		Username:          username,
		EncryptedPassword: envelope,
		Category:          Category(category),
		Notes:             notes,
	}

	if err := service.repository.Create(context, credential); err != nil {
		return nil, fmt.Errorf("credential_service_create_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "credential_created",
		slog.String("credential_id", credential.ID),
		slog.String("category", category),
	)

	summary := credential.Summary()
	return &summary, nil
}

/*
Update applies a partial change to an owned credential.

Description: The password is re-encrypted under a fresh IV only when a new
one is supplied. Otherwise the stored envelope is kept as is.

Parameters:
  - context: context.Context
  - userID: string (Owner)
  - id: string
  - input: UpdateInput

Returns:
  - *Summary: Updated credential without password
  - err: ErrCredentialNotFound, ValidationError, encryption or storage failures
*/
func (service *Service) Update(context context.Context, userID, id string, input UpdateInput) (*Summary, error) {
	credential, err := service.find(context, userID, id)
	if err != nil {
		return nil, err
	}

	if site := strings.TrimSpace(input.Site); site != "" {
		credential.Site = site
	}
	if username := strings.TrimSpace(input.Username); username != "" {
		credential.Username = username
	}
	if category := strings.TrimSpace(input.Category); category != "" {
		credential.Category = Category(category)
	}
	if input.Notes != nil {
		credential.Notes = trimNotes(input.Notes)
	}

	if err := validateFields(credential.Site, credential.Username, input.Password, string(credential.Category), credential.Notes); err != nil {
		return nil, err
	}

	if input.Password != "" {
		envelope, err := service.encrypt(input.Password)
		if err != nil {
			return nil, err
		}
		credential.EncryptedPassword = envelope
	}

	if err := service.repository.Update(context, credential); err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("credential_service_update_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "credential_updated",
		slog.String("credential_id", credential.ID),
		slog.Bool("password_changed", input.Password != ""),
	)

	summary := credential.Summary()
	return &summary, nil
}

/*
Delete removes an owned credential.

Parameters:
  - context: context.Context
  - userID: string (Owner)
  - id: string

Returns:
  - err: ErrCredentialNotFound or storage failures
*/
func (service *Service) Delete(context context.Context, userID, id string) error {
	canonical, ok := uuid.Normalize(id)
	if !ok {
		return ErrCredentialNotFound
	}

	if err := service.repository.Delete(context, userID, canonical); err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return err
		}
		return fmt.Errorf("credential_service_delete_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "credential_deleted", slog.String("credential_id", canonical))
	return nil
}

// # Helpers

func (service *Service) find(context context.Context, userID, id string) (*Credential, error) {
	canonical, ok := uuid.Normalize(id)
	if !ok {
		return nil, ErrCredentialNotFound
	}

	credential, err := service.repository.FindByID(context, userID, canonical)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("credential_service_find_failed: %w", err)
	}

	return credential, nil
}

func (service *Service) encrypt(password string) (string, error) {
	envelope, err := service.cipher.Encrypt(password)
	if err != nil {
		service.metrics.CryptoFailure(metrics.OperationEncrypt)
		return "", apperr.Internal(fmt.Errorf("credential_service_encrypt_failed: %w", err))
	}
	return envelope, nil
}

func validateFields(site, username, password, category string, notes *string) error {
	if err := validate.New().
		MaxLen(FieldSite, site, MaxSiteLength).
		MaxLen(FieldUsername, username, MaxUsernameLength).
		MaxLen(FieldPassword, password, MaxPasswordLength).
		MaxLenOptional(FieldNotes, notes, MaxNotesLength).
		Fail(msgFieldLong); err != nil {
		return err
	}

	allowed := make([]string, len(Categories))
	for i, c := range Categories {
		allowed[i] = string(c)
	}
	return validate.New().OneOf(FieldCategory, category, allowed...).Fail(msgCategory)
}

func trimNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	return &trimmed
}

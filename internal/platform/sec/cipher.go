// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// # Cipher Errors

var (
	// ErrEncryptionFailure reports that the key or the random source could not be used.
	ErrEncryptionFailure = errors.New("sec: encryption failed")

	// ErrMalformedEnvelope reports an envelope that is not "hex(iv):hex(ciphertext)".
	ErrMalformedEnvelope = errors.New("sec: malformed envelope")

	// ErrDecryptionFailure reports ciphertext that does not decrypt under the configured key.
	ErrDecryptionFailure = errors.New("sec: decryption failed")
)

const envelopeSeparator = ":"

// CredentialCipher seals site passwords into self-contained text envelopes.
//
// # Format
//
// An envelope is lowercase hex of a fresh 16-byte IV, a colon, and lowercase
// hex of the AES-256-CBC ciphertext with PKCS#7 padding. The IV never repeats
// for the same key in practice because it is drawn from crypto/rand.
//
// CredentialCipher is safe for concurrent use.
type CredentialCipher struct {
	block  cipher.Block
	random io.Reader
	err    error
}

// CipherOption configures a [CredentialCipher].
type CipherOption func(*CredentialCipher)

// WithRandom replaces the IV source. Tests use it to pin IVs.
func WithRandom(random io.Reader) CipherOption {
	return func(c *CredentialCipher) {
		c.random = random
	}
}

// NewCredentialCipher builds a cipher keyed by deriver applied to secret.
//
// A key that is not 32 bytes long is not rejected here. Every subsequent
// [CredentialCipher.Encrypt] fails with [ErrEncryptionFailure] instead, so a
// misconfigured deriver surfaces on the first write.
func NewCredentialCipher(secret string, deriver KeyDeriver, opts ...CipherOption) *CredentialCipher {
	c := &CredentialCipher{random: rand.Reader}
	for _, opt := range opts {
		opt(c)
	}

	key, err := deriver.DeriveKey(secret)
	if err != nil {
		c.err = fmt.Errorf("%w: %v", ErrEncryptionFailure, err)
		return c
	}

	if len(key) != KeySize {
		c.err = fmt.Errorf("%w: key is %d bytes, want %d", ErrEncryptionFailure, len(key), KeySize)
		return c
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		c.err = fmt.Errorf("%w: %v", ErrEncryptionFailure, err)
		return c
	}

	c.block = block
	return c
}

// Encrypt seals plaintext into a fresh envelope.
func (c *CredentialCipher) Encrypt(plaintext string) (string, error) {
	if c.err != nil {
		return "", c.err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(c.random, iv); err != nil {
		return "", fmt.Errorf("%w: read iv: %v", ErrEncryptionFailure, err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + envelopeSeparator + hex.EncodeToString(ciphertext), nil
}

// Decrypt opens an envelope produced by [CredentialCipher.Encrypt] under the same key.
//
// The envelope is split on the first colon only.
func (c *CredentialCipher) Decrypt(envelope string) (string, error) {
	if c.err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailure, c.err)
	}

	ivHex, ctHex, found := strings.Cut(envelope, envelopeSeparator)
	if !found || ivHex == "" || ctHex == "" {
		return "", ErrMalformedEnvelope
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrMalformedEnvelope
	}

	ciphertext, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", ErrMalformedEnvelope
	}

	if len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext is not block aligned", ErrDecryptionFailure)
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plain, ciphertext)

	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(plain) {
		return "", fmt.Errorf("%w: plaintext is not valid UTF-8", ErrDecryptionFailure)
	}

	return string(plain), nil
}

// selfCheckPlaintext exercises multi-byte input and a partial final block.
const selfCheckPlaintext = "securepass-startup-check ✓"

// SelfCheck seals and reopens a fixed value, so a bad key or entropy source
// stops the process before any credential is written.
func (c *CredentialCipher) SelfCheck() error {
	envelope, err := c.Encrypt(selfCheckPlaintext)
	if err != nil {
		return err
	}

	plain, err := c.Decrypt(envelope)
	if err != nil {
		return err
	}

	if plain != selfCheckPlaintext {
		return fmt.Errorf("%w: round trip mismatch", ErrDecryptionFailure)
	}
	return nil
}

// # Padding

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty ciphertext", ErrDecryptionFailure)
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("%w: bad padding", ErrDecryptionFailure)
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", ErrDecryptionFailure)
		}
	}

	return data[:len(data)-n], nil
}

// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"bytes"
	"errors"

	"golang.org/x/crypto/argon2"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// # Key Derivation

// KeyDeriver turns a configured secret into exactly [KeySize] bytes of key material.
type KeyDeriver interface {
	DeriveKey(secret string) ([]byte, error)
}

// PadKeyDeriver is the legacy keying scheme.
//
// The secret is right-padded with spaces to 32 bytes and truncated to 32
// bytes. It adds no entropy, but envelopes written by earlier deployments can
// only be opened with keys produced this way.
type PadKeyDeriver struct{}

// DeriveKey pads or truncates secret to [KeySize] bytes.
func (PadKeyDeriver) DeriveKey(secret string) ([]byte, error) {
	key := []byte(secret)
	if len(key) >= KeySize {
		return bytes.Clone(key[:KeySize]), nil
	}
	return append(key, bytes.Repeat([]byte{' '}, KeySize-len(key))...), nil
}

// Argon2 parameters follow the RFC 9106 second recommended option.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// Argon2KeyDeriver derives the key with argon2id and a deployment-wide salt.
//
// Switching a live deployment from [PadKeyDeriver] requires re-encrypting
// every stored envelope.
type Argon2KeyDeriver struct {
	Salt []byte
}

// DeriveKey stretches secret with argon2id into [KeySize] bytes.
func (deriver Argon2KeyDeriver) DeriveKey(secret string) ([]byte, error) {
	if len(deriver.Salt) == 0 {
		return nil, errors.New("sec: argon2id requires a salt")
	}
	return argon2.IDKey([]byte(secret), deriver.Salt, argon2Time, argon2Memory, argon2Threads, KeySize), nil
}

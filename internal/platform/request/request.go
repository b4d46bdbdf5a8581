// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package requestutil reads JSON bodies, path ids and the caller identity
// from incoming requests.
package requestutil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/securepass/internal/platform/apperr"
	"github.com/taibuivan/securepass/internal/platform/ctxutil"
	"github.com/taibuivan/securepass/internal/platform/validate"
)

// MaxBodyBytes caps JSON bodies; the largest credential with notes is well below it.
const MaxBodyBytes = 64 << 10

// ErrBodyTooLarge is returned for bodies over [MaxBodyBytes].
var ErrBodyTooLarge = apperr.New("PAYLOAD_TOO_LARGE", "Request body too large", http.StatusRequestEntityTooLarge)

/*
DecodeJSON decodes the request body into target.

Returns:
  - error: [ErrBodyTooLarge], validate.ErrInvalidJSON, or nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	body := http.MaxBytesReader(writer, request.Body, MaxBodyBytes)

	if err := json.NewDecoder(body).Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

// PathID returns the named chi URL parameter. The value is not validated here;
// services treat a malformed id as not found.
func PathID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// RequiredUserID returns the caller's user id, or TOKEN_INVALID when the
// request reached the handler without an identity.
func RequiredUserID(request *http.Request) (string, error) {
	user := ctxutil.GetAuthUser(request.Context())
	if user == nil {
		return "", apperr.TokenInvalid(nil)
	}
	return user.UserID, nil
}

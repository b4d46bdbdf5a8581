// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// Success bodies are the resource itself, with no wrapping envelope, which is
// the shape existing browser clients decode. Every error shares the single
// [ErrorEnvelope] layout.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/taibuivan/securepass/internal/platform/apperr"
	"github.com/taibuivan/securepass/internal/platform/ctxutil"
)

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`

	// Error carries the internal cause in development mode only.
	Error string `json:"error,omitempty"`
}

// MessageBody is the payload for operations that only report an outcome.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data as the body.
func OK(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusOK, data)
}

// Created writes a 201 Created response with data as the body.
func Created(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusCreated, data)
}

// Message writes a 200 OK response of the form {"message": "..."}.
func Message(writer http.ResponseWriter, message string) {
	JSON(writer, http.StatusOK, MessageBody{Message: message})
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)

	appError := apperr.As(err)
	if appError == nil {
		// Unexpected internal error: log full details but hide them from the client for security.
		logger.ErrorContext(ctx, "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(ctx)),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger.ErrorContext(ctx, "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(ctx)),
			slog.Any("cause", appError.Cause),
		)
	}

	envelope := ErrorEnvelope{
		Message: appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	}

	if appError.Cause != nil && ctxutil.ExposeErrors(ctx) {
		envelope.Error = appError.Cause.Error()
	}

	JSON(writer, appError.HTTPStatus, envelope)
}

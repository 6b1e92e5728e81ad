// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// Every response (Success or Error) follows the same `{success, payload, message}`
// envelope so that clients never need outcome-specific parsing beyond the
// message text.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/sentinel/internal/platform/apperr"
	"github.com/taibuivan/sentinel/internal/platform/ctxutil"
)

// Envelope is the JSON envelope shared by every API response.
type Envelope struct {
	Success bool                `json:"success"`
	Payload any                 `json:"payload"`
	Message string              `json:"message"`
	Code    string              `json:"code,omitempty"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with the payload wrapped in the success envelope.
func OK(writer http.ResponseWriter, payload any) {
	JSON(writer, http.StatusOK, Envelope{Success: true, Payload: payload})
}

// OKWithMessage writes a 200 OK success envelope carrying both a payload and a message.
func OKWithMessage(writer http.ResponseWriter, payload any, message string) {
	JSON(writer, http.StatusOK, Envelope{Success: true, Payload: payload, Message: message})
}

// Message writes a 200 OK success envelope with no payload and a message.
func Message(writer http.ResponseWriter, message string) {
	JSON(writer, http.StatusOK, Envelope{Success: true, Message: message})
}

// Created writes a 201 Created response with the payload wrapped in the success envelope.
func Created(writer http.ResponseWriter, payload any) {
	JSON(writer, http.StatusCreated, Envelope{Success: true, Payload: payload})
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	logger := ctxutil.GetLogger(request.Context())
	requestID := ctxutil.GetRequestID(request.Context())

	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		// Unexpected internal error: log full details but hide them from the client.
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", requestID),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", requestID),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, appError.HTTPStatus, Envelope{
		Success: false,
		Payload: nil,
		Message: appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	})
}

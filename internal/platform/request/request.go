// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away common body decoding patterns and principal lookups, ensuring
consistent error handling and type safety across handlers.
*/
package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/taibuivan/sentinel/internal/platform/apperr"
	"github.com/taibuivan/sentinel/internal/platform/ctxutil"
	"github.com/taibuivan/sentinel/internal/platform/sec"
	"github.com/taibuivan/sentinel/internal/platform/validate"
)

// maxBodyBytes bounds every JSON body read by the API.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Unknown fields and trailing data are rejected so that the accepted input shape
is exactly the target struct.

Parameters:
  - writer: http.ResponseWriter (used to enforce the body size limit)
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(writer, request.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}

	// A second value in the body is as malformed as a broken first one.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Principal extracts the verified session principal from the request context.

Returns nil if the request is not authenticated.
*/
func Principal(request *http.Request) *sec.Principal {
	return ctxutil.GetPrincipal(request.Context())
}

/*
RequiredAccountID returns the account ID of the currently logged-in caller.

Returns:
  - string: Account UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredAccountID(request *http.Request) (string, error) {

	// Get the verified principal
	principal := ctxutil.GetPrincipal(request.Context())

	// If the caller is not authenticated, return an error
	if principal == nil {
		return "", apperr.Unauthorized("Authentication required")
	}

	return principal.AccountID, nil
}

/*
UserAgent returns the client's User-Agent header as sent.

Returns:
  - string: Raw header value, empty when the client sent none
*/
func UserAgent(request *http.Request) string {
	return request.UserAgent()
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package request_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sentinel/internal/platform/ctxutil"
	"github.com/taibuivan/sentinel/internal/platform/request"
	"github.com/taibuivan/sentinel/internal/platform/sec"
	"github.com/taibuivan/sentinel/internal/platform/validate"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
TestDecodeJSON covers the accepted and rejected body shapes.
*/
func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"email":"a@example.com","password":"x"}`, false},
		{"unknown_field", `{"email":"a@example.com","password":"x","remember":true}`, true},
		{"malformed", `{"email":`, true},
		{"trailing_value", `{"email":"a@example.com"}{}`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpRequest := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var target credentials

			err := request.DecodeJSON(httptest.NewRecorder(), httpRequest, &target)
			if tt.wantErr {
				assert.ErrorIs(t, err, validate.ErrInvalidJSON)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "a@example.com", target.Email)
			}
		})
	}
}

/*
TestRequiredAccountID verifies principal extraction.
*/
func TestRequiredAccountID(t *testing.T) {
	anonymous := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := request.RequiredAccountID(anonymous)
	assert.Error(t, err)
	assert.Nil(t, request.Principal(anonymous))

	ctx := ctxutil.WithPrincipal(anonymous.Context(), &sec.Principal{AccountID: "acc-1"})
	authenticated := anonymous.WithContext(ctx)

	accountID, err := request.RequiredAccountID(authenticated)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", accountID)
}

/*
TestUserAgent verifies the header is returned verbatim and absence yields "".
*/
func TestUserAgent(t *testing.T) {
	httpRequest := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, request.UserAgent(httpRequest))

	httpRequest.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")
	assert.Equal(t, "Mozilla/5.0 (X11; Linux x86_64)", request.UserAgent(httpRequest))
}

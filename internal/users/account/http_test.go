// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sentinel/internal/platform/respond"
	"github.com/taibuivan/sentinel/internal/users/account"
)

func serveAdmin(service *account.Service, method, path, body string) (*httptest.ResponseRecorder, respond.Envelope) {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	account.NewAdminHandler(service).Routes().ServeHTTP(recorder, request)

	var envelope respond.Envelope
	_ = json.Unmarshal(recorder.Body.Bytes(), &envelope)
	return recorder, envelope
}

/*
TestAdminHandler_Unlock covers the request validation and status mapping.
*/
func TestAdminHandler_Unlock(t *testing.T) {
	service, db, _ := newService(t)
	id := db.PutAccount(account.Account{Name: "Locked", Email: "locked@example.com", FailedCount: 5, IsLocked: true})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "Unknown field", body: `{"id":"` + id + `","force":true}`, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "Missing id", body: `{}`, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "Malformed id", body: `{"id":"42"}`, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "Unknown account", body: `{"id":"01900000-0000-7000-8000-000000000000"}`, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "Unlocks", body: `{"id":"` + id + `"}`, wantStatus: http.StatusOK},
		{name: "Unlocks again", body: `{"id":"` + id + `"}`, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, envelope := serveAdmin(service, http.MethodPost, "/unlock", tt.body)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantCode, envelope.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, envelope.Success)
		})
	}

	assert.False(t, db.Account(id).IsLocked)
	assert.Zero(t, db.Account(id).FailedCount)
}

/*
TestAdminHandler_ListLocked verifies the summary payload shape.
*/
func TestAdminHandler_ListLocked(t *testing.T) {
	service, db, _ := newService(t)
	id := db.PutAccount(account.Account{Name: "Locked", Email: "locked@example.com", PasswordHash: "$2a$secret", FailedCount: 5, IsLocked: true})

	recorder, envelope := serveAdmin(service, http.MethodGet, "/locked", "")

	require.Equal(t, http.StatusOK, recorder.Code)
	items, ok := envelope.Payload.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	item := items[0].(map[string]any)
	assert.Equal(t, id, item["id"])
	assert.Equal(t, "locked@example.com", item["email"])
	assert.EqualValues(t, 5, item["failedCount"])
	assert.Contains(t, item, "lastLoginAt")
	assert.NotContains(t, recorder.Body.String(), "secret")
}

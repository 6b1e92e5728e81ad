// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/sentinel/internal/platform/ctxutil"
	"github.com/taibuivan/sentinel/internal/platform/middleware"
	"github.com/taibuivan/sentinel/internal/platform/sec"
)

type stubResolver struct {
	role sec.UserRole
	err  error
}

func (resolver stubResolver) ResolveRole(_ context.Context, _ string) (sec.UserRole, error) {
	return resolver.role, resolver.err
}

type devConfig bool

func (config devConfig) IsDevelopment() bool { return bool(config) }

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusNoContent)
})

func withPrincipal(request *http.Request) *http.Request {
	ctx := ctxutil.WithPrincipal(request.Context(), &sec.Principal{AccountID: "acc-1"})
	return request.WithContext(ctx)
}

/*
TestRequireRole covers anonymous, missing-subject, insufficient and sufficient callers.
*/
func TestRequireRole(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		resolver      stubResolver
		wantStatus    int
	}{
		{"anonymous", false, stubResolver{role: sec.RoleAdmin}, http.StatusUnauthorized},
		{"subject_missing", true, stubResolver{err: middleware.ErrRoleSubjectMissing}, http.StatusUnauthorized},
		{"store_failure", true, stubResolver{err: errors.New("db down")}, http.StatusInternalServerError},
		{"plain_user", true, stubResolver{role: sec.RoleUser}, http.StatusForbidden},
		{"admin", true, stubResolver{role: sec.RoleAdmin}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/admin/users/locked", nil)
			if tt.authenticated {
				request = withPrincipal(request)
			}
			recorder := httptest.NewRecorder()

			middleware.RequireRole(tt.resolver, sec.RoleAdmin)(okHandler).ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

/*
TestRequireAuth rejects anonymous callers.
*/
func TestRequireAuth(t *testing.T) {
	recorder := httptest.NewRecorder()
	middleware.RequireAuth(okHandler).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = httptest.NewRecorder()
	middleware.RequireAuth(okHandler).ServeHTTP(recorder, withPrincipal(httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

/*
TestCORS verifies origin matching in production and development.
*/
func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		development bool
		origin      string
		wantAllowed bool
	}{
		{"dev_any_origin", true, "http://localhost:3000", true},
		{"prod_matching_suffix", false, "https://app.example.com", true},
		{"prod_foreign_origin", false, "https://evil.test", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set("Origin", tt.origin)
			recorder := httptest.NewRecorder()

			middleware.CORS(devConfig(tt.development), "example.com")(okHandler).ServeHTTP(recorder, request)

			allowed := recorder.Header().Get("Access-Control-Allow-Origin") == tt.origin
			assert.Equal(t, tt.wantAllowed, allowed)
		})
	}
}

/*
TestRequestID_Propagation checks that an incoming ID is reused and echoed.
*/
func TestRequestID_Propagation(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "req-42")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", recorder.Header().Get("X-Request-ID"))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "req-42", seen)
}

/*
TestPanicRecovery converts a panic into a 500 envelope.
*/
func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"success":false`)
}

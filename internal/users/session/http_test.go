// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sentinel/internal/platform/constants"
	"github.com/taibuivan/sentinel/internal/platform/ctxutil"
	"github.com/taibuivan/sentinel/internal/platform/sec"
	"github.com/taibuivan/sentinel/internal/users/session"
	"github.com/taibuivan/sentinel/internal/users/userstest"
)

// capture records the principal seen by the wrapped handler.
type capture struct {
	called    bool
	principal *sec.Principal
}

func (c *capture) handler() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		c.called = true
		c.principal = ctxutil.GetPrincipal(request.Context())
		writer.WriteHeader(http.StatusNoContent)
	})
}

func serve(manager *session.Manager, mode session.Mode, token string) (*httptest.ResponseRecorder, *capture) {
	cookies := session.NewCookies(manager, true)
	seen := &capture{}

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: token})
	}
	recorder := httptest.NewRecorder()
	session.Authenticate(manager, cookies, mode)(seen.handler()).ServeHTTP(recorder, request)
	return recorder, seen
}

/*
TestCookies verifies the cookie attributes written on set and clear.
*/
func TestCookies(t *testing.T) {
	manager, _, _ := newManager(t)
	cookies := session.NewCookies(manager, false)
	assert.Equal(t, 10800, cookies.MaxAge)

	recorder := httptest.NewRecorder()
	cookies.Set(recorder, "abc123")
	header := recorder.Header().Get("Set-Cookie")
	assert.Contains(t, header, "session_id=abc123")
	assert.Contains(t, header, "Max-Age=10800")
	assert.Contains(t, header, "HttpOnly")
	assert.Contains(t, header, "SameSite=Strict")
	assert.Contains(t, header, "Path=/")
	assert.NotContains(t, header, "Secure")

	recorder = httptest.NewRecorder()
	cookies.Clear(recorder)
	header = recorder.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(header, "session_id=;"), header)
	assert.Contains(t, header, "Max-Age=0")

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, cookies.Token(request))
	request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "tok"})
	assert.Equal(t, "tok", cookies.Token(request))
}

/*
TestAuthenticate_Anonymous verifies requests without a cookie pass through untouched.
*/
func TestAuthenticate_Anonymous(t *testing.T) {
	manager, _, _ := newManager(t)

	for _, mode := range []session.Mode{session.Renewing, session.ReadOnly} {
		recorder, seen := serve(manager, mode, "")
		assert.True(t, seen.called)
		assert.Nil(t, seen.principal)
		assert.Empty(t, recorder.Header().Values("Set-Cookie"))
	}
}

/*
TestAuthenticate_Renewing verifies renewal, cookie refresh and principal injection.
*/
func TestAuthenticate_Renewing(t *testing.T) {
	manager, db, clock := newManager(t)
	issued, err := manager.Create(context.Background(), "acc-1", 0)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	recorder, seen := serve(manager, session.Renewing, issued.Token)

	require.True(t, seen.called)
	require.NotNil(t, seen.principal)
	assert.Equal(t, "acc-1", seen.principal.AccountID)
	assert.Equal(t, t0.Add(4*time.Hour), seen.principal.SessionExpiresAt)
	assert.Equal(t, t0.Add(4*time.Hour), db.Session(sec.HashToken(issued.Token)).ExpiresAt)

	header := recorder.Header().Get("Set-Cookie")
	assert.Contains(t, header, "session_id="+issued.Token)
	assert.Contains(t, header, "Max-Age=10800")
}

/*
TestAuthenticate_ReadOnly verifies verification without store or cookie writes.
*/
func TestAuthenticate_ReadOnly(t *testing.T) {
	manager, db, clock := newManager(t)
	issued, err := manager.Create(context.Background(), "acc-1", 0)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	recorder, seen := serve(manager, session.ReadOnly, issued.Token)

	require.NotNil(t, seen.principal)
	assert.Equal(t, "acc-1", seen.principal.AccountID)
	assert.Equal(t, t0.Add(3*time.Hour), db.Session(sec.HashToken(issued.Token)).ExpiresAt)
	assert.Empty(t, recorder.Header().Values("Set-Cookie"))
}

/*
TestAuthenticate_InvalidSession verifies only the renewing variant clears the cookie.
*/
func TestAuthenticate_InvalidSession(t *testing.T) {
	tests := []struct {
		name        string
		mode        session.Mode
		wantCleared bool
	}{
		{name: "Renewing clears", mode: session.Renewing, wantCleared: true},
		{name: "Read-only leaves headers alone", mode: session.ReadOnly, wantCleared: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, _, clock := newManager(t)
			issued, err := manager.Create(context.Background(), "acc-1", 0)
			require.NoError(t, err)
			clock.Advance(4 * time.Hour)

			recorder, seen := serve(manager, tt.mode, issued.Token)

			assert.True(t, seen.called, "invalid sessions continue anonymously")
			assert.Nil(t, seen.principal)

			header := recorder.Header().Get("Set-Cookie")
			if tt.wantCleared {
				assert.Contains(t, header, "Max-Age=0")
			} else {
				assert.Empty(t, header)
			}
		})
	}
}

/*
TestAuthenticate_StoreFailure verifies store errors abort with a 500.
*/
func TestAuthenticate_StoreFailure(t *testing.T) {
	manager, db, _ := newManager(t)
	issued, err := manager.Create(context.Background(), "acc-1", 0)
	require.NoError(t, err)
	db.FailOn(userstest.OpSessionFind, errors.New("connection refused"))

	recorder, seen := serve(manager, session.Renewing, issued.Token)

	assert.False(t, seen.called)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "connection refused")
}

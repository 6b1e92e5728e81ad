// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/sentinel/internal/platform/apperr"
	"github.com/taibuivan/sentinel/internal/platform/constants"
	"github.com/taibuivan/sentinel/internal/platform/ctxutil"
	"github.com/taibuivan/sentinel/internal/platform/respond"
	"github.com/taibuivan/sentinel/internal/platform/sec"
)

// # Cookie Transport

// Cookies writes and clears the session cookie.
type Cookies struct {
	// Secure sets the Secure attribute; disabled only for plain-HTTP development.
	Secure bool
	// MaxAge is the cookie lifetime in seconds.
	MaxAge int
}

// NewCookies builds the cookie settings for the given session TTL.
func NewCookies(manager *Manager, secure bool) Cookies {
	return Cookies{Secure: secure, MaxAge: int(manager.TTL().Seconds())}
}

// Set writes the session cookie carrying token.
func (cookies Cookies) Set(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, cookies.build(token, cookies.MaxAge))
}

// Clear expires the session cookie immediately.
func (cookies Cookies) Clear(writer http.ResponseWriter) {
	// MaxAge -1 is rendered as "Max-Age=0" by net/http.
	http.SetCookie(writer, cookies.build("", -1))
}

// Token returns the session token presented by the client, or "".
func (cookies Cookies) Token(request *http.Request) string {
	cookie, err := request.Cookie(constants.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (cookies Cookies) build(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    value,
		Path:     constants.SessionCookiePath,
		MaxAge:   maxAge,
		Secure:   cookies.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// # Verification Middleware

// Mode selects which verification variant the middleware runs.
type Mode int

const (
	// Renewing slides the expiry and refreshes or clears the cookie.
	Renewing Mode = iota
	// ReadOnly verifies without touching the store or the response headers.
	ReadOnly
)

/*
Authenticate resolves the session cookie into a [sec.Principal].

# Flow
 1. No cookie: the request proceeds anonymously.
 2. Verify with the variant selected by mode.
 3. Invalid session: Renewing clears the cookie; both proceed anonymously.
 4. Valid session: Renewing refreshes the cookie; the principal is injected.

Store failures abort with a 500 rather than silently downgrading to anonymous.
Route guards ([middleware.RequireAuth], [middleware.RequireRole]) decide
whether anonymous access is acceptable.
*/
func Authenticate(manager *Manager, cookies Cookies, mode Mode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token := cookies.Token(request)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Verification ───────────────────────────────────────────────
			var (
				session *Session
				err     error
			)
			if mode == ReadOnly {
				session, err = manager.VerifyReadOnly(request.Context(), token)
			} else {
				session, err = manager.VerifyAndRenew(request.Context(), token)
			}

			// ── 3. Invalid Session ────────────────────────────────────────────
			if errors.Is(err, ErrInvalid) {
				if mode == Renewing {
					cookies.Clear(writer)
				}
				next.ServeHTTP(writer, request)
				return
			}
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			if mode == Renewing {
				cookies.Set(writer, token)
			}

			ctx := ctxutil.WithPrincipal(request.Context(), &sec.Principal{
				AccountID:        session.AccountID,
				SessionExpiresAt: session.ExpiresAt,
			})
			ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.String("account_id", session.AccountID)))

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/taibuivan/sentinel/internal/platform/apperr"
	"github.com/taibuivan/sentinel/internal/platform/ctxutil"
	"github.com/taibuivan/sentinel/internal/platform/respond"
	"github.com/taibuivan/sentinel/internal/platform/sec"
)

// RoleResolver looks up the current role of an account.
//
// # Why an interface?
//
// Sessions carry only the account ID, so the role is read fresh on every
// privileged request. Defining the interface here decouples the middleware
// from the account service and keeps it testable with a stub.
type RoleResolver interface {
	ResolveRole(context context.Context, accountID string) (sec.UserRole, error)
}

// ErrRoleSubjectMissing is returned by a [RoleResolver] when the account behind
// a still-valid session no longer exists.
var ErrRoleSubjectMissing = errors.New("middleware: role subject missing")

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER the session middleware.
//
// # Flow
//  1. Check if a [*sec.Principal] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetPrincipal(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests if the authenticated caller doesn't have the required role.
//
// # Usage
//
// Must be registered in the router AFTER the session middleware. It automatically
// implies [RequireAuth] so you don't need to mount both.
//
// # Flow
//  1. Check if a [*sec.Principal] exists in context (implies AuthN).
//  2. Resolve the caller's role through the [RoleResolver].
//  3. If insufficient, abort with HTTP 403 Forbidden.
func RequireRole(resolver RoleResolver, role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if principal == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Role Lookup ────────────────────────────────────────────────
			userRole, err := resolver.ResolveRole(request.Context(), principal.AccountID)
			if errors.Is(err, ErrRoleSubjectMissing) {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 3. Authorization Check ────────────────────────────────────────
			if !userRole.AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

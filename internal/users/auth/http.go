// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/sentinel/internal/platform/apperr"
	"github.com/taibuivan/sentinel/internal/platform/middleware"
	requestutil "github.com/taibuivan/sentinel/internal/platform/request"
	"github.com/taibuivan/sentinel/internal/platform/respond"
	"github.com/taibuivan/sentinel/internal/platform/validate"
	"github.com/taibuivan/sentinel/internal/users/account"
	"github.com/taibuivan/sentinel/internal/users/session"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
//
// # Scope
//
// Login and logout are public; logout reads the cookie directly so the session
// it deletes is never extended first. Logout-all and the profile endpoint run
// behind the renewing session middleware, which the handler mounts itself.
type Handler struct {
	authService    *Service
	accountService *account.Service
	sessions       *session.Manager
	cookies        session.Cookies
}

// NewHandler constructs a new [Handler].
func NewHandler(authService *Service, accountService *account.Service, sessions *session.Manager, cookies session.Cookies) *Handler {
	return &Handler{
		authService:    authService,
		accountService: accountService,
		sessions:       sessions,
		cookies:        cookies,
	}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /login      : Verifies credentials and sets the session cookie.
//   - POST /logout     : Deletes the current session and clears the cookie.
//   - POST /logout-all : Deletes every session of the caller.
//   - GET  /me         : Returns the caller's profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints. Logout reads the cookie itself and must not renew it.
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)

	// Session endpoints
	router.Group(func(r chi.Router) {
		r.Use(session.Authenticate(handler.sessions, handler.cookies, session.Renewing))
		r.Use(middleware.RequireAuth)
		r.Post("/logout-all", handler.logoutAll)
		r.Get("/me", handler.me)
	})

	return router
}

// # Request & Response Payloads

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Profile   *account.Profile `json:"profile"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Validates the credential pair, runs the login state machine and,
on success, sets the HttpOnly session cookie.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: loginResponse
  - 400: VALIDATION_ERROR
  - 401: INVALID_CREDENTIALS
  - 423: ACCOUNT_LOCKED or ACCOUNT_JUST_LOCKED
  - 500: Store failure (generic message only)
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	if !validator.HasErrors() {
		validator.Email(FieldEmail, input.Email)
	}
	validator.Required(FieldPassword, input.Password).MaxBytes(FieldPassword, input.Password, MaxPasswordBytes)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Authenticate(request.Context(), LoginInput{
		Email:     input.Email,
		Password:  input.Password,
		UserAgent: requestutil.UserAgent(request),
		IPAddress: middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, apperr.InternalWithMessage(MessageLoginFailed, err))
		return
	}

	switch result.Outcome {
	case OutcomeSuccess:
		handler.cookies.Set(writer, result.Session.Token)
		respond.OKWithMessage(writer, loginResponse{
			Profile:   result.Profile,
			ExpiresAt: result.Session.ExpiresAt,
		}, MessageLoginSuccess)
	case OutcomeAccountLocked:
		respond.Error(writer, request, apperr.Locked(CodeAccountLocked, MessageAccountLocked))
	case OutcomeAccountJustLocked:
		respond.Error(writer, request, apperr.Locked(CodeAccountJustLocked, MessageAccountJustLocked))
	default:
		respond.Error(writer, request, apperr.InvalidCredentials(MessageInvalidCredentials))
	}
}

/*
Logout terminates the current session.

POST /api/v1/auth/logout

Description: Idempotent. Deletes the presented session if any and always
clears the cookie.

Response:
  - 200: Confirmation message
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if err := handler.sessions.InvalidateToken(request.Context(), handler.cookies.Token(request)); err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	handler.cookies.Clear(writer)
	respond.Message(writer, MessageLoggedOut)
}

/*
LogoutAll terminates every session of the caller.

POST /api/v1/auth/logout-all

Response:
  - 200: { revoked: number of deleted sessions }
  - 401: No valid session
*/
func (handler *Handler) logoutAll(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	revoked, err := handler.sessions.InvalidateAccount(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	handler.cookies.Clear(writer)
	respond.OKWithMessage(writer, map[string]int64{"revoked": revoked}, MessageLoggedOut)
}

/*
Me returns the caller's sanitized profile.

GET /api/v1/auth/me

Response:
  - 200: account.Profile
  - 401: No valid session, or the account no longer exists
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), accountID)
	if errors.Is(err, account.ErrNotFound) {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	respond.OK(writer, profile)
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/sentinel/internal/platform/apperr"
	requestutil "github.com/taibuivan/sentinel/internal/platform/request"
	"github.com/taibuivan/sentinel/internal/platform/respond"
	"github.com/taibuivan/sentinel/internal/platform/validate"
)

// # Definitions & Constructors

// AdminHandler implements the administrative account endpoints.
//
// # Scope
//
// Mounted behind the session middleware and an ADMIN role guard; the handler
// itself performs no authorization.
type AdminHandler struct {
	accountService *Service
}

// NewAdminHandler constructs a new [AdminHandler].
func NewAdminHandler(service *Service) *AdminHandler {
	return &AdminHandler{accountService: service}
}

// Routes returns a [chi.Router] with the administrative routes.
//
// # Endpoints
//   - GET  /locked : Lists locked accounts.
//   - POST /unlock : Unlocks one account.
func (handler *AdminHandler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/locked", handler.listLocked)
	router.Post("/unlock", handler.unlock)
	return router
}

type unlockRequest struct {
	ID string `json:"id"`
}

/*
ListLocked returns the locked-account summaries.

GET /api/v1/admin/users/locked

Response:
  - 200: []LockedSummary
  - 401/403: Missing session or insufficient role
*/
func (handler *AdminHandler) listLocked(writer http.ResponseWriter, request *http.Request) {
	summaries, err := handler.accountService.ListLocked(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summaries)
}

/*
Unlock lifts the lock on an account.

POST /api/v1/admin/users/unlock

Request:
  - Body: unlockRequest (ID)

Response:
  - 200: Confirmation message
  - 400: Missing or malformed id
  - 404: Unknown account
*/
func (handler *AdminHandler) unlock(writer http.ResponseWriter, request *http.Request) {
	var input unlockRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldID, input.ID)
	if !validator.HasErrors() {
		validator.UUID(FieldID, input.ID)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Unlock(request.Context(), input.ID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			err = apperr.Internal(err)
		}
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "User account unlocked successfully.")
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/sentinel/internal/platform/apperr"
	requestutil "github.com/taibuivan/sentinel/internal/platform/request"
	"github.com/taibuivan/sentinel/internal/platform/respond"
)

// Handler exposes the caller's login history.
type Handler struct {
	auditService *Service
}

// NewHandler constructs a new audit [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{auditService: service}
}

// Routes returns a [chi.Router] with the history route.
//
// The router must sit behind the read-only session middleware: rendering the
// history never slides the session or writes cookies.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.history)
	return router
}

/*
History returns the caller's recent authentication attempts.

GET /api/v1/me/login-history

Response:
  - 200: []Entry, newest first, at most 100
  - 401: No valid session
*/
func (handler *Handler) history(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, err := handler.auditService.History(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	respond.OK(writer, entries)
}

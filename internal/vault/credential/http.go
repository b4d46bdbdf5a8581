// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package credential

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/securepass/internal/platform/middleware"
	requestutil "github.com/taibuivan/securepass/internal/platform/request"
	"github.com/taibuivan/securepass/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements the vault HTTP endpoints. Every route requires an
// authenticated caller, and the caller is always the owner.
type Handler struct {
	credentialService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{credentialService: service}
}

// Routes returns a [chi.Router] configured with credential routes.
//
// # Endpoints
//   - GET    /     : Lists the caller's credentials.
//   - POST   /     : Stores a new credential.
//   - GET    /{id} : Returns one credential with its password.
//   - PUT    /{id} : Partially updates a credential.
//   - DELETE /{id} : Removes a credential.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Get("/{id}", handler.get)
	router.Put("/{id}", handler.update)
	router.Delete("/{id}", handler.delete)

	return router
}

// # Request Payloads

type credentialRequest struct {
	Site     string  `json:"site"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	Category string  `json:"category"`
	Notes    *string `json:"notes"`
}

/*
List returns the caller's credentials without passwords.

GET /api/credentials

Response:
  - 200: []Summary (newest first)
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	summaries, err := handler.credentialService.List(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, summaries)
}

/*
Get returns one credential with its decrypted password.

GET /api/credentials/{id}

Response:
  - 200: Detail
  - 404: Credential not found
  - 500: Error decrypting password
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.credentialService.Get(request.Context(), userID, requestutil.PathID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, detail)
}

/*
Create stores a new credential.

POST /api/credentials

Request:
  - Body: credentialRequest (Site, Username, Password required)

Response:
  - 201: Summary
  - 400: ValidationError
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input credentialRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	summary, err := handler.credentialService.Create(request.Context(), userID, CreateInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, summary)
}

/*
Update partially changes a credential.

PUT /api/credentials/{id}

Request:
  - Body: credentialRequest (every field optional)

Response:
  - 200: Summary
  - 404: Credential not found
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input credentialRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	summary, err := handler.credentialService.Update(request.Context(), userID, requestutil.PathID(request, "id"), UpdateInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, summary)
}

/*
Delete removes a credential.

DELETE /api/credentials/{id}

Response:
  - 200: { message }
  - 404: Credential not found
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.credentialService.Delete(request.Context(), userID, requestutil.PathID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, msgDeleted)
}

/*
Package identity provides the HTTP interface for account introspection.

# Routing Strategy

  - Authenticated: Profile view for the acting user (GET /me).

Account creation has no endpoint: records materialize as a side effect of the
first authenticated request.
*/
package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tranquangduy/midgard/internal/platform/request"
	"github.com/tranquangduy/midgard/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for identity operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new identity [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with identity endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.me)

	return router
}

/*
GET /api/v1/me.

Description: Returns the synced local account of the acting user.

Response:
  - 200: User: Success
  - 401: 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.GetUser(request.Context(), actorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

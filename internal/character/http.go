/*
Package character provides the HTTP interface for the character roster.

# Routing Strategy

  - Authenticated: Every route; ownership/officer authorization enforced by
    the [Service].
  - Collection: GET /characters lists the acting user's own characters.
  - Item: role grants carry an explicit replace flag for exclusive swaps.
*/
package character

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tranquangduy/midgard/internal/platform/request"
	"github.com/tranquangduy/midgard/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for character operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new character [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with character endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listOwned)
	router.Post("/", handler.createCharacter)

	router.Route("/{id}", func(subRouter chi.Router) {
		subRouter.Get("/", handler.getCharacter)
		subRouter.Delete("/", handler.deleteCharacter)
		subRouter.Patch("/tag", handler.reassignTag)
		subRouter.Post("/roles", handler.assignRole)
		subRouter.Delete("/roles/{role}", handler.removeRole)
	})

	return router
}

/*
GET /api/v1/characters.

Description: Lists the acting user's characters.

Response:
  - 200: []Character: Success
  - 401: 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) listOwned(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	characters, err := handler.service.ListOwned(request.Context(), actorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, characters)
}

/*
GET /api/v1/characters/{id}.

Description: Retrieves a character with its role set.

Response:
  - 200: Character: Success
  - 404: 404: ErrNotFound: Character not found
*/
func (handler *Handler) getCharacter(writer http.ResponseWriter, request *http.Request) {
	characterID := requestutil.ID(request, "id")

	character, err := handler.service.GetCharacter(request.Context(), characterID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, character)
}

/*
POST /api/v1/characters.

Description: Creates a character under a tag. The acting user becomes owner
and must hold active membership in the tag's guild.

Request (Body):
  - { "name": "string", "tag_id": "string" }

Response:
  - 201: Character: Created object
  - 403: 403: ErrForbidden: Active membership required
  - 409: 409: Conflict: Character name already taken
*/
func (handler *Handler) createCharacter(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Name  string `json:"name"`
		TagID string `json:"tag_id"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	character, err := handler.service.CreateCharacter(request.Context(), actorID, input.Name, input.TagID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, character)
}

/*
PATCH /api/v1/characters/{id}/tag.

Description: Moves a character to another tag. The destination tag's guild
must be one where the owner holds active membership.

Request (Body):
  - { "tag_id": "string" }

Response:
  - 200: Character: Updated object
  - 403: 403: ErrForbidden: Owner or officer required
  - 422: 422: InvalidState: Orphaned character or cross-guild move
*/
func (handler *Handler) reassignTag(writer http.ResponseWriter, request *http.Request) {
	characterID := requestutil.ID(request, "id")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		TagID string `json:"tag_id"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	character, err := handler.service.ReassignTag(request.Context(), actorID, characterID, input.TagID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, character)
}

/*
POST /api/v1/characters/{id}/roles.

Description: Grants a combat-context role. Swapping the held exclusive role
(WOE vs WOE_TE) requires the explicit replace flag.

Request (Body):
  - { "role": "WOE" | "WOE_TE" | "PVE", "replace": bool }

Response:
  - 200: Character: Updated object (role set included)
  - 403: 403: ErrForbidden: Owner or officer required
  - 422: 422: InvalidState: Exclusive conflict without replace flag
*/
func (handler *Handler) assignRole(writer http.ResponseWriter, request *http.Request) {
	characterID := requestutil.ID(request, "id")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Role    Role `json:"role"`
		Replace bool `json:"replace"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	character, err := handler.service.AssignRole(request.Context(), actorID, characterID, input.Role, input.Replace)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, character)
}

/*
DELETE /api/v1/characters/{id}/roles/{role}.

Description: Revokes a held role.

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Owner or officer required
  - 404: 404: ErrNotFound: Role not held
*/
func (handler *Handler) removeRole(writer http.ResponseWriter, request *http.Request) {
	characterID := requestutil.ID(request, "id")
	role := Role(requestutil.Param(request, "role"))

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RemoveRole(request.Context(), actorID, characterID, role); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/characters/{id}.

Description: Deletes a character, cascading roles and clearing its party slot.

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Owner or officer required
  - 404: 404: ErrNotFound: Character not found
*/
func (handler *Handler) deleteCharacter(writer http.ResponseWriter, request *http.Request) {
	characterID := requestutil.ID(request, "id")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteCharacter(request.Context(), actorID, characterID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

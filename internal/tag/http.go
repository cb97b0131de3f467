/*
Package tag provides the HTTP interface for sub-guild tag management.

# Routing Strategy

  - Public (v1): Listing a guild's tags.
  - Authenticated: All mutations; officer authorization enforced by [Service].

Tag routes are mounted both under /guilds/{guildID}/tags (creation, listing)
and /tags/{id} (item-level operations).
*/
package tag

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tranquangduy/midgard/internal/platform/request"
	"github.com/tranquangduy/midgard/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for tag operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new tag [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GuildRoutes returns the collection-level router mounted under a guild.
func (handler *Handler) GuildRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listTags)
	router.Post("/", handler.createTag)

	return router
}

// Routes returns the item-level router mounted at /tags.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Route("/{id}", func(subRouter chi.Router) {
		subRouter.Get("/", handler.getTag)
		subRouter.Patch("/", handler.renameTag)
		subRouter.Patch("/reserve", handler.setReserveFlag)
		subRouter.Delete("/", handler.deleteTag)
	})

	return router
}

/*
GET /api/v1/guilds/{guildID}/tags.

Description: Lists all tags of a guild.

Response:
  - 200: []Tag: Success
  - 404: 404: ErrNotFound: Guild not found
*/
func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	guildID := requestutil.ID(request, "guildID")

	tags, err := handler.service.ListTags(request.Context(), guildID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tags)
}

/*
GET /api/v1/tags/{id}.

Description: Retrieves a single tag.

Response:
  - 200: Tag: Success
  - 404: 404: ErrNotFound: Tag not found
*/
func (handler *Handler) getTag(writer http.ResponseWriter, request *http.Request) {
	tagID := requestutil.ID(request, "id")

	tag, err := handler.service.GetTag(request.Context(), tagID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tag)
}

/*
POST /api/v1/guilds/{guildID}/tags.

Description: Creates a tag under the guild. Names are unique per guild.

Request (Body):
  - { "name": "string", "is_reserve": bool }

Response:
  - 201: Tag: Created object
  - 403: 403: ErrForbidden: Officer role required
  - 409: 409: Conflict: Tag name already used in this guild
*/
func (handler *Handler) createTag(writer http.ResponseWriter, request *http.Request) {
	guildID := requestutil.ID(request, "guildID")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Name      string `json:"name"`
		IsReserve bool   `json:"is_reserve"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag, err := handler.service.CreateTag(request.Context(), actorID, guildID, input.Name, input.IsReserve)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, tag)
}

/*
PATCH /api/v1/tags/{id}.

Description: Renames a tag.

Request (Body):
  - { "name": "string" }

Response:
  - 200: Tag: Updated object
  - 403: 403: ErrForbidden: Officer role required
  - 409: 409: Conflict: Tag name already used in this guild
*/
func (handler *Handler) renameTag(writer http.ResponseWriter, request *http.Request) {
	tagID := requestutil.ID(request, "id")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag, err := handler.service.RenameTag(request.Context(), actorID, tagID, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tag)
}

/*
PATCH /api/v1/tags/{id}/reserve.

Description: Toggles a tag's reserve marker.

Request (Body):
  - { "is_reserve": bool }

Response:
  - 200: Tag: Updated object
  - 403: 403: ErrForbidden: Officer role required
*/
func (handler *Handler) setReserveFlag(writer http.ResponseWriter, request *http.Request) {
	tagID := requestutil.ID(request, "id")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		IsReserve bool `json:"is_reserve"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag, err := handler.service.SetReserveFlag(request.Context(), actorID, tagID, input.IsReserve)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tag)
}

/*
DELETE /api/v1/tags/{id}.

Description: Deletes an unused tag. Tags referenced by characters cannot be
removed until those characters are reassigned or deleted.

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Officer role required
  - 422: 422: InvalidState: Tag is still referenced by characters
*/
func (handler *Handler) deleteTag(writer http.ResponseWriter, request *http.Request) {
	tagID := requestutil.ID(request, "id")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteTag(request.Context(), actorID, tagID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

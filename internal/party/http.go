/*
Package party provides the HTTP interface for party coordination.

# Routing Strategy

  - Public (v1): Listing a guild's parties and a party's slots.
  - Authenticated: All mutations; leader authorization enforced by [Service].

Party routes are mounted both under /guilds/{guildID}/parties (creation,
listing) and /parties/{id} (item-level operations).
*/
package party

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tranquangduy/midgard/internal/platform/request"
	"github.com/tranquangduy/midgard/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for party operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new party [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GuildRoutes returns the collection-level router mounted under a guild.
func (handler *Handler) GuildRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listParties)
	router.Post("/", handler.createParty)

	return router
}

// Routes returns the item-level router mounted at /parties.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Route("/{id}", func(subRouter chi.Router) {
		subRouter.Get("/", handler.getParty)
		subRouter.Delete("/", handler.disbandParty)
		subRouter.Post("/leadership", handler.transferLeadership)
		subRouter.Get("/slots", handler.listSlots)
		subRouter.Post("/slots", handler.addCharacter)
		subRouter.Delete("/slots/{characterID}", handler.removeCharacter)
	})

	return router
}

/*
GET /api/v1/guilds/{guildID}/parties.

Description: Lists all parties of a guild.

Response:
  - 200: []Party: Success
  - 404: 404: ErrNotFound: Guild not found
*/
func (handler *Handler) listParties(writer http.ResponseWriter, request *http.Request) {
	guildID := requestutil.ID(request, "guildID")

	parties, err := handler.service.ListParties(request.Context(), guildID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, parties)
}

/*
GET /api/v1/parties/{id}.

Description: Retrieves a single party.

Response:
  - 200: Party: Success
  - 404: 404: ErrNotFound: Party not found
*/
func (handler *Handler) getParty(writer http.ResponseWriter, request *http.Request) {
	partyID := requestutil.ID(request, "id")

	party, err := handler.service.GetParty(request.Context(), partyID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, party)
}

/*
POST /api/v1/guilds/{guildID}/parties.

Description: Forms a party with the acting user as leader. A user leads at
most one party system-wide.

Request (Body):
  - { "name": "string" }

Response:
  - 201: Party: Created object
  - 403: 403: ErrForbidden: Active membership required
  - 409: 409: Conflict: Duplicate name or user already leads a party
*/
func (handler *Handler) createParty(writer http.ResponseWriter, request *http.Request) {
	guildID := requestutil.ID(request, "guildID")

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

	party, err := handler.service.CreateParty(request.Context(), actorID, guildID, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, party)
}

/*
POST /api/v1/parties/{id}/leadership.

Description: Transfers party leadership to another active guild member.

Request (Body):
  - { "new_leader_id": "string" }

Response:
  - 200: Party: Updated object
  - 403: 403: ErrForbidden: Only the current leader may transfer
  - 409: 409: Conflict: New leader already leads a party
  - 422: 422: InvalidState: New leader lacks active membership
*/
func (handler *Handler) transferLeadership(writer http.ResponseWriter, request *http.Request) {
	partyID := requestutil.ID(request, "id")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		NewLeaderID string `json:"new_leader_id"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	party, err := handler.service.TransferLeadership(request.Context(), actorID, partyID, input.NewLeaderID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, party)
}

/*
GET /api/v1/parties/{id}/slots.

Description: Lists the characters currently seated in the party.

Response:
  - 200: []Slot: Success
  - 404: 404: ErrNotFound: Party not found
*/
func (handler *Handler) listSlots(writer http.ResponseWriter, request *http.Request) {
	partyID := requestutil.ID(request, "id")

	slots, err := handler.service.ListSlots(request.Context(), partyID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, slots)
}

/*
POST /api/v1/parties/{id}/slots.

Description: Seats a character in the party. A character in another party
must be removed there first.

Request (Body):
  - { "character_id": "string" }

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Only the party leader may manage slots
  - 422: 422: InvalidState: Character already seated elsewhere
*/
func (handler *Handler) addCharacter(writer http.ResponseWriter, request *http.Request) {
	partyID := requestutil.ID(request, "id")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		CharacterID string `json:"character_id"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.AddCharacter(request.Context(), actorID, partyID, input.CharacterID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/parties/{id}/slots/{characterID}.

Description: Vacates a character's slot.

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Only the party leader may manage slots
  - 404: 404: ErrNotFound: Character not seated in this party
*/
func (handler *Handler) removeCharacter(writer http.ResponseWriter, request *http.Request) {
	partyID := requestutil.ID(request, "id")
	characterID := requestutil.ID(request, "characterID")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RemoveCharacter(request.Context(), actorID, partyID, characterID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/parties/{id}.

Description: Disbands a party, vacating every member slot.

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Only the party leader may disband
  - 404: 404: ErrNotFound: Party not found
*/
func (handler *Handler) disbandParty(writer http.ResponseWriter, request *http.Request) {
	partyID := requestutil.ID(request, "id")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DisbandParty(request.Context(), actorID, partyID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

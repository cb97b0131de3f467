/*
Package guild provides the HTTP interface for guild and membership management.

# Routing Strategy

  - Public (v1): Listing and detail views (GET /guilds).
  - Authenticated: Every mutating command requires a resolved actor; fine-
    grained authorization (leader, officer) is enforced by the [Service].

The handler translates between the REST layer and the [Service] domain.
*/
package guild

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tranquangduy/midgard/internal/platform/request"
	"github.com/tranquangduy/midgard/internal/platform/respond"
	"github.com/tranquangduy/midgard/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for guild operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new guild [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with guild-related endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery
	router.Get("/", handler.listGuilds)

	// ## Registry Commands (Auth Required)
	// Note: Authentication middleware is wrapped when mounting this router.
	router.Post("/", handler.createGuild)

	// The item segment accepts a UUID or slug for reads; commands require the UUID.
	router.Route("/{id}", func(subRouter chi.Router) {
		subRouter.Get("/", handler.getGuild)
		subRouter.Delete("/", handler.deleteGuild)
		subRouter.Post("/leadership", handler.transferLeadership)

		// ## Membership Workflow
		subRouter.Get("/members", handler.listMembers)
		subRouter.Post("/invites", handler.invite)
		subRouter.Post("/invites/accept", handler.acceptInvite)
		subRouter.Post("/invites/decline", handler.declineInvite)
		subRouter.Delete("/invites/{userID}", handler.revokeInvite)
		subRouter.Patch("/members/{userID}", handler.setMemberRole)
		subRouter.Post("/leave", handler.leave)
		subRouter.Delete("/members/{userID}", handler.kick)
	})

	return router
}

// # Registry Endpoints

/*
GET /api/v1/guilds.

Description: Retrieves a paginated list of guilds.
Supports searching by name and filtering by leader.

Request:
  - q: string (Name search)
  - leader: string (Leader UUID)
  - limit: int
  - page: int

Response:
  - 200: []Guild: Paginated list
*/
func (handler *Handler) listGuilds(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query:    queryParams.Get("q"),
		LeaderID: queryParams.Get("leader"),
	}

	guilds, total, err := handler.service.ListGuilds(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, guilds, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/guilds/{id}.

Description: Retrieves full details of a guild using its UUID or unique slug.

Request:
  - id: string (UUID or Slug)

Response:
  - 200: Guild: Success
  - 404: 404: ErrNotFound: Guild not found
*/
func (handler *Handler) getGuild(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.Param(request, "id")

	guild, err := handler.service.GetGuild(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, guild)
}

/*
POST /api/v1/guilds.

Description: Registers a new guild. The acting user becomes leader and
receives an active officer membership atomically.

Request (Body):
  - { "name": "string" }

Response:
  - 201: Guild: Created object
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Authentication required
  - 409: 409: Conflict: Guild name already taken
*/
func (handler *Handler) createGuild(writer http.ResponseWriter, request *http.Request) {
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

	guild, err := handler.service.CreateGuild(request.Context(), actorID, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, guild)
}

/*
POST /api/v1/guilds/{id}/leadership.

Description: Transfers guild leadership to an active member. The new leader
is promoted to officer in the same transaction.

Request:
  - id: string (Guild UUID)
  - body: { "new_leader_id": "string" }

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Acting user is not the leader
  - 422: 422: InvalidState: Target is not an active member
*/
func (handler *Handler) transferLeadership(writer http.ResponseWriter, request *http.Request) {
	guildID := requestutil.ID(request, "id")

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

	if err := handler.service.TransferLeadership(request.Context(), actorID, guildID, input.NewLeaderID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/guilds/{id}.

Description: Deletes an emptied guild. All active members other than the
leader must have been removed beforehand.

Request:
  - id: string (Guild UUID)

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Acting user is not the leader
  - 422: 422: InvalidState: Guild still has active members
*/
func (handler *Handler) deleteGuild(writer http.ResponseWriter, request *http.Request) {
	guildID := requestutil.ID(request, "id")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteGuild(request.Context(), actorID, guildID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Membership Endpoints

/*
GET /api/v1/guilds/{id}/members.

Description: Lists the full membership roster, pending invites included.

Request:
  - id: string (Guild UUID)

Response:
  - 200: []Member: Success
  - 404: 404: ErrNotFound: Guild not found
*/
func (handler *Handler) listMembers(writer http.ResponseWriter, request *http.Request) {
	guildID := requestutil.ID(request, "id")

	members, err := handler.service.ListMembers(request.Context(), guildID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, members)
}

/*
POST /api/v1/guilds/{id}/invites.

Description: Invites a user to the guild, creating a pending membership.

Request:
  - id: string (Guild UUID)
  - body: { "user_id": "string" }

Response:
  - 201: Member: Pending membership
  - 403: 403: ErrForbidden: Officer role required
  - 409: 409: Conflict: User already has a relationship with this guild
*/
func (handler *Handler) invite(writer http.ResponseWriter, request *http.Request) {
	guildID := requestutil.ID(request, "id")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		UserID string `json:"user_id"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.service.Invite(request.Context(), actorID, guildID, input.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, member)
}

/*
POST /api/v1/guilds/{id}/invites/accept.

Description: Accepts the acting user's pending invite.

Request:
  - id: string (Guild UUID)

Response:
  - 204: No Content: Success
  - 422: 422: InvalidState: No pending invite
*/
func (handler *Handler) acceptInvite(writer http.ResponseWriter, request *http.Request) {
	guildID := requestutil.ID(request, "id")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.AcceptInvite(request.Context(), actorID, guildID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/guilds/{id}/invites/decline.

Description: Declines the acting user's own pending invite.

Request:
  - id: string (Guild UUID)

Response:
  - 204: No Content: Success
  - 422: 422: InvalidState: No pending invite
*/
func (handler *Handler) declineInvite(writer http.ResponseWriter, request *http.Request) {
	guildID := requestutil.ID(request, "id")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeclineInvite(request.Context(), actorID, guildID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/guilds/{id}/invites/{userID}.

Description: Revokes a target user's pending invite.

Request:
  - id: string (Guild UUID)
  - userID: string (Invited user UUID)

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Officer role required
  - 422: 422: InvalidState: No pending invite
*/
func (handler *Handler) revokeInvite(writer http.ResponseWriter, request *http.Request) {
	guildID := requestutil.ID(request, "id")
	targetUserID := requestutil.ID(request, "userID")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RevokeInvite(request.Context(), actorID, guildID, targetUserID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
PATCH /api/v1/guilds/{id}/members/{userID}.

Description: Changes an active member's role. The guild leader cannot be
demoted below officer.

Request:
  - id: string (Guild UUID)
  - userID: string (Target user UUID)
  - body: { "role": "MEMBER" | "OFFICER" }

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Officer role required
  - 422: 422: InvalidState: Leader demotion or inactive target
*/
func (handler *Handler) setMemberRole(writer http.ResponseWriter, request *http.Request) {
	guildID := requestutil.ID(request, "id")
	targetUserID := requestutil.ID(request, "userID")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Role Role `json:"role"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SetMemberRole(request.Context(), actorID, guildID, targetUserID, input.Role); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/guilds/{id}/leave.

Description: Removes the acting user's active membership. Leaders must
transfer leadership first; party leaders must disband or hand over parties.

Request:
  - id: string (Guild UUID)

Response:
  - 204: No Content: Success
  - 422: 422: InvalidState: Leadership must be resolved first
*/
func (handler *Handler) leave(writer http.ResponseWriter, request *http.Request) {
	guildID := requestutil.ID(request, "id")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Leave(request.Context(), actorID, guildID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/guilds/{id}/members/{userID}.

Description: Kicks an active member from the guild.

Request:
  - id: string (Guild UUID)
  - userID: string (Target user UUID)

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Officer role required
  - 422: 422: InvalidState: Leadership must be resolved first
*/
func (handler *Handler) kick(writer http.ResponseWriter, request *http.Request) {
	guildID := requestutil.ID(request, "id")
	targetUserID := requestutil.ID(request, "userID")

	actorID, err := requestutil.RequiredActorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Kick(request.Context(), actorID, guildID, targetUserID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

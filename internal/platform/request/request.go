// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tranquangduy/midgard/internal/platform/apperr"
	"github.com/tranquangduy/midgard/internal/platform/ctxutil"
	"github.com/tranquangduy/midgard/internal/platform/sec"
	"github.com/tranquangduy/midgard/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID retrieves a named URL parameter (UUID/Slug) from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Claims extracts the verified identity-provider claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetClaims(request.Context())
}

/*
RequiredActorID returns the internal user id of the acting user.

The id is placed in context by the identity-resolution middleware after the
provider token is verified and the local account record is synced.

Returns:
  - string: Internal user UUID
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredActorID(request *http.Request) (string, error) {

	// Get the resolved actor id
	actorID := ctxutil.GetActorID(request.Context())

	// If the user is not authenticated, return an error
	if actorID == "" {
		return "", apperr.Unauthorized("Authentication required")
	}

	return actorID, nil
}

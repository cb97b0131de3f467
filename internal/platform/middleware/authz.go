// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

// Package middleware provides the HTTP middleware chain for the Midgard roster API.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, AuthZ/AuthN, Rate Limiting, and CORS.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tranquangduy/midgard/internal/platform/apperr"
	"github.com/tranquangduy/midgard/internal/platform/constants"
	"github.com/tranquangduy/midgard/internal/platform/ctxutil"
	"github.com/tranquangduy/midgard/internal/platform/respond"
	"github.com/tranquangduy/midgard/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the `sec`
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// IdentityResolver maps verified provider claims to the internal user record.
//
// The engine trusts the external identity provider as given; Resolve performs
// the sync-on-login upsert and returns the internal user id.
type IdentityResolver interface {
	Resolve(ctx context.Context, claims *sec.AuthClaims) (string, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header,
// then resolves the external identity to the internal user record.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Resolve claims to an internal user id via [IdentityResolver].
//  5. Inject claims and actor id into the request context for downstream use.
func Authenticate(verifier TokenVerifier, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			tokenStr := parts[1]
			claims, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 4. Identity Resolution ────────────────────────────────────────
			actorID, err := resolver.Resolve(request.Context(), claims)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 5. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithClaims(request.Context(), claims)
			ctx = ctxutil.WithActorID(ctx, actorID)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if a resolved actor id exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetActorID(request.Context()) == "" {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireEngineKey gates trusted server-to-server command routes behind the
// shared engine API key.
//
// # Usage
//
// Only the bcrypt hash of the key is held in configuration. An empty hash
// disables the check (single-deployment setups where the outer API layer and
// the engine share a network boundary).
func RequireEngineKey(keyHash string, check func(plain, hash string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if keyHash == "" {
				next.ServeHTTP(writer, request)
				return
			}

			presented := request.Header.Get(constants.HeaderEngineKey)
			if presented == "" || !check(presented, keyHash) {
				respond.Error(writer, request, apperr.Forbidden("Invalid engine key"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

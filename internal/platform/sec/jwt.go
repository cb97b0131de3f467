// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

// Package sec provides cryptographic primitives for the trust boundary.
//
// # Architecture
//
// Midgard delegates login and session issuance to an external identity
// provider. This package only VERIFIES inbound RS256 access tokens against the
// provider's public key; there is deliberately no signing path in the engine.
package sec

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside an identity-provider
// access token.
//
// # Why custom claims?
//
// The provider embeds the user's profile directly in the token so the engine
// can sync the local account record WITHOUT calling back to the provider on
// every request. Claim names are abbreviated to keep the payload small.
type AuthClaims struct {
	jwt.RegisteredClaims

	// ExternalID is the provider-scoped unique identity (mirrors Subject).
	ExternalID string `json:"eid"`
	Name       string `json:"nam"`
	Email      string `json:"eml,omitempty"`
	Contact    string `json:"cta"`
	Age        int    `json:"age"`
}

// TokenVerifier validates RS256 tokens issued by the external identity provider.
type TokenVerifier struct {
	publicKey *rsa.PublicKey
	issuer    string
}

// NewTokenVerifier creates a new TokenVerifier.
// It reads the provider's RSA public key from the given filesystem path.
func NewTokenVerifier(publicKeyPath, issuer string) (*TokenVerifier, error) {
	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return &TokenVerifier{
		publicKey: publicKey,
		issuer:    issuer,
	}, nil
}

// VerifyToken checks the signature, issuer, and validity of a JWT string.
func (verifier *TokenVerifier) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
			}
			return verifier.publicKey, nil
		},
		jwt.WithIssuer(verifier.issuer),
	)

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	// The provider mirrors the external id into the subject; accept either
	// but never an empty identity.
	if claims.ExternalID == "" {
		claims.ExternalID = claims.Subject
	}
	if claims.ExternalID == "" {
		return nil, fmt.Errorf("sec: token carries no identity")
	}

	return claims, nil
}

// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashKey hashes a plain-text engine API key using the bcrypt algorithm.
//
// The outer API layer authenticates its server-to-server calls with a shared
// key; only the hash is stored in configuration.
func HashKey(plainTextKey string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextKey), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash key: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckKeyHash compares a plain-text engine API key with its hashed version.
func CheckKeyHash(plainTextKey, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextKey))
	return err == nil
}

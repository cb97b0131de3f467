// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// # Concurrency Contract
//
// The roster engine validates every invariant inside the transaction that
// mutates it, but races between two concurrent transactions ultimately land
// on a Postgres constraint (unique index, serialization failure). This package
// translates those SQLSTATEs into retryable [apperr.AppError] conflicts so
// callers see a typed failure instead of silent corruption.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tranquangduy/midgard/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// The action string names the failed operation for server-side logs only.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// Already classified upstream (typed invariant failure inside a transaction).
	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. SQLSTATE classification
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		switch pgError.Code {
		case pgerrcode.UniqueViolation:
			// A concurrent transaction won the race on a uniqueness constraint.
			conflict := apperr.RetryableConflict("Resource already exists")
			conflict.Cause = err
			return conflict

		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			conflict := apperr.RetryableConflict("Concurrent update conflict, retry the request")
			conflict.Cause = err
			return conflict

		case pgerrcode.ForeignKeyViolation:
			// The referenced row vanished between validation and write.
			notFound := apperr.NotFound("Referenced resource")
			notFound.Cause = err
			return notFound
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

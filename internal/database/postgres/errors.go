package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/koustreak/rsadapter/internal/errs"
)

// SQLSTATE codes with a dedicated kind.
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgErrInsufficientPrivilege = "42501"
	pgClassConnection          = "08"
	pgClassInvalidAuth         = "28"
)

// mapError translates pgx / pgconn native errors into *errs.Error, keeping
// the server SQLSTATE in Code. A nil err maps to nil.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	var e *errs.Error
	if errors.As(err, &e) {
		return err
	}

	// Context cancellation / deadline exceeded
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	// No rows
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	// Server-side error (SQLSTATE codes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		kind := errs.ErrKindQueryFailed
		switch {
		case strings.HasPrefix(pgErr.Code, pgClassConnection):
			kind = errs.ErrKindConnectionFailed
		case strings.HasPrefix(pgErr.Code, pgClassInvalidAuth), pgErr.Code == pgErrInsufficientPrivilege:
			kind = errs.ErrKindPermissionDenied
		}
		return errs.WithCode(kind, msg, pgErr.Code, err)
	}

	// Scan and encode errors happen client-side after a successful round trip.
	var scanErr pgx.ScanArgError
	if errors.As(err, &scanErr) {
		return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
	}

	// Fallthrough: connection-level errors (TLS, network, auth)
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

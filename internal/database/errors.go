package database

import (
	"errors"

	"github.com/koustreak/ChunkRi/internal/errs"
)

// Constructor helpers for errors that originate inside this package.
// Driver packages classify their own native errors before they get here.

func errQuery(msg string, cause error) *errs.Error {
	return errs.Wrap(errs.ErrKindQueryFailed, msg, cause)
}

func errInvalidInput(msg string) *errs.Error {
	return errs.New(errs.ErrKindInvalidInput, msg)
}

func errDecode(msg string, cause error) *errs.Error {
	return errs.Wrap(errs.ErrKindDecodeFailed, msg, cause)
}

func errTimeout(msg string, cause error) *errs.Error {
	return errs.Wrap(errs.ErrKindTimeout, msg, cause)
}

// ensureKind returns err unchanged when a driver has already classified it,
// and wraps it as a query failure otherwise.
func ensureKind(err error, msg string) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return err
	}
	return errQuery(msg, err)
}

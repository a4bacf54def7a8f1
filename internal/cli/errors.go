package cli

import (
	"errors"

	"github.com/erpsync/ebsconn/internal/connerr"
	"github.com/erpsync/ebsconn/internal/resp"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	ErrConfigInvalid = "CONFIG_INVALID"

	ErrSchemaInvalid   = "SCHEMA_INVALID"
	ErrUnknownKind     = "UNKNOWN_KIND"
	ErrUnsupportedKind = "UNSUPPORTED_KIND"

	ErrObjectNotFound = "OBJECT_NOT_FOUND"

	ErrDatabaseError = "DATABASE_ERROR"

	ErrQueryInvalid = "QUERY_INVALID"

	ErrFileWriteError = "FILE_WRITE_ERROR"

	ErrInvalidInput    = "INVALID_INPUT"
	ErrMissingArgument = "MISSING_ARGUMENT"

	ErrInternal = "INTERNAL_ERROR"
)

// errorCode classifies an error returned by the connector.
func errorCode(err error) string {
	switch {
	case connerr.IsDataAccess(err):
		return ErrDatabaseError
	case errors.Is(err, connerr.ErrUnsupportedKind):
		return ErrUnsupportedKind
	case errors.Is(err, resp.ErrNotFound):
		return ErrObjectNotFound
	}
	return ErrInternal
}

// Package errs defines the error taxonomy shared across the engine.
//
// Callers classify failures with errors.Is against the sentinels below;
// sites wrap them with context via cockroachdb/errors.
package errs

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrParse is returned for malformed identifier or path strings.
	ErrParse = errors.New("malformed identifier")

	// ErrValidation is returned when a query is structurally invalid
	// (no measure, no drilldown or cut, unrecognized option value).
	ErrValidation = errors.New("invalid query")

	// ErrNotFound is returned when a cube, level, measure or column
	// cannot be resolved against the schema.
	ErrNotFound = errors.New("not found")

	// ErrConnection covers pool exhaustion, network failures and timeouts.
	ErrConnection = errors.New("connection failure")

	// ErrTypeConversion is returned when a native column type has no
	// DataFrame representation.
	ErrTypeConversion = errors.New("unsupported column type")

	// ErrExecution is returned when the backend rejects generated SQL.
	ErrExecution = errors.New("query execution failed")
)

package database

import (
	"errors"

	"github.com/lib/pq"
)

// SQLSTATE classes that describe a problem with the row being written rather
// than with the connection or server.
const (
	classDataException       = "22"
	classIntegrityConstraint = "23"

	codeUniqueViolation = "23505"
)

// RowError reports whether err was raised by the server about the row itself
// (bad value, constraint violation). Such errors fail one row of a bulk write;
// anything else is treated as fatal by callers.
func RowError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil, false
	}
	switch string(pqErr.Code.Class()) {
	case classDataException, classIntegrityConstraint:
		return pqErr, true
	}
	return pqErr, false
}

// IsUniqueViolation reports a duplicate key error.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == codeUniqueViolation
}

// Describe renders a row-level error as a short message for API clients.
func Describe(pqErr *pq.Error) string {
	if pqErr == nil {
		return ""
	}
	if string(pqErr.Code) == codeUniqueViolation {
		if pqErr.Constraint != "" {
			return "duplicate value violates " + pqErr.Constraint
		}
		return "duplicate value"
	}
	if pqErr.Detail != "" {
		return pqErr.Message + ": " + pqErr.Detail
	}
	return pqErr.Message
}

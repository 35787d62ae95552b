package services

import (
	pkgerrors "wikigraph-backend/pkg/errors"
)

func errEmptyQuery() error {
	return pkgerrors.NewValidationError("query cannot be empty")
}

// failureKind buckets resolve failures for metric labels
func failureKind(err error) string {
	switch {
	case pkgerrors.IsNotFound(err):
		return "not_found"
	case pkgerrors.IsSourceUnavailable(err):
		return "source_unavailable"
	default:
		return "other"
	}
}

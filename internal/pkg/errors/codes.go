package errors

import "net/http"

const (
	CodeDataLoad          = "DATA_LOAD_ERROR"
	CodeInvalidCoordinate = "INVALID_COORDINATE"
	CodeNoPath            = "NO_PATH"
	CodeSerialization     = "SERIALIZATION_ERROR"
	CodeValidation        = "VALIDATION_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
)

var (
	ErrDataLoad = New(
		CodeDataLoad,
		"Required data could not be loaded",
		http.StatusServiceUnavailable,
	)

	ErrInvalidCoordinate = New(
		CodeInvalidCoordinate,
		"Coordinate cannot be mapped to a graph node",
		http.StatusBadRequest,
	)

	ErrNoPath = New(
		CodeNoPath,
		"No path between the requested points",
		http.StatusNotFound,
	)

	ErrSerialization = New(
		CodeSerialization,
		"Persisted graph is corrupt or unreadable",
		http.StatusInternalServerError,
	)

	ErrValidation = New(
		CodeValidation,
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		CodeInternal,
		"Internal server error",
		http.StatusInternalServerError,
	)
)

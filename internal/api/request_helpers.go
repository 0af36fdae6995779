package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
)

// getPathUUID extracts a UUID from the URL path parameters.
// It parses and validates the UUID, handling common error cases.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// parseOptionalUUID parses a request-supplied ID string. An empty string
// yields uuid.Nil, which services treat as "assign one".
func parseOptionalUUID(field, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(field, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// parseUUIDList parses a list of request-supplied ID strings.
func parseUUIDList(field string, values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, domain.NewValidationError(field, "contains an invalid ID", domain.ErrInvalidID)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

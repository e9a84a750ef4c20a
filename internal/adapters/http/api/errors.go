package api

import (
	"errors"
	"net/http"

	"github.com/okian/podium/internal/adapters/table"
	"github.com/okian/podium/internal/domain/features"
	"github.com/okian/podium/internal/domain/podium"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// classify maps a domain or table error to an HTTP status and error code.
func classify(err error) (int, string) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, table.ErrMissingColumn):
		return http.StatusBadRequest, "missing_column"
	case errors.Is(err, table.ErrMalformed),
		errors.Is(err, table.ErrInvalidValue),
		errors.Is(err, features.ErrInvalidRow),
		errors.Is(err, features.ErrDuplicateKey),
		errors.Is(err, podium.ErrNoEntries),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "invalid_table"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

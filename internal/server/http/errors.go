package httpserver

import (
	"errors"
	"net/http"

	"github.com/helixir/research-metadata-api/internal/domain"
)

// apiError is one row of the error table. Every non-2xx body is built from
// one of these.
type apiError struct {
	Code        int
	Message     string
	Description string
}

var (
	errInvalidQuery = apiError{
		Code:        http.StatusUnprocessableEntity,
		Message:     "Invalid query parameter",
		Description: "Required query parameter is missing or has invalid format.",
	}
	errNotFound = apiError{
		Code:        http.StatusNotFound,
		Message:     "Resource not found",
		Description: "The requested paper or resource could not be found.",
	}
	errUpstreamFailed = apiError{
		Code:        http.StatusBadGateway,
		Message:     "Upstream provider error",
		Description: "Failed to fetch data from OpenAlex or Crossref.",
	}
	errInternal = apiError{
		Code:        http.StatusInternalServerError,
		Message:     "Internal server error",
		Description: "An unexpected error occurred on the server.",
	}

	errMethodNotAllowed = apiError{
		Code:        http.StatusMethodNotAllowed,
		Message:     "Method not allowed",
		Description: "The endpoint does not support this HTTP method.",
	}

	errPaperNotFound = apiError{
		Code:        http.StatusNotFound,
		Message:     "Paper not found",
		Description: "No paper was found for the given DOI in OpenAlex and Crossref.",
	}
)

// errorEnvelope is the JSON body of every error response.
type errorEnvelope struct {
	Status      string         `json:"status"`
	Code        int            `json:"code"`
	Message     string         `json:"message"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details"`
}

func (e apiError) envelope(details map[string]any) errorEnvelope {
	return errorEnvelope{
		Status:      "error",
		Code:        e.Code,
		Message:     e.Message,
		Description: e.Description,
		Details:     details,
	}
}

// writeAPIError writes the envelope for e with the given details.
func writeAPIError(w http.ResponseWriter, r *http.Request, e apiError, details map[string]any) {
	writeJSON(w, r, e.Code, e.envelope(details))
}

// lookupUpstreamFailure names the failing provider in the description, the
// way lookup reports it.
func lookupUpstreamFailure(provider domain.Provider) apiError {
	e := errUpstreamFailed
	e.Description = "Failed to fetch data from " + provider.DisplayName() + "."
	return e
}

// errorScope selects the endpoint-specific texts of the error table.
type errorScope int

const (
	scopeCollection errorScope = iota
	scopeLookup
)

// classifyError maps a pipeline error onto the error table.
func classifyError(err error, scope errorScope) (apiError, map[string]any) {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		upstream   *domain.UpstreamError
	)

	switch {
	case errors.As(err, &validation):
		return errInvalidQuery, map[string]any{"param": validation.Param, "error": validation.Message}

	case errors.As(err, &notFound):
		if scope == scopeLookup {
			return errPaperNotFound, map[string]any{"doi": notFound.ID}
		}
		return errNotFound, map[string]any{"id": notFound.ID}

	case errors.As(err, &upstream):
		details := map[string]any{
			"provider": upstream.Provider.String(),
			"error":    upstreamMessage(upstream),
		}
		if scope == scopeLookup {
			return lookupUpstreamFailure(upstream.Provider), details
		}
		return errUpstreamFailed, details

	case errors.Is(err, domain.ErrInvalidQuery):
		return errInvalidQuery, nil

	case errors.Is(err, domain.ErrNotFound):
		return errNotFound, nil

	default:
		return errInternal, map[string]any{"error": err.Error()}
	}
}

func upstreamMessage(e *domain.UpstreamError) string {
	if e.Err == nil {
		return e.Error()
	}
	return e.Err.Error()
}

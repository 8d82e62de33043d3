package papersources

import (
	"errors"
	"net/http"

	"github.com/helixir/research-metadata-api/internal/domain"
)

// WrapUpstream converts a failure from GetJSON into a *domain.UpstreamError,
// carrying the provider's status code when a response was received.
func WrapUpstream(provider domain.Provider, err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return domain.NewUpstreamError(provider, statusErr.StatusCode, err)
	}
	return domain.NewUpstreamError(provider, 0, err)
}

// IsNotFoundStatus reports whether err is a provider's 404 response.
func IsNotFoundStatus(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

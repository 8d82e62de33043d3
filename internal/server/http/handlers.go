package httpserver

import (
	"net/http"

	"github.com/helixir/research-metadata-api/internal/observability"
)

// healthHandler returns liveness status. It never consults the providers.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}

// searchPapers handles GET /v1/papers/search.
func (s *Server) searchPapers(w http.ResponseWriter, r *http.Request) {
	params, err := s.params.parseCollection(r.URL.Query(), false)
	if err != nil {
		s.writeServiceError(w, r, err, scopeCollection)
		return
	}

	papers, err := s.service.Search(r.Context(), params.Query, params.Years(), params.Limit)
	if err != nil {
		s.writeServiceError(w, r, err, scopeCollection)
		return
	}

	results := domainPapersToResponse(papers)
	writeJSON(w, r, http.StatusOK, searchResponse{
		Query:   params.Query,
		Filters: filtersResponse{FromYear: params.FromYear, ToYear: params.ToYear},
		Count:   len(results),
		Results: results,
	})
}

// paperTrends handles GET /v1/trends.
func (s *Server) paperTrends(w http.ResponseWriter, r *http.Request) {
	params, err := s.params.parseCollection(r.URL.Query(), true)
	if err != nil {
		s.writeServiceError(w, r, err, scopeCollection)
		return
	}

	report, err := s.service.Trends(r.Context(), params.Query, params.Years(), params.Limit, params.Top)
	if err != nil {
		s.writeServiceError(w, r, err, scopeCollection)
		return
	}

	writeJSON(w, r, http.StatusOK, trendsReportToResponse(params, report))
}

// lookupPaper handles GET /v1/papers/lookup.
func (s *Server) lookupPaper(w http.ResponseWriter, r *http.Request) {
	doi, err := s.params.parseDOI(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, err, scopeLookup)
		return
	}

	result, err := s.service.Lookup(r.Context(), doi)
	if err != nil {
		s.writeServiceError(w, r, err, scopeLookup)
		return
	}

	writeJSON(w, r, http.StatusOK, lookupResponse{
		Source: result.Source.String(),
		Paper:  domainPaperToResponse(result.Paper),
	})
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeAPIError(w, r, errNotFound, map[string]any{"path": r.URL.Path})
}

func (s *Server) methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeAPIError(w, r, errMethodNotAllowed, map[string]any{"method": r.Method, "path": r.URL.Path})
}

// writeServiceError maps err onto the error table and logs server-side failures.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, scope errorScope) {
	apiErr, details := classifyError(err, scope)

	if apiErr.Code >= http.StatusInternalServerError {
		logger := observability.WithRequestContext(s.logger, observability.RequestIDFromContext(r.Context()), routePattern(r))
		logger.Warn().Err(err).Int("status", apiErr.Code).Str("path", r.URL.Path).Msg("request failed")
	}

	writeAPIError(w, r, apiErr, details)
}

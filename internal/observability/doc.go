// Package observability provides logging and metrics support for the
// research metadata API.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for inbound requests, upstream providers, and the trend pipeline
//   - Context helpers for propagating the request ID and request logger
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("query", q).Msg("search started")
//
// Tag loggers with standard fields:
//
//	logger = observability.WithComponent(logger, "aggregator")
//	logger = observability.WithQueryContext(logger, query, fromYear, toYear)
//
// # Metrics
//
// Initialize metrics once per process; collectors register with the
// default Prometheus registry:
//
//	metrics := observability.NewMetrics("research_metadata")
//	metrics.RecordHTTPRequest("/v1/papers/search", "200", 0.42)
//
// *Metrics satisfies papersources.RequestObserver, so it can be handed to
// the provider clients directly.
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - request_id: Inbound request correlation identifier
//   - route: Matched route pattern
//   - query: Free-text search query
//   - provider: Upstream provider (openalex, crossref)
//   - endpoint: Upstream call kind (search, lookup)
//   - component: Emitting component
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability

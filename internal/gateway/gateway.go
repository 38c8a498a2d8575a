// Package gateway orchestrates one inbound search request: validation,
// admission control, the upstream fetch, and normalization into the
// canonical result shape.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/paperscout/research-search-service/internal/crossref"
	"github.com/paperscout/research-search-service/internal/domain"
	"github.com/paperscout/research-search-service/internal/observability"
)

// Upstream fetches raw works for a query. Implemented by the CrossRef
// client; stubbed in tests.
type Upstream interface {
	FetchWorks(ctx context.Context, query string, rows int) (*crossref.WorksMessage, error)
}

// Admitter decides whether a request for a client key is admitted.
type Admitter interface {
	Admit(key string) bool
}

// Config holds gateway bounds.
type Config struct {
	// DefaultRows is used when the client omits the rows parameter.
	DefaultRows int

	// MaxRows is the upper bound on requested rows.
	MaxRows int
}

// Gateway is the request-handling entry point of the search pipeline.
type Gateway struct {
	upstream Upstream
	limiter  Admitter
	config   Config
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

// New creates a search gateway.
func New(upstream Upstream, limiter Admitter, cfg Config, logger zerolog.Logger, metrics *observability.Metrics) *Gateway {
	return &Gateway{
		upstream: upstream,
		limiter:  limiter,
		config:   cfg,
		logger:   logger.With().Str("component", "gateway").Logger(),
		metrics:  metrics,
	}
}

// Search handles one inbound request: validate, rate-limit by client key,
// fetch upstream, normalize every record, assemble the result. Exactly
// one outcome per invocation, in order of precedence: validation error,
// rate-limit rejection, upstream timeout, upstream failure, success.
func (g *Gateway) Search(ctx context.Context, clientKey, rawQuery, rawRows string) (*domain.SearchResult, error) {
	start := time.Now()

	query, err := ParseQuery(rawQuery, rawRows, g.config.DefaultRows, g.config.MaxRows)
	if err != nil {
		g.metrics.RecordSearch(observability.OutcomeInvalidQuery, time.Since(start).Seconds())
		return nil, err
	}

	if !g.limiter.Admit(clientKey) {
		g.metrics.RecordSearch(observability.OutcomeRateLimited, time.Since(start).Seconds())
		g.metrics.RecordRateLimitRejection()
		g.logger.Debug().Str("client_key", clientKey).Msg("rate limit rejection")
		return nil, domain.NewRateLimitError(clientKey)
	}

	upStart := time.Now()
	msg, err := g.upstream.FetchWorks(ctx, query.Text, query.Rows)
	g.metrics.RecordUpstreamRequest(time.Since(upStart).Seconds())
	if err != nil {
		return nil, g.failUpstream(query, err, time.Since(start))
	}

	results := crossref.NormalizeWorks(msg.Items)
	total := msg.TotalResults
	if total <= 0 {
		total = len(results)
	}

	g.metrics.RecordSearch(observability.OutcomeOK, time.Since(start).Seconds())
	g.metrics.RecordResults(len(results))
	searchLogger := observability.WithSearchContext(g.logger, query.Text, query.Rows)
	searchLogger.Debug().
		Int("total", total).
		Int("returned", len(results)).
		Msg("search completed")

	return &domain.SearchResult{Total: total, Results: results}, nil
}

// failUpstream classifies an upstream error, records it, and logs the
// detail that must not reach the client.
func (g *Gateway) failUpstream(query domain.SearchQuery, err error, elapsed time.Duration) error {
	logger := observability.WithSearchContext(g.logger, query.Text, query.Rows)

	if errors.Is(err, domain.ErrUpstreamTimeout) {
		g.metrics.RecordSearch(observability.OutcomeUpstreamTimeout, elapsed.Seconds())
		g.metrics.RecordUpstreamFailure("timeout")
		logger.Warn().Err(err).Msg("upstream timeout")
		return fmt.Errorf("search: %w", err)
	}

	g.metrics.RecordSearch(observability.OutcomeUpstreamFailure, elapsed.Seconds())
	g.metrics.RecordUpstreamFailure("failure")

	var upErr *domain.UpstreamError
	if errors.As(err, &upErr) {
		logger.Error().Err(err).Int("status", upErr.StatusCode).Msg("upstream failure")
		return fmt.Errorf("search: %w", err)
	}

	logger.Error().Err(err).Msg("upstream failure")
	return fmt.Errorf("search: %w", domain.NewUpstreamFailureError("CrossRef", 0, err.Error(), err))
}

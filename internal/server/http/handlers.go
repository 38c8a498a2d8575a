package httpserver

import (
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/paperscout/research-search-service/internal/domain"
	"github.com/paperscout/research-search-service/internal/observability"
)

// Fixed public error messages. Upstream detail never reaches the client.
const (
	msgTooManyRequests = "Too many requests, slow down"
	msgUpstreamTimeout = "Upstream timeout"
	msgInternalError   = "Internal server error"
)

// searchHandler handles GET /api/search?q=<string>&rows=<int>.
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientKey := clientAddress(r)

	result, err := s.searcher.Search(ctx, clientKey, r.URL.Query().Get("q"), r.URL.Query().Get("rows"))
	if err != nil {
		s.writeSearchError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeSearchError maps a search outcome to its HTTP status and public
// message.
func (s *Server) writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	logger := observability.WithRequestContext(s.logger, middleware.GetReqID(r.Context()), clientAddress(r))

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		var vErr *domain.ValidationError
		msg := "invalid request"
		if errors.As(err, &vErr) {
			msg = vErr.Message
		}
		writeError(w, http.StatusBadRequest, msg)

	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, msgTooManyRequests)

	case errors.Is(err, domain.ErrUpstreamTimeout):
		logger.Warn().Err(err).Msg("search failed: upstream timeout")
		writeError(w, http.StatusGatewayTimeout, msgUpstreamTimeout)

	default:
		logger.Error().Err(err).Msg("search failed")
		writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}

// clientAddress returns the client IP used as the rate-limiter key. The
// RealIP middleware has already resolved forwarding headers into
// RemoteAddr.
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package server

import (
	"net/http"

	"github.com/leslieo2/agent-service/internal/server/middleware"
)

// applyMiddleware applies the complete middleware chain to the handler
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware chain in reverse order
	handler = middleware.RecoveryMiddleware(s.logger.Logger)(handler)
	handler = middleware.RequestSizeLimitMiddleware(s.config.Server.MaxRequestSize)(handler)
	handler = middleware.LoggingMiddleware(s.logger.Logger)(handler)
	handler = middleware.RequestIDMiddleware(handler)

	return handler
}

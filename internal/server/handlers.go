package server

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// healthHandler serves GET /health. It never reads the request and always
// answers 200 with a freshly built health document.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	_, span := s.tracer.StartSpan(r.Context(), "health_check",
		attribute.String("http.method", r.Method),
		attribute.String("http.path", r.URL.Path),
	)
	defer span.End()

	status := s.reporter.GetHealth()
	span.SetAttributes(
		attribute.String("health.status", status.Status),
		attribute.String("health.service", status.Service),
	)

	s.sendJSONResponse(w, http.StatusOK, status)

	s.logger.Debug("Health check completed",
		zap.String("path", r.URL.Path),
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("timestamp", status.Timestamp),
	)
}

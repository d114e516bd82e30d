package server

import (
	"net/http"

	"archrelay/internal/gateway/handler"
	"archrelay/internal/gateway/middleware"
)

func NewMux(architectureHandler *handler.ArchitectureHandler, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handler.HandleHealth)
	mux.HandleFunc("/healthz", handler.MethodNotAllowed("GET"))

	mux.HandleFunc("POST /api/architecture", architectureHandler.HandleCreate)
	mux.HandleFunc("/api/architecture", handler.MethodNotAllowed("POST"))

	mux.HandleFunc("/", handler.NotFound)

	// Middleware
	return middleware.AccessLog(middleware.NewCORS(allowedOrigins)(mux))
}

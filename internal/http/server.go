// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	applog "forgeledger/internal/log"
	"forgeledger/internal/middleware/trace"
	"forgeledger/internal/services"
)

// Server wraps the HTTP server and its route table.
type Server struct {
	httpServer *http.Server
	service    *services.LedgerService
	logger     *applog.Logger
	tracer     *trace.Middleware
}

// NewServer builds a server listening on addr.
func NewServer(addr string, service *services.LedgerService, logger *applog.Logger) *Server {
	s := &Server{
		service: service,
		logger:  logger.WithComponent(applog.ComponentHTTP),
		tracer:  trace.NewMiddleware(logger),
	}

	handler := applog.Middleware(s.logger)(s.tracer.Middleware(s.routes()))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/transactions", s.handleQueryTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /api/balance", s.handleRunningBalances)

	return mux
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the composed handler chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

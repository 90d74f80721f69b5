package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/puzzleflow/pkg/api/handlers"
	"github.com/cbodonnell/puzzleflow/pkg/api/middleware"
	authproviders "github.com/cbodonnell/puzzleflow/pkg/auth/providers"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/cbodonnell/puzzleflow/pkg/log"
	"github.com/cbodonnell/puzzleflow/pkg/messages"
	"github.com/cbodonnell/puzzleflow/pkg/repositories"
	"github.com/gorilla/mux"
)

// APIServer is the report service the delivery channels talk to.
type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port              int
	TLS               *TLSConfig
	AuthProvider      authproviders.AuthProvider
	Repository        repositories.ReportRepository
	StartingInventory types.Inventory
}

// NewAPIServer creates a new http.Server for handling report requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	processor := handlers.NewReportProcessor(handlers.NewReportProcessorOptions{
		Repository:        opts.Repository,
		StartingInventory: opts.StartingInventory,
	})

	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)

	authenticated := router.NewRoute().Subrouter()
	authenticated.Use(middleware.NewAuthMiddleware(opts.AuthProvider))
	authenticated.Handle(messages.ReportsPath, handlers.HandleSubmitReports(processor)).Methods(http.MethodPost)
	authenticated.Handle(messages.ReportsWebSocketPath, handlers.HandleReportsWebSocket(processor)).Methods(http.MethodGet)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// Handler returns the router of the server.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

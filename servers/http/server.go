package http

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	httpAdapter "github.com/gruzdev-dev/codex-recipes/adapters/http"
	"github.com/gruzdev-dev/codex-recipes/configs"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	cfg     *configs.Config
	handler *httpAdapter.Handler
	auth    *httpAdapter.AuthMiddleware
	log     logrus.FieldLogger
}

func NewServer(cfg *configs.Config, handler *httpAdapter.Handler, auth *httpAdapter.AuthMiddleware, log logrus.FieldLogger) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		auth:    auth,
		log:     log,
	}
}

// Router builds the full handler chain: recovery, CORS, request logging and
// token resolution around the API routes.
func (s *Server) Router() nethttp.Handler {
	router := mux.NewRouter()
	router.Use(httpAdapter.Logging(s.log))

	router.HandleFunc("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	router.HandleFunc("/readyz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.auth.Handler)
	s.handler.RegisterRoutes(api)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(s.log),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(cors(router))
}

func (s *Server) Start(ctx context.Context) error {
	srv := &nethttp.Server{
		Addr:              ":" + s.cfg.HTTP.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.log.Infof("starting HTTP server on port %s", s.cfg.HTTP.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.log.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
	}

	s.log.Info("HTTP server exited")
	return nil
}

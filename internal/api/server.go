package api

import (
	"context"
	"net/http"
	"time"

	"rabbitmq-guard/internal/storage"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Server exposes the monitor's alert history and rule set over HTTP, plus a
// websocket stream of live alerts.
type Server struct {
	store    *storage.Storage
	logger   *logrus.Logger
	upgrader websocket.Upgrader
	srv      *http.Server
	port     string
}

func NewServer(port string, store *storage.Storage, logger *logrus.Logger) *Server {
	s := &Server{
		store:  store,
		logger: logger,
		port:   port,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/alerts", s.GetAlerts).Methods("GET")
	api.HandleFunc("/alerts/{id}", s.GetAlert).Methods("GET")
	api.HandleFunc("/rules", s.GetRules).Methods("GET")
	api.HandleFunc("/stream/alerts", s.StreamAlerts).Methods("GET")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	s.srv = &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
	}

	return s
}

// Start serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Infof("Status API listening on port %s", s.port)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("Status API error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("Shutting down status API...")
	return s.srv.Shutdown(shutdownCtx)
}

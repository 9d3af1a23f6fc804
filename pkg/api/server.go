package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taxihub/pkg/logger"
	"taxihub/pkg/models"
	"taxihub/pkg/token"
	"taxihub/pkg/watch"
	"taxihub/service"
)

type Server struct {
	svc    service.IServiceManager
	hub    *watch.Hub
	tokens *token.Service
	log    logger.ILogger
	mux    *mux.Router
}

func NewServer(svc service.IServiceManager, hub *watch.Hub, tokens *token.Service, log logger.ILogger) *Server {
	s := &Server{
		svc:    svc,
		hub:    hub,
		tokens: tokens,
		log:    log,
		mux:    mux.NewRouter(),
	}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	s.mux.Handle("/metrics", promhttp.Handler())

	s.mux.HandleFunc("/api/v1/auth/register", s.handleRegister).Methods(http.MethodPost)
	s.mux.HandleFunc("/api/v1/auth/login", s.handleLogin).Methods(http.MethodPost)

	authed := s.mux.PathPrefix("/api/v1").Subrouter()
	authed.Use(s.authMiddleware)

	authed.HandleFunc("/orders", s.handleCreateOrder).Methods(http.MethodPost)
	authed.HandleFunc("/orders/available", s.handleAvailableOrders).Methods(http.MethodGet)
	authed.HandleFunc("/orders/history", s.handleOrderHistory).Methods(http.MethodGet)
	authed.HandleFunc("/orders/{id}", s.handleGetOrder).Methods(http.MethodGet)
	authed.HandleFunc("/orders/{id}/cancel", s.handleCancelOrder).Methods(http.MethodPost)
	authed.HandleFunc("/orders/{id}/claim", s.handleClaimOrder).Methods(http.MethodPost)
	authed.HandleFunc("/orders/{id}/start", s.handleStartOrder).Methods(http.MethodPost)
	authed.HandleFunc("/orders/{id}/complete", s.handleCompleteOrder).Methods(http.MethodPost)
	authed.HandleFunc("/driver/stats", s.handleDriverStats).Methods(http.MethodGet)

	// Token is passed as a query parameter here because browsers cannot set
	// headers on websocket handshakes.
	s.mux.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrOrderNotFound), errors.Is(err, models.ErrOrderGone),
		errors.Is(err, models.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrOrderTaken), errors.Is(err, models.ErrOrderNotAvailable),
		errors.Is(err, models.ErrDriverHasActive), errors.Is(err, models.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, models.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Package httpapi exposes the auction service over HTTP.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/phoenixpme/auction-service/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth     service.AuthService
	auctions service.AuctionService
	signKey  []byte
	log      *zap.Logger
}

// New constructs the HTTP server with injected services.
func New(auth service.AuthService, auctions service.AuctionService, signKey []byte, log *zap.Logger) *Server {
	return &Server{auth: auth, auctions: auctions, signKey: signKey, log: log}
}

// Router builds the route table. Mutating auction routes require a bearer
// token; reads and auth endpoints do not.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.recoverMiddleware, s.loggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)

	r.HandleFunc("/auctions", s.handleListAuctions).Methods(http.MethodGet)
	r.HandleFunc("/auctions/{id}", s.handleGetAuction).Methods(http.MethodGet)
	r.HandleFunc("/auctions/{id}/bids", s.handleListBids).Methods(http.MethodGet)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)
	authed.HandleFunc("/auctions", s.handleCreateAuction).Methods(http.MethodPost)
	authed.HandleFunc("/auctions/{id}/bids", s.handlePlaceBid).Methods(http.MethodPost)
	authed.HandleFunc("/auctions/{id}/end", s.handleEndAuction).Methods(http.MethodPost)
	authed.HandleFunc("/auctions/{id}/release", s.handleReleaseFunds).Methods(http.MethodPost)
	authed.HandleFunc("/auctions/{id}/cancel", s.handleCancelAuction).Methods(http.MethodPost)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

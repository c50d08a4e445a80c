package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", handler.Register).Methods("POST")
	api.HandleFunc("/auth/login", handler.Login).Methods("POST")
	api.HandleFunc("/auth/logout", handler.Logout).Methods("POST")
	api.HandleFunc("/auth/me", handler.Me).Methods("GET")
	api.HandleFunc("/prices", handler.GetPrices).Methods("GET")

	// Session-scoped routes
	authed := api.NewRoute().Subrouter()
	authed.Use(handler.sessions.Require)
	authed.HandleFunc("/portfolio/summary", handler.PortfolioSummary).Methods("GET")
	authed.HandleFunc("/trading/buy", handler.Buy).Methods("POST")
	authed.HandleFunc("/trading/sell", handler.Sell).Methods("POST")
	authed.HandleFunc("/trading/transactions", handler.ListTransactions).Methods("GET")

	return r
}

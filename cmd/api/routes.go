package main

import (
	"net/http"

	httphandlers "parcela/internal/interfaces/http"
	"parcela/internal/shared/config"
	"parcela/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Authenticated routes
	session := middleware.Session

	mux.Handle("/api/cards", session(http.HandlerFunc(deps.CardHandler.HandleCards)))
	mux.Handle("/api/cards/{id}", session(http.HandlerFunc(deps.CardHandler.HandleCardByID)))
	mux.Handle("/api/purchases", session(http.HandlerFunc(deps.PurchaseHandler.HandlePurchases)))
	mux.Handle("/api/purchases/{id}", session(http.HandlerFunc(deps.PurchaseHandler.HandlePurchaseByID)))
	mux.Handle("/api/purchases/{id}/installments", session(http.HandlerFunc(deps.PurchaseHandler.HandleInstallments)))
	mux.Handle("/api/installments/{id}/paid", session(http.HandlerFunc(deps.InstallmentHandler.HandleSetPaid)))
	mux.Handle("/api/reconcile", session(http.HandlerFunc(deps.ReconcileHandler.HandleReconcile)))
	mux.Handle("/api/notifications/register-device", session(http.HandlerFunc(deps.NotificationHandler.HandleRegisterDevice)))

	// Apply global middleware
	var handler http.Handler = mux
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(middleware.Tracing(handler))
	}
	handler = middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(handler))

	return handler
}

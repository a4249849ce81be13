package main

import (
	"context"
	"log"
	"net/http"
	"time"
)

// StartServer creates and starts the HTTP server.
func StartServer(addr string, handler http.Handler) *http.Server {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	return srv
}

// GracefulShutdown performs graceful shutdown of the server.
func GracefulShutdown(srv *http.Server, shutdownTelemetry func(context.Context) error, timeout time.Duration) {
	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if shutdownTelemetry != nil {
		if err := shutdownTelemetry(ctx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}

	log.Println("Server stopped")
}

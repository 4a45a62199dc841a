package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clementus360/coaching-portal/config"
	"clementus360/coaching-portal/handlers"
	"clementus360/coaching-portal/memstore"
	"clementus360/coaching-portal/middleware"
	"clementus360/coaching-portal/routes"
	"clementus360/coaching-portal/supabase"
)

func main() {

	config.LoadEnv()

	settings, err := config.LoadSettings()
	if err != nil {
		config.Logger.Fatal("Invalid configuration: ", err)
	}
	config.InitLogger(settings.LogLevel)

	backend, err := newBackend(settings)
	if err != nil {
		config.Logger.Fatal("Failed to initialise store: ", err)
	}

	mux := http.NewServeMux()
	routes.RegisterAllRoutes(mux, handlers.New(backend, settings))

	handler := middleware.Chain(
		middleware.Recover,
		middleware.Logging,
		middleware.CORS(settings.CORSOrigin),
	)(mux)

	server := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		config.Logger.Infof("Server is running on port %s (store: %s)", settings.Port, settings.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Logger.Fatal("Server failed: ", err)
		}
	}()

	<-ctx.Done()
	config.Logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		config.Logger.Error("Graceful shutdown failed: ", err)
	}
}

func newBackend(settings config.Settings) (handlers.Backend, error) {
	if settings.StoreDriver == config.DriverMemory {
		config.Logger.Warn("Using the in-memory store; data is lost on restart")
		return memstore.NewBackend(memstore.New(), settings.JWTSecret), nil
	}
	return supabase.NewGateway(settings)
}

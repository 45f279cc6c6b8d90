package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"slotbook/internal/booking/handler"
	"slotbook/pkg/config"
	"slotbook/pkg/contracts"
	"slotbook/pkg/middleware"
)

// Application wires the three HTTP surfaces onto one listener: health probes
// with minimal middleware, the public invite surface with the full stack, and
// the admin surface gated by the shared key.
type Application struct {
	cfg           *config.Config
	server        *http.Server
	rateLimiter   *middleware.RateLimiter
	healthHandler http.Handler
	publicHandler http.Handler
	adminHandler  http.Handler
}

func NewApplication() *Application {
	return &Application{}
}

func (a *Application) SetApp(cfg *config.Config, publicHandler, adminHandler contracts.Handler) {
	a.cfg = cfg
	a.setHealthHandler(cfg)
	a.setPublicHandler(cfg, publicHandler)
	a.setAdminHandler(cfg, adminHandler)
	a.setAppServer()
}

func (a *Application) setHealthHandler(cfg *config.Config) {
	healthRouter := httprouter.New()
	healthHandler := handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log)
	healthHandler.RegisterRoutes(healthRouter)

	var h http.Handler = healthRouter
	h = middleware.RequestLogging(cfg.Log)(h)
	h = middleware.Recovery(cfg.Log)(h)
	a.healthHandler = h
	cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setPublicHandler(cfg *config.Config, publicHandler contracts.Handler) {
	publicRouter := httprouter.New()
	publicHandler.RegisterRoutes(publicRouter)

	// Token-keyed limiting: one hammering invite token cannot starve the
	// rest of the request's invitees.
	a.rateLimiter = middleware.NewRateLimiter(
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		middleware.BookingTokenExtractor,
		cfg.Log,
	)

	var h http.Handler = publicRouter
	h = middleware.RequestTimeout(cfg.RequestTimeout)(h)
	h = middleware.RateLimit(a.rateLimiter)(h)
	h = middleware.ContentTypeValidation(cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(h)
	h = middleware.RequestLogging(cfg.Log)(h)
	h = middleware.Recovery(cfg.Log)(h)
	a.publicHandler = h
	cfg.Log.Info("Public booking endpoints configured with full middleware stack")
}

func (a *Application) setAdminHandler(cfg *config.Config, adminHandler contracts.Handler) {
	adminRouter := httprouter.New()
	adminHandler.RegisterRoutes(adminRouter)

	var h http.Handler = adminRouter
	h = middleware.RequestTimeout(cfg.RequestTimeout)(h)
	h = middleware.ContentTypeValidation(cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(h)
	h = middleware.AdminKeyVerification(cfg.AdminAPIKey, cfg.Log)(h)
	h = middleware.RequestLogging(cfg.Log)(h)
	h = middleware.Recovery(cfg.Log)(h)
	a.adminHandler = h
	cfg.Log.Info("Admin endpoints configured with key verification")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/metrics", a.healthHandler)
	mux.Handle("/api/v1/booking/", a.publicHandler)
	mux.Handle("/api/v1/requests", a.adminHandler)
	mux.Handle("/api/v1/requests/", a.adminHandler)
	mux.Handle("/api/v1/bookings", a.adminHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	a.cfg.Log.Info("Stopping background workers...")
	a.rateLimiter.Stop()
	a.cfg.Log.Info("Background workers stopped")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}

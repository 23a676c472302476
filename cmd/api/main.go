package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinicflow/appointment"
	"clinicflow/auth"
	"clinicflow/config"
	"clinicflow/db"
	"clinicflow/patient"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("bootstrap database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		logger.Error("bootstrap token service", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(auth.NewRepository(pool), tokens, cfg.BcryptCost)
	cookies := auth.NewCookieTransport(cfg.Env, cfg.TokenTTL)
	sessions := auth.NewMiddleware(tokens)

	mux := http.NewServeMux()
	auth.NewEndpoints(authService, tokens, cookies, logger).Routes(mux)
	appointment.NewEndpoints(appointment.NewService(appointment.NewRepository(pool)), logger).Routes(mux, sessions)
	patient.NewEndpoints(patient.NewService(patient.NewRepository(pool)), logger).Routes(mux, sessions)

	server := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("api listening", "addr", cfg.APIAddr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("serve", "error", err)
		os.Exit(1)
	}
}

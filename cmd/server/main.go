// Package main initializes and starts the SecureTalk HTTPS relay,
// setting up configuration, logging, database connections, repositories,
// services, handlers, and TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/SecureTalk/internal/certgen"
	"github.com/atinyakov/SecureTalk/internal/config"
	"github.com/atinyakov/SecureTalk/internal/db"
	"github.com/atinyakov/SecureTalk/internal/logger"
	"github.com/atinyakov/SecureTalk/internal/repository"
	"github.com/atinyakov/SecureTalk/internal/server/handler/http"
	"github.com/atinyakov/SecureTalk/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()
	addr := options.Port

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer func() { _ = postgresDB.Close() }()

	// Messages never survive a restart. A failed purge is logged and startup continues.
	_, _ = db.PurgeMessages(ctx, postgresDB, zapLogger)

	// Initialize repositories for users and relayed messages.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	msgRepo := repository.NewPostgresMessageRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo)
	keyService := service.NewKeyService(userRepo)
	msgService := service.NewMessageService(msgRepo)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{AuthService: authService, Log: zapLogger}
	keyHandler := &http.KeyHandler{KeyService: keyService, Log: zapLogger}
	msgHandler := &http.MessageHandler{MessageService: msgService, Log: zapLogger}

	// Build the router with middleware, routes and static files.
	router := http.NewRouter(authHandler, keyHandler, msgHandler, options.StaticDir, zapLogger)

	// Load server TLS certificate and key.
	tlsConfig, err := certgen.LoadServerTLS(options.CertFile, options.KeyFile)
	if err != nil {
		zapLogger.Fatal("failed to load server TLS cert/key", zap.Error(err))
	}

	// Create and start the HTTPS server.
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTPS server", zap.String("addr", addr))
	if err := server.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTPS server", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"hrm-admin/console/internal/api"
	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/config"
	"hrm-admin/console/internal/logging"
	"hrm-admin/console/internal/mcp"
	"hrm-admin/console/internal/repository"
	"hrm-admin/console/internal/services"
	"hrm-admin/console/internal/tls"
)

var version = "dev"

func main() {
	// Parse command line flags
	envFile := flag.String("env", "", "Path to .env file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		log.Fatalf("Configuration loading failed: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	logger.Info("Configuration loaded",
		"api_base_url", cfg.API.BaseURL,
		"config_file", cfg.ConfigFile,
		"compensate_on_failure", cfg.Workflow.CompensateOnFailure,
	)

	// Remote store and service layer
	store := repository.NewRESTStore(cfg.API.BaseURL,
		repository.WithTimeout(cfg.API.Timeout),
		repository.WithLoginPath(cfg.API.LoginPath),
	)
	reconciler := services.NewReconciler(store, logger, services.WithCompensation(cfg.Workflow.CompensateOnFailure))
	board := services.NewBoard(store, store, reconciler, logger, cfg.Workflow.DefaultTimeoutHours)
	hr := services.NewHRService(store, store, store, logger)

	logger.Info("Service layer initialized")

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("hrm-admin-console"))

	server := api.NewServer(auth.New(store, logger), auth.NewRegistry(), board, hr, logger)
	server.Register(e, api.NewHandler(version))

	logger.Info("REST API handlers mounted")

	// Mount MCP protocol handlers
	if cfg.MCP.Enable {
		mcpServer := mcp.NewServer(board, mcp.ConfiguredSession(cfg.MCP.Token, cfg.MCP.UserID), version)
		mcpHandlers := http.NewServeMux()
		mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
		e.Any("/mcp", echo.WrapHandler(mcpHandlers))
		e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

		logger.Info("MCP protocol handlers mounted", "toggles_enabled", cfg.MCP.Token != "")
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", cfg.Server.Addr, "tls", cfg.TLS.Enable)
		if cfg.TLS.Enable {
			generated, err := tls.EnsureCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames)
			if err != nil {
				serverErrors <- err
				return
			}
			if generated {
				logger.Warn("Generated a self-signed certificate", "cert_file", cfg.TLS.CertFile)
			}
			serverErrors <- httpServer.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- httpServer.ListenAndServe()
		}
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig.String())

		// Create shutdown context with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			if err := httpServer.Close(); err != nil {
				logger.Error("Server close error", "error", err)
			}
		}

		logger.Info("Server stopped gracefully")
	}
}

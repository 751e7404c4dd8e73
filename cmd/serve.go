package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YagooSRV/Azure-Partiel-2a3/controllers"
	"github.com/YagooSRV/Azure-Partiel-2a3/database"
	"github.com/YagooSRV/Azure-Partiel-2a3/migrate"
	"github.com/YagooSRV/Azure-Partiel-2a3/services"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)

	db, err := database.ConnectToDB(cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if cfg.DB.AutoMigrate {
		logger.Info("running database migrations")
		if err := migrate.Run(db); err != nil {
			return err
		}
	}

	h := controllers.NewHandler(services.NewItemStore(db), logger)
	router := controllers.NewRouter(h, cfg.CORS.AllowedOrigins, logger)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("server starting", "addr", server.Addr, "driver", cfg.DB.Driver)
	return Serve(ctx, server, cfg.ShutdownTimeout, logger)
}

// Serve runs server until it fails or ctx is cancelled, then drains in-flight
// requests for at most timeout.
func Serve(ctx context.Context, server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped unexpectedly: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

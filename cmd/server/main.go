package main

import (
	"context"
	"ctchen222/tictactoe-solo/internal/api/controller"
	"ctchen222/tictactoe-solo/internal/config"
	"ctchen222/tictactoe-solo/internal/hub"
	"ctchen222/tictactoe-solo/internal/logger"
	"ctchen222/tictactoe-solo/internal/repository"
	"ctchen222/tictactoe-solo/internal/server"
	"ctchen222/tictactoe-solo/internal/telemetry"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "tictactoe",
		Short: "Serve a single-page tic-tac-toe game",
		Long:  "Serve a single-page tic-tac-toe game.\n\nEnvironment:\n" + config.Usage(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), config.MustLoad(configPath))
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(os.Stdout, cfg.SlogLevel())
	if cfg.SlogLevel() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create hub
	rooms := repository.NewRoomRepository()
	h := hub.NewHub(rooms, hub.Options{
		HeartbeatInterval: cfg.Rooms.HeartbeatInterval,
		RoomIdleTimeout:   cfg.Rooms.IdleTimeout,
	})
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go h.Run(hubCtx)

	// Create the Gin-based server
	srv := server.NewServer(h, controller.NewRoomController(h))

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("ListenAndServe: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exiting")
	return nil
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mholen/gather/pkg/store"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	baseLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// A .env file is optional; the environment wins over config.json either way.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		baseLogger.Warn("Failed to load .env file", "error", err)
	}

	shutdownChan := make(chan struct{}, 1)

	go func() {
		osSignalChan := make(chan os.Signal, 1)
		signal.Notify(osSignalChan, syscall.SIGINT, syscall.SIGTERM)
		<-osSignalChan // Wait for a signal
		baseLogger.Info("OS signal received, initiating shutdown.")
		shutdownChan <- struct{}{}
	}()

	if err := run(baseLogger, shutdownChan); err != nil {
		baseLogger.Error("An error occurred during server run, shutting down.", "error", err)
		os.Exit(1)
	}

	baseLogger.Info("Gather has shut down.")
}

// run hosts the HTTP server and returns when a shutdown is requested.
func run(baseLogger *slog.Logger, shutdownChan chan struct{}) error {

	cm, err := NewConfigManager("./config.json")
	if err != nil {
		return err
	}
	config := cm.Get()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(config.Server.LogLevel)}))
	cm.SetLogger(logger)
	logger.Info("Starting Gather", "version", Version, "commit", Commit, "build_date", BuildDate)

	if err := ensureDirs(config.Server); err != nil {
		return err
	}

	db, err := initDB(config.Server.DatabasePath)
	if err != nil {
		return err
	}

	if err = store.SetupSchema(db); err != nil {
		logger.Error("Failed to setup store schema", "error", err)
	}

	server, err := NewServer(cm, logger, db)
	if err != nil {
		_ = db.Close()
		return err
	}

	httpServer := &http.Server{
		Addr:    config.Server.Addr,
		Handler: server.Handler(),
	}

	go func() {
		logger.Info("Starting Gather server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			shutdownChan <- struct{}{}
		}
	}()

	janitorCtx, cancelJanitor := context.WithCancel(context.Background())
	go server.runJanitor(janitorCtx)

	<-shutdownChan // Block here until OS signal or server failure.

	logger.Info("Stopping server...")
	cancelJanitor()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped.")

	logger.Info("Closing database connection.")
	if err = db.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	}

	return nil
}

// runJanitor periodically prunes expired sessions and idle rate limiters.
func (s *Server) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.store.PruneSessions(ctx); err != nil {
				s.logger.Error("Failed to prune sessions", "error", err)
			} else if n > 0 {
				s.logger.Info("Pruned expired sessions", "count", n)
			}
			s.limiter.Cleanup(3 * time.Hour)
		}
	}
}

func ensureDirs(config *ServerConfig) error {
	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return err
	}
	if err := os.MkdirAll(config.UploadsDir, 0755); err != nil {
		return err
	}
	// The database path may carry driver parameters after a '?'.
	dbPath, _, _ := strings.Cut(config.DatabasePath, "?")
	return os.MkdirAll(filepath.Dir(dbPath), 0755)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

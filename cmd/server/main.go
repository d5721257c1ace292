package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"noteful/internal/app"
	"noteful/internal/config"
	"noteful/internal/db"
	"noteful/internal/memstore"
	"noteful/internal/named"
	"noteful/internal/notes"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	// Context for startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stores, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer closeStores()

	a := app.New(cfg, stores, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment, "storage", cfg.Storage)
	logger.Info("endpoints available",
		"api", "http://localhost:"+cfg.Port+"/api",
		"notes", "http://localhost:"+cfg.Port+"/notes",
		"mcp", "http://localhost:"+cfg.Port+"/mcp",
	)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		return
	}

	<-done
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStores connects the configured backend and ensures its indexes. The
// returned func releases it.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app.Stores, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage; data is lost on exit")
		return app.Stores{
			Notes:   memstore.NewNotes(),
			Folders: memstore.NewNamed(named.FolderKind),
			Tags:    memstore.NewNamed(named.TagKind),
		}, func() {}, nil
	}

	logger.Info("connecting to MongoDB", "database", cfg.MongoDatabase)
	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return app.Stores{}, nil, err
	}
	logger.Info("connected to MongoDB")

	noteRepo := notes.NewRepo(database)
	folderRepo := named.NewRepo(database, named.FolderKind)
	tagRepo := named.NewRepo(database, named.TagKind)

	for name, ensure := range map[string]func(context.Context) error{
		"notes":   noteRepo.EnsureIndexes,
		"folders": folderRepo.EnsureIndexes,
		"tags":    tagRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			logger.Warn("failed to ensure indexes", "collection", name, "error", err)
		}
	}

	stores := app.Stores{
		Notes:   noteRepo,
		Folders: folderRepo,
		Tags:    tagRepo,
		Pinger:  db.NewPinger(database),
	}
	if cfg.MongoTransactions {
		stores.Tx = db.NewTxManager(database)
		logger.Info("cascade deletes run in transactions")
	}

	closeFn := func() {
		if err := db.Disconnect(database, 5*time.Second); err != nil {
			logger.Error("failed to disconnect from MongoDB", "error", err)
		}
	}
	return stores, closeFn, nil
}

// Package app wires stores, services and handlers into the HTTP surface.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"noteful/internal/cascade"
	"noteful/internal/config"
	"noteful/internal/httputil"
	mcpserver "noteful/internal/mcp"
	"noteful/internal/middleware"
	"noteful/internal/named"
	"noteful/internal/notes"
)

// Pinger reports storage liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stores are the storage backends the app runs on.
type Stores struct {
	Notes   notes.Store
	Folders named.Store
	Tags    named.Store

	// Optional. Tx switches cascades to a single transaction; Pinger
	// backs /health.
	Tx     cascade.Transactor
	Pinger Pinger
}

type App struct {
	Notes   *notes.Service
	Folders *named.Service
	Tags    *named.Service
	Handler http.Handler
}

// New builds the services over st and the routed, middleware-wrapped
// handler serving them.
func New(cfg *config.Config, st Stores, logger *slog.Logger) *App {
	coord := cascade.NewCoordinator(cascade.Options{
		Retries:    cfg.CascadeRetries,
		RetryDelay: cfg.CascadeRetryDelay,
		Tx:         st.Tx,
	}, logger)

	// Folder and tag deletes clean up notes; notes look folders and tags
	// up when hydrating. The cleanups are bound after noteSvc exists.
	var noteSvc *notes.Service
	folderSvc := named.NewService(st.Folders, named.FolderKind, coord,
		func(ctx context.Context, id primitive.ObjectID) error { return noteSvc.DeleteInFolder(ctx, id) },
		logger)
	tagSvc := named.NewService(st.Tags, named.TagKind, coord,
		func(ctx context.Context, id primitive.ObjectID) error { return noteSvc.DetachTag(ctx, id) },
		logger)
	noteSvc = notes.NewService(st.Notes, folderSvc, tagSvc, logger)

	mux := http.NewServeMux()

	notes.NewHandler(noteSvc, logger, cfg.MaxBodyBytes).Register(mux)
	named.NewHandler(folderSvc, logger, cfg.MaxBodyBytes).Register(mux)
	named.NewHandler(tagSvc, logger, cfg.MaxBodyBytes).Register(mux)

	// MCP endpoint (HTTP transport)
	// MCP uses POST for requests and GET for SSE streams
	mcpHTTP := server.NewStreamableHTTPServer(mcpserver.NewServer(noteSvc, folderSvc, tagSvc))
	mux.Handle("POST /mcp", mcpHTTP)
	mux.Handle("GET /mcp", mcpHTTP)
	mux.Handle("DELETE /mcp", mcpHTTP)

	mux.HandleFunc("GET /health", health(st.Pinger, logger))

	mux.HandleFunc("/", httputil.NotFound)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader, "Mcp-Session-Id"},
		ExposedHeaders: []string{"Location", middleware.RequestIDHeader, "Mcp-Session-Id"},
	})

	return &App{
		Notes:   noteSvc,
		Folders: folderSvc,
		Tags:    tagSvc,
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Logging(logger),
			middleware.Recovery(logger),
			c.Handler,
		),
	}
}

func health(p Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				logger.Warn("health check failed", "error", err)
				httputil.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

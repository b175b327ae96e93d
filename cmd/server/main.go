package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/timegraph/internal/auth"
	"github.com/inamate/timegraph/internal/collab"
	"github.com/inamate/timegraph/internal/config"
	"github.com/inamate/timegraph/internal/export"
	mw "github.com/inamate/timegraph/internal/middleware"
	"github.com/inamate/timegraph/internal/workspace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	authService := auth.NewService(cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	diagrams := workspace.NewService(cfg.ViewWidth, cfg.ViewHeight)
	diagramHandler := workspace.NewHandler(diagrams)
	exportHandler := export.NewHandler(diagrams)

	if cfg.SampleDiagram {
		d, err := diagrams.Create("Sample timetable", "", true)
		if err != nil {
			slog.Error("create sample diagram", "error", err)
			os.Exit(1)
		}
		slog.Info("sample diagram ready", "diagram", d.ID)
	}

	hub := collab.NewHub(diagrams)
	go hub.Run()

	origins := mw.SplitOrigins(cfg.AllowedOrigins)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)

	// Auth routes (public)
	r.HandleFunc("/auth/token", authHandler.Token).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	diagramHandler.Routes(api)
	api.HandleFunc("/diagrams/{diagramId}/export", exportHandler.Export).Methods("GET")

	// WebSocket endpoint
	wsOrigins := originPatterns(origins)
	r.HandleFunc("/ws/diagram/{diagramId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, diagrams, wsOrigins)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mw.CORS(origins)(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop the hub first so websocket clients are closed
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, diagrams *workspace.Service, origins []string) {
	diagramID := mux.Vars(r)["diagramId"]

	// Auth via query param, browsers cannot set headers on websockets
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	user, err := authSvc.ParseToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if !diagrams.Exists(diagramID) {
		http.Error(w, "diagram not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := collab.NewClient(hub, conn, user.ID, user.DisplayName, diagramID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

// originPatterns turns allowed origins into the host patterns websocket
// origin checks match against.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			patterns = append(patterns, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			slog.Warn("ignoring allowed origin", "origin", o)
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}

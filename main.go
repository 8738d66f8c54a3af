package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quiradon/RPGLive/config"
	"github.com/quiradon/RPGLive/hub"
	"github.com/quiradon/RPGLive/metrics"
	"github.com/quiradon/RPGLive/protocol"
	"github.com/quiradon/RPGLive/registry"
	"github.com/quiradon/RPGLive/views"
	ws "github.com/quiradon/RPGLive/websocket"
)

const wsPath = "/ws"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type app struct {
	registry *registry.Registry
	hub      *hub.Hub
	handler  *protocol.Handler
	views    *views.Views
	promReg  *prometheus.Registry
	wsOpts   ws.Options
}

func newApp(cfg config.Config) *app {
	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)

	reg := registry.New()
	broadcaster := hub.New(m)
	return &app{
		registry: reg,
		hub:      broadcaster,
		handler:  protocol.NewHandler(reg, broadcaster, m),
		views:    views.New(reg, wsPath),
		promReg:  promReg,
		wsOpts:   ws.Options{SendBuffer: cfg.SendBuffer, MaxMessageSize: cfg.MaxMessageSize},
	}
}

func (a *app) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(wsPath, a.wsHandler)
	r.HandleFunc("/dashboard", a.views.Dashboard).Methods(http.MethodGet)
	r.HandleFunc("/overlay/{id}", a.views.Overlay).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/stats", a.statsHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(a.promReg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	a := newApp(cfg)
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: a.router(),
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	a.hub.CloseAll()
}

func setupLogger(cfg config.Config) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
}

func (a *app) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("upgrade error", "error", err)
		return
	}

	wsConn := ws.NewConn(uuid.New().String(), conn, a.handler, a.wsOpts)
	wsConn.Start()
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *app) statsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"clients": a.hub.Stats(), "overlays": a.registry.Len()})
}

// Package admin serves the dashboard to browsers and exposes its state as JSON.
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"chainwatch-sim/internal/config"
	"chainwatch-sim/internal/logging"
	"chainwatch-sim/internal/store"
	"chainwatch-sim/internal/view"
)

//go:embed templates/index.html
var content embed.FS

// Server renders the view tree over HTTP and pushes updates over a websocket.
type Server struct {
	cfg   *config.Config
	store *store.Store
	tpl   *template.Template
	hub   *hub

	mu     sync.Mutex
	hubCtx context.Context // nil until attach
}

// NewServer creates a server for st rendered with cfg.
func NewServer(cfg *config.Config, st *store.Store) *Server {
	tpl := template.Must(template.New("index.html").Funcs(template.FuncMap{
		"tone": func(t view.Tone) string {
			if t == view.ToneDefault {
				return "default"
			}
			return string(t)
		},
	}).ParseFS(content, "templates/index.html"))
	return &Server{cfg: cfg, store: st, tpl: tpl, hub: newHub()}
}

// Handler returns the HTTP routes. /ws answers 503 until Start runs.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/view", s.handleView)
	mux.HandleFunc("/api/select", s.handleSelect)
	mux.HandleFunc("/api/clear", s.handleClear)
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// attach starts the websocket hub and feeds it every store change until ctx ends.
func (s *Server) attach(ctx context.Context) (detach func()) {
	s.mu.Lock()
	s.hubCtx = ctx
	s.mu.Unlock()
	go s.hub.run(ctx)
	return s.store.Subscribe(func(st store.State) {
		data, err := json.Marshal(view.Render(st, s.cfg))
		if err != nil {
			logging.FromContext(ctx).Error("view encode failed", "err", err)
			return
		}
		s.hub.publish(data)
	})
}

// Start serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	log := logging.FromContext(ctx)
	detach := s.attach(ctx)
	defer detach()

	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info("admin server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("admin server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	tree := view.Render(s.store.Snapshot(), s.cfg)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, tree); err != nil {
		logging.FromContext(r.Context()).Error("render index", "err", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Snapshot())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, view.Render(s.store.Snapshot(), s.cfg))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, err := strconv.Atoi(r.URL.Query().Get("node"))
	if err != nil {
		http.Error(w, "node must be an integer", http.StatusBadRequest)
		return
	}
	if !s.store.Select(id) {
		http.Error(w, "unknown node", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.store.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ctx := s.hubCtx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		http.Error(w, "live updates not running", http.StatusServiceUnavailable)
		return
	}
	data, err := json.Marshal(view.Render(s.store.Snapshot(), s.cfg))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.hub.serve(ctx, w, r, data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"status": "ok", "version": s.store.Snapshot().Version})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

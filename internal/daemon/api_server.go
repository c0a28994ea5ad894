package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gamedex/internal/catalog"
	"gamedex/internal/config"
	"gamedex/internal/library"
	"gamedex/internal/logging"
	"gamedex/internal/render"
	"gamedex/internal/scanner"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

// Response payloads shared with the CLI client.
type (
	ScanResponse struct {
		SessionID string `json:"session_id"`
	}
	CatalogResponse struct {
		Entries []catalog.Entry `json:"entries"`
	}
	FavoritesResponse struct {
		Favorites []library.Favorite `json:"favorites"`
	}
	FavoriteRequest struct {
		catalog.Entry
		Favorite bool `json:"favorite"`
	}
	LaunchesResponse struct {
		Launches []library.Launch `json:"launches"`
	}
	RenderRequest struct {
		Platform  string `json:"platform,omitempty"`
		Favorites bool   `json:"favorites,omitempty"`
		Search    string `json:"search,omitempty"`
		Order     string `json:"order,omitempty"`
	}
)

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	mux := http.NewServeMux()
	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/scan", srv.handleScan)
	mux.HandleFunc("/api/catalog", srv.handleCatalog)
	mux.HandleFunc("/api/favorites", srv.handleFavorites)
	mux.HandleFunc("/api/launches", srv.handleLaunches)
	mux.HandleFunc("/api/render", srv.handleRender)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// addr returns the bound listen address, for tests using port 0.
func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sessionID, err := s.daemon.TriggerScan()
	if err != nil {
		if errors.Is(err, scanner.ErrAlreadyRunning) {
			s.writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, ScanResponse{SessionID: sessionID})
}

func (s *apiServer) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req RenderRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
			return
		}
	}
	opts := render.Options{
		Platform:      catalog.NormalizePlatform(req.Platform),
		FavoritesOnly: req.Favorites,
		Search:        req.Search,
		Descending:    strings.EqualFold(req.Order, "desc"),
	}
	if err := s.daemon.RequestRender(&opts); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

func (s *apiServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	opts := render.Options{
		Platform:   catalog.NormalizePlatform(query.Get("platform")),
		Search:     query.Get("search"),
		Descending: strings.EqualFold(query.Get("order"), "desc"),
	}
	var favorite func(catalog.Entry) bool
	if query.Get("favorites") == "1" || strings.EqualFold(query.Get("favorites"), "true") {
		keys, err := s.daemon.deps.Library.FavoriteKeys(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		opts.FavoritesOnly = true
		favorite = func(entry catalog.Entry) bool { return keys[entry.Key()] }
	}

	entries := render.View(s.daemon.deps.Merger.Snapshot(), opts, s.daemon.cfg.Render.Locale, favorite)
	s.writeJSON(w, http.StatusOK, CatalogResponse{Entries: entries})
}

func (s *apiServer) handleFavorites(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		favorites, err := s.daemon.deps.Library.ListFavorites(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, FavoritesResponse{Favorites: favorites})
	case http.MethodPost:
		var req FavoriteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid favorite payload")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			s.writeError(w, http.StatusBadRequest, "favorite requires an entry name")
			return
		}
		if err := s.daemon.deps.Library.SetFavorite(r.Context(), req.Entry, req.Favorite); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"favorite": req.Favorite})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleLaunches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		launches, err := s.daemon.deps.Library.RecentLaunches(r.Context(), limit)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, LaunchesResponse{Launches: launches})
	case http.MethodPost:
		var entry catalog.Entry
		if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid launch payload")
			return
		}
		if strings.TrimSpace(entry.Name) == "" {
			s.writeError(w, http.StatusBadRequest, "launch requires an entry name")
			return
		}
		if err := s.daemon.deps.Library.RecordLaunch(r.Context(), entry); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusAccepted, map[string]string{"recorded": entry.Key()})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}

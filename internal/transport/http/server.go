package http

import (
	"bufio"
	"context"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"shiritori/internal/app"
	"shiritori/internal/config"
	"shiritori/internal/transport/ws"
)

// Server serves the room API, the game socket and the display page
type Server struct {
	server *http.Server
	hub    *app.GameHub
	config *config.Config
	logger *slog.Logger
	webFS  fs.FS
}

// NewServer builds the server. webFS holds the display page under web/.
func NewServer(cfg *config.Config, hub *app.GameHub, logger *slog.Logger, webFS fs.FS) *Server {
	page, err := fs.Sub(webFS, "web")
	if err != nil {
		logger.Error("display page not found", "error", err)
	}

	s := &Server{
		hub:    hub,
		config: cfg,
		logger: logger,
		webFS:  page,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.server = &http.Server{
		Addr:        cfg.GetAddr(),
		Handler:     s.allowCrossOrigin(s.logRequests(mux)),
		ReadTimeout: 15 * time.Second,
		// Socket writes carry their own deadlines once hijacked
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	// Rooms. A room is created over HTTP and then played over the socket;
	// /state lets a late display render the board without joining.
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms/{roomCode}", s.handleGetRoom)
	mux.HandleFunc("GET /api/rooms/{roomCode}/exists", s.handleRoomExists)
	mux.HandleFunc("GET /api/rooms/{roomCode}/state", s.handleGetRoomState)

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	// ?roomCode=ABC234[&playerId=...]
	mux.Handle("GET /ws", ws.NewHandler(s.hub, s.logger))

	mux.HandleFunc("GET /static/", s.handleStatic)
	mux.HandleFunc("GET /", s.handleSPA)
}

// allowCrossOrigin lets the display page be hosted apart from the game server
func (s *Server) allowCrossOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// logRequests logs one line per request. Outside development, asset and
// health check traffic is left out.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		if !s.config.IsDevelopment() && (isStaticRequest(r.URL.Path) || r.URL.Path == "/api/health") {
			return
		}

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		}
		if code := r.URL.Query().Get("roomCode"); code != "" {
			attrs = append(attrs, "roomCode", strings.ToUpper(code))
		}

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "request", attrs...)
	})
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens on the configured address until Shutdown
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones.
// Hijacked game sockets are not tracked here; the hub closes them.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// statusRecorder remembers the status code for the request log. It must
// stay hijackable for the socket upgrade.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	// 101 Switching Protocols is written on the raw connection
	rec.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

func (rec *statusRecorder) Flush() {
	if flusher, ok := rec.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func isStaticRequest(path string) bool {
	return strings.HasPrefix(path, "/static/")
}

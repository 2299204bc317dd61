// Package api exposes the pattern store over HTTP: paginated pattern
// listings, scan status, an admin scan trigger and live streams.
package api

import (
	"compress/gzip"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Stockmasterflex/legend-ai-scanner/cache"
	"github.com/Stockmasterflex/legend-ai-scanner/database/patterns"
	"github.com/Stockmasterflex/legend-ai-scanner/realtime"
)

// PatternStore is the read surface the handlers need, satisfied by
// *patterns.Repository. Kept narrow so handler tests can stub it.
type PatternStore interface {
	FetchPage(limit int, cursor string) (*patterns.Page, error)
	Status() (*patterns.Status, error)
}

// Server handles HTTP API requests.
type Server struct {
	store      PatternStore
	redis      *cache.RedisClient
	broker     *realtime.Broker
	ping       func() error
	triggerFn  func() bool
	adminToken string
}

// NewServer creates a new API server instance. redis may be nil
// (caching disabled); ping may be nil (the health check then skips the
// database); triggerFn may be nil (the scan trigger then answers 503).
func NewServer(store PatternStore, redis *cache.RedisClient, broker *realtime.Broker, ping func() error, triggerFn func() bool, adminToken string) *Server {
	return &Server{
		store:      store,
		redis:      redis,
		broker:     broker,
		ping:       ping,
		triggerFn:  triggerFn,
		adminToken: adminToken,
	}
}

// methodHandler restricts h to the given HTTP method, matching the
// semantics of net/http's "METHOD /path" mux patterns (Go 1.22+) on
// toolchains that predate that syntax.
func methodHandler(method string, h http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.ServeHTTP(w, r)
	}
}

// Handler builds the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/patterns", methodHandler(http.MethodGet, http.HandlerFunc(s.handlePatterns)))
	mux.HandleFunc("/api/v1/status", methodHandler(http.MethodGet, http.HandlerFunc(s.handleStatus)))
	mux.HandleFunc("/api/v1/admin/scan", methodHandler(http.MethodPost, http.HandlerFunc(s.handleScanTrigger)))
	mux.HandleFunc("/health", methodHandler(http.MethodGet, http.HandlerFunc(s.handleHealth)))

	if s.broker != nil {
		mux.Handle("/api/v1/stream", methodHandler(http.MethodGet, s.broker))
		mux.HandleFunc("/api/v1/ws", methodHandler(http.MethodGet, http.HandlerFunc(s.handleWebsocket)))
	}

	// gzip -> cors -> logging
	return s.gzipMiddleware(s.corsMiddleware(s.loggingMiddleware(mux)))
}

// Start starts the HTTP server on the specified port.
func (s *Server) Start(port int) error {
	serverAddr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Printf("🚀 API Server starting on %s", serverAddr)
	return http.ListenAndServe(serverAddr, s.Handler())
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// gzipResponseWriter wraps http.ResponseWriter to support gzip compression
type gzipResponseWriter struct {
	http.ResponseWriter
	writer *gzip.Writer
}

func (g *gzipResponseWriter) Write(data []byte) (int, error) {
	return g.writer.Write(data)
}

// gzipMiddleware compresses API responses. Streaming endpoints are
// excluded: SSE and websocket connections must not be buffered.
func (s *Server) gzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") ||
			strings.HasSuffix(r.URL.Path, "/stream") ||
			strings.HasSuffix(r.URL.Path, "/ws") {
			next.ServeHTTP(w, r)
			return
		}
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, writer: gz}, r)
	})
}

// Package api serves stored nodes over HTTP.
//
// Routes:
//
//	GET /healthz     liveness probe
//	GET /nodes       JSON array; ?type= filters by node type, ?limit= caps the count
//	GET /nodes.txt   one line per node, the crawl's text format
//	GET /stats       node counts per type
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/lo"

	nio "github.com/matzehuels/nodecrawl/pkg/io"
	"github.com/matzehuels/nodecrawl/pkg/node"
	"github.com/matzehuels/nodecrawl/pkg/store"
)

// Handler handles HTTP requests for stored nodes.
type Handler struct {
	store  store.Store
	logger *log.Logger
}

// NewHandler creates a handler reading from s.
func NewHandler(s store.Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{store: s, logger: logger}
}

// RegisterRoutes registers the node routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Get("/nodes", h.ListNodes)
	r.Get("/nodes.txt", h.ListNodesText)
	r.Get("/stats", h.Stats)
}

// NewRouter returns a router with request logging and panic recovery.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(h.logRequests)
	h.RegisterRoutes(r)
	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListNodes writes the stored nodes as JSON.
func (h *Handler) ListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, ok := h.nodes(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := nio.WriteJSON(nodes, w); err != nil {
		h.logger.Error("write response", "err", err)
	}
}

// ListNodesText writes the stored nodes in the text format.
func (h *Handler) ListNodesText(w http.ResponseWriter, r *http.Request) {
	nodes, ok := h.nodes(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := nio.WriteText(nodes, w); err != nil {
		h.logger.Error("write response", "err", err)
	}
}

// Stats writes node counts per type.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("list nodes", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list nodes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":   len(nodes),
		"by_type": lo.CountValuesBy(nodes, func(n node.Node) string { return n.Type }),
	})
}

// nodes lists and filters nodes for the request. It writes the error
// response itself and reports false on failure.
func (h *Handler) nodes(w http.ResponseWriter, r *http.Request) ([]node.Node, bool) {
	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return nil, false
		}
		limit = n
	}

	nodes, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("list nodes", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list nodes")
		return nil, false
	}

	if typ := strings.TrimSpace(q.Get("type")); typ != "" {
		nodes = lo.Filter(nodes, func(n node.Node, _ int) bool { return strings.EqualFold(n.Type, typ) })
	}
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	return nodes, true
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Package httpapi serves the activity map and its principal and network details as JSON.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/diillson/cloud-snitch-map/internal/application/usecase"
	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/metrics"
	"github.com/diillson/cloud-snitch-map/internal/shared/types"
)

// MapViewBuilder renders a snapshot for one request.
type MapViewBuilder interface {
	BuildMapView(snap usecase.Snapshot, req usecase.MapViewRequest) (entity.MapView, error)
}

type Handler struct {
	log     zerolog.Logger
	store   *usecase.MapStore
	views   MapViewBuilder
	metrics *metrics.Metrics
}

// NewHandler creates the HTTP handler. m may be nil.
func NewHandler(log zerolog.Logger, store *usecase.MapStore, views MapViewBuilder, m *metrics.Metrics) *Handler {
	return &Handler{log: log, store: store, views: views, metrics: m}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(h.accessLog)

	// Health
	r.Get("/healthz", h.handleHealthz)
	r.Get("/readyz", h.handleReadyZ)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	// API
	r.Route("/api", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Get("/map", h.handleMap)
			r.Get("/status", h.handleStatus)
			r.Route("/principals", func(r chi.Router) {
				r.Get("/", h.handleListPrincipals)
				r.Get("/{id}", h.handleGetPrincipal)
			})
			// CIDRs carry a slash, so the whole remaining path is the network.
			r.Get("/networks/*", h.handleGetNetwork)
		})
	})

	return r
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		h.metrics.ObserveHTTPRequest(r.Method, route, ww.Status(), time.Since(start))

		h.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("http_request")
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	resp := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": msg,
		},
	}
	if details != nil {
		resp["error"].(map[string]any)["details"] = details
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleReadyZ(w http.ResponseWriter, r *http.Request) {
	if _, ready := h.store.Snapshot(); !ready {
		details := map[string]any{"progress": h.store.Status().Progress}
		if err := h.store.LastError(); err != nil {
			details["error"] = err.Error()
		}
		h.writeError(w, http.StatusServiceUnavailable, "not_ready", types.ErrNotReady.Error(), details)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"ready": true})
}

type statusResponse struct {
	Ready     bool              `json:"ready"`
	Status    entity.LoadStatus `json:"status"`
	LoadedAt  *time.Time        `json:"loaded_at,omitempty"`
	LastError string            `json:"last_error,omitempty"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	_, ready := h.store.Snapshot()
	resp := statusResponse{Ready: ready, Status: h.store.Status()}
	if ready {
		at := h.store.LoadedAt()
		resp.LoadedAt = &at
	}
	if err := h.store.LastError(); err != nil {
		resp.LastError = err.Error()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleMap serves the view even while the first load runs; its status tells the client how far
// loading has come.
func (h *Handler) handleMap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var zoom float64
	if raw := strings.TrimSpace(q.Get("zoom")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "validation_failed", "zoom must be a number", map[string]any{"zoom": raw})
			return
		}
		zoom = v
	}

	snap, _ := h.store.Snapshot()
	view, err := h.views.BuildMapView(snap, usecase.MapViewRequest{
		Zoom:      zoom,
		Filter:    q.Get("filter"),
		Selection: q.Get("selection"),
		Highlight: q.Get("highlight"),
	})
	if err != nil {
		if errors.Is(err, types.ErrInvalidZoom) {
			h.writeError(w, http.StatusBadRequest, "validation_failed", types.ErrInvalidZoom.Error(), map[string]any{"zoom": zoom})
			return
		}
		h.log.Error().Err(err).Msg("build map view failed")
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to build map view", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleListPrincipals(w http.ResponseWriter, r *http.Request) {
	snap, _ := h.store.Snapshot()
	if snap.Report == nil {
		h.writeJSON(w, http.StatusOK, []entity.PrincipalSummary{})
		return
	}

	combined := snap.Report
	if filter := r.URL.Query().Get("filter"); filter != "" {
		combined = combined.WithFilteredPrincipals(filter)
	}
	h.writeJSON(w, http.StatusOK, usecase.SummarizePrincipals(combined))
}

func (h *Handler) handleGetPrincipal(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid principal id", nil)
		return
	}

	snap, _ := h.store.Snapshot()
	detail, err := usecase.PrincipalDetail(snap.Report, id)
	if errors.Is(err, types.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "not_found", "principal not found", map[string]any{"id": id})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("principal", id).Msg("get principal failed")
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to get principal", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleGetNetwork(w http.ResponseWriter, r *http.Request) {
	cidr, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || cidr == "" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid network", nil)
		return
	}

	snap, _ := h.store.Snapshot()
	detail, err := usecase.NetworkDetail(snap.Report, cidr)
	if errors.Is(err, types.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "not_found", "network not found", map[string]any{"cidr": cidr})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("network", cidr).Msg("get network failed")
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to get network", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, detail)
}

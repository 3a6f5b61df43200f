// Package server exposes rendering and the trace store over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dicklesworthstone/tracerender/internal/render"
	"github.com/Dicklesworthstone/tracerender/internal/store"
	"github.com/Dicklesworthstone/tracerender/internal/trace"
)

// maxBodyBytes caps uploaded traces.
const maxBodyBytes = 8 << 20

// TraceStore is the subset of the store the handlers need.
type TraceStore interface {
	Save(ctx context.Context, id string, sc *trace.StructuredContext) (string, error)
	Get(ctx context.Context, id string) (*trace.StructuredContext, error)
	List(ctx context.Context) ([]store.Record, error)
	Delete(ctx context.Context, id string) error
}

// Handler serves the HTTP API.
type Handler struct {
	renderer atomic.Pointer[render.Renderer]
	store    TraceStore
	logger   *slog.Logger
}

// NewHandler creates a handler. st may be nil, in which case only the
// stateless routes are registered.
func NewHandler(renderer *render.Renderer, st TraceStore, logger *slog.Logger) *Handler {
	if renderer == nil {
		renderer = render.New(render.DefaultOptions())
	}
	if logger == nil {
		logger = slog.Default().With("component", "server")
	}
	h := &Handler{store: st, logger: logger}
	h.renderer.Store(renderer)
	return h
}

// SetRenderer swaps the renderer used by later requests, for example after
// the config file changes.
func (h *Handler) SetRenderer(r *render.Renderer) {
	if r != nil {
		h.renderer.Store(r)
	}
}

// SaveResponse is returned after storing a trace.
type SaveResponse struct {
	ID string `json:"id"`
}

// Router builds the gin engine with all routes.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(h.requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.POST("/render", h.Render)

	if h.store != nil {
		traces := router.Group("/traces")
		traces.GET("", h.ListTraces)
		traces.POST("", h.SaveTrace)
		traces.GET("/:id", h.GetTrace)
		traces.GET("/:id/html", h.GetTraceHTML)
		traces.DELETE("/:id", h.DeleteTrace)
	}

	return router
}

// Render renders the posted trace. With ?page=1 a full HTML document is
// returned instead of a fragment.
func (h *Handler) Render(c *gin.Context) {
	sc, ok := h.readTrace(c)
	if !ok {
		return
	}
	h.writeHTML(c, sc, c.Query("page") != "")
}

// ListTraces returns stored trace records.
func (h *Handler) ListTraces(c *gin.Context) {
	recs, err := h.store.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	c.JSON(http.StatusOK, recs)
}

// SaveTrace stores the posted trace. ?id= selects the id to write.
func (h *Handler) SaveTrace(c *gin.Context) {
	sc, ok := h.readTrace(c)
	if !ok {
		return
	}
	id, err := h.store.Save(c.Request.Context(), c.Query("id"), sc)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, SaveResponse{ID: id})
}

// GetTrace returns a stored trace as JSON.
func (h *Handler) GetTrace(c *gin.Context) {
	sc, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	body, err := trace.MarshalIndent(sc)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// GetTraceHTML renders a stored trace.
func (h *Handler) GetTraceHTML(c *gin.Context) {
	sc, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.writeHTML(c, sc, c.Query("page") != "")
}

// DeleteTrace removes a stored trace.
func (h *Handler) DeleteTrace(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) readTrace(c *gin.Context) (*trace.StructuredContext, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
		return nil, false
	}

	format := trace.FormatJSON
	if ct := c.ContentType(); ct == "application/yaml" || ct == "application/x-yaml" || ct == "text/yaml" {
		format = trace.FormatYAML
	}
	sc, err := trace.Parse(body, format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return sc, true
}

func (h *Handler) writeHTML(c *gin.Context, sc *trace.StructuredContext, page bool) {
	r := h.renderer.Load()
	var out string
	if page {
		out = r.Document(sc, sc.Req().CoreGoal)
	} else {
		out = r.Render(sc)
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out))
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h *Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("listening", "addr", addr)
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
		return srv.Shutdown(shutdownCtx)
	}
}

package http

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harborfs/backend/internal/infrastructure/config"
	"github.com/harborfs/backend/internal/infrastructure/logging"
	"github.com/harborfs/backend/internal/providers/filesystem"
	"github.com/harborfs/backend/internal/providers/search"
	"github.com/harborfs/backend/internal/shared/types"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	files  *filesystem.Provider
	engine *search.Engine
	cfg    *config.Config
	log    *logging.Logger

	mu   sync.Mutex
	subs map[string]*filesystem.Subscription
}

// NewHandlers creates a new handler set.
func NewHandlers(files *filesystem.Provider, engine *search.Engine, cfg *config.Config, log *logging.Logger) *Handlers {
	return &Handlers{
		files:  files,
		engine: engine,
		cfg:    cfg,
		log:    log,
		subs:   make(map[string]*filesystem.Subscription),
	}
}

// Root handles the service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "harborfs",
		"scheme":  h.files.Scheme(),
	})
}

// Health handles health checks.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"backend": h.cfg.Store.Backend,
		"scheme":  h.files.Scheme(),
	})
}

// statusOf maps a provider error code onto an HTTP status. Unknown
// errors surface as 500 so they are never mistaken for client mistakes.
func statusOf(err error) int {
	var pe *filesystem.Error
	if !errors.As(err, &pe) {
		return http.StatusInternalServerError
	}
	switch pe.Code {
	case filesystem.CodeNotFound:
		return http.StatusNotFound
	case filesystem.CodeAlreadyExists:
		return http.StatusConflict
	case filesystem.CodeIsADirectory:
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}

func (h *Handlers) fail(c *gin.Context, err error) {
	var pe *filesystem.Error
	code := ""
	if errors.As(err, &pe) {
		code = string(pe.Code)
	}
	c.JSON(statusOf(err), gin.H{"error": err.Error(), "code": code})
}

type fileRequest struct {
	File types.FileID `json:"file" binding:"required"`
}

// StatFile handles POST /fs/stat.
func (h *Handlers) StatFile(c *gin.Context) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stat, err := h.files.Stat(c.Request.Context(), req.File)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stat)
}

// ListDirectory handles POST /fs/list.
func (h *Handlers) ListDirectory(c *gin.Context) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entries, err := h.files.List(c.Request.Context(), req.File)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// ReadFile handles POST /fs/read. Content travels base64-encoded.
func (h *Handlers) ReadFile(c *gin.Context) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, err := h.files.Read(c.Request.Context(), req.File)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": data, "size": len(data)})
}

type writeRequest struct {
	File      types.FileID `json:"file" binding:"required"`
	Content   []byte       `json:"content"`
	Create    bool         `json:"create"`
	Overwrite bool         `json:"overwrite"`
}

// WriteFile handles POST /fs/write.
func (h *Handlers) WriteFile(c *gin.Context) {
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opts := types.WriteOptions{Create: req.Create, Overwrite: req.Overwrite}
	if err := h.files.Write(c.Request.Context(), req.File, req.Content, opts); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"written": len(req.Content)})
}

type removeRequest struct {
	File      types.FileID `json:"file" binding:"required"`
	Recursive bool         `json:"recursive"`
}

// RemoveFile handles POST /fs/remove.
func (h *Handlers) RemoveFile(c *gin.Context) {
	var req removeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opts := types.RemoveOptions{Recursive: req.Recursive}
	if err := h.files.Remove(c.Request.Context(), req.File, opts); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": req.File.String()})
}

type transferRequest struct {
	From      types.FileID `json:"from" binding:"required"`
	To        types.FileID `json:"to" binding:"required"`
	Overwrite bool         `json:"overwrite"`
}

// RenameFile handles POST /fs/rename.
func (h *Handlers) RenameFile(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opts := types.RenameOptions{Overwrite: req.Overwrite}
	if err := h.files.Rename(c.Request.Context(), req.From, req.To, opts); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": req.From.String(), "to": req.To.String()})
}

// CopyFile handles POST /fs/copy.
func (h *Handlers) CopyFile(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opts := types.CopyOptions{Overwrite: req.Overwrite}
	if err := h.files.Copy(c.Request.Context(), req.From, req.To, opts); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": req.From.String(), "to": req.To.String()})
}

// MakeDirectory handles POST /fs/mkdir.
func (h *Handlers) MakeDirectory(c *gin.Context) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.files.MakeDirectory(c.Request.Context(), req.File); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": req.File.String()})
}

// Archive handles GET /fs/archive. The subtree streams out as a tar
// archive, optionally compressed, without buffering in memory.
func (h *Handlers) Archive(c *gin.Context) {
	id := types.FileID{
		Scheme: h.files.Scheme(),
		Path:   c.DefaultQuery("path", "/"),
	}
	comp := filesystem.Compression(c.DefaultQuery("compression", "none"))

	switch comp {
	case filesystem.CompressionGzip:
		c.Header("Content-Type", "application/gzip")
	case filesystem.CompressionZstd:
		c.Header("Content-Type", "application/zstd")
	default:
		c.Header("Content-Type", "application/x-tar")
	}
	c.Header("Content-Disposition", `attachment; filename="export.tar"`)

	if err := h.files.Export(c.Request.Context(), id, comp, c.Writer); err != nil {
		// Headers are already gone; the truncated stream is the signal.
		h.log.Error("archive export failed", zap.String("path", id.Path), zap.Error(err))
	}
}

type watchRequest struct {
	File      types.FileID `json:"file" binding:"required"`
	Recursive bool         `json:"recursive"`
}

// WatchFile handles POST /fs/watch.
func (h *Handlers) WatchFile(c *gin.Context) {
	var req watchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sub, err := h.files.Watch(req.File, req.Recursive)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.mu.Lock()
	h.subs[sub.ID] = sub
	h.mu.Unlock()
	c.JSON(http.StatusOK, sub)
}

// UnwatchFile handles DELETE /fs/watch/:id.
func (h *Handlers) UnwatchFile(c *gin.Context) {
	id := c.Param("id")
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown subscription"})
		return
	}
	sub.Close()
	c.JSON(http.StatusOK, gin.H{"closed": id})
}

type searchRequest struct {
	Query   types.SearchQuery   `json:"query"`
	Options types.SearchOptions `json:"options"`
}

// withDefaults applies the configured result cap when the caller did not
// supply one.
func (h *Handlers) withDefaults(opts types.SearchOptions) types.SearchOptions {
	if opts.MaxResults <= 0 && h.cfg.Search.DefaultMaxResults > 0 {
		opts.MaxResults = h.cfg.Search.DefaultMaxResults
	}
	return opts
}

// SearchFiles handles POST /search/files.
func (h *Handlers) SearchFiles(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	files, err := h.engine.SearchByName(c.Request.Context(), req.Query, h.withDefaults(req.Options))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files, "count": len(files)})
}

// SearchContent handles POST /search/content. Matches are collected and
// returned in one response; the WebSocket route streams them instead.
func (h *Handlers) SearchContent(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	matches := []types.SearchMatch{}
	sink := search.SinkFunc(func(m types.SearchMatch) error {
		matches = append(matches, m)
		return nil
	})
	res, err := h.engine.SearchByContent(c.Request.Context(), req.Query, h.withDefaults(req.Options), sink)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"matches":   matches,
		"limit_hit": res.LimitHit,
		"skipped":   res.Skipped,
	})
}

// ResetWorkspace handles POST /workspace/reset. Every entry under the
// store root is removed recursively; the root itself stays.
func (h *Handlers) ResetWorkspace(c *gin.Context) {
	root := types.FileID{Scheme: h.files.Scheme(), Path: "/"}
	entries, err := h.files.List(c.Request.Context(), root)
	if err != nil {
		h.fail(c, err)
		return
	}
	removed := 0
	for _, entry := range entries {
		id := types.FileID{Scheme: h.files.Scheme(), Path: "/" + entry.Name}
		if err := h.files.Remove(c.Request.Context(), id, types.RemoveOptions{Recursive: true}); err != nil {
			h.fail(c, err)
			return
		}
		removed++
	}
	h.log.Info("workspace reset", zap.Int("removed", removed))
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

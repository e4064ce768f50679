package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nebulasur/ventia/internal/domain"
	"github.com/nebulasur/ventia/internal/engine"
	"github.com/nebulasur/ventia/internal/kb"
)

// Handler handles chat API requests
type Handler struct {
	engine *engine.Engine
	store  *kb.Store
	kbDir  string
	logger *zap.Logger
}

// NewHandler creates a new chat handler
func NewHandler(eng *engine.Engine, store *kb.Store, kbDir string, logger *zap.Logger) *Handler {
	return &Handler{engine: eng, store: store, kbDir: kbDir, logger: logger}
}

// Chat handles one chat turn. Requests carrying a message window take
// the persona conversation path; single-message requests run the full
// retrieval pipeline.
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var resp *domain.ChatResponse
	if len(req.Messages) > 0 {
		resp = h.engine.ChatWindow(c.Request.Context(), req)
	} else {
		resp = h.engine.Chat(c.Request.Context(), req)
	}

	c.JSON(http.StatusOK, resp)
}

// Reload re-reads the knowledge base files from disk and swaps the
// in-memory catalog. Embeddings are rebuilt in the background.
func (h *Handler) Reload(c *gin.Context) {
	items, err := kb.LoadDir(h.kbDir)
	if err != nil {
		h.logger.Error("knowledge base reload failed", zap.String("dir", h.kbDir), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.store.Replace(items)
	go h.store.BuildVectors(context.Background())

	counts := gin.H{}
	for tenant, list := range items {
		counts[tenant] = len(list)
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded", "items": counts})
}

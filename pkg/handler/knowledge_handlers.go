package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/openpaw/pawdeck/pkg/models"
	"github.com/openpaw/pawdeck/pkg/service"
)

type KnowledgeHandler struct {
	knowledge *service.KnowledgeService
}

func NewKnowledgeHandler(knowledge *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: knowledge}
}

func (h *KnowledgeHandler) View(c *gin.Context) {
	ok(c, h.knowledge.View())
}

func (h *KnowledgeHandler) Activate(c *gin.Context) {
	if err := h.knowledge.Activate(c.Request.Context()); err != nil {
		fail(c, err, h.knowledge.View())
		return
	}
	ok(c, h.knowledge.View())
}

// OpenMemoryFile loads and selects a memory file.
func (h *KnowledgeHandler) OpenMemoryFile(c *gin.Context) {
	filename := c.Param("filename")
	if filename == "" {
		badRequest(c, "filename is required")
		return
	}
	if _, err := h.knowledge.LoadMemoryFile(c.Request.Context(), filename); err != nil {
		fail(c, err, h.knowledge.View())
		return
	}
	ok(c, h.knowledge.View())
}

func (h *KnowledgeHandler) EditMemoryFile(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.knowledge.EditMemoryFile(req.Content); err != nil {
		fail(c, err, nil)
		return
	}
	ok(c, h.knowledge.View())
}

func (h *KnowledgeHandler) SaveMemoryFile(c *gin.Context) {
	if err := h.knowledge.SaveMemoryFile(c.Request.Context()); err != nil {
		fail(c, err, h.knowledge.View())
		return
	}
	ok(c, h.knowledge.View())
}

func (h *KnowledgeHandler) SetSearch(c *gin.Context) {
	var req struct {
		Search string `json:"search"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.knowledge.SetSearch(req.Search)
	ok(c, h.knowledge.View())
}

func (h *KnowledgeHandler) ToggleDocument(c *gin.Context) {
	h.knowledge.ToggleDocument(c.Param("id"))
	ok(c, h.knowledge.View())
}

func (h *KnowledgeHandler) Upload(c *gin.Context) {
	var req models.DocumentUpload
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Type == "" {
		req.Type = models.DocumentTypeMarkdown
	}
	if _, err := h.knowledge.Upload(c.Request.Context(), req); err != nil {
		fail(c, err, h.knowledge.View())
		return
	}
	ok(c, h.knowledge.View())
}

func (h *KnowledgeHandler) DeleteDocument(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		badRequest(c, "id is required")
		return
	}
	if err := h.knowledge.DeleteDocument(c.Request.Context(), id); err != nil {
		fail(c, err, h.knowledge.View())
		return
	}
	ok(c, h.knowledge.View())
}

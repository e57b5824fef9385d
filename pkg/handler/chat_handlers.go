package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/openpaw/pawdeck/pkg/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) View(c *gin.Context) {
	ok(c, h.chat.View())
}

func (h *ChatHandler) Activate(c *gin.Context) {
	if err := h.chat.Activate(c.Request.Context()); err != nil {
		fail(c, err, h.chat.View())
		return
	}
	ok(c, h.chat.View())
}

func (h *ChatHandler) NewConversation(c *gin.Context) {
	if _, err := h.chat.NewConversation(c.Request.Context()); err != nil {
		fail(c, err, h.chat.View())
		return
	}
	ok(c, h.chat.View())
}

func (h *ChatHandler) Switch(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		badRequest(c, "id is required")
		return
	}
	if err := h.chat.SwitchConversation(c.Request.Context(), id); err != nil {
		fail(c, err, h.chat.View())
		return
	}
	ok(c, h.chat.View())
}

func (h *ChatHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		badRequest(c, "id is required")
		return
	}
	if err := h.chat.DeleteConversation(c.Request.Context(), id); err != nil {
		fail(c, err, h.chat.View())
		return
	}
	ok(c, h.chat.View())
}

type inputRequest struct {
	Input string `json:"input"`
}

func (h *ChatHandler) SetInput(c *gin.Context) {
	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.chat.SetInput(req.Input)
	ok(c, h.chat.View())
}

// Send posts the composer. An optional {"message": "..."} body replaces the
// composer text first.
func (h *ChatHandler) Send(c *gin.Context) {
	var req struct {
		Message *string `json:"message"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	if req.Message != nil {
		h.chat.SetInput(*req.Message)
	}
	if err := h.chat.SendMessage(c.Request.Context()); err != nil {
		fail(c, err, h.chat.View())
		return
	}
	ok(c, h.chat.View())
}

func (h *ChatHandler) Suggestion(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "text is required")
		return
	}
	if err := h.chat.SendSuggestion(c.Request.Context(), req.Text); err != nil {
		fail(c, err, h.chat.View())
		return
	}
	ok(c, h.chat.View())
}

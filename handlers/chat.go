package handlers

import (
	"net/http"

	"medibook/models"
	"medibook/services/chat"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler serves the chat shell and the message endpoint.
type ChatHandler struct {
	chatSvc *chat.Service
}

func NewChatHandler(chatSvc *chat.Service) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// Index renders the chat interface shell. No state mutation.
func (h *ChatHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "chat.html", gin.H{})
}

// HandleMessage handles POST /get: one user message in, the assistant
// reply plus booking directive out.
func (h *ChatHandler) HandleMessage(c *gin.Context) {
	logger := utils.GetLogger()

	var req models.ChatRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid chat request", err.Error())
		return
	}

	token := SessionToken(c)
	resp, err := h.chatSvc.HandleMessage(c.Request.Context(), token, req.Message)
	if err != nil {
		logger.Error("Chat turn failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Chat turn failed", "Please try again.")
		return
	}

	c.JSON(http.StatusOK, resp)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aichat-backend/internal/app"
	"aichat-backend/internal/pkg/logger"
	"aichat-backend/internal/transport/http/middleware"
	"aichat-backend/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
	log         *zap.Logger
}

type SendMessageRequest struct {
	Msg string `json:"msg"`
}

func NewChatHandler(chatService *app.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, log: log}
}

// SendMessage serves both POST /chat and POST /chat/:chatId.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.ChatError(c, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ChatError(c, http.StatusBadRequest, response.MsgBadRequest)
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		UserID: user.ID,
		ChatID: c.Param("chatId"),
		Text:   req.Msg,
	})
	if err != nil {
		var verr *app.ValidationError
		if errors.As(err, &verr) {
			response.ChatError(c, http.StatusBadRequest, verr.Message)
			return
		}
		logger.FromContext(c.Request.Context(), h.log).Error("chat failed", zap.Error(err))
		response.ChatError(c, http.StatusInternalServerError, response.MsgChatFailed)
		return
	}

	response.ChatOK(c, gin.H{
		"chatId": result.ChatID,
		"message": gin.H{
			"user":  result.User,
			"model": result.Model,
		},
	})
}

func (h *ChatHandler) ListChats(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.ChatError(c, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}

	chats, err := h.chatService.ListChats(c.Request.Context(), user.ID)
	if err != nil {
		logger.FromContext(c.Request.Context(), h.log).Error("list chats failed", zap.Error(err))
		response.ChatError(c, http.StatusInternalServerError, response.MsgChatServerErr)
		return
	}
	response.ChatOK(c, gin.H{"chats": chats})
}

func (h *ChatHandler) GetChat(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.ChatError(c, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}

	chat, err := h.chatService.GetChat(c.Request.Context(), user.ID, c.Param("chatId"))
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.ChatError(c, http.StatusNotFound, "Chat not found")
			return
		}
		logger.FromContext(c.Request.Context(), h.log).Error("get chat failed", zap.Error(err))
		response.ChatError(c, http.StatusInternalServerError, response.MsgChatServerErr)
		return
	}
	response.ChatOK(c, gin.H{"chat": chat})
}

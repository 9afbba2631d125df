package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup) {
	chat := router.Group("/api/chat", middleware.RequireAuth())
	{
		chat.GET("/:projectId/messages", h.Messages)
		chat.POST("/:projectId/messages", h.SendMessage)
		chat.POST("/messages/:messageId/reactions", h.AddReaction)
		chat.DELETE("/messages/:messageId/reactions", h.RemoveReaction)
	}
}

type reactionDTO struct {
	Emoji string `json:"emoji" binding:"required"`
}

// Messages returns a page of a project's chat thread, newest first
// @Summary      List chat messages
// @Description  Returns up to limit messages, newest first; pass the oldest received message id as before to page further back
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      string  true   "Project ID"
// @Param        before     query     string  false  "Message ID cursor"
// @Param        limit      query     int     false  "Page size (default 20)"
// @Success      200        {object}  response.Response{data=[]service.ChatMessageResponse}
// @Failure      404        {object}  response.Response
// @Router       /api/chat/{projectId}/messages [get]
func (h *ChatHandler) Messages(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid project id"))
		return
	}

	var before *uuid.UUID
	if raw := c.Query("before"); raw != "" {
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid before cursor"))
			return
		}
		before = &id
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	messages, err := h.chatService.Messages(c.Request.Context(), projectID, before, limit)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, messages))
}

// SendMessage posts a message with optional file attachments
// @Summary      Send chat message
// @Description  Multipart form: message text plus zero or more attachment files
// @Tags         chat
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        projectId    path      string  true   "Project ID"
// @Param        message      formData  string  false  "Message text"
// @Param        attachments  formData  file    false  "Attachments"
// @Success      201          {object}  response.Response{data=service.ChatMessageResponse}
// @Failure      404          {object}  response.Response
// @Router       /api/chat/{projectId}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid project id"))
		return
	}

	senderID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	message := c.PostForm("message")
	var attachments []*multipart.FileHeader
	if form, formErr := c.MultipartForm(); formErr == nil && form != nil {
		attachments = form.File["attachments"]
	}

	if message == "" && len(attachments) == 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Message or attachments required"))
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), projectID, senderID, message, attachments)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// AddReaction adds an emoji reaction to a message
// @Summary      Add reaction
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        messageId  path      string       true  "Message ID"
// @Param        payload    body      reactionDTO  true  "Reaction payload"
// @Success      200        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /api/chat/messages/{messageId}/reactions [post]
func (h *ChatHandler) AddReaction(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("messageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid message id"))
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	var req reactionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.chatService.AddReaction(c.Request.Context(), messageID, userID, req.Emoji); err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Reaction added"))
}

// RemoveReaction removes the caller's emoji reaction from a message
// @Summary      Remove reaction
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        messageId  path      string       true  "Message ID"
// @Param        payload    body      reactionDTO  true  "Reaction payload"
// @Success      200        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /api/chat/messages/{messageId}/reactions [delete]
func (h *ChatHandler) RemoveReaction(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("messageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid message id"))
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	var req reactionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.chatService.RemoveReaction(c.Request.Context(), messageID, userID, req.Emoji); err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Reaction removed"))
}

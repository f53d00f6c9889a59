package handler

import (
	"net/http"
	"strconv"
	"time"

	"beacon-chat/internal/domain/message"
	"beacon-chat/internal/gateway"
	"beacon-chat/internal/services"
	"beacon-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MessageHandler handles message endpoints. Writes that land over REST are
// also fanned out to connected sockets so live clients stay in sync with
// clients using plain HTTP.
type MessageHandler struct {
	service *services.MessageService
	hub     *gateway.Hub
}

func NewMessageHandler(service *services.MessageService, hub *gateway.Hub) *MessageHandler {
	return &MessageHandler{service: service, hub: hub}
}

// Send persists a message in a conversation the caller participates in.
func (h *MessageHandler) Send(c *gin.Context) {
	accountID, ok := services.AccountIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	conversationID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	in := services.SendMessageInput{
		ConversationID: conversationID,
		SenderID:       accountID,
		Kind:           req.Kind,
		Content:        req.Content,
		FileURL:        req.FileURL,
		FileName:       req.FileName,
		FileSize:       req.FileSize,
	}
	if in.Kind == "" {
		in.Kind = message.KindText
	}
	if req.ReplyToID != "" {
		replyTo, err := parseUUID(req.ReplyToID)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid reply_to_id", "INVALID_REQUEST"))
			return
		}
		in.ReplyToID = &replyTo
	}

	m, err := h.service.Send(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	h.hub.NotifyNewMessage(m)

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(toMessageDTO(m)))
}

// List returns a page of conversation history, newest first, keyed by a
// created-at cursor. Deleted messages appear masked.
func (h *MessageHandler) List(c *gin.Context) {
	accountID, ok := services.AccountIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	conversationID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return
	}

	before := time.Now()
	if raw := c.Query("before"); raw != "" {
		before, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid before cursor", "INVALID_REQUEST"))
			return
		}
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	limit = clampLimit(limit)

	messages, err := h.service.List(c.Request.Context(), conversationID, accountID, before, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	dtos := make([]httpdto.MessageDTO, len(messages))
	for i, m := range messages {
		dtos[i] = toMessageDTO(m)
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(dtos))
}

// Edit replaces a message's content. Only the sender may edit, and only
// within the configured window after sending.
func (h *MessageHandler) Edit(c *gin.Context) {
	accountID, ok := services.AccountIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	messageID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	m, err := h.service.Edit(c.Request.Context(), messageID, accountID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}

	h.hub.NotifyMessageEdited(m)

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(toMessageDTO(m)))
}

// Delete soft-deletes the caller's own message. The row survives with its
// content replaced by a placeholder.
func (h *MessageHandler) Delete(c *gin.Context) {
	accountID, ok := services.AccountIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	messageID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), messageID, accountID); err != nil {
		writeError(c, err)
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), messageID)
	if err == nil {
		h.hub.NotifyMessageDeleted(m)
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// MarkRead records read receipts for a batch of messages. Receipts are
// idempotent; only newly marked ids are returned and broadcast.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	accountID, ok := services.AccountIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	conversationID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	messageIDs := make([]uuid.UUID, 0, len(req.MessageIDs))
	for _, raw := range req.MessageIDs {
		id, err := parseUUID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
			return
		}
		messageIDs = append(messageIDs, id)
	}

	marked, err := h.service.MarkRead(c.Request.Context(), conversationID, accountID, messageIDs)
	if err != nil {
		writeError(c, err)
		return
	}

	if len(marked) > 0 {
		h.hub.NotifyMessagesRead(conversationID, accountID, marked)
	}

	markedIDs := make([]string, len(marked))
	for i, id := range marked {
		markedIDs[i] = id.String()
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.MarkReadResponse{MarkedIDs: markedIDs}))
}

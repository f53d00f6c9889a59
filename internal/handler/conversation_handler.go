package handler

import (
	"net/http"
	"strconv"

	"beacon-chat/internal/services"
	"beacon-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ConversationHandler handles conversation lifecycle endpoints.
type ConversationHandler struct {
	service *services.ConversationService
}

func NewConversationHandler(service *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// Create opens a direct or group conversation. Direct creation dedupes: if a
// thread between the two accounts already exists it is returned instead.
func (h *ConversationHandler) Create(c *gin.Context) {
	accountID, ok := services.AccountIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	participantIDs := make([]uuid.UUID, 0, len(req.ParticipantIDs))
	for _, raw := range req.ParticipantIDs {
		id, err := parseUUID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid participant id", "INVALID_REQUEST"))
			return
		}
		participantIDs = append(participantIDs, id)
	}

	cv, err := h.service.Create(c.Request.Context(), services.CreateConversationInput{
		Type:           req.Type,
		Name:           req.Name,
		CreatorID:      accountID,
		ParticipantIDs: participantIDs,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(toConversationDTO(cv, 0)))
}

// List returns the caller's conversations, newest activity first, each
// decorated with its unread count.
func (h *ConversationHandler) List(c *gin.Context) {
	accountID, ok := services.AccountIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	if page <= 0 {
		page = 1
	}
	limit = clampLimit(limit)

	views, total, err := h.service.ListForAccount(c.Request.Context(), accountID, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]httpdto.ConversationDTO, len(views))
	for i, v := range views {
		items[i] = toConversationDTO(v.Conversation, v.UnreadCount)
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.Paginated[httpdto.ConversationDTO]{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	}))
}

// Get returns a single conversation the caller participates in.
func (h *ConversationHandler) Get(c *gin.Context) {
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

	cv, err := h.service.GetByID(c.Request.Context(), conversationID, accountID)
	if err != nil {
		writeError(c, err)
		return
	}

	unread, err := h.service.UnreadCount(c.Request.Context(), conversationID, accountID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(toConversationDTO(cv, unread)))
}

// AddMember adds an account to a group conversation. Only the creator may do
// this, and direct threads are immutable.
func (h *ConversationHandler) AddMember(c *gin.Context) {
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

	var req httpdto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	memberID, err := parseUUID(req.AccountID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid account id", "INVALID_REQUEST"))
		return
	}

	if err := h.service.AddMember(c.Request.Context(), conversationID, accountID, memberID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// Leave removes the caller from a conversation. The participant row is kept
// with a departure timestamp so message history survives.
func (h *ConversationHandler) Leave(c *gin.Context) {
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

	if err := h.service.Leave(c.Request.Context(), conversationID, accountID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

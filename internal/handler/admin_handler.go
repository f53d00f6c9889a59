package handler

import (
	"net/http"

	"beacon-chat/internal/services"
	"beacon-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles moderation endpoints. Route-level middleware already
// verified the caller is an admin with the right permission.
type AdminHandler struct {
	accounts      *services.AccountService
	conversations *services.ConversationService
}

func NewAdminHandler(accounts *services.AccountService, conversations *services.ConversationService) *AdminHandler {
	return &AdminHandler{accounts: accounts, conversations: conversations}
}

// ListAccounts pages through accounts, optionally filtered by kind.
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	var req httpdto.ListAccountsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	req.Limit = clampLimit(req.Limit)

	accounts, total, err := h.accounts.List(c.Request.Context(), req.Kind, req.Page, req.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]httpdto.AccountDTO, len(accounts))
	for i, a := range accounts {
		items[i] = toAccountDTO(a)
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.Paginated[httpdto.AccountDTO]{
		Items: items,
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
	}))
}

// DeactivateAccount disables an account. Deactivated accounts cannot log in
// but their messages remain.
func (h *AdminHandler) DeactivateAccount(c *gin.Context) {
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid account id", "INVALID_REQUEST"))
		return
	}

	if err := h.accounts.Deactivate(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// DeleteConversation hard-deletes a conversation with its messages and
// receipts. Unlike a participant leaving, nothing survives this.
func (h *AdminHandler) DeleteConversation(c *gin.Context) {
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return
	}

	removed, err := h.conversations.HardDelete(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{
		"messages_removed": removed,
	}))
}

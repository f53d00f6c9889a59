package handler

import (
	"net/http"
	"strconv"

	"beacon-chat/internal/services"
	"beacon-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PresenceSnapshot reports which identities currently hold a live connection.
type PresenceSnapshot interface {
	OnlineIDs() []uuid.UUID
}

// AccountHandler handles account profile and directory endpoints.
type AccountHandler struct {
	service  *services.AccountService
	presence PresenceSnapshot
}

func NewAccountHandler(service *services.AccountService, presence PresenceSnapshot) *AccountHandler {
	return &AccountHandler{service: service, presence: presence}
}

// Me returns the authenticated account's own profile.
func (h *AccountHandler) Me(c *gin.Context) {
	accountID, ok := services.AccountIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), accountID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(toAccountDTO(a)))
}

// UpdateProfile applies partial profile updates to the caller's account.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	accountID, ok := services.AccountIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	in := services.UpdateProfileInput{}
	if req.DisplayName != nil {
		in.DisplayName = *req.DisplayName
	}
	if req.AvatarURL != nil {
		in.AvatarURL = *req.AvatarURL
	}

	a, err := h.service.UpdateProfile(c.Request.Context(), accountID, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(toAccountDTO(a)))
}

// Get returns another account's public profile.
func (h *AccountHandler) Get(c *gin.Context) {
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid account id", "INVALID_REQUEST"))
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(toPublicAccountDTO(a)))
}

// Search finds active user accounts by username or display name.
func (h *AccountHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("query parameter q is required", "INVALID_REQUEST"))
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	limit = clampLimit(limit)

	accounts, err := h.service.Search(c.Request.Context(), query, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	dtos := make([]httpdto.AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = toPublicAccountDTO(a)
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(dtos))
}

// Online returns the ids of accounts with a live gateway connection.
func (h *AccountHandler) Online(c *gin.Context) {
	ids := h.presence.OnlineIDs()
	if ids == nil {
		ids = []uuid.UUID{}
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PresenceSnapshotDTO{
		Online: ids,
		Count:  len(ids),
	}))
}

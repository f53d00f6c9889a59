package handler

import (
	"net/http"
	"time"

	"beacon-chat/internal/services"
	"beacon-chat/internal/storage"
	"beacon-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// UploadHandler issues presigned URLs for attachment uploads. File bytes
// never pass through the API.
type UploadHandler struct {
	store      *storage.Client
	presignTTL time.Duration
}

func NewUploadHandler(store *storage.Client, presignTTL time.Duration) *UploadHandler {
	return &UploadHandler{store: store, presignTTL: presignTTL}
}

// Presign validates the upload request and returns a presigned PUT URL.
func (h *UploadHandler) Presign(c *gin.Context) {
	accountID, ok := services.AccountIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("uploads are not configured", "UPLOADS_DISABLED"))
		return
	}

	var req httpdto.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if err := storage.ValidateUpload(req.ContentType, req.SizeBytes); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_REQUEST"))
		return
	}

	key := storage.ObjectKey(accountID, req.FileName)

	uploadURL, headers, err := h.store.PresignPut(c.Request.Context(), key, req.ContentType, req.SizeBytes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("could not create upload url", "INTERNAL_ERROR"))
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PresignUploadResponse{
		UploadURL: uploadURL,
		Headers:   headers,
		ObjectKey: key,
		FileURL:   h.store.FileURL(key),
		ExpiresIn: int64(h.presignTTL.Seconds()),
	}))
}

// Package handler provides HTTP handlers for API endpoints.
package handler

import (
	"net/http"
	"time"

	"beacon-chat/internal/domain/account"
	"beacon-chat/internal/domain/conversation"
	"beacon-chat/internal/domain/message"
	"beacon-chat/internal/services"
	"beacon-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func writeError(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	c.JSON(status, httpdto.NewErrorResponse(err.Error(), errorCode(status)))
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusUnprocessableEntity:
		return "EDIT_WINDOW_EXPIRED"
	case http.StatusLocked:
		return "ACCOUNT_LOCKED"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}

func parseUUID(raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}

func toAccountDTO(a account.Account) httpdto.AccountDTO {
	dto := httpdto.AccountDTO{
		ID:          a.ID.String(),
		Kind:        a.Kind,
		Username:    a.Username,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		IsOnline:    a.IsOnline,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
	if a.Kind == account.KindAdmin {
		dto.Role = a.Role
	}
	if a.AvatarURL.Valid {
		dto.AvatarURL = a.AvatarURL.String
	}
	if a.LastSeenAt.Valid {
		dto.LastSeenAt = a.LastSeenAt.Time.Format(time.RFC3339)
	}
	return dto
}

// toPublicAccountDTO strips the email for cross-account views.
func toPublicAccountDTO(a account.Account) httpdto.AccountDTO {
	dto := toAccountDTO(a)
	dto.Email = ""
	return dto
}

func toConversationDTO(cv conversation.Conversation, unread int64) httpdto.ConversationDTO {
	dto := httpdto.ConversationDTO{
		ID:             cv.ID.String(),
		Type:           cv.Type,
		CreatedBy:      cv.CreatedBy.String(),
		LastActivityAt: cv.LastActivityAt.Format(time.RFC3339),
		UnreadCount:    unread,
		CreatedAt:      cv.CreatedAt.Format(time.RFC3339),
	}
	if cv.Name.Valid {
		dto.Name = cv.Name.String
	}
	if cv.LastMessageID.Valid {
		dto.LastMessageID = cv.LastMessageID.UUID.String()
	}
	for _, p := range cv.Participants {
		pd := httpdto.ParticipantDTO{
			AccountID: p.AccountID.String(),
			JoinedAt:  p.JoinedAt.Format(time.RFC3339),
		}
		if p.LeftAt.Valid {
			pd.LeftAt = p.LeftAt.Time.Format(time.RFC3339)
		}
		dto.Participants = append(dto.Participants, pd)
	}
	return dto
}

func toMessageDTO(m message.Message) httpdto.MessageDTO {
	dto := httpdto.MessageDTO{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		SenderID:       m.SenderID.String(),
		Kind:           m.Kind,
		Content:        m.Content,
		IsEdited:       m.IsEdited,
		IsDeleted:      m.IsDeleted,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
	if m.FileURL.Valid {
		dto.FileURL = m.FileURL.String
	}
	if m.FileName.Valid {
		dto.FileName = m.FileName.String
	}
	if m.FileSize.Valid {
		dto.FileSize = m.FileSize.Int64
	}
	if m.ReplyToID.Valid {
		dto.ReplyToID = m.ReplyToID.UUID.String()
	}
	if m.EditedAt.Valid {
		dto.EditedAt = m.EditedAt.Time.Format(time.RFC3339)
	}
	for _, r := range m.Receipts {
		dto.Receipts = append(dto.Receipts, httpdto.ReceiptDTO{
			AccountID: r.AccountID.String(),
			ReadAt:    r.ReadAt.Format(time.RFC3339),
		})
	}
	return dto
}

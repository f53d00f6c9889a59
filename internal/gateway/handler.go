package gateway

import (
	"context"
	"net/http"
	"strings"

	"beacon-chat/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades HTTP requests to gateway connections. The bearer
// credential is verified before the upgrade: an unauthenticated request is
// rejected before any room admission or registry state exists.
type Handler struct {
	hub         *Hub
	authService *services.AuthService
	logger      *Logger
}

func NewHandler(hub *Hub, authService *services.AuthService) *Handler {
	return &Handler{
		hub:         hub,
		authService: authService,
		logger:      NewLogger(),
	}
}

// Handle upgrades HTTP to WebSocket
func (h *Handler) Handle(c *gin.Context) {
	token := h.extractToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := h.authService.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid account id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", accountID, "", err)
		return
	}

	connectionID := uuid.New().String()
	client := NewClient(h.hub, conn, accountID, claims.Kind, connectionID, h.logger)

	h.hub.Register(context.Background(), client)

	go client.writePump()
	go client.readPump()
}

func (h *Handler) extractToken(c *gin.Context) string {
	// Check query parameter
	token := c.Query("token")
	if token != "" {
		return token
	}

	// Check Authorization header
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return ""
}

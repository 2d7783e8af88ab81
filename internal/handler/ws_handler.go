package handler

import (
	"net/http"

	"taskboard/internal/auth"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSHandler struct {
	hub         *realtime.Hub
	memberships repository.MembershipRepositoryInterface
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

func NewWSHandler(hub *realtime.Hub, memberships repository.MembershipRepositoryInterface, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:         hub,
		memberships: memberships,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve authenticates the handshake and hands the connection to the hub.
// Token and tenant id arrive as query parameters on the upgrade request;
// every check runs before the upgrade, so a failed handshake is a plain
// HTTP rejection and no connection state ever exists.
func (h *WSHandler) Serve(c *gin.Context) {
	userIDStr, err := auth.ParseToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
		return
	}

	tenantID, err := uuid.Parse(c.Query("tenant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID format"})
		return
	}

	membership, err := h.memberships.Get(c.Request.Context(), userID, tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify tenant access"})
		return
	}
	if membership == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(h.hub, conn, userID, tenantID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

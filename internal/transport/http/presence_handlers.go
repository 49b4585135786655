package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/pinlive-server/internal/core"
	"github.com/vovakirdan/pinlive-server/internal/proto"
)

// PresenceHandlers answers presence queries from the request/response API.
type PresenceHandlers struct {
	hub *core.Hub
}

// NewPresenceHandlers creates presence handlers.
func NewPresenceHandlers(hub *core.Hub) *PresenceHandlers {
	return &PresenceHandlers{hub: hub}
}

// GetPresence handles GET /api/presence/:userId.
func (h *PresenceHandlers) GetPresence(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "userId is required"})
		return
	}

	c.JSON(http.StatusOK, proto.PresenceResponse{
		UserID:      userID,
		Online:      h.hub.IsOnline(userID),
		Connections: h.hub.ConnectionCount(userID),
	})
}

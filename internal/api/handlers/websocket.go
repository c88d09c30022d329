package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/fairway/internal/ws"
)

// HandleWebSocket streams shots and calibration events
func HandleWebSocket(h *ws.Handler) gin.HandlerFunc {
	return h.HandleWebSocket
}
